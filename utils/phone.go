package utils

import (
	"regexp"
	"strings"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneNumber 将用户输入的号码整理为 E.164 格式，无法识别时返回空字符串
//
// 规则：
// - 以 + 开头且 7-15 位数字：去掉分隔符后保留
// - 10 位数字：视为美国号码，补 +1
// - 11 位且以 1 开头：补 +
// - 其他 7-15 位数字：补 +
func FormatPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	cleaned := digitsOnly(phone)

	switch {
	case strings.HasPrefix(phone, "+") && len(cleaned) >= 7 && len(cleaned) <= 15:
		return "+" + cleaned
	case len(cleaned) == 10:
		return "+1" + cleaned
	case len(cleaned) == 11 && strings.HasPrefix(cleaned, "1"):
		return "+" + cleaned
	case len(cleaned) >= 7 && len(cleaned) <= 15:
		return "+" + cleaned
	}
	return ""
}

// ValidateE164 校验 E.164 格式
func ValidateE164(phone string) bool {
	return e164Regex.MatchString(phone)
}

// PhoneSearchTerm 清理搜索关键字，只保留数字和前导 +
func PhoneSearchTerm(query string) string {
	query = strings.TrimSpace(query)
	digits := digitsOnly(query)
	if digits == "" {
		return ""
	}
	if strings.HasPrefix(query, "+") {
		return "+" + digits
	}
	return digits
}
