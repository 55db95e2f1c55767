package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"sandy_cal/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	verificationCodeTTL    = 10 * time.Minute
	verificationMaxAttempt = 5
	verificationCodeDigits = 6
)

// CodeSender 验证码下发通道（短信服务商在本服务之外）
type CodeSender interface {
	SendCode(ctx context.Context, phone, code string) error
}

// LogCodeSender 把验证码写到日志（开发环境使用）
type LogCodeSender struct{}

func (LogCodeSender) SendCode(ctx context.Context, phone, code string) error {
	utils.Logger().Info("verification code issued", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// VerificationService 手机号验证码（存 Redis，带过期和尝试次数限制）
type VerificationService struct {
	rdb    *redis.Client
	sender CodeSender
}

func NewVerificationService(rdb *redis.Client, sender CodeSender) *VerificationService {
	if sender == nil {
		sender = LogCodeSender{}
	}
	return &VerificationService{rdb: rdb, sender: sender}
}

// checkAttemptScript 在同一步里计数并取出验证码；键不存在时返回 nil，不会创建无过期时间的键
var checkAttemptScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
	redis.call('DEL', KEYS[1])
	return false
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
return {code, attempts}
`)

func verificationKey(phone string) string {
	return "verify:" + phone
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < verificationCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", verificationCodeDigits, n.Int64()), nil
}

// SendCode 生成并下发验证码，返回格式化后的手机号
func (s *VerificationService) SendCode(ctx context.Context, phoneNumber string) (string, error) {
	phone := utils.FormatPhoneNumber(phoneNumber)
	if phone == "" || !utils.ValidateE164(phone) {
		return "", ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	key := verificationKey(phone)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, "code", code, "attempts", 0)
		pipe.Expire(ctx, key, verificationCodeTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.sender.SendCode(ctx, phone, code); err != nil {
		s.rdb.Del(ctx, key)
		return "", fmt.Errorf("failed to send verification code: %w", err)
	}

	return phone, nil
}

// CheckCode 校验验证码，成功后验证码立即失效
func (s *VerificationService) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	key := verificationKey(phone)

	res, err := checkAttemptScript.Run(ctx, s.rdb, []string{key}).Slice()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check verification code: %w", err)
	}
	if len(res) != 2 {
		return false, fmt.Errorf("unexpected verification check reply: %v", res)
	}
	stored, _ := res[0].(string)
	attempts, _ := res[1].(int64)

	if attempts > verificationMaxAttempt {
		s.rdb.Del(ctx, key)
		return false, ErrTooManyAttempts
	}

	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	s.rdb.Del(ctx, key)
	return true, nil
}
