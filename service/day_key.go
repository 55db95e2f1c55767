package service

import "time"

// FloorToDay 截断到当天零点（保留原时区），所有评分读写都以此作为日期键
func FloorToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MonthBounds 返回某月第一天和最后一天（月份从 1 开始）
func MonthBounds(year int, month time.Month) (time.Time, time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	// 下个月第 0 天即本月最后一天
	end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local)
	return start, end, nil
}
