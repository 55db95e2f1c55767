package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout 日期参数格式
const DateLayout = "2006-01-02"

// RatingValue 每日心情评分
type RatingValue int

const (
	RatingBad     RatingValue = 1
	RatingNeutral RatingValue = 2
	RatingGood    RatingValue = 3
)

// Valid 是否为合法评分
func (r RatingValue) Valid() bool {
	return r >= RatingBad && r <= RatingGood
}

func (r RatingValue) String() string {
	switch r {
	case RatingBad:
		return "Bad"
	case RatingNeutral:
		return "Neutral"
	case RatingGood:
		return "Good"
	default:
		return "Unknown"
	}
}

// DayRating 每日评分表，(user_id, date) 唯一
type DayRating struct {
	ID        uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:uidx_day_ratings_user_date,priority:1"`
	Date      time.Time   `json:"date" gorm:"type:date;not null;uniqueIndex:uidx_day_ratings_user_date,priority:2;index"`
	Rating    RatingValue `json:"rating" gorm:"type:smallint;not null;check:chk_day_ratings_rating,rating BETWEEN 1 AND 3"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (DayRating) TableName() string {
	return "day_ratings"
}

// DayKey 返回日期键（YYYY-MM-DD）
func (r *DayRating) DayKey() string {
	return r.Date.Format(DateLayout)
}

// FriendRating 好友的评分（附带好友信息）
type FriendRating struct {
	DayRating
	User UserProfile `json:"user"`
}

// CalendarRatings 日历视图：自己的评分 + 好友的评分（不合并，由调用方按日期合并）
type CalendarRatings struct {
	UserRatings    []DayRating    `json:"user_ratings"`
	FriendsRatings []FriendRating `json:"friends_ratings"`
}
