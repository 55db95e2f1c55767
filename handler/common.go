package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"sandy_cal/model"
	"sandy_cal/service"
	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatingStore 评分读写
type RatingStore interface {
	UpsertDayRating(ctx context.Context, userID uuid.UUID, date time.Time, rating model.RatingValue) (*model.DayRating, error)
	GetDayRating(ctx context.Context, userID uuid.UUID, date time.Time) (*model.DayRating, error)
	GetUserRatingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.DayRating, error)
	GetUserRatingsForMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]model.DayRating, error)
	GetAllUserRatings(ctx context.Context, userID uuid.UUID) ([]model.DayRating, error)
	DeleteDayRating(ctx context.Context, userID uuid.UUID, date time.Time) error
}

// CalendarReader 日历聚合查询
type CalendarReader interface {
	GetUserAndFriendsRatingsForMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*model.CalendarRatings, error)
	GetUserAndFriendsRatingsForRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.CalendarRatings, error)
	GetFriendsRatingsForDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]model.FriendRating, error)
}

// FriendGraph 好友关系
type FriendGraph interface {
	AddFriend(ctx context.Context, userID, friendID uuid.UUID) error
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error
	GetFriends(ctx context.Context, userID uuid.UUID) ([]model.FriendItem, error)
	SearchUsersByPhone(ctx context.Context, userID uuid.UUID, phoneQuery string) ([]model.UserProfile, error)
}

// UserDirectory 用户目录与手机号验证
type UserDirectory interface {
	VerifyPhoneAndCreateUser(ctx context.Context, phoneNumber, code, name string) (*model.User, error)
	CreateUser(ctx context.Context, phoneNumber, name string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByPhone(ctx context.Context, phoneNumber string) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
}

// CodeIssuer 下发验证码
type CodeIssuer interface {
	SendCode(ctx context.Context, phoneNumber string) (string, error)
}

// parseDate 解析日期参数：YYYY-MM-DD 或 RFC3339（统一换算到本地时区）
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	if t, err := time.ParseInLocation(model.DateLayout, value, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.New("invalid date, expected YYYY-MM-DD")
	}
	return t.In(time.Local), nil
}

// respondServiceError 按错误类别返回对应状态码，未分类错误记日志并返回 500
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		utils.Conflict(c, err.Error())
	case errors.Is(err, service.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, service.ErrVerification):
		utils.Unauthorized(c, err.Error())
	default:
		utils.Logger().Error(fallback, zap.Error(err), zap.String("path", c.Request.URL.Path))
		utils.InternalServerError(c, fallback)
	}
}
