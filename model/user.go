package model

import (
	"time"

	"github.com/google/uuid"
)

// User 用户表（手机号即身份）
type User struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Phone           string     `json:"phone" gorm:"type:varchar(20);uniqueIndex;not null"` // E.164
	Name            *string    `json:"name" gorm:"type:varchar(100)"`
	IsPhoneVerified bool       `json:"is_phone_verified" gorm:"not null;default:false;index"`
	PhoneVerifiedAt *time.Time `json:"phone_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// UserProfile 对外展示的用户信息（好友列表、搜索结果、好友评分）
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      *string   `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile 转换为展示信息
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
