package model

import (
	"time"

	"github.com/google/uuid"
)

// Friendship 好友关系表（有向边，一对好友对应两行）
type Friendship struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:uidx_friendships_pair,priority:1;check:chk_friendships_not_self,user_id <> friend_id"`
	FriendID  uuid.UUID `json:"friend_id" gorm:"type:uuid;not null;uniqueIndex:uidx_friendships_pair,priority:2;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// FriendItem 好友列表项
type FriendItem struct {
	ID                  uuid.UUID `json:"id"`
	Name                *string   `json:"name"`
	Phone               string    `json:"phone"`
	CreatedAt           time.Time `json:"created_at"`
	FriendshipCreatedAt time.Time `json:"friendship_created_at"`
}
