package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sandy_cal/model"
	"sandy_cal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// SearchLimit 手机号搜索最多返回条数
	SearchLimit = 10

	friendIDsCacheTTL   = 60 * time.Second
	friendIDsVersionTTL = 24 * time.Hour
)

type FriendshipService struct {
	db  *gorm.DB
	rdb *redis.Client // 可选，为 nil 时不缓存好友 ID
}

func NewFriendshipService(db *gorm.DB) *FriendshipService {
	return &FriendshipService{db: db}
}

func NewFriendshipServiceWithRedis(db *gorm.DB, rdb *redis.Client) *FriendshipService {
	return &FriendshipService{db: db, rdb: rdb}
}

func friendIDsVersionKey(userID uuid.UUID) string {
	return "friends:ver:" + userID.String()
}

// friendIDsCacheKey 缓存键带版本号，好友关系变更后旧版本的缓存不再被读取
func friendIDsCacheKey(userID uuid.UUID, version int64) string {
	return fmt.Sprintf("friends:%s:v%d", userID, version)
}

// orderedPair 按 ID 排序，保证同一对用户总是以相同顺序加锁
func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// AddFriend 添加好友（双向两行写在同一个事务里）
func (s *FriendshipService) AddFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == uuid.Nil || friendID == uuid.Nil {
		return ErrMissingUser
	}
	if userID == friendID {
		return ErrSelfFriendship
	}

	// 检查对方是否存在
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", friendID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}

	// 检查是否已经是好友
	exists, err := s.AreFriends(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFriends
	}

	// 并发的相同请求由唯一索引兜底：任一行冲突则整个事务回滚
	// 两行按固定顺序写入，反方向的并发请求会在同一行上等待而不是死锁
	first, second := orderedPair(userID, friendID)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		rows := []model.Friendship{
			{UserID: first, FriendID: second, CreatedAt: now},
			{UserID: second, FriendID: first, CreatedAt: now},
		}
		return tx.Create(&rows).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFriends
	}
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}

	s.invalidateFriendIDs(ctx, userID, friendID)
	return nil
}

// RemoveFriend 删除好友（双向同时删除，不存在时视为成功）
func (s *FriendshipService) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == uuid.Nil || friendID == uuid.Nil {
		return ErrMissingUser
	}
	if userID == friendID {
		return ErrSelfFriendship
	}

	first, second := orderedPair(userID, friendID)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ?", first, second).
			Delete(&model.Friendship{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ? AND friend_id = ?", second, first).
			Delete(&model.Friendship{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}

	s.invalidateFriendIDs(ctx, userID, friendID)
	return nil
}

// AreFriends 检查是否为好友（自己和自己永远不是好友）
func (s *FriendshipService) AreFriends(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	if userID == friendID {
		return false, nil
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}

	return count > 0, nil
}

// GetFriends 获取好友列表（按成为好友的时间倒序）
func (s *FriendshipService) GetFriends(ctx context.Context, userID uuid.UUID) ([]model.FriendItem, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	friends := []model.FriendItem{}
	err := s.db.WithContext(ctx).Table("friendships f").
		Select("u.id, u.name, u.phone, u.created_at, f.created_at AS friendship_created_at").
		Joins("INNER JOIN users u ON u.id = f.friend_id").
		Where("f.user_id = ?", userID).
		Order("f.created_at DESC, u.id ASC").
		Scan(&friends).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query friends: %w", err)
	}

	return friends, nil
}

// GetFriendIDs 获取好友 ID 列表（有 Redis 时短暂缓存）
//
// 先读版本号再查库，写回的缓存挂在读到的版本下；
// 查库期间发生的增删会先递增版本，迟到的写回因此不会被后续读取命中。
func (s *FriendshipService) GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	cacheKey := ""
	if s.rdb != nil {
		version, err := s.friendIDsVersion(ctx, userID)
		if err != nil {
			utils.Logger().Warn("friend ids version read failed", zap.Error(err))
		} else {
			cacheKey = friendIDsCacheKey(userID, version)
			val, err := s.rdb.Get(ctx, cacheKey).Result()
			if err == nil {
				var ids []uuid.UUID
				if jsonErr := json.Unmarshal([]byte(val), &ids); jsonErr == nil {
					return ids, nil
				}
			} else if !errors.Is(err, redis.Nil) {
				utils.Logger().Warn("friend ids cache read failed", zap.Error(err))
			}
		}
	}

	ids := []uuid.UUID{}
	err := s.db.WithContext(ctx).Model(&model.Friendship{}).
		Where("user_id = ?", userID).
		Order("friend_id ASC").
		Pluck("friend_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query friend ids: %w", err)
	}

	if cacheKey != "" {
		if data, err := json.Marshal(ids); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, friendIDsCacheTTL).Err(); err != nil {
				utils.Logger().Warn("friend ids cache write failed", zap.Error(err))
			}
		}
	}

	return ids, nil
}

// friendIDsVersion 当前缓存版本，不存在时为 0
func (s *FriendshipService) friendIDsVersion(ctx context.Context, userID uuid.UUID) (int64, error) {
	version, err := s.rdb.Get(ctx, friendIDsVersionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

// invalidateFriendIDs 递增版本号；递增失败时退回删除当前版本的缓存
func (s *FriendshipService) invalidateFriendIDs(ctx context.Context, userIDs ...uuid.UUID) {
	if s.rdb == nil {
		return
	}
	for _, id := range userIDs {
		versionKey := friendIDsVersionKey(id)
		_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, versionKey)
			pipe.Expire(ctx, versionKey, friendIDsVersionTTL)
			return nil
		})
		if err == nil {
			continue
		}
		utils.Logger().Warn("friend ids version bump failed", zap.Error(err), zap.String("user_id", id.String()))
		if version, verr := s.friendIDsVersion(ctx, id); verr == nil {
			s.rdb.Del(ctx, friendIDsCacheKey(id, version))
		}
	}
}

// SearchUsersByPhone 按手机号片段搜索已验证用户（排除自己和已有好友，最多 10 条）
func (s *FriendshipService) SearchUsersByPhone(ctx context.Context, userID uuid.UUID, phoneQuery string) ([]model.UserProfile, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	users := []model.UserProfile{}
	term := utils.PhoneSearchTerm(phoneQuery)
	if term == "" {
		return users, nil
	}

	err := s.db.WithContext(ctx).Model(&model.User{}).
		Select("id, name, phone, created_at").
		Where("phone LIKE ?", "%"+term+"%").
		Where("is_phone_verified = ?", true).
		Where("id <> ?", userID).
		Where("id NOT IN (SELECT friend_id FROM friendships WHERE user_id = ?)", userID).
		Order("created_at ASC, id ASC").
		Limit(SearchLimit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}
