package service

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"sandy_cal/model"
	"sandy_cal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var phoneSeq int64 = time.Now().UnixNano() % 1_000_000

// openTestDB 连接测试库（未设置 TEST_DATABASE_URL 时跳过）
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := utils.OpenDB(dsn)
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// openTestRedis 连接测试 Redis（未设置 TEST_REDIS_URL 时跳过）
func openTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

// createTestUser 创建测试用户（手机号唯一）
func createTestUser(t *testing.T, db *gorm.DB, verified bool) *model.User {
	t.Helper()
	n := atomic.AddInt64(&phoneSeq, 1)
	name := fmt.Sprintf("user-%d", n)
	user := &model.User{
		Phone:           fmt.Sprintf("+1555%07d", n%10_000_000),
		Name:            &name,
		IsPhoneVerified: verified,
	}
	require.NoError(t, db.Create(user).Error)
	t.Cleanup(func() {
		db.Where("user_id = ? OR friend_id = ?", user.ID, user.ID).Delete(&model.Friendship{})
		db.Where("user_id = ?", user.ID).Delete(&model.DayRating{})
		db.Delete(user)
	})
	return user
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func dayKeys(ratings []model.DayRating) []string {
	keys := make([]string, 0, len(ratings))
	for _, r := range ratings {
		keys = append(keys, r.DayKey())
	}
	return keys
}

func profileIDs(users []model.UserProfile) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
