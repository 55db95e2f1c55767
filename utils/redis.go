package utils

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var rdb *redis.Client

// RedisOptions 解析连接配置，支持 host:port 或 redis:// URL
func RedisOptions(addr, password string, db int) (*redis.Options, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		if password != "" {
			opts.Password = password
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}, nil
}

// InitRedis 连接 Redis（验证码和好友缓存）
func InitRedis(addr, password string, db int) error {
	opts, err := RedisOptions(addr, password, db)
	if err != nil {
		return err
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return err
	}

	rdb = client
	Logger().Info("redis connected", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return nil
}

func GetRedis() *redis.Client {
	return rdb
}

func CloseRedis() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}
