package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	AutoMigrate   bool
	RedisURL      string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
	TokenTTLHours int // 会话 Token 有效期（小时）

	LogLevel string
	LogDev   bool
	LogFile  string // 为空时只输出到标准输出

	// 验证码接口限流（每个 IP）
	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTLHours, _ := strconv.Atoi(getEnv("TOKEN_TTL_HOURS", "168"))
	rateLimitRPS, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "0.2"), 64)
	rateLimitBurst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "3"))

	return &Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		AutoMigrate:    getEnv("AUTO_MIGRATE", "true") == "true",
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        redisDB,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTLHours:  tokenTTLHours,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogDev:         os.Getenv("LOG_DEV") == "1",
		LogFile:        os.Getenv("LOG_FILE"),
		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
