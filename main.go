package main

import (
	"log"
	"time"

	"sandy_cal/config"
	"sandy_cal/handler"
	"sandy_cal/middleware"
	"sandy_cal/service"
	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	// 日期键按本地零点截断，服务端统一使用 UTC
	time.Local = time.UTC
}

func main() {
	// 加载配置
	cfg := config.Load()

	if err := utils.InitLogger(cfg.LogLevel, cfg.LogDev, cfg.LogFile); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer utils.SyncLogger()
	logger := utils.Logger()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// 初始化数据库
	if err := utils.InitDB(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer utils.CloseDB()

	if cfg.AutoMigrate {
		if err := utils.Migrate(utils.GetDB()); err != nil {
			logger.Fatal("failed to migrate database", zap.Error(err))
		}
	}

	// 初始化 Redis（验证码与好友缓存）
	if err := utils.InitRedis(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer utils.CloseRedis()

	// 初始化认证中间件
	middleware.InitAuth(cfg.JWTSecret)
	middleware.SetDenylist(middleware.NewRedisDenylist(utils.GetRedis()))

	// 创建服务
	ratingSvc := service.NewRatingService(utils.GetDB())
	friendSvc := service.NewFriendshipServiceWithRedis(utils.GetDB(), utils.GetRedis())
	calendarSvc := service.NewCalendarService(friendSvc, ratingSvc)
	verifySvc := service.NewVerificationService(utils.GetRedis(), service.LogCodeSender{})
	userSvc := service.NewUserService(utils.GetDB(), verifySvc)

	// 创建处理器
	ratingHandler := handler.NewRatingHandler(ratingSvc, calendarSvc)
	friendHandler := handler.NewFriendshipHandler(friendSvc)
	userHandler := handler.NewUserHandler(userSvc, verifySvc, time.Duration(cfg.TokenTTLHours)*time.Hour)

	// 验证码接口限流，定期清理闲置客户端
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			limiter.Cleanup(30 * time.Minute)
		}
	}()

	// 创建 Gin 路由
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandlerMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{"status": "ok"})
	})

	// 手机号验证（公开）
	phone := r.Group("/api/v1/phone")
	phone.Use(middleware.RateLimit(limiter))
	{
		phone.POST("/send-verification", userHandler.SendVerification)
		phone.POST("/verify-code", userHandler.VerifyCode)
	}

	// HTTP API 路由组（需要认证）
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware())
	{
		api.GET("/session", userHandler.GetSession)
		api.POST("/session/logout", userHandler.Logout)

		// 用户目录
		api.GET("/users", userHandler.ListUsers)
		api.POST("/users", userHandler.CreateUser)
		api.GET("/users/:id", userHandler.GetUser)

		// 每日评分
		api.GET("/ratings", ratingHandler.GetRatings)
		api.POST("/ratings", ratingHandler.UpsertRating)
		api.GET("/ratings/day", ratingHandler.GetDay)
		api.DELETE("/ratings", ratingHandler.DeleteRating)

		// 好友
		api.GET("/friendships", friendHandler.GetFriends)
		api.GET("/friendships/search", friendHandler.SearchUsers)
		api.POST("/friendships", friendHandler.AddFriend)
		api.DELETE("/friendships/:friend_id", friendHandler.RemoveFriend)
	}

	// 启动服务
	logger.Info("sandy_cal service starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
