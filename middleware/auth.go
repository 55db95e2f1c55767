package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	jwtSecret []byte
	denylist  TokenDenylist
)

// ErrRevocationUnavailable 未配置吊销名单时无法注销
var ErrRevocationUnavailable = errors.New("token revocation is not configured")

// TokenDenylist 已注销 Token 的 jti 名单
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// SetDenylist 配置注销名单，为 nil 时不检查
func SetDenylist(d TokenDenylist) {
	denylist = d
}

// InitAuth 初始化认证中间件
func InitAuth(secret string) {
	jwtSecret = []byte(secret)
}

// Claims JWT 声明
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Phone  string    `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware HTTP API 认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		// Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := ParseToken(parts[1])
		if err != nil {
			utils.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		if denylist != nil {
			revoked, err := denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				utils.Logger().Error("token denylist check failed", zap.Error(err))
				utils.InternalServerError(c, "failed to verify session")
				c.Abort()
				return
			}
			if revoked {
				utils.Unauthorized(c, "token revoked")
				c.Abort()
				return
			}
		}

		// 将 userID 和声明存入上下文
		c.Set("user_id", claims.UserID)
		c.Set("token_claims", claims)
		c.Next()
	}
}

// GenerateToken 签发会话 Token（手机号验证成功后调用）
func GenerateToken(userID uuid.UUID, phone string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken 校验签名和有效期，返回声明
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.UserID == uuid.Nil {
		return nil, errors.New("token has no user id")
	}
	if claims.ID == "" {
		return nil, errors.New("token has no id")
	}
	return claims, nil
}

// ValidateToken 验证 JWT Token，返回用户 ID
func ValidateToken(tokenString string) (uuid.UUID, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

// RevokeToken 注销 Token，名单记录保留到 Token 原本过期为止
func RevokeToken(ctx context.Context, claims *Claims) error {
	if denylist == nil {
		return ErrRevocationUnavailable
	}
	if claims.ExpiresAt == nil {
		return errors.New("token has no expiry")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return denylist.Revoke(ctx, claims.ID, ttl)
}

// GetClaims 从上下文获取当前 Token 的声明
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get("token_claims")
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}
