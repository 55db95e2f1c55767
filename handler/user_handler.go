package handler

import (
	"time"

	"sandy_cal/middleware"
	"sandy_cal/model"
	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserHandler struct {
	users    UserDirectory
	codes    CodeIssuer
	tokenTTL time.Duration
}

func NewUserHandler(users UserDirectory, codes CodeIssuer, tokenTTL time.Duration) *UserHandler {
	return &UserHandler{users: users, codes: codes, tokenTTL: tokenTTL}
}

// SendVerification 发送手机验证码
func (h *UserHandler) SendVerification(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "phone_number is required")
		return
	}

	phone, err := h.codes.SendCode(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		respondServiceError(c, err, "failed to send verification code")
		return
	}

	utils.SuccessWithMessage(c, "verification code sent successfully", gin.H{"phone_number": phone})
}

// VerifyCode 校验验证码，创建/更新用户并签发 Token
func (h *UserHandler) VerifyCode(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Code        string `json:"code" binding:"required"`
		Name        string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "phone_number and code are required")
		return
	}

	user, err := h.users.VerifyPhoneAndCreateUser(c.Request.Context(), req.PhoneNumber, req.Code, req.Name)
	if err != nil {
		respondServiceError(c, err, "failed to verify phone number")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Phone, h.tokenTTL)
	if err != nil {
		utils.InternalServerError(c, "failed to create session")
		return
	}

	utils.SuccessWithMessage(c, "phone number verified successfully", gin.H{
		"user":  user,
		"token": token,
	})
}

// GetSession 当前登录用户
func (h *UserHandler) GetSession(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch session")
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user.Profile()})
}

// Logout 注销当前 Token
func (h *UserHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	if err := middleware.RevokeToken(c.Request.Context(), claims); err != nil {
		utils.Logger().Error("failed to revoke token", zap.Error(err), zap.String("user_id", claims.UserID.String()))
		utils.InternalServerError(c, "failed to log out")
		return
	}

	utils.SuccessWithMessage(c, "logged out successfully", nil)
}

// ListUsers 用户目录，传 phone 时按手机号精确查找
func (h *UserHandler) ListUsers(c *gin.Context) {
	if phone := c.Query("phone"); phone != "" {
		user, err := h.users.GetUserByPhone(c.Request.Context(), phone)
		if err != nil {
			respondServiceError(c, err, "failed to fetch user")
			return
		}
		utils.SuccessResponse(c, gin.H{"users": []model.UserProfile{user.Profile()}})
		return
	}

	users, err := h.users.GetAllUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to fetch users")
		return
	}

	profiles := make([]model.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	utils.SuccessResponse(c, gin.H{"users": profiles})
}

// CreateUser 创建未验证用户（手机号已存在返回 409）
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		PhoneNumber string `json:"phone_number" binding:"required"`
		Name        string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "phone_number is required")
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.PhoneNumber, req.Name)
	if err != nil {
		respondServiceError(c, err, "failed to create user")
		return
	}

	utils.SuccessWithMessage(c, "user created successfully", gin.H{"user": user})
}

// GetUser 获取用户公开信息
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to fetch user")
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user.Profile()})
}
