package handler

import (
	"sandy_cal/middleware"
	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FriendshipHandler struct {
	friends FriendGraph
}

func NewFriendshipHandler(friends FriendGraph) *FriendshipHandler {
	return &FriendshipHandler{friends: friends}
}

// GetFriends 获取好友列表
func (h *FriendshipHandler) GetFriends(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	friends, err := h.friends.GetFriends(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err, "failed to fetch friends")
		return
	}

	utils.SuccessResponse(c, gin.H{"friends": friends})
}

// SearchUsers 按手机号搜索可添加的用户
func (h *FriendshipHandler) SearchUsers(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	users, err := h.friends.SearchUsersByPhone(c.Request.Context(), userID, c.Query("phone"))
	if err != nil {
		respondServiceError(c, err, "failed to search users")
		return
	}

	utils.SuccessResponse(c, gin.H{"users": users})
}

// AddFriend 添加好友
func (h *FriendshipHandler) AddFriend(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	var req struct {
		FriendID uuid.UUID `json:"friend_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "friend_id is required")
		return
	}

	if err := h.friends.AddFriend(c.Request.Context(), userID, req.FriendID); err != nil {
		respondServiceError(c, err, "failed to add friend")
		return
	}

	utils.SuccessWithMessage(c, "friend added successfully", nil)
}

// RemoveFriend 删除好友
func (h *FriendshipHandler) RemoveFriend(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	friendID, err := uuid.Parse(c.Param("friend_id"))
	if err != nil {
		utils.BadRequest(c, "invalid friend_id")
		return
	}

	if err := h.friends.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		respondServiceError(c, err, "failed to remove friend")
		return
	}

	utils.SuccessWithMessage(c, "friend removed successfully", nil)
}
