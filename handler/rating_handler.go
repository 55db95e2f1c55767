package handler

import (
	"strconv"
	"time"

	"sandy_cal/middleware"
	"sandy_cal/model"
	"sandy_cal/utils"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings  RatingStore
	calendar CalendarReader
}

func NewRatingHandler(ratings RatingStore, calendar CalendarReader) *RatingHandler {
	return &RatingHandler{ratings: ratings, calendar: calendar}
}

// GetRatings 获取评分
//
// 查询方式（按优先级）：
// - year + month（月份从 1 开始）
// - start_date + end_date
// - 都不传：返回全部评分（日期降序）
// include_friends=true 时同时返回好友评分（不支持“全部评分”方式）
func (h *RatingHandler) GetRatings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	includeFriends := c.Query("include_friends") == "true"
	yearStr, monthStr := c.Query("year"), c.Query("month")
	startStr, endStr := c.Query("start_date"), c.Query("end_date")

	switch {
	case yearStr != "" && monthStr != "":
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			utils.BadRequest(c, "invalid year")
			return
		}
		month, err := strconv.Atoi(monthStr)
		if err != nil {
			utils.BadRequest(c, "invalid month")
			return
		}

		if includeFriends {
			result, err := h.calendar.GetUserAndFriendsRatingsForMonth(c.Request.Context(), userID, year, time.Month(month))
			if err != nil {
				respondServiceError(c, err, "failed to fetch ratings")
				return
			}
			utils.SuccessResponse(c, gin.H{"ratings": result.UserRatings, "friends_ratings": result.FriendsRatings})
			return
		}

		ratings, err := h.ratings.GetUserRatingsForMonth(c.Request.Context(), userID, year, time.Month(month))
		if err != nil {
			respondServiceError(c, err, "failed to fetch ratings")
			return
		}
		utils.SuccessResponse(c, gin.H{"ratings": ratings})

	case startStr != "" && endStr != "":
		start, err := parseDate(startStr)
		if err != nil {
			utils.BadRequest(c, "invalid start_date")
			return
		}
		end, err := parseDate(endStr)
		if err != nil {
			utils.BadRequest(c, "invalid end_date")
			return
		}

		if includeFriends {
			result, err := h.calendar.GetUserAndFriendsRatingsForRange(c.Request.Context(), userID, start, end)
			if err != nil {
				respondServiceError(c, err, "failed to fetch ratings")
				return
			}
			utils.SuccessResponse(c, gin.H{"ratings": result.UserRatings, "friends_ratings": result.FriendsRatings})
			return
		}

		ratings, err := h.ratings.GetUserRatingsInRange(c.Request.Context(), userID, start, end)
		if err != nil {
			respondServiceError(c, err, "failed to fetch ratings")
			return
		}
		utils.SuccessResponse(c, gin.H{"ratings": ratings})

	default:
		ratings, err := h.ratings.GetAllUserRatings(c.Request.Context(), userID)
		if err != nil {
			respondServiceError(c, err, "failed to fetch ratings")
			return
		}
		utils.SuccessResponse(c, gin.H{"ratings": ratings})
	}
}

// UpsertRating 给某天打分（同一天重复提交会覆盖）
func (h *RatingHandler) UpsertRating(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	var req struct {
		Date   string `json:"date" binding:"required"`
		Rating *int   `json:"rating" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "date and numeric rating are required")
		return
	}

	rating := model.RatingValue(*req.Rating)
	if !rating.Valid() {
		utils.BadRequest(c, "rating must be 1 (bad), 2 (neutral) or 3 (good)")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	dayRating, err := h.ratings.UpsertDayRating(c.Request.Context(), userID, date, rating)
	if err != nil {
		respondServiceError(c, err, "failed to save rating")
		return
	}

	utils.SuccessResponse(c, gin.H{"rating": dayRating})
}

// GetDay 获取某天自己的评分和好友的评分
func (h *RatingHandler) GetDay(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	rating, err := h.ratings.GetDayRating(c.Request.Context(), userID, date)
	if err != nil {
		respondServiceError(c, err, "failed to fetch rating")
		return
	}

	friendsRatings, err := h.calendar.GetFriendsRatingsForDate(c.Request.Context(), userID, date)
	if err != nil {
		respondServiceError(c, err, "failed to fetch friends ratings")
		return
	}

	utils.SuccessResponse(c, gin.H{"rating": rating, "friends_ratings": friendsRatings})
}

// DeleteRating 删除某天评分
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		utils.Unauthorized(c, "unauthorized")
		return
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	if err := h.ratings.DeleteDayRating(c.Request.Context(), userID, date); err != nil {
		respondServiceError(c, err, "failed to delete rating")
		return
	}

	utils.SuccessWithMessage(c, "rating deleted", nil)
}
