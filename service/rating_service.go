package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sandy_cal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// UpsertDayRating 创建或更新某天的评分
//
// 使用 INSERT ... ON CONFLICT (user_id, date) DO UPDATE 一条语句完成，
// 同一天的并发提交只会留下一行，最后一次写入生效。
func (s *RatingService) UpsertDayRating(ctx context.Context, userID uuid.UUID, date time.Time, rating model.RatingValue) (*model.DayRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}
	if date.IsZero() {
		return nil, ErrMissingDate
	}
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	day := FloorToDay(date)
	now := time.Now()

	var result model.DayRating
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.DayRating{
			UserID:    userID,
			Date:      day,
			Rating:    rating,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "updated_at"}),
		}).Create(row).Error; err != nil {
			return err
		}

		// 冲突更新时 created_at 以库中为准，重新读取
		return tx.Where("user_id = ? AND date = ?", userID, day).First(&result).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert day rating: %w", err)
	}

	return &result, nil
}

// GetDayRating 获取某天评分，不存在时返回 nil, nil
func (s *RatingService) GetDayRating(ctx context.Context, userID uuid.UUID, date time.Time) (*model.DayRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	var rating model.DayRating
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, FloorToDay(date)).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query day rating: %w", err)
	}

	return &rating, nil
}

// GetUserRatingsInRange 获取日期范围内的评分（闭区间，按日期升序）
func (s *RatingService) GetUserRatingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.DayRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	start, end = FloorToDay(start), FloorToDay(end)
	ratings := []model.DayRating{}
	if start.After(end) {
		return ratings, nil
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	return ratings, nil
}

// GetUserRatingsForMonth 获取某月评分（月份从 1 开始）
func (s *RatingService) GetUserRatingsForMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]model.DayRating, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.GetUserRatingsInRange(ctx, userID, start, end)
}

// GetAllUserRatings 获取全部评分（按日期降序）
func (s *RatingService) GetAllUserRatings(ctx context.Context, userID uuid.UUID) ([]model.DayRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	ratings := []model.DayRating{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}

	return ratings, nil
}

// DeleteDayRating 删除某天评分（不存在时不报错）
func (s *RatingService) DeleteDayRating(ctx context.Context, userID uuid.UUID, date time.Time) error {
	if userID == uuid.Nil {
		return ErrMissingUser
	}

	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, FloorToDay(date)).
		Delete(&model.DayRating{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete day rating: %w", err)
	}

	return nil
}

// GetRatingsForUsersInRange 批量获取多个用户在日期范围内的评分，附带用户信息
//
// 评分一次 IN 查询，用户信息再一次 IN 查询，避免按用户逐个查询。
func (s *RatingService) GetRatingsForUsersInRange(ctx context.Context, userIDs []uuid.UUID, start, end time.Time) ([]model.FriendRating, error) {
	start, end = FloorToDay(start), FloorToDay(end)
	if len(userIDs) == 0 || start.After(end) {
		return []model.FriendRating{}, nil
	}

	var ratings []model.DayRating
	err := s.db.WithContext(ctx).
		Where("user_id IN ? AND date >= ? AND date <= ?", userIDs, start, end).
		Order("date ASC, user_id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query friends ratings: %w", err)
	}

	return s.attachProfiles(ctx, ratings)
}

// GetRatingsForUsersOnDate 批量获取多个用户某一天的评分
func (s *RatingService) GetRatingsForUsersOnDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) ([]model.FriendRating, error) {
	return s.GetRatingsForUsersInRange(ctx, userIDs, date, date)
}

func (s *RatingService) attachProfiles(ctx context.Context, ratings []model.DayRating) ([]model.FriendRating, error) {
	result := make([]model.FriendRating, 0, len(ratings))
	if len(ratings) == 0 {
		return result, nil
	}

	// 1. 收集评分涉及的用户
	seen := make(map[uuid.UUID]struct{})
	ownerIDs := make([]uuid.UUID, 0)
	for _, r := range ratings {
		if _, ok := seen[r.UserID]; !ok {
			seen[r.UserID] = struct{}{}
			ownerIDs = append(ownerIDs, r.UserID)
		}
	}

	// 2. 一次性查询用户信息
	var profiles []model.UserProfile
	err := s.db.WithContext(ctx).
		Model(&model.User{}).
		Select("id, name, phone, created_at").
		Where("id IN ?", ownerIDs).
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query rating owners: %w", err)
	}

	profileMap := make(map[uuid.UUID]model.UserProfile, len(profiles))
	for _, p := range profiles {
		profileMap[p.ID] = p
	}

	// 3. 组装
	for _, r := range ratings {
		profile, ok := profileMap[r.UserID]
		if !ok {
			profile = model.UserProfile{ID: r.UserID}
		}
		result = append(result, model.FriendRating{DayRating: r, User: profile})
	}

	return result, nil
}
