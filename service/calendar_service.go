package service

import (
	"context"
	"time"

	"sandy_cal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FriendIDLister 提供好友 ID 集合
type FriendIDLister interface {
	GetFriendIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// RatingRangeReader 提供评分范围查询
type RatingRangeReader interface {
	GetUserRatingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.DayRating, error)
	GetRatingsForUsersInRange(ctx context.Context, userIDs []uuid.UUID, start, end time.Time) ([]model.FriendRating, error)
	GetRatingsForUsersOnDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) ([]model.FriendRating, error)
}

// CalendarService 日历聚合：自己的评分 + 好友的评分
type CalendarService struct {
	friends FriendIDLister
	ratings RatingRangeReader
}

func NewCalendarService(friends FriendIDLister, ratings RatingRangeReader) *CalendarService {
	return &CalendarService{friends: friends, ratings: ratings}
}

// GetUserAndFriendsRatingsForMonth 获取某月自己和好友的评分（月份从 1 开始）
func (s *CalendarService) GetUserAndFriendsRatingsForMonth(ctx context.Context, userID uuid.UUID, year int, month time.Month) (*model.CalendarRatings, error) {
	start, end, err := MonthBounds(year, month)
	if err != nil {
		return nil, err
	}
	return s.GetUserAndFriendsRatingsForRange(ctx, userID, start, end)
}

// GetUserAndFriendsRatingsForRange 获取日期范围内自己和好友的评分
//
// 自己的评分与好友评分两路并发查询，两路都完成后才返回。
func (s *CalendarService) GetUserAndFriendsRatingsForRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*model.CalendarRatings, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	result := &model.CalendarRatings{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ratings, err := s.ratings.GetUserRatingsInRange(gctx, userID, start, end)
		if err != nil {
			return err
		}
		result.UserRatings = ratings
		return nil
	})

	g.Go(func() error {
		ratings, err := s.GetFriendsRatingsInRange(gctx, userID, start, end)
		if err != nil {
			return err
		}
		result.FriendsRatings = ratings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// GetFriendsRatingsInRange 获取好友在日期范围内的评分（没有好友时不查评分表）
func (s *CalendarService) GetFriendsRatingsInRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]model.FriendRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	friendIDs, err := s.friends.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []model.FriendRating{}, nil
	}

	return s.ratings.GetRatingsForUsersInRange(ctx, friendIDs, start, end)
}

// GetFriendsRatingsForDate 获取好友某一天的评分
func (s *CalendarService) GetFriendsRatingsForDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]model.FriendRating, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUser
	}

	friendIDs, err := s.friends.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []model.FriendRating{}, nil
	}

	return s.ratings.GetRatingsForUsersOnDate(ctx, friendIDs, FloorToDay(date))
}
