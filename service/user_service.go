package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sandy_cal/model"
	"sandy_cal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CodeChecker 校验手机验证码，只关心通过与否
type CodeChecker interface {
	CheckCode(ctx context.Context, phone, code string) (bool, error)
}

type UserService struct {
	db      *gorm.DB
	checker CodeChecker
}

func NewUserService(db *gorm.DB, checker CodeChecker) *UserService {
	return &UserService{db: db, checker: checker}
}

func optionalName(name string) *string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return &name
}

func formatPhone(phoneNumber string) (string, error) {
	phone := utils.FormatPhoneNumber(phoneNumber)
	if phone == "" || !utils.ValidateE164(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// VerifyPhoneAndCreateUser 校验验证码，创建或更新已验证用户
//
// 已存在的用户未提供新名字时保留原名字。
func (s *UserService) VerifyPhoneAndCreateUser(ctx context.Context, phoneNumber, code, name string) (*model.User, error) {
	phone, err := formatPhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, ErrMissingCode
	}

	ok, err := s.checker.CheckCode(ctx, phone, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	now := time.Now()
	var user model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := &model.User{
			Phone:           phone,
			Name:            optionalName(name),
			IsPhoneVerified: true,
			PhoneVerifiedAt: &now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "phone"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"is_phone_verified": true,
				"phone_verified_at": now,
				"name":              gorm.Expr("COALESCE(EXCLUDED.name, users.name)"),
				"updated_at":        now,
			}),
		}).Create(row).Error; err != nil {
			return err
		}
		return tx.Where("phone = ?", phone).First(&user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save verified user: %w", err)
	}

	return &user, nil
}

// CreateUser 创建未验证用户
func (s *UserService) CreateUser(ctx context.Context, phoneNumber, name string) (*model.User, error) {
	phone, err := formatPhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Phone: phone,
		Name:  optionalName(name),
	}
	err = s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrPhoneTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID 按 ID 获取用户
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// GetUserByPhone 按手机号获取用户（输入会先格式化）
func (s *UserService) GetUserByPhone(ctx context.Context, phoneNumber string) (*model.User, error) {
	phone, err := formatPhone(phoneNumber)
	if err != nil {
		return nil, err
	}

	var user model.User
	err = s.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// GetAllUsers 获取所有用户
func (s *UserService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	return users, nil
}
