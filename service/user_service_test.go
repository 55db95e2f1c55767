package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"sandy_cal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	ok    bool
	err   error
	phone string
}

func (f *fakeChecker) CheckCode(ctx context.Context, phone, code string) (bool, error) {
	f.phone = phone
	return f.ok, f.err
}

func uniquePhone() string {
	n := atomic.AddInt64(&phoneSeq, 1)
	return fmt.Sprintf("(555) %03d-%04d", (n/10000)%1000, n%10000)
}

func cleanupPhone(t *testing.T, svc *UserService, phone string) {
	t.Cleanup(func() {
		svc.db.Where("phone = ?", phone).Delete(&model.User{})
	})
}

func TestUser_VerifyCreatesVerifiedUser(t *testing.T) {
	db := openTestDB(t)
	checker := &fakeChecker{ok: true}
	svc := NewUserService(db, checker)
	ctx := context.Background()

	input := uniquePhone()
	user, err := svc.VerifyPhoneAndCreateUser(ctx, input, "123456", "Sandy")
	require.NoError(t, err)
	cleanupPhone(t, svc, user.Phone)

	assert.Regexp(t, `^\+1555\d{7}$`, user.Phone, "十位号码补 +1")
	assert.Equal(t, user.Phone, checker.phone, "以格式化后的号码校验")
	assert.True(t, user.IsPhoneVerified)
	require.NotNil(t, user.PhoneVerifiedAt)
	require.NotNil(t, user.Name)
	assert.Equal(t, "Sandy", *user.Name)

	// 再次验证不带名字：保留原名字，仍是同一个用户
	again, err := svc.VerifyPhoneAndCreateUser(ctx, user.Phone, "654321", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	require.NotNil(t, again.Name)
	assert.Equal(t, "Sandy", *again.Name)

	// 带新名字：更新
	renamed, err := svc.VerifyPhoneAndCreateUser(ctx, user.Phone, "654321", "Sandy C")
	require.NoError(t, err)
	assert.Equal(t, "Sandy C", *renamed.Name)
}

func TestUser_VerifyUpgradesExistingUser(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db, &fakeChecker{ok: true})
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, uniquePhone(), "")
	require.NoError(t, err)
	cleanupPhone(t, svc, created.Phone)
	assert.False(t, created.IsPhoneVerified)
	assert.Nil(t, created.Name)

	verified, err := svc.VerifyPhoneAndCreateUser(ctx, created.Phone, "000000", "")
	require.NoError(t, err)
	assert.Equal(t, created.ID, verified.ID)
	assert.True(t, verified.IsPhoneVerified)
	assert.Nil(t, verified.Name)
}

func TestUser_VerifyRejectsBadInput(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	svc := NewUserService(db, &fakeChecker{ok: false})
	_, err := svc.VerifyPhoneAndCreateUser(ctx, uniquePhone(), "111111", "")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.VerifyPhoneAndCreateUser(ctx, "12", "111111", "")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = svc.VerifyPhoneAndCreateUser(ctx, uniquePhone(), " ", "")
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestUser_CreateDuplicatePhone(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db, &fakeChecker{})
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, uniquePhone(), "A")
	require.NoError(t, err)
	cleanupPhone(t, svc, user.Phone)

	_, err = svc.CreateUser(ctx, user.Phone, "B")
	assert.ErrorIs(t, err, ErrPhoneTaken)

	byPhone, err := svc.GetUserByPhone(ctx, user.Phone)
	require.NoError(t, err)
	assert.Equal(t, user.ID, byPhone.ID)

	byID, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Phone, byID.Phone)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, all)
}

func TestUser_GetMissing(t *testing.T) {
	db := openTestDB(t)
	svc := NewUserService(db, &fakeChecker{})

	_, err := svc.GetUserByPhone(context.Background(), "+19999999999")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
