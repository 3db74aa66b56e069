package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roamline/travelcompanion-back/internal/db"
	"github.com/roamline/travelcompanion-back/internal/repository"
)

func newAuthService(gdb *gorm.DB) *AuthService {
	return NewAuthService(repository.NewUserRepository(gdb), zap.NewNop().Sugar())
}

func TestRegisterAndLogin(t *testing.T) {
	gdb := testDB(t)
	svc := newAuthService(gdb)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterParams{
		Name:     "Ann",
		Surname:  "Smith",
		Username: "ann",
		Password: "secret-pass",
		Email:    "ann@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	// Never stored in the clear.
	assert.NotEqual(t, "secret-pass", user.Password)

	got, err := svc.Login(ctx, "ann", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	gdb := testDB(t)
	svc := newAuthService(gdb)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Name: "Ann", Username: "ann", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Name: "Other", Username: "ann", Password: "other-pass"})
	assert.Equal(t, repository.ErrDuplicate, err)

	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Where("username = ?", "ann").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLoginFailures(t *testing.T) {
	gdb := testDB(t)
	svc := newAuthService(gdb)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Name: "Ann", Username: "ann", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody", "secret-pass")
	assert.Equal(t, ErrLoginUserNotFound, err)

	_, err = svc.Login(ctx, "ann", "wrong-pass")
	assert.Equal(t, ErrLoginPasswordDoesNotMatch, err)
}
