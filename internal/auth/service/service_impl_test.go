package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/storefront/internal/auth/domain"
	"github.com/smallbiznis/storefront/internal/auth/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "Alice@Example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.False(t, user.IsStaff)
	require.NotNil(t, user.PasswordHash)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RawToken)
	require.True(t, result.ExpiresAt.After(time.Now()))

	sess, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, sess.UserID)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "ALICE@example.com",
		Password: "another password",
	})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateRejectsRevokedSession(t *testing.T) {
	svc, _ := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RawToken))

	_, err = svc.Authenticate(ctx, result.RawToken)
	require.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestAuthenticateRejectsExpiredSession(t *testing.T) {
	svc, db := setupAuthService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Session{}).
		Where("id = ?", result.SessionID).
		Update("expires_at", time.Now().UTC().Add(-time.Minute)).Error)

	_, err = svc.Authenticate(ctx, result.RawToken)
	require.ErrorIs(t, err, domain.ErrSessionExpired)
}

func setupAuthService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo, sessionRepo := repository.New(db)
	svc := New(Params{
		Log:         zap.NewNop(),
		Repo:        repo,
		SessionRepo: sessionRepo,
		GenID:       node,
	})
	return svc, db
}
