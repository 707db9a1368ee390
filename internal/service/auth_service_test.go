package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository/memory"
	"go-offer-match/pkg/jwt"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin123"
)

func newAuth(t *testing.T) (AuthService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewAuthService(store, jwt.NewManager([]byte("test-secret"), time.Hour), nil)
	require.NoError(t, svc.EnsureAdmin(context.Background(), adminEmail, adminPassword))
	return svc, store
}

func TestEnsureAdmin(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	admin, err := store.Users().FindByEmail(ctx, adminEmail)
	require.NoError(t, err)
	assert.True(t, admin.IsActive)
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))
	assert.True(t, admin.HasPrivilege(model.PrivMatchReview))

	// second boot keeps the password and does not duplicate privileges
	require.NoError(t, svc.EnsureAdmin(ctx, adminEmail, "ignored-password"))
	again, err := store.Users().FindByEmail(ctx, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.True(t, again.CheckPassword(adminPassword))

	all, err := store.Privileges().FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(model.DefaultPrivileges))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, adminEmail, res.User.Email)
	assert.Contains(t, res.Privileges, model.PrivCatalogCreate)

	claims, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.ElementsMatch(t, res.Privileges, claims.Privileges)

	t.Run("second login expires the first session", func(t *testing.T) {
		next, err := svc.Login(ctx, adminEmail, adminPassword)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrSessionExpired)

		_, err = svc.Authenticate(ctx, next.Token)
		assert.NoError(t, err)
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, adminEmail, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "nobody@example.com", adminPassword)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)

		_, err = svc.Authenticate(ctx, "")
		assert.ErrorIs(t, err, jwt.ErrMissingToken)
	})
}

func TestLoginInactiveUser(t *testing.T) {
	svc, store := newAuth(t)
	ctx := context.Background()

	u := &model.User{Email: "off@example.com", FullName: "Off", IsActive: false}
	require.NoError(t, u.SetPassword("secret1"))
	require.NoError(t, store.Users().Create(ctx, u))

	_, err := svc.Login(ctx, "off@example.com", "secret1")
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestPasswordChanges(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()

	session, err := svc.Login(ctx, adminEmail, adminPassword)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, adminEmail, "wrong", "newpass1"), ErrWrongPassword)
	assert.ErrorIs(t, svc.ChangePassword(ctx, adminEmail, adminPassword, "short"), ErrWeakPassword)
	require.NoError(t, svc.ChangePassword(ctx, adminEmail, adminPassword, "newpass1"))

	_, err = svc.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Login(ctx, adminEmail, adminPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.SetPassword(ctx, adminEmail, "reset123"))
	_, err = svc.Login(ctx, adminEmail, "reset123")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.SetPassword(ctx, "nobody@example.com", "reset123"), ErrUserNotFound)
}
