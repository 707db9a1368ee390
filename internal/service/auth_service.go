package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-offer-match/internal/model"
	"go-offer-match/internal/repository"
	"go-offer-match/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionExpired     = errors.New("session expired (logged in on another device)")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
)

const minPasswordLength = 6

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// Authenticate validates a bearer token against the user's current session.
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
	ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error
	// SetPassword overwrites a password without the old one (operator reset).
	SetPassword(ctx context.Context, email, newPassword string) error
	// EnsureAdmin seeds the privileges and an admin holding all of them.
	EnsureAdmin(ctx context.Context, email, password string) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Privileges []string           `json:"privileges"` // Flat privileges array for easy checking
}

type authService struct {
	store  repository.Store
	tokens *jwt.Manager
	log    *zap.Logger
}

func NewAuthService(store repository.Store, tokens *jwt.Manager, log *zap.Logger) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{store: store, tokens: tokens, log: log}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	users := s.store.Users()

	// 1. Find user by email
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 2. Check if user is active
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// 3. Verify password
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	// 4. Single session: a new token version invalidates older tokens
	version := uuid.New().String()
	if err := users.UpdateTokenVersion(ctx, user.ID, version); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("last login update failed", zap.String("user", user.Email), zap.Error(err))
	}

	// 5. Generate JWT token with TokenVersion
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.FullName, user.GetPrivilegeCodes(), version)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	// 1. Validate JWT token
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	// 2. Check strict session against the store
	user, err := s.store.Users().FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}

	// privileges come from the store so revocations apply immediately
	claims.Privileges = user.GetPrivilegeCodes()
	return claims, nil
}

func (s *authService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) SetPassword(ctx context.Context, email, newPassword string) error {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *authService) setPassword(ctx context.Context, user *model.User, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.Users().UpdatePassword(ctx, user.ID, user.Password); err != nil {
		return err
	}
	// Invalidate existing sessions
	return s.store.Users().UpdateTokenVersion(ctx, user.ID, uuid.New().String())
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	return s.store.Transaction(ctx, func(tx repository.Store) error {
		// 1. Seed privileges first
		if err := tx.Privileges().SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed privileges: %w", err)
		}
		all, err := tx.Privileges().FindAll(ctx)
		if err != nil {
			return err
		}

		// 2. Existing admin keeps its password but gets any new privileges
		existing, err := tx.Users().FindByEmail(ctx, email)
		if err == nil {
			return tx.Users().UpdatePrivileges(ctx, existing.ID, all)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		// 3. Create default admin user with every privilege
		admin := &model.User{
			Email:      email,
			FullName:   "Administrator",
			IsActive:   true,
			Privileges: all,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"
		if err := admin.SetPassword(password); err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		if err := tx.Users().Create(ctx, admin); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		s.log.Info("admin user created", zap.String("email", email))
		return nil
	})
}
