package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notableapp/notable-server/internal/auth"
	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/errors"
	"github.com/notableapp/notable-server/internal/id"
	"github.com/notableapp/notable-server/internal/store"
)

// AuthService handles registration, login, and session management.
type AuthService struct {
	store  store.Store
	tokens *auth.TokenService
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store store.Store, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// TokenPair is the credential set returned by login, register, and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RegisterInput carries the fields for creating an account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates a new user account and opens a session.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	passwordHash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, errors.Validation("password cannot be empty or exceed 1024 characters")
	}

	userID, err := id.Generate("user")
	if err != nil {
		return nil, nil, fmt.Errorf("generate user id: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, nil, errors.AlreadyExists("an account with this email already exists")
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, pair, nil
}

// Login verifies credentials and opens a session.
// Credential failures are indistinguishable: unknown email and wrong
// password both return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, nil, errors.InvalidCredentials("invalid email or password")
	}

	user.LastLoginAt = time.Now()
	user.UpdatedAt = user.LastLoginAt
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("update last login: %w", err)
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates a refresh token: the presented token's session is
// deleted and a new session is opened. An expired session is deleted
// and rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *TokenPair, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	session, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, errors.Unauthorized("invalid refresh token")
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired(time.Now()) {
		_ = s.store.DeleteSession(ctx, session.ID)
		return nil, nil, errors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return nil, nil, fmt.Errorf("rotate session: %w", err)
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

// Logout deletes the session of the presented refresh token.
// Unknown tokens succeed silently; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := s.store.GetSessionByRefreshToken(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get session: %w", err)
	}

	if err := s.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	s.logger.Info("user logged out", "user_id", session.UserID)
	return nil
}

// VerifyAccessToken validates a PASETO access token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokens.VerifyAccessToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired access token")
	}
	return claims, nil
}

// GetUser returns a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CleanupExpiredSessions removes sessions past their expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}

// openSession mints an access token and a refresh token, storing only
// the refresh token's hash.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	now := time.Now()
	refreshExpiry := now.Add(s.tokens.RefreshTokenDuration())
	session := domain.NewSession(sessionID, user.ID, auth.HashRefreshToken(refreshToken), refreshExpiry)
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(s.tokens.AccessTokenDuration()),
		RefreshExpiresAt: refreshExpiry,
	}, nil
}
