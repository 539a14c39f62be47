package domain

import "time"

// Session is a refresh-token session for a logged-in user. Only the
// hash of the refresh token is stored; the raw token is returned to
// the client once and never persisted.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewSession creates a session for userID expiring at expiresAt.
func NewSession(id, userID, refreshTokenHash string, expiresAt time.Time) *Session {
	return &Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: refreshTokenHash,
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now(),
	}
}

// IsExpired reports whether the session expired before now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
