package domain

import "time"

// PublicLink grants anonymous read access to a note through an
// unguessable token. A note has at most one link; creating it again
// returns the existing one.
type PublicLink struct {
	ID        string     `json:"id"`
	NoteID    string     `json:"note_id"`
	Token     string     `json:"token"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// NewPublicLink creates a link for noteID with the given token.
// expiresAt is optional; nil means the link never expires.
func NewPublicLink(id, noteID, token string, expiresAt *time.Time) *PublicLink {
	return &PublicLink{
		ID:        id,
		NoteID:    noteID,
		Token:     token,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
}

// IsExpired reports whether the link has an expiry in the past.
func (l *PublicLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// PublicPath returns the URL path where the note can be read anonymously.
func (l *PublicLink) PublicPath() string {
	return "/p/" + l.Token
}
