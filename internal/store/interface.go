// Package store defines the persistence interface for the Notable server.
package store

import (
	"context"

	"github.com/notableapp/notable-server/internal/domain"
)

// NoteFilter narrows SearchNotes results. Zero values mean "no filter".
type NoteFilter struct {
	// Query matches case-insensitively against title and content.
	Query string
	// TagLabel keeps only notes carrying the exact tag label.
	TagLabel string
	// Visibility keeps only notes in the given state.
	Visibility domain.Visibility
	// OwnedOnly restricts results to notes owned by the searching user.
	OwnedOnly bool
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth Sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Notes
	CreateNote(ctx context.Context, note *domain.Note) error
	GetNote(ctx context.Context, id string) (*domain.Note, error)
	UpdateNote(ctx context.Context, note *domain.Note) error
	DeleteNote(ctx context.Context, id string) error
	// SearchNotes returns the notes visible to userID: their own notes,
	// SHARED notes shared with them, and other users' PUBLIC notes.
	// Ordered by updated_at descending.
	SearchNotes(ctx context.Context, userID string, filter NoteFilter, params PaginationParams) (*PaginatedResult[*domain.Note], error)
	SetNoteTags(ctx context.Context, noteID string, tagIDs []string) error

	// Shares
	CreateShare(ctx context.Context, share *domain.Share) error
	GetShareByID(ctx context.Context, id string) (*domain.Share, error)
	GetShare(ctx context.Context, noteID, userID string) (*domain.Share, error)
	ListNoteShares(ctx context.Context, noteID string) ([]*domain.Share, error)
	CountNoteShares(ctx context.Context, noteID string) (int, error)
	DeleteShare(ctx context.Context, id string) error
	DeleteNoteShares(ctx context.Context, noteID string) error

	// Public links
	CreatePublicLink(ctx context.Context, link *domain.PublicLink) error
	GetPublicLink(ctx context.Context, id string) (*domain.PublicLink, error)
	GetPublicLinkByNote(ctx context.Context, noteID string) (*domain.PublicLink, error)
	GetPublicLinkByToken(ctx context.Context, token string) (*domain.PublicLink, error)
	DeletePublicLink(ctx context.Context, id string) error

	// Tags
	FindOrCreateTagByLabel(ctx context.Context, label string) (*domain.Tag, error)
	GetTagByLabel(ctx context.Context, label string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
	ListNoteTags(ctx context.Context, noteID string) ([]domain.Tag, error)
}
