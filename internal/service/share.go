package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/errors"
	"github.com/notableapp/notable-server/internal/id"
	"github.com/notableapp/notable-server/internal/store"
)

// linkTokenSize is the entropy of a public link token (256 bits).
const linkTokenSize = 32

// ShareService orchestrates note sharing and public links. Visibility
// transitions are a side effect of share and link operations, so all
// read-modify-write sequences on one note's visibility run under the
// per-note lock shared with NoteService; without it two concurrent
// mutations could interleave and leave the flag inconsistent with the
// tables.
type ShareService struct {
	store  store.Store
	locks  *NoteLocker
	logger *slog.Logger
}

// NewShareService creates a new share service. locks must be the same
// locker handed to NewNoteService.
func NewShareService(store store.Store, locks *NoteLocker, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:  store,
		locks:  locks,
		logger: logger,
	}
}

// ShareWithUser grants read access on a note to the user registered
// under email, and forces the note's visibility to SHARED. A PUBLIC
// note silently stops being public for identity-based readers:
// visibility is a single value and the grant overwrites it. The
// public link row, if any, survives and its token keeps resolving.
//
// Check order: note existence, ownership, recipient existence,
// self-share, duplicate.
func (s *ShareService) ShareWithUser(ctx context.Context, ownerID, noteID, email string) (*domain.Share, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.locks.Lock(noteID)
	defer s.locks.Unlock(noteID)

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return nil, errors.Forbidden("only the owner can share a note")
	}

	recipient, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFoundf("no user registered under %s", email)
		}
		return nil, fmt.Errorf("get recipient: %w", err)
	}

	if recipient.ID == ownerID {
		return nil, errors.Validation("cannot share a note with yourself")
	}

	shareID, err := id.Generate("share")
	if err != nil {
		return nil, fmt.Errorf("generate share id: %w", err)
	}

	share := domain.NewShare(shareID, noteID, ownerID, recipient.ID)
	if err := s.store.CreateShare(ctx, share); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, errors.Validation("note is already shared with this user")
		}
		return nil, fmt.Errorf("create share: %w", err)
	}

	// The grant overwrites whatever state the note was in.
	if note.Visibility != domain.VisibilityShared {
		note.Visibility = domain.VisibilityShared
		note.Touch()
		if err := s.store.UpdateNote(ctx, note); err != nil {
			return nil, fmt.Errorf("set visibility shared: %w", err)
		}
	}

	s.logger.Info("note shared",
		"note_id", noteID,
		"shared_by", ownerID,
		"shared_with", recipient.ID,
	)

	return share, nil
}

// RevokeShare removes a grant by share ID. When the last share of a
// SHARED note is revoked the note falls back to PRIVATE. A PUBLIC
// note's flag is left untouched; revoking a share never affects it.
func (s *ShareService) RevokeShare(ctx context.Context, ownerID, shareID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	share, err := s.store.GetShareByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("share not found")
		}
		return fmt.Errorf("get share: %w", err)
	}

	s.locks.Lock(share.NoteID)
	defer s.locks.Unlock(share.NoteID)

	note, err := s.store.GetNote(ctx, share.NoteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("note not found")
		}
		return fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return errors.Forbidden("only the owner can revoke a share")
	}

	if err := s.store.DeleteShare(ctx, shareID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("share not found")
		}
		return fmt.Errorf("delete share: %w", err)
	}

	if note.Visibility == domain.VisibilityShared {
		count, err := s.store.CountNoteShares(ctx, note.ID)
		if err != nil {
			return fmt.Errorf("count shares: %w", err)
		}
		if count == 0 {
			note.Visibility = domain.VisibilityPrivate
			note.Touch()
			if err := s.store.UpdateNote(ctx, note); err != nil {
				return fmt.Errorf("set visibility private: %w", err)
			}
		}
	}

	s.logger.Info("share revoked",
		"share_id", shareID,
		"note_id", note.ID,
	)

	return nil
}

// ListShares returns the shares of a note. Only the owner can inspect them.
func (s *ShareService) ListShares(ctx context.Context, ownerID, noteID string) ([]*domain.Share, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return nil, errors.Forbidden("only the owner can list shares")
	}

	shares, err := s.store.ListNoteShares(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return shares, nil
}

// CreatePublicLink publishes a note. If the note already has a link it
// is returned unchanged and no second token is minted. Otherwise a new
// link is persisted and the note's visibility is forced to PUBLIC,
// overwriting SHARED if that was the prior state; existing share rows
// stay in the table but stop granting anything.
// expiresAt is optional; nil means the link never expires.
func (s *ShareService) CreatePublicLink(ctx context.Context, ownerID, noteID string, expiresAt *time.Time) (*domain.PublicLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.locks.Lock(noteID)
	defer s.locks.Unlock(noteID)

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return nil, errors.Forbidden("only the owner can publish a note")
	}

	if link, err := s.store.GetPublicLinkByNote(ctx, noteID); err == nil {
		return link, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get public link: %w", err)
	}

	if expiresAt != nil && expiresAt.Before(time.Now()) {
		return nil, errors.Validation("expiry must be in the future")
	}

	linkID, err := id.Generate("link")
	if err != nil {
		return nil, fmt.Errorf("generate link id: %w", err)
	}
	token, err := generateLinkToken()
	if err != nil {
		return nil, err
	}

	link := domain.NewPublicLink(linkID, noteID, token, expiresAt)
	if err := s.store.CreatePublicLink(ctx, link); err != nil {
		return nil, fmt.Errorf("create public link: %w", err)
	}

	if note.Visibility != domain.VisibilityPublic {
		note.Visibility = domain.VisibilityPublic
		note.Touch()
		if err := s.store.UpdateNote(ctx, note); err != nil {
			return nil, fmt.Errorf("set visibility public: %w", err)
		}
	}

	s.logger.Info("public link created",
		"note_id", noteID,
		"link_id", link.ID,
	)

	return link, nil
}

// GetPublicLink returns the note's public link. Only the owner can inspect it.
func (s *ShareService) GetPublicLink(ctx context.Context, ownerID, noteID string) (*domain.PublicLink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return nil, errors.Forbidden("only the owner can inspect the public link")
	}

	link, err := s.store.GetPublicLinkByNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("note has no public link")
		}
		return nil, fmt.Errorf("get public link: %w", err)
	}
	return link, nil
}

// RevokePublicLink deletes a link by ID and demotes its note to
// PRIVATE unconditionally. Share rows that exist on the note are NOT
// reactivated: the note lands in PRIVATE, not SHARED, and the orphaned
// shares stay dormant until a future grant flips the note back to
// SHARED. Deliberate behavior, kept as-is pending product sign-off.
func (s *ShareService) RevokePublicLink(ctx context.Context, ownerID, linkID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	link, err := s.store.GetPublicLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("public link not found")
		}
		return fmt.Errorf("get public link: %w", err)
	}

	s.locks.Lock(link.NoteID)
	defer s.locks.Unlock(link.NoteID)

	note, err := s.store.GetNote(ctx, link.NoteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("note not found")
		}
		return fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, ownerID) {
		return errors.Forbidden("only the owner can revoke the public link")
	}

	if err := s.store.DeletePublicLink(ctx, linkID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("public link not found")
		}
		return fmt.Errorf("delete public link: %w", err)
	}

	note.Visibility = domain.VisibilityPrivate
	note.Touch()
	if err := s.store.UpdateNote(ctx, note); err != nil {
		return fmt.Errorf("set visibility private: %w", err)
	}

	s.logger.Info("public link revoked",
		"link_id", linkID,
		"note_id", note.ID,
	)
	return nil
}

// GetNoteByPublicToken resolves a public link token to its note for
// anonymous reading. The lookup bypasses the access policy and any
// identity check: possession of an unexpired token is the whole
// credential, and it keeps working even after a later grant flipped
// the note's visibility to SHARED.
func (s *ShareService) GetNoteByPublicToken(ctx context.Context, token string) (*domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	link, err := s.store.GetPublicLinkByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("public link not found")
		}
		return nil, fmt.Errorf("get public link: %w", err)
	}

	if link.IsExpired(time.Now()) {
		return nil, errors.NotFound("public link not found")
	}

	note, err := s.store.GetNote(ctx, link.NoteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.NotFound("public link not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return note, nil
}

// generateLinkToken creates an unguessable URL-safe token (no padding).
func generateLinkToken() (string, error) {
	b := make([]byte, linkTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
