// Package service provides the business logic layer for notes, sharing, and authentication.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/errors"
	"github.com/notableapp/notable-server/internal/id"
	"github.com/notableapp/notable-server/internal/store"
)

// NoteService orchestrates note CRUD with access policy enforcement.
// Update and Delete touch visibility and the share table, so they run
// under the same per-note locker the share service uses.
type NoteService struct {
	store  store.Store
	locks  *NoteLocker
	logger *slog.Logger
}

// NewNoteService creates a new note service. locks must be the same
// locker handed to NewShareService.
func NewNoteService(store store.Store, locks *NoteLocker, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:  store,
		locks:  locks,
		logger: logger,
	}
}

// CreateNoteInput carries the fields for creating a note. Visibility
// empty means PRIVATE; SHARED is rejected because it is a derived
// state, only reachable by granting a share.
type CreateNoteInput struct {
	Title      string
	Content    string
	Visibility domain.Visibility
	Tags       []string
}

// UpdateNoteInput carries the fields for updating a note. Title and
// Content always replace the stored values. Visibility empty means
// keep the current state; Tags nil means keep the current tag set.
type UpdateNoteInput struct {
	Title      string
	Content    string
	Visibility domain.Visibility
	Tags       []string
}

// Create creates a new private note owned by userID.
func (s *NoteService) Create(ctx context.Context, userID string, input CreateNoteInput) (*domain.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validateNoteFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	visibility := input.Visibility
	switch visibility {
	case "":
		visibility = domain.VisibilityPrivate
	case domain.VisibilityShared:
		return nil, errors.Validation("visibility SHARED is entered by granting a share, not set at creation")
	case domain.VisibilityPrivate, domain.VisibilityPublic:
	default:
		return nil, errors.Validationf("invalid visibility %q", visibility)
	}

	noteID, err := id.Generate("note")
	if err != nil {
		return nil, fmt.Errorf("generate note id: %w", err)
	}

	note := domain.NewNote(noteID, userID, input.Title, input.Content)
	note.Visibility = visibility
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if len(input.Tags) > 0 {
		if note.Tags, err = s.resolveTags(ctx, note.ID, input.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("note created",
		"note_id", note.ID,
		"owner_id", userID,
	)

	return note, nil
}

// Get returns the note if userID may read it. Anonymous callers pass
// an empty userID and only reach PUBLIC notes. A missing note is a
// not-found error; an existing note the caller may not read is a
// forbidden error.
func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*domain.Note, error) {
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

	canRead, err := s.canRead(ctx, note, userID)
	if err != nil {
		return nil, err
	}
	if !canRead {
		return nil, errors.Forbidden("you do not have access to this note")
	}

	return note, nil
}

// Update modifies a note. Only the owner can update.
//
// Visibility handling: PRIVATE and PUBLIC are applied directly;
// requesting SHARED is rejected because that state is only entered by
// granting a share. Moving a SHARED note to PRIVATE revokes all of its
// shares. Moving a PUBLIC note to PRIVATE leaves the public link row
// in place, and its token keeps resolving: token resolution bypasses
// the policy entirely.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, input UpdateNoteInput) (*domain.Note, error) {
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

	if !domain.CanWrite(note, userID) {
		return nil, errors.Forbidden("only the owner can update a note")
	}

	if err := validateNoteFields(input.Title, input.Content); err != nil {
		return nil, err
	}

	wasShared := note.Visibility == domain.VisibilityShared

	if input.Visibility != "" && input.Visibility != note.Visibility {
		switch input.Visibility {
		case domain.VisibilityShared:
			return nil, errors.Validation("visibility SHARED is entered by granting a share, not by direct update")
		case domain.VisibilityPrivate, domain.VisibilityPublic:
			note.Visibility = input.Visibility
		default:
			return nil, errors.Validationf("invalid visibility %q", input.Visibility)
		}
	}

	note.Title = input.Title
	note.Content = input.Content
	note.Touch()

	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	// Leaving SHARED revokes the shares that defined the state.
	if wasShared && note.Visibility != domain.VisibilityShared {
		if err := s.store.DeleteNoteShares(ctx, note.ID); err != nil {
			return nil, fmt.Errorf("delete note shares: %w", err)
		}
	}

	if input.Tags != nil {
		if note.Tags, err = s.resolveTags(ctx, note.ID, input.Tags); err != nil {
			return nil, err
		}
	}

	s.logger.Info("note updated",
		"note_id", note.ID,
		"visibility", string(note.Visibility),
	)

	return note, nil
}

// Delete removes a note. Only the owner can delete. Shares, the public
// link, and tag associations go with it.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.locks.Lock(noteID)
	defer s.locks.Unlock(noteID)

	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errors.NotFound("note not found")
		}
		return fmt.Errorf("get note: %w", err)
	}

	if !domain.CanWrite(note, userID) {
		return errors.Forbidden("only the owner can delete a note")
	}

	if err := s.store.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	s.logger.Info("note deleted", "note_id", noteID, "owner_id", userID)
	return nil
}

// Search returns the notes visible to userID, filtered and paginated.
func (s *NoteService) Search(ctx context.Context, userID string, filter store.NoteFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Note], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filter.Visibility != "" && !filter.Visibility.IsValid() {
		return nil, errors.Validationf("invalid visibility %q", filter.Visibility)
	}

	result, err := s.store.SearchNotes(ctx, userID, filter, params)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return result, nil
}

// ListTags returns every tag known to the system.
func (s *NoteService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// canRead evaluates the access policy, looking up the share row only
// when the note is SHARED.
func (s *NoteService) canRead(ctx context.Context, note *domain.Note, userID string) (bool, error) {
	hasShare := false
	if note.Visibility == domain.VisibilityShared && userID != "" && note.OwnerID != userID {
		_, err := s.store.GetShare(ctx, note.ID, userID)
		switch {
		case err == nil:
			hasShare = true
		case errors.Is(err, store.ErrNotFound):
			// no share
		default:
			return false, fmt.Errorf("get share: %w", err)
		}
	}
	return domain.CanRead(note, userID, hasShare), nil
}

// resolveTags finds or creates each label and replaces the note's tag set.
func (s *NoteService) resolveTags(ctx context.Context, noteID string, labels []string) ([]domain.Tag, error) {
	seen := make(map[string]bool, len(labels))
	tags := make([]domain.Tag, 0, len(labels))
	tagIDs := make([]string, 0, len(labels))

	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			return nil, errors.Validation("tag labels cannot be empty")
		}
		if len(label) > domain.MaxTagLabelLength {
			return nil, errors.Validationf("tag label must not exceed %d characters", domain.MaxTagLabelLength)
		}
		if seen[label] {
			continue
		}
		seen[label] = true

		tag, err := s.store.FindOrCreateTagByLabel(ctx, label)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", label, err)
		}
		tags = append(tags, *tag)
		tagIDs = append(tagIDs, tag.ID)
	}

	if err := s.store.SetNoteTags(ctx, noteID, tagIDs); err != nil {
		return nil, fmt.Errorf("set note tags: %w", err)
	}
	return tags, nil
}

// validateNoteFields checks title and content limits.
func validateNoteFields(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return errors.Validation("title is required")
	}
	if len(title) > domain.MaxTitleLength {
		return errors.Validationf("title must not exceed %d characters", domain.MaxTitleLength)
	}
	if len(content) > domain.MaxContentLength {
		return errors.Validationf("content must not exceed %d characters", domain.MaxContentLength)
	}
	return nil
}
