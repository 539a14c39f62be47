package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/store"
)

// shareColumns is the ordered list of columns selected in share queries.
// Must match the scan order in scanShare.
const shareColumns = `id, note_id, shared_with_user_id, shared_by_user_id, permission, created_at`

// scanShare scans a sql.Row (or sql.Rows via its Scan method) into a domain.Share.
func scanShare(scanner interface{ Scan(dest ...any) error }) (*domain.Share, error) {
	var sh domain.Share

	var (
		permission string
		createdAt  string
	)

	err := scanner.Scan(
		&sh.ID,
		&sh.NoteID,
		&sh.SharedWithUserID,
		&sh.SharedByUserID,
		&permission,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	var ok bool
	sh.Permission, ok = domain.ParseSharePermission(permission)
	if !ok {
		return nil, fmt.Errorf("share %s: unknown permission %q", sh.ID, permission)
	}
	sh.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &sh, nil
}

// CreateShare inserts a new share into the database.
// Returns store.ErrAlreadyExists if the note is already shared with the user.
func (s *Store) CreateShare(ctx context.Context, sh *domain.Share) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shares (id, note_id, shared_with_user_id, shared_by_user_id, permission, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sh.ID,
		sh.NoteID,
		sh.SharedWithUserID,
		sh.SharedByUserID,
		string(sh.Permission),
		formatTime(sh.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetShareByID retrieves a share by its ID.
// Returns store.ErrNotFound if the share does not exist.
func (s *Store) GetShareByID(ctx context.Context, id string) (*domain.Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE id = ?`, id)

	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// GetShare retrieves the share granting noteID to userID.
// Returns store.ErrNotFound if no such share exists.
func (s *Store) GetShare(ctx context.Context, noteID, userID string) (*domain.Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE note_id = ? AND shared_with_user_id = ?`,
		noteID, userID)

	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// ListNoteShares returns all shares of a note ordered by creation time.
func (s *Store) ListNoteShares(ctx context.Context, noteID string) ([]*domain.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM shares WHERE note_id = ? ORDER BY created_at ASC`, noteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []*domain.Share
	for rows.Next() {
		sh, err := scanShare(rows)
		if err != nil {
			return nil, err
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if shares == nil {
		shares = []*domain.Share{}
	}

	return shares, nil
}

// CountNoteShares returns the number of shares of a note.
func (s *Store) CountNoteShares(ctx context.Context, noteID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shares WHERE note_id = ?`, noteID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteShare removes a share by its ID.
// Returns store.ErrNotFound if the share does not exist.
func (s *Store) DeleteShare(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM shares WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteNoteShares removes every share of a note.
func (s *Store) DeleteNoteShares(ctx context.Context, noteID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM shares WHERE note_id = ?`, noteID)
	return err
}
