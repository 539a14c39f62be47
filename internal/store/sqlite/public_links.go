package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/store"
)

// publicLinkColumns is the ordered list of columns selected in public link queries.
// Must match the scan order in scanPublicLink.
const publicLinkColumns = `id, note_id, token, created_at, expires_at`

// scanPublicLink scans a sql.Row (or sql.Rows via its Scan method) into a domain.PublicLink.
func scanPublicLink(scanner interface{ Scan(dest ...any) error }) (*domain.PublicLink, error) {
	var l domain.PublicLink

	var (
		createdAt string
		expiresAt sql.NullString
	)

	err := scanner.Scan(
		&l.ID,
		&l.NoteID,
		&l.Token,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		return nil, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	l.ExpiresAt, err = parseNullableTime(expiresAt)
	if err != nil {
		return nil, err
	}

	return &l, nil
}

// CreatePublicLink inserts a new public link into the database.
// Returns store.ErrAlreadyExists if the note already has a link or the
// token collides.
func (s *Store) CreatePublicLink(ctx context.Context, l *domain.PublicLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO public_links (id, note_id, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID,
		l.NoteID,
		l.Token,
		formatTime(l.CreatedAt),
		nullTimeString(l.ExpiresAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetPublicLink retrieves a public link by its ID.
// Returns store.ErrNotFound if the link does not exist.
func (s *Store) GetPublicLink(ctx context.Context, id string) (*domain.PublicLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+publicLinkColumns+` FROM public_links WHERE id = ?`, id)

	l, err := scanPublicLink(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetPublicLinkByNote retrieves the public link of a note.
// Returns store.ErrNotFound if the note has no link.
func (s *Store) GetPublicLinkByNote(ctx context.Context, noteID string) (*domain.PublicLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+publicLinkColumns+` FROM public_links WHERE note_id = ?`, noteID)

	l, err := scanPublicLink(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetPublicLinkByToken retrieves a public link by its token.
// Returns store.ErrNotFound if no link carries the token.
func (s *Store) GetPublicLinkByToken(ctx context.Context, token string) (*domain.PublicLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+publicLinkColumns+` FROM public_links WHERE token = ?`, token)

	l, err := scanPublicLink(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// DeletePublicLink removes a public link by its ID.
// Returns store.ErrNotFound if the link does not exist.
func (s *Store) DeletePublicLink(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM public_links WHERE id = ?`, id)
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
