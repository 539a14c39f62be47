package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/store"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote.
const noteColumns = `id, owner_id, title, content, visibility, created_at, updated_at`

// scanNote scans a sql.Row (or sql.Rows via its Scan method) into a domain.Note.
// Tags are left nil; the caller loads them separately.
func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var n domain.Note

	var (
		visibility string
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&n.ID,
		&n.OwnerID,
		&n.Title,
		&n.Content,
		&visibility,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Visibility = domain.Visibility(visibility)
	n.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	n.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

// CreateNote inserts a new note into the database.
func (s *Store) CreateNote(ctx context.Context, n *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, content, visibility, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.OwnerID,
		n.Title,
		n.Content,
		string(n.Visibility),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetNote retrieves a note by ID, including its tags.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) GetNote(ctx context.Context, id string) (*domain.Note, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)

	n, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	n.Tags, err = s.ListNoteTags(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// UpdateNote updates an existing note's title, content, visibility and
// updated_at. Tags are managed through SetNoteTags.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) UpdateNote(ctx context.Context, n *domain.Note) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes
		SET title = ?, content = ?, visibility = ?, updated_at = ?
		WHERE id = ?`,
		n.Title,
		n.Content,
		string(n.Visibility),
		formatTime(n.UpdatedAt),
		n.ID,
	)
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

// DeleteNote removes a note. Shares, the public link, and tag
// associations are removed by ON DELETE CASCADE.
// Returns store.ErrNotFound if the note does not exist.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
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

// SearchNotes returns the notes visible to userID ordered by
// updated_at descending. The visible set is the union of the user's
// own notes, SHARED notes with a share granted to the user, and
// PUBLIC notes. Filters narrow within that set.
func (s *Store) SearchNotes(ctx context.Context, userID string, filter store.NoteFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Note], error) {
	params.Validate()

	var (
		conds []string
		args  []any
	)

	if filter.OwnedOnly {
		conds = append(conds, `n.owner_id = ?`)
		args = append(args, userID)
	} else {
		conds = append(conds, `(
			n.owner_id = ?
			OR (n.visibility = 'SHARED' AND EXISTS (
				SELECT 1 FROM shares sh
				WHERE sh.note_id = n.id AND sh.shared_with_user_id = ?))
			OR n.visibility = 'PUBLIC'
		)`)
		args = append(args, userID, userID)
	}

	if filter.Query != "" {
		conds = append(conds, `(n.title LIKE ? ESCAPE '\' OR n.content LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(filter.Query) + "%"
		args = append(args, pattern, pattern)
	}

	if filter.TagLabel != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM note_tags nt
			JOIN tags t ON t.id = nt.tag_id
			WHERE nt.note_id = n.id AND t.label = ?)`)
		args = append(args, filter.TagLabel)
	}

	if filter.Visibility != "" {
		conds = append(conds, `n.visibility = ?`)
		args = append(args, string(filter.Visibility))
	}

	where := strings.Join(conds, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes n WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}

	query := `SELECT ` + noteColumns + ` FROM notes n WHERE ` + where +
		` ORDER BY n.updated_at DESC, n.id ASC LIMIT ? OFFSET ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, params.Size, params.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if notes == nil {
		notes = []*domain.Note{}
	}

	for _, n := range notes {
		n.Tags, err = s.ListNoteTags(ctx, n.ID)
		if err != nil {
			return nil, err
		}
	}

	return store.NewPaginatedResult(notes, total, params), nil
}

// SetNoteTags replaces all tags for a note in a single transaction.
// It deletes existing note_tags rows and inserts the new set.
func (s *Store) SetNoteTags(ctx context.Context, noteID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Delete existing tags for this note.
	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("delete note_tags: %w", err)
	}

	// Insert new tag associations.
	now := formatTime(time.Now().UTC())
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO note_tags (note_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			noteID,
			tagID,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert note_tag: %w", err)
		}
	}

	return tx.Commit()
}

// escapeLike escapes LIKE wildcards in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
