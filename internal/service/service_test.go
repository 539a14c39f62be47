package service

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notableapp/notable-server/internal/auth"
	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/store/sqlite"
)

// testEnv wires real services over a throwaway SQLite store.
type testEnv struct {
	store  *sqlite.Store
	notes  *NoteService
	shares *ShareService
	auth   *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	keyHex, err := auth.LoadOrGenerateKey(filepath.Join(dir, "auth.key"))
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	locks := NewNoteLocker()
	return &testEnv{
		store:  st,
		notes:  NewNoteService(st, locks, logger),
		shares: NewShareService(st, locks, logger),
		auth:   NewAuthService(st, tokens, logger),
	}
}

// registerUser creates an account and returns the user.
func (e *testEnv) registerUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, _, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return user
}

// createNote creates a note owned by userID and returns it.
func (e *testEnv) createNote(t *testing.T, userID, title string) *domain.Note {
	t.Helper()
	note, err := e.notes.Create(context.Background(), userID, CreateNoteInput{
		Title:   title,
		Content: "content of " + title,
	})
	require.NoError(t, err)
	return note
}

// visibility reloads the note and returns its current visibility.
func (e *testEnv) visibility(t *testing.T, noteID string) domain.Visibility {
	t.Helper()
	note, err := e.store.GetNote(context.Background(), noteID)
	require.NoError(t, err)
	return note.Visibility
}
