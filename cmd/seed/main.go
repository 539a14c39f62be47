// Package main provides a tool to seed the database with demo data.
//
// It creates a handful of accounts and notes covering each visibility
// state so the API can be exercised right after a fresh install. Running
// it twice is safe: accounts that already exist are skipped.
//
// Usage:
//
//	DATA_PATH=~/Notable/data go run ./cmd/seed
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/notableapp/notable-server/internal/auth"
	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/id"
	"github.com/notableapp/notable-server/internal/store/sqlite"
)

// seedPassword is shared by all seeded accounts.
const seedPassword = "password123"

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Notable/data")
	}
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}

	dbPath := filepath.Join(dataPath, "notable.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	s, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	demo := seedUser(ctx, s, "demo@example.com", "Demo User")
	friend := seedUser(ctx, s, "friend@example.com", "Demo Friend")

	// A private note, untouched by sharing.
	private := seedNote(ctx, s, demo.ID, "Shopping list", "milk, eggs, coffee", []string{"home"})
	fmt.Printf("  Private note: %s\n", private.ID)

	// A note shared with the friend account.
	shared := seedNote(ctx, s, demo.ID, "Trip planning", "Flights on Tuesday, hotel near the harbor.", []string{"travel"})
	shared.Visibility = domain.VisibilityShared
	if err := s.UpdateNote(ctx, shared); err != nil {
		log.Fatalf("Failed to mark note shared: %v", err)
	}
	share := domain.NewShare(id.MustGenerate("shr"), shared.ID, demo.ID, friend.ID)
	if err := s.CreateShare(ctx, share); err != nil {
		log.Printf("  Share already exists for %s, skipping", shared.ID)
	} else {
		fmt.Printf("  Shared note: %s (with %s)\n", shared.ID, friend.Email)
	}

	// A publicly linked note.
	public := seedNote(ctx, s, demo.ID, "Reading notes", "Chapter summaries and quotes.", []string{"books", "public"})
	public.Visibility = domain.VisibilityPublic
	if err := s.UpdateNote(ctx, public); err != nil {
		log.Fatalf("Failed to mark note public: %v", err)
	}
	link := domain.NewPublicLink(id.MustGenerate("lnk"), public.ID, generateToken(), nil)
	if err := s.CreatePublicLink(ctx, link); err != nil {
		log.Printf("  Public link already exists for %s, skipping", public.ID)
	} else {
		fmt.Printf("  Public note: %s (token %s)\n", public.ID, link.Token)
	}

	fmt.Println("\nSeeding complete!")
	fmt.Printf("Log in as %s or %s with password %q\n", demo.Email, friend.Email, seedPassword)
}

// seedUser creates an account unless the email is already taken.
func seedUser(ctx context.Context, s *sqlite.Store, email, displayName string) *domain.User {
	if existing, err := s.GetUserByEmail(ctx, email); err == nil {
		fmt.Printf("User %s already exists, reusing\n", email)
		return existing
	}

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("usr"),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create user %s: %v", email, err)
	}

	fmt.Printf("Created user: %s (%s)\n", displayName, email)
	return user
}

// seedNote creates a private note with the given tags.
func seedNote(ctx context.Context, s *sqlite.Store, ownerID, title, content string, tags []string) *domain.Note {
	note := domain.NewNote(id.MustGenerate("note"), ownerID, title, content)
	if err := s.CreateNote(ctx, note); err != nil {
		log.Fatalf("Failed to create note %q: %v", title, err)
	}

	tagIDs := make([]string, 0, len(tags))
	for _, label := range tags {
		tag, err := s.FindOrCreateTagByLabel(ctx, label)
		if err != nil {
			log.Fatalf("Failed to resolve tag %q: %v", label, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.SetNoteTags(ctx, note.ID, tagIDs); err != nil {
		log.Fatalf("Failed to tag note %q: %v", title, err)
	}

	return note
}

// generateToken mints an unguessable URL-safe link token.
func generateToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
