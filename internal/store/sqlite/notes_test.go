package sqlite

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/store"
)

func TestCreateAndGetNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")
	n := mustCreateNote(t, s, "note-1", "user-1", domain.VisibilityPrivate)

	got, err := s.GetNote(ctx, "note-1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}

	if got.OwnerID != n.OwnerID {
		t.Errorf("OwnerID: got %q, want %q", got.OwnerID, n.OwnerID)
	}
	if got.Title != n.Title {
		t.Errorf("Title: got %q, want %q", got.Title, n.Title)
	}
	if got.Visibility != domain.VisibilityPrivate {
		t.Errorf("Visibility: got %q, want PRIVATE", got.Visibility)
	}
	if got.Tags == nil {
		t.Error("Tags: expected empty slice, got nil")
	}
}

func TestGetNote_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetNote(context.Background(), "note-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")
	n := mustCreateNote(t, s, "note-1", "user-1", domain.VisibilityPrivate)

	n.Title = "Renamed"
	n.Visibility = domain.VisibilityPublic
	n.Touch()
	if err := s.UpdateNote(ctx, n); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	got, err := s.GetNote(ctx, "note-1")
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title: got %q, want Renamed", got.Title)
	}
	if got.Visibility != domain.VisibilityPublic {
		t.Errorf("Visibility: got %q, want PUBLIC", got.Visibility)
	}
}

func TestDeleteNote_Cascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")
	mustCreateUser(t, s, "user-2", "bob@example.com")
	mustCreateNote(t, s, "note-1", "user-1", domain.VisibilityShared)

	if err := s.CreateShare(ctx, domain.NewShare("share-1", "note-1", "user-1", "user-2")); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}
	if err := s.CreatePublicLink(ctx, domain.NewPublicLink("link-1", "note-1", "tok-1", nil)); err != nil {
		t.Fatalf("CreatePublicLink: %v", err)
	}
	tag, err := s.FindOrCreateTagByLabel(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}
	if err := s.SetNoteTags(ctx, "note-1", []string{tag.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}

	if err := s.DeleteNote(ctx, "note-1"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}

	if _, err := s.GetShare(ctx, "note-1", "user-2"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("share should cascade, got %v", err)
	}
	if _, err := s.GetPublicLinkByToken(ctx, "tok-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("public link should cascade, got %v", err)
	}
	tags, err := s.ListNoteTags(ctx, "note-1")
	if err != nil {
		t.Fatalf("ListNoteTags: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("note_tags should cascade, got %d rows", len(tags))
	}

	// The tag itself is global and survives.
	if _, err := s.GetTagByLabel(ctx, "work"); err != nil {
		t.Errorf("tag should survive note deletion, got %v", err)
	}
}

// Cascades must hold on every pooled connection, not just the first
// one opened: foreign_keys is a per-connection pragma, so the delete
// may run on a connection that never executed it unless the DSN
// carries the setting.
func TestDeleteNote_CascadesAcrossPooledConnections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")
	mustCreateUser(t, s, "user-2", "bob@example.com")

	// Concurrent reads force the pool past a single connection.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.GetUser(ctx, "user-1")
		}()
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		noteID := fmt.Sprintf("note-%d", i)
		mustCreateNote(t, s, noteID, "user-1", domain.VisibilityShared)
		if err := s.CreateShare(ctx, domain.NewShare(fmt.Sprintf("share-%d", i), noteID, "user-1", "user-2")); err != nil {
			t.Fatalf("CreateShare: %v", err)
		}
		if err := s.CreatePublicLink(ctx, domain.NewPublicLink(fmt.Sprintf("link-%d", i), noteID, fmt.Sprintf("tok-%d", i), nil)); err != nil {
			t.Fatalf("CreatePublicLink: %v", err)
		}

		if err := s.DeleteNote(ctx, noteID); err != nil {
			t.Fatalf("DeleteNote(%s): %v", noteID, err)
		}

		if _, err := s.GetShare(ctx, noteID, "user-2"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("share of %s should cascade, got %v", noteID, err)
		}
		if _, err := s.GetPublicLinkByToken(ctx, fmt.Sprintf("tok-%d", i)); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("public link of %s should cascade, got %v", noteID, err)
		}
	}
}

func TestSearchNotes_VisibilityUnion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-alice", "alice@example.com")
	mustCreateUser(t, s, "user-bob", "bob@example.com")
	mustCreateUser(t, s, "user-carol", "carol@example.com")

	// Alice: one of each visibility.
	mustCreateNote(t, s, "note-a-priv", "user-alice", domain.VisibilityPrivate)
	mustCreateNote(t, s, "note-a-shared", "user-alice", domain.VisibilityShared)
	mustCreateNote(t, s, "note-a-pub", "user-alice", domain.VisibilityPublic)

	// Bob: a private note and a shared note not shared with Carol.
	mustCreateNote(t, s, "note-b-priv", "user-bob", domain.VisibilityPrivate)
	mustCreateNote(t, s, "note-b-shared", "user-bob", domain.VisibilityShared)

	// Alice shares her SHARED note with Carol.
	if err := s.CreateShare(ctx, domain.NewShare("share-1", "note-a-shared", "user-alice", "user-carol")); err != nil {
		t.Fatalf("CreateShare: %v", err)
	}

	got := func(userID string) map[string]bool {
		res, err := s.SearchNotes(ctx, userID, store.NoteFilter{}, store.DefaultPaginationParams())
		if err != nil {
			t.Fatalf("SearchNotes(%s): %v", userID, err)
		}
		ids := map[string]bool{}
		for _, n := range res.Items {
			ids[n.ID] = true
		}
		return ids
	}

	// Carol sees: Alice's shared (via share), Alice's public. Not any private,
	// not Bob's shared note.
	carol := got("user-carol")
	for _, want := range []string{"note-a-shared", "note-a-pub"} {
		if !carol[want] {
			t.Errorf("carol should see %s", want)
		}
	}
	for _, deny := range []string{"note-a-priv", "note-b-priv", "note-b-shared"} {
		if carol[deny] {
			t.Errorf("carol should not see %s", deny)
		}
	}

	// Alice sees all her own notes plus nothing of Bob's.
	alice := got("user-alice")
	for _, want := range []string{"note-a-priv", "note-a-shared", "note-a-pub"} {
		if !alice[want] {
			t.Errorf("alice should see %s", want)
		}
	}
	if alice["note-b-priv"] || alice["note-b-shared"] {
		t.Error("alice should not see bob's non-public notes")
	}
}

func TestSearchNotes_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")

	groceries := domain.NewNote("note-1", "user-1", "Groceries", "milk and eggs")
	meeting := domain.NewNote("note-2", "user-1", "Meeting notes", "quarterly planning")
	for _, n := range []*domain.Note{groceries, meeting} {
		if err := s.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
	}
	meeting.Visibility = domain.VisibilityPublic
	if err := s.UpdateNote(ctx, meeting); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}

	tag, err := s.FindOrCreateTagByLabel(ctx, "food")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}
	if err := s.SetNoteTags(ctx, "note-1", []string{tag.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}

	// Text query matches title or content.
	res, err := s.SearchNotes(ctx, "user-1", store.NoteFilter{Query: "milk"}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("SearchNotes query: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "note-1" {
		t.Errorf("query filter: got %d results", res.Total)
	}

	// Tag filter, exact label.
	res, err = s.SearchNotes(ctx, "user-1", store.NoteFilter{TagLabel: "food"}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("SearchNotes tag: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "note-1" {
		t.Errorf("tag filter: got %d results", res.Total)
	}
	res, err = s.SearchNotes(ctx, "user-1", store.NoteFilter{TagLabel: "Food"}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("SearchNotes tag case: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("tag labels are case-sensitive, got %d results", res.Total)
	}

	// Visibility filter.
	res, err = s.SearchNotes(ctx, "user-1", store.NoteFilter{Visibility: domain.VisibilityPublic}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("SearchNotes visibility: %v", err)
	}
	if res.Total != 1 || res.Items[0].ID != "note-2" {
		t.Errorf("visibility filter: got %d results", res.Total)
	}

	// LIKE wildcards in queries are literals.
	res, err = s.SearchNotes(ctx, "user-1", store.NoteFilter{Query: "%"}, store.DefaultPaginationParams())
	if err != nil {
		t.Fatalf("SearchNotes wildcard: %v", err)
	}
	if res.Total != 0 {
		t.Errorf("wildcard should be literal, got %d results", res.Total)
	}
}

func TestSearchNotes_PaginationAndOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		n := domain.NewNote("note-"+string(rune('a'+i)), "user-1", "Note", "")
		n.CreatedAt = base
		n.UpdatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := s.CreateNote(ctx, n); err != nil {
			t.Fatalf("CreateNote: %v", err)
		}
	}

	res, err := s.SearchNotes(ctx, "user-1", store.NoteFilter{}, store.PaginationParams{Page: 0, Size: 2})
	if err != nil {
		t.Fatalf("SearchNotes: %v", err)
	}
	if res.Total != 5 {
		t.Errorf("Total: got %d, want 5", res.Total)
	}
	if res.TotalPages != 3 {
		t.Errorf("TotalPages: got %d, want 3", res.TotalPages)
	}
	if !res.HasMore {
		t.Error("HasMore: expected true on first page")
	}
	if len(res.Items) != 2 {
		t.Fatalf("Items: got %d, want 2", len(res.Items))
	}
	// Most recently updated first.
	if res.Items[0].ID != "note-e" || res.Items[1].ID != "note-d" {
		t.Errorf("order: got %s, %s", res.Items[0].ID, res.Items[1].ID)
	}

	last, err := s.SearchNotes(ctx, "user-1", store.NoteFilter{}, store.PaginationParams{Page: 2, Size: 2})
	if err != nil {
		t.Fatalf("SearchNotes last page: %v", err)
	}
	if len(last.Items) != 1 || last.HasMore {
		t.Errorf("last page: got %d items, HasMore=%v", len(last.Items), last.HasMore)
	}
}

func TestSetNoteTags_Replaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice@example.com")
	mustCreateNote(t, s, "note-1", "user-1", domain.VisibilityPrivate)

	work, err := s.FindOrCreateTagByLabel(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}
	home, err := s.FindOrCreateTagByLabel(ctx, "home")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}

	if err := s.SetNoteTags(ctx, "note-1", []string{work.ID}); err != nil {
		t.Fatalf("SetNoteTags: %v", err)
	}
	if err := s.SetNoteTags(ctx, "note-1", []string{home.ID}); err != nil {
		t.Fatalf("SetNoteTags replace: %v", err)
	}

	tags, err := s.ListNoteTags(ctx, "note-1")
	if err != nil {
		t.Fatalf("ListNoteTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Label != "home" {
		t.Errorf("expected [home], got %v", tags)
	}
}
