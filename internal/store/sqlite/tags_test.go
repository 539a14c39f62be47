package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/notableapp/notable-server/internal/store"
)

func TestFindOrCreateTagByLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.FindOrCreateTagByLabel(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}
	if created.Label != "work" {
		t.Errorf("Label: got %q, want work", created.Label)
	}

	// Second call returns the same tag.
	found, err := s.FindOrCreateTagByLabel(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel second: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("expected same tag, got %q and %q", created.ID, found.ID)
	}
}

func TestFindOrCreateTagByLabel_CaseSensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	lower, err := s.FindOrCreateTagByLabel(ctx, "work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}
	upper, err := s.FindOrCreateTagByLabel(ctx, "Work")
	if err != nil {
		t.Fatalf("FindOrCreateTagByLabel: %v", err)
	}

	if lower.ID == upper.ID {
		t.Error("labels differing in case must be distinct tags")
	}
}

func TestFindOrCreateTagByLabel_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			tag, err := s.FindOrCreateTagByLabel(ctx, "racy")
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			ids[i] = tag.ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got %q, worker 0 got %q", i, ids[i], ids[0])
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("expected a single tag, got %d", len(tags))
	}
}

func TestGetTagByLabel_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTagByLabel(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListTags_Ordered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, label := range []string{"zebra", "apple", "mango"} {
		if _, err := s.FindOrCreateTagByLabel(ctx, label); err != nil {
			t.Fatalf("FindOrCreateTagByLabel(%s): %v", label, err)
		}
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	want := []string{"apple", "mango", "zebra"}
	if len(tags) != len(want) {
		t.Fatalf("got %d tags, want %d", len(tags), len(want))
	}
	for i, label := range want {
		if tags[i].Label != label {
			t.Errorf("tags[%d]: got %q, want %q", i, tags[i].Label, label)
		}
	}
}
