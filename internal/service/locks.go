package service

import "sync"

// NoteLocker serializes visibility read-modify-write sequences per
// note. Share grants, revokes, link operations, and note updates all
// read the visibility flag, mutate rows, and write the flag back;
// interleaving two of them can leave the flag inconsistent with the
// share and link tables, so every such sequence runs under the note's
// lock. Entries are reference-counted and dropped once the last
// holder releases, so the map never outgrows the set of notes
// currently being mutated.
type NoteLocker struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// NewNoteLocker creates an empty locker.
func NewNoteLocker() *NoteLocker {
	return &NoteLocker{entries: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for noteID, blocking until it is free.
func (l *NoteLocker) Lock(noteID string) {
	l.mu.Lock()
	e, ok := l.entries[noteID]
	if !ok {
		e = &lockEntry{}
		l.entries[noteID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for noteID. The entry is evicted when no
// goroutine holds or waits on it.
func (l *NoteLocker) Unlock(noteID string) {
	l.mu.Lock()
	e := l.entries[noteID]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, noteID)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}

// size reports the number of live entries; used by tests to check eviction.
func (l *NoteLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
