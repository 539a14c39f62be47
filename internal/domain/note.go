package domain

import "time"

// Content limits enforced when creating or updating notes.
const (
	MaxTitleLength   = 255
	MaxContentLength = 50000
)

// Visibility is the sharing state of a note. A note is in exactly one
// state at a time; the field is overwritten on every transition, so a
// note cannot be simultaneously shared with specific users and public.
type Visibility string

const (
	// VisibilityPrivate means only the owner can see the note.
	VisibilityPrivate Visibility = "PRIVATE"
	// VisibilityShared means the owner plus users with an active share can see it.
	VisibilityShared Visibility = "SHARED"
	// VisibilityPublic means anyone, including unauthenticated visitors, can see it.
	VisibilityPublic Visibility = "PUBLIC"
)

// ParseVisibility converts a string to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch Visibility(s) {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return Visibility(s), true
	default:
		return "", false
	}
}

// IsValid reports whether v is one of the three known states.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPrivate, VisibilityShared, VisibilityPublic:
		return true
	default:
		return false
	}
}

// Note is a user-owned document with a single visibility state.
type Note struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Visibility Visibility `json:"visibility"`
	Tags       []Tag      `json:"tags"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewNote creates a private note owned by ownerID with initialized timestamps.
func NewNote(id, ownerID, title, content string) *Note {
	now := time.Now()
	return &Note{
		ID:         id,
		OwnerID:    ownerID,
		Title:      title,
		Content:    content,
		Visibility: VisibilityPrivate,
		Tags:       []Tag{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the note changes.
func (n *Note) Touch() {
	n.UpdatedAt = time.Now()
}

// IsOwnedBy reports whether userID owns this note.
func (n *Note) IsOwnedBy(userID string) bool {
	return userID != "" && n.OwnerID == userID
}
