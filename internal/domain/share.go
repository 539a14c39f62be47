package domain

import "time"

// SharePermission defines the level of access granted by a note share.
// Only read access is granted today; the type exists so the schema and
// API don't change when write shares arrive.
type SharePermission string

const (
	// PermissionRead allows viewing the note.
	PermissionRead SharePermission = "READ"
)

// ParseSharePermission converts a string to SharePermission.
func ParseSharePermission(s string) (SharePermission, bool) {
	switch SharePermission(s) {
	case PermissionRead:
		return PermissionRead, true
	default:
		return "", false
	}
}

// Share represents a grant where a note owner gives another user
// read access to a note. Shares only take effect while the note's
// visibility is SHARED; rows for other states are dormant.
type Share struct {
	ID               string          `json:"id"`
	NoteID           string          `json:"note_id"`
	SharedWithUserID string          `json:"shared_with_user_id"`
	SharedByUserID   string          `json:"shared_by_user_id"`
	Permission       SharePermission `json:"permission"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewShare creates a read share of noteID granted by ownerID to userID.
func NewShare(id, noteID, ownerID, userID string) *Share {
	return &Share{
		ID:               id,
		NoteID:           noteID,
		SharedWithUserID: userID,
		SharedByUserID:   ownerID,
		Permission:       PermissionRead,
		CreatedAt:        time.Now(),
	}
}
