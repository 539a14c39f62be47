package domain

import "time"

// MaxTagLabelLength is the maximum length of a tag label.
const MaxTagLabelLength = 64

// Tag is a global label attachable to notes. Labels are matched
// exactly (case-sensitive); "Work" and "work" are distinct tags.
type Tag struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTag creates a tag with the given label.
func NewTag(id, label string) *Tag {
	return &Tag{
		ID:        id,
		Label:     label,
		CreatedAt: time.Now(),
	}
}
