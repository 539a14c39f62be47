package domain

// CanRead decides whether userID may read the note. hasShare reports
// whether an active share row exists granting the note to userID; the
// caller looks that up, keeping this function pure.
//
// Rules, in order:
//   - the owner can always read
//   - a PUBLIC note is readable by anyone, including anonymous
//     visitors (empty userID)
//   - a SHARED note is readable only by users holding a share
//   - otherwise the note is unreadable; share rows are dormant while
//     the note is PRIVATE or PUBLIC
func CanRead(note *Note, userID string, hasShare bool) bool {
	if note.IsOwnedBy(userID) {
		return true
	}
	switch note.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityShared:
		return userID != "" && hasShare
	default:
		return false
	}
}

// CanWrite decides whether userID may modify or delete the note.
// Only the owner can write, regardless of visibility; shares and
// public links never grant write access.
func CanWrite(note *Note, userID string) bool {
	return note.IsOwnedBy(userID)
}
