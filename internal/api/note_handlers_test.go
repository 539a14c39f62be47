package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateNote(t *testing.T) {
	ts := setupTestServer(t)

	token, userID := ts.registerUser(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/notes",
		map[string]any{
			"title":   "Groceries",
			"content": "milk, eggs",
			"tags":    []string{"home", "todo"},
		},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[NoteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "Groceries", envelope.Data.Title)
	assert.Equal(t, userID, envelope.Data.OwnerID)
	assert.Equal(t, "PRIVATE", envelope.Data.Visibility)
	assert.Len(t, envelope.Data.Tags, 2)
}

func TestCreateNote_Unauthenticated(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/notes", map[string]any{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateNote_SharedRejected(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/notes",
		map[string]any{"title": "x", "content": "y", "visibility": "SHARED"},
		"Authorization: Bearer "+token)
	assert.GreaterOrEqual(t, resp.Code, 400)
	assert.Less(t, resp.Code, 500)
}

func TestGetNote_Visibility(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "private note")

	// Owner reads.
	resp := ts.api.Get("/api/v1/notes/"+note.ID, "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Stranger and anonymous are forbidden; a missing note is 404.
	resp = ts.api.Get("/api/v1/notes/"+note.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = ts.api.Get("/api/v1/notes/" + note.ID)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = ts.api.Get("/api/v1/notes/note-missing", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetNote_PublicIsAnonymous(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/notes",
		map[string]any{"title": "manifesto", "content": "hello", "visibility": "PUBLIC"},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[NoteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	resp = ts.api.Get("/api/v1/notes/" + envelope.Data.ID)
	assert.Equal(t, http.StatusOK, resp.Code, "PUBLIC notes need no login")
}

func TestUpdateNote(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "v1")

	resp := ts.api.Put("/api/v1/notes/"+note.ID,
		map[string]any{"title": "v2", "content": "updated"},
		"Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[NoteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "v2", envelope.Data.Title)

	// Non-owner cannot update.
	resp = ts.api.Put("/api/v1/notes/"+note.ID,
		map[string]any{"title": "hijacked", "content": "x"},
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestDeleteNote(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "alice@example.com")
	note := ts.createNote(t, token, "doomed")

	resp := ts.api.Delete("/api/v1/notes/"+note.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/notes/"+note.ID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSearchNotes(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")

	ts.createNote(t, aliceToken, "alpha plans")
	ts.createNote(t, aliceToken, "beta notes")
	ts.createNote(t, bobToken, "hidden from alice")

	resp := ts.api.Get("/api/v1/notes?q=alpha", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[SearchNotesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, 1, envelope.Data.Total)
	assert.Equal(t, "alpha plans", envelope.Data.Notes[0].Title)

	// Without a filter, only alice's own notes show up.
	resp = ts.api.Get("/api/v1/notes", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Total)
}

func TestListTags(t *testing.T) {
	ts := setupTestServer(t)

	token, _ := ts.registerUser(t, "alice@example.com")

	resp := ts.api.Post("/api/v1/notes",
		map[string]any{"title": "tagged", "content": "x", "tags": []string{"work", "urgent"}},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/tags", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListTagsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Tags, 2)
}
