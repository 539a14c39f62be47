package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) shareNote(t *testing.T, token, noteID, email string) ShareResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/notes/"+noteID+"/shares",
		map[string]any{"email": email},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "share failed: %s", resp.Body.String())

	var envelope testEnvelope[ShareResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func (ts *testServer) createLink(t *testing.T, token, noteID string) PublicLinkResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/notes/"+noteID+"/link",
		map[string]any{},
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code, "create link failed: %s", resp.Body.String())

	var envelope testEnvelope[PublicLinkResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func (ts *testServer) noteVisibility(t *testing.T, token, noteID string) string {
	t.Helper()

	resp := ts.api.Get("/api/v1/notes/"+noteID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[NoteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.Visibility
}

func TestShareNote_GrantsAccess(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, bobID := ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "plans")
	share := ts.shareNote(t, aliceToken, note.ID, "bob@example.com")
	assert.Equal(t, bobID, share.SharedWithUserID)
	assert.Equal(t, "READ", share.Permission)

	// The grant flipped the note to SHARED and bob can read it.
	assert.Equal(t, "SHARED", ts.noteVisibility(t, aliceToken, note.ID))
	resp := ts.api.Get("/api/v1/notes/"+note.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestShareNote_Errors(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")
	note := ts.createNote(t, aliceToken, "plans")

	// Unknown recipient.
	resp := ts.api.Post("/api/v1/notes/"+note.ID+"/shares",
		map[string]any{"email": "nobody@example.com"},
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Self-share.
	resp = ts.api.Post("/api/v1/notes/"+note.ID+"/shares",
		map[string]any{"email": "alice@example.com"},
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Non-owner.
	resp = ts.api.Post("/api/v1/notes/"+note.ID+"/shares",
		map[string]any{"email": "alice@example.com"},
		"Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Duplicate.
	ts.shareNote(t, aliceToken, note.ID, "bob@example.com")
	resp = ts.api.Post("/api/v1/notes/"+note.ID+"/shares",
		map[string]any{"email": "bob@example.com"},
		"Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestRevokeShare_LastShareGoesPrivate(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "plans")
	share := ts.shareNote(t, aliceToken, note.ID, "bob@example.com")

	resp := ts.api.Delete("/api/v1/shares/"+share.ID, "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, "PRIVATE", ts.noteVisibility(t, aliceToken, note.ID))
	resp = ts.api.Get("/api/v1/notes/"+note.ID, "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestListNoteShares_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	bobToken, _ := ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "plans")
	ts.shareNote(t, aliceToken, note.ID, "bob@example.com")

	resp := ts.api.Get("/api/v1/notes/"+note.ID+"/shares", "Authorization: Bearer "+aliceToken)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListSharesResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Shares, 1)

	resp = ts.api.Get("/api/v1/notes/"+note.ID+"/shares", "Authorization: Bearer "+bobToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestPublicLink_Lifecycle(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	note := ts.createNote(t, aliceToken, "plans")

	link := ts.createLink(t, aliceToken, note.ID)
	assert.NotEmpty(t, link.Token)
	assert.Contains(t, link.URL, "/p/"+link.Token)
	assert.Equal(t, "PUBLIC", ts.noteVisibility(t, aliceToken, note.ID))

	// Creating again returns the same link.
	again := ts.createLink(t, aliceToken, note.ID)
	assert.Equal(t, link.ID, again.ID)
	assert.Equal(t, link.Token, again.Token)

	// The owner can inspect it.
	resp := ts.api.Get("/api/v1/notes/"+note.ID+"/link", "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Anyone resolves it anonymously.
	resp = ts.api.Get("/api/v1/p/" + link.Token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[NoteResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, note.ID, envelope.Data.ID)

	// Revoking demotes the note to PRIVATE and drops the token.
	resp = ts.api.Delete("/api/v1/links/"+link.ID, "Authorization: Bearer "+aliceToken)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "PRIVATE", ts.noteVisibility(t, aliceToken, note.ID))

	resp = ts.api.Get("/api/v1/p/" + link.Token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPublicLink_SurvivesShareOverwrite(t *testing.T) {
	ts := setupTestServer(t)

	aliceToken, _ := ts.registerUser(t, "alice@example.com")
	ts.registerUser(t, "bob@example.com")

	note := ts.createNote(t, aliceToken, "plans")
	link := ts.createLink(t, aliceToken, note.ID)

	// A later grant overwrites PUBLIC with SHARED, but the token keeps
	// resolving.
	ts.shareNote(t, aliceToken, note.ID, "bob@example.com")
	assert.Equal(t, "SHARED", ts.noteVisibility(t, aliceToken, note.ID))

	resp := ts.api.Get("/api/v1/p/" + link.Token)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestResolvePublicLink_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/p/no-such-token")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
