package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notableapp/notable-server/internal/domain"
	"github.com/notableapp/notable-server/internal/service"
	"github.com/notableapp/notable-server/internal/store"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createNote",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes",
		Summary:     "Create note",
		Description: "Creates a new note owned by the authenticated user",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "Search notes",
		Description: "Returns the notes visible to the authenticated user, filtered and paginated",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get note",
		Description: "Returns a note by ID if the caller may read it. PUBLIC notes need no authentication.",
		Tags:        []string{"Notes"},
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update note",
		Description: "Updates a note. Only the owner can update.",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete note",
		Description: "Deletes a note along with its shares, public link, and tag associations",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag label known to the system",
		Tags:        []string{"Tags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListTags)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID        string    `json:"id" doc:"Tag ID"`
	Label     string    `json:"label" doc:"Tag label (case sensitive)"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// NoteResponse contains note data in API responses.
type NoteResponse struct {
	ID         string        `json:"id" doc:"Note ID"`
	OwnerID    string        `json:"owner_id" doc:"Owning user ID"`
	Title      string        `json:"title" doc:"Note title"`
	Content    string        `json:"content" doc:"Note content"`
	Visibility string        `json:"visibility" doc:"PRIVATE, SHARED, or PUBLIC"`
	Tags       []TagResponse `json:"tags" doc:"Tags on this note"`
	CreatedAt  time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time     `json:"updated_at" doc:"Last update time"`
}

// NoteOutput wraps the note response for Huma.
type NoteOutput struct {
	Body NoteResponse
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=255" doc:"Note title"`
	Content    string   `json:"content" validate:"max=50000" doc:"Note content"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=PRIVATE PUBLIC" doc:"Initial visibility; SHARED is not allowed"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,max=64" doc:"Tag labels"`
}

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	Body CreateNoteRequest
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Title      string   `json:"title" validate:"required,max=255" doc:"Note title"`
	Content    string   `json:"content" validate:"max=50000" doc:"Note content"`
	Visibility string   `json:"visibility,omitempty" validate:"omitempty,oneof=PRIVATE PUBLIC" doc:"New visibility; empty keeps the current state, SHARED is not allowed"`
	Tags       []string `json:"tags,omitempty" validate:"omitempty,dive,max=64" doc:"Replacement tag labels; omit to keep the current set"`
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	ID   string `path:"id" doc:"Note ID"`
	Body UpdateNoteRequest
}

// GetNoteInput contains parameters for getting a note.
type GetNoteInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// DeleteNoteInput contains parameters for deleting a note.
type DeleteNoteInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// SearchNotesInput contains query parameters for searching notes.
type SearchNotesInput struct {
	Query      string `query:"q" doc:"Case-insensitive substring match against title and content"`
	Tag        string `query:"tag" doc:"Exact tag label filter (case sensitive)"`
	Visibility string `query:"visibility" doc:"Visibility filter (PRIVATE, SHARED, PUBLIC)"`
	OwnedOnly  bool   `query:"owned" doc:"Restrict to notes owned by the caller"`
	Page       int    `query:"page" doc:"Zero-based page index"`
	Size       int    `query:"size" doc:"Page size (default 20, max 100)"`
}

// SearchNotesResponse contains a page of notes.
type SearchNotesResponse struct {
	Notes      []NoteResponse `json:"notes" doc:"Notes on this page"`
	Total      int            `json:"total" doc:"Total matching notes"`
	Page       int            `json:"page" doc:"Zero-based page index"`
	Size       int            `json:"size" doc:"Page size"`
	TotalPages int            `json:"total_pages" doc:"Total number of pages"`
	HasMore    bool           `json:"has_more" doc:"Whether more pages follow"`
}

// SearchNotesOutput wraps the search response for Huma.
type SearchNotesOutput struct {
	Body SearchNotesResponse
}

// ListTagsResponse contains all known tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"All tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	note, err := s.services.Notes.Create(ctx, userID, service.CreateNoteInput{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Visibility: domain.Visibility(input.Body.Visibility),
		Tags:       input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TrackNoteOperation("create")
	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *GetNoteInput) (*NoteOutput, error) {
	// Anonymous callers reach PUBLIC notes with an empty user ID.
	note, err := s.services.Notes.Get(ctx, userIDOrEmpty(ctx), input.ID)
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	note, err := s.services.Notes.Update(ctx, userID, input.ID, service.UpdateNoteInput{
		Title:      input.Body.Title,
		Content:    input.Body.Content,
		Visibility: domain.Visibility(input.Body.Visibility),
		Tags:       input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TrackNoteOperation("update")
	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *DeleteNoteInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Notes.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	s.metrics.TrackNoteOperation("delete")
	return &MessageOutput{Body: MessageResponse{Message: "Note deleted"}}, nil
}

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Notes.Search(ctx, userID,
		store.NoteFilter{
			Query:      input.Query,
			TagLabel:   input.Tag,
			Visibility: domain.Visibility(input.Visibility),
			OwnedOnly:  input.OwnedOnly,
		},
		store.PaginationParams{Page: input.Page, Size: input.Size},
	)
	if err != nil {
		return nil, err
	}

	notes := make([]NoteResponse, len(result.Items))
	for i, n := range result.Items {
		notes[i] = mapNoteResponse(n)
	}

	return &SearchNotesOutput{
		Body: SearchNotesResponse{
			Notes:      notes,
			Total:      result.Total,
			Page:       result.Page,
			Size:       result.Size,
			TotalPages: result.TotalPages,
			HasMore:    result.HasMore,
		},
	}, nil
}

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	tags, err := s.services.Notes.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = mapTagResponse(*t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

// === Helpers ===

func mapNoteResponse(n *domain.Note) NoteResponse {
	tags := make([]TagResponse, len(n.Tags))
	for i, t := range n.Tags {
		tags[i] = mapTagResponse(t)
	}

	return NoteResponse{
		ID:         n.ID,
		OwnerID:    n.OwnerID,
		Title:      n.Title,
		Content:    n.Content,
		Visibility: string(n.Visibility),
		Tags:       tags,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

func mapTagResponse(t domain.Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Label:     t.Label,
		CreatedAt: t.CreatedAt,
	}
}
