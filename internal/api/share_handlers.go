package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/notableapp/notable-server/internal/domain"
)

func (s *Server) registerShareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "shareNote",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/shares",
		Summary:     "Share note",
		Description: "Grants read access on a note to another user by email and sets the note's visibility to SHARED",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleShareNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listNoteShares",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}/shares",
		Summary:     "List note shares",
		Description: "Returns the shares of a note. Only the owner can inspect them.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNoteShares)

	huma.Register(s.api, huma.Operation{
		OperationID: "revokeShare",
		Method:      http.MethodDelete,
		Path:        "/api/v1/shares/{id}",
		Summary:     "Revoke share",
		Description: "Removes a grant by share ID. Revoking the last share of a SHARED note makes it PRIVATE.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokeShare)

	huma.Register(s.api, huma.Operation{
		OperationID: "createPublicLink",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/link",
		Summary:     "Create public link",
		Description: "Publishes a note behind an unguessable token and sets its visibility to PUBLIC. Idempotent: an existing link is returned unchanged.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreatePublicLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPublicLink",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}/link",
		Summary:     "Get public link",
		Description: "Returns the note's public link. Only the owner can inspect it.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPublicLink)

	huma.Register(s.api, huma.Operation{
		OperationID: "revokePublicLink",
		Method:      http.MethodDelete,
		Path:        "/api/v1/links/{id}",
		Summary:     "Revoke public link",
		Description: "Deletes a public link by ID and sets its note's visibility to PRIVATE",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokePublicLink)
}

// === DTOs ===

// ShareResponse contains share data in API responses.
type ShareResponse struct {
	ID               string    `json:"id" doc:"Share ID"`
	NoteID           string    `json:"note_id" doc:"Shared note ID"`
	SharedWithUserID string    `json:"shared_with_user_id" doc:"Recipient user ID"`
	SharedByUserID   string    `json:"shared_by_user_id" doc:"Granting user ID"`
	Permission       string    `json:"permission" doc:"Granted permission (READ)"`
	CreatedAt        time.Time `json:"created_at" doc:"Grant time"`
}

// ShareOutput wraps the share response for Huma.
type ShareOutput struct {
	Body ShareResponse
}

// ShareNoteRequest is the request body for sharing a note.
type ShareNoteRequest struct {
	Email string `json:"email" validate:"required,email,max=254" doc:"Recipient email address"`
}

// ShareNoteInput wraps the share request for Huma.
type ShareNoteInput struct {
	ID   string `path:"id" doc:"Note ID"`
	Body ShareNoteRequest
}

// ListNoteSharesInput contains parameters for listing a note's shares.
type ListNoteSharesInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// ListSharesResponse contains the shares of a note.
type ListSharesResponse struct {
	Shares []ShareResponse `json:"shares" doc:"Active shares"`
}

// ListSharesOutput wraps the list shares response for Huma.
type ListSharesOutput struct {
	Body ListSharesResponse
}

// RevokeShareInput contains parameters for revoking a share.
type RevokeShareInput struct {
	ID string `path:"id" doc:"Share ID"`
}

// PublicLinkResponse contains public link data in API responses.
type PublicLinkResponse struct {
	ID        string     `json:"id" doc:"Link ID"`
	NoteID    string     `json:"note_id" doc:"Published note ID"`
	Token     string     `json:"token" doc:"Unguessable access token"`
	URL       string     `json:"url" doc:"Full public URL"`
	CreatedAt time.Time  `json:"created_at" doc:"Creation time"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Expiry time; absent means the link never expires"`
}

// PublicLinkOutput wraps the public link response for Huma.
type PublicLinkOutput struct {
	Body PublicLinkResponse
}

// CreatePublicLinkRequest is the request body for publishing a note.
type CreatePublicLinkRequest struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry; must be in the future"`
}

// CreatePublicLinkInput wraps the create link request for Huma.
type CreatePublicLinkInput struct {
	ID   string `path:"id" doc:"Note ID"`
	Body CreatePublicLinkRequest
}

// GetPublicLinkInput contains parameters for inspecting a note's link.
type GetPublicLinkInput struct {
	ID string `path:"id" doc:"Note ID"`
}

// RevokePublicLinkInput contains parameters for revoking a link.
type RevokePublicLinkInput struct {
	ID string `path:"id" doc:"Link ID"`
}

// === Handlers ===

func (s *Server) handleShareNote(ctx context.Context, input *ShareNoteInput) (*ShareOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	share, err := s.services.Shares.ShareWithUser(ctx, userID, input.ID, input.Body.Email)
	if err != nil {
		return nil, err
	}

	s.metrics.TrackNoteOperation("share")
	return &ShareOutput{Body: mapShareResponse(share)}, nil
}

func (s *Server) handleListNoteShares(ctx context.Context, input *ListNoteSharesInput) (*ListSharesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shares, err := s.services.Shares.ListShares(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]ShareResponse, len(shares))
	for i, sh := range shares {
		resp[i] = mapShareResponse(sh)
	}

	return &ListSharesOutput{Body: ListSharesResponse{Shares: resp}}, nil
}

func (s *Server) handleRevokeShare(ctx context.Context, input *RevokeShareInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shares.RevokeShare(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Share revoked"}}, nil
}

func (s *Server) handleCreatePublicLink(ctx context.Context, input *CreatePublicLinkInput) (*PublicLinkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.services.Shares.CreatePublicLink(ctx, userID, input.ID, input.Body.ExpiresAt)
	if err != nil {
		return nil, err
	}

	s.metrics.TrackNoteOperation("publish")
	return &PublicLinkOutput{Body: s.mapPublicLinkResponse(link)}, nil
}

func (s *Server) handleGetPublicLink(ctx context.Context, input *GetPublicLinkInput) (*PublicLinkOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.services.Shares.GetPublicLink(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &PublicLinkOutput{Body: s.mapPublicLinkResponse(link)}, nil
}

func (s *Server) handleRevokePublicLink(ctx context.Context, input *RevokePublicLinkInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Shares.RevokePublicLink(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Public link revoked"}}, nil
}

// === Helpers ===

func mapShareResponse(sh *domain.Share) ShareResponse {
	return ShareResponse{
		ID:               sh.ID,
		NoteID:           sh.NoteID,
		SharedWithUserID: sh.SharedWithUserID,
		SharedByUserID:   sh.SharedByUserID,
		Permission:       string(sh.Permission),
		CreatedAt:        sh.CreatedAt,
	}
}

func (s *Server) mapPublicLinkResponse(link *domain.PublicLink) PublicLinkResponse {
	return PublicLinkResponse{
		ID:        link.ID,
		NoteID:    link.NoteID,
		Token:     link.Token,
		URL:       s.config.Server.PublicBaseURL + link.PublicPath(),
		CreatedAt: link.CreatedAt,
		ExpiresAt: link.ExpiresAt,
	}
}
