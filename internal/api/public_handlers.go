package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPublicRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "resolvePublicLink",
		Method:      http.MethodGet,
		Path:        "/api/v1/p/{token}",
		Summary:     "Resolve public link",
		Description: "Returns the note behind a public link token. No authentication: possession of an unexpired token is the whole credential.",
		Tags:        []string{"Public"},
	}, s.handleResolvePublicLink)
}

// ResolvePublicLinkInput contains the token path parameter.
type ResolvePublicLinkInput struct {
	Token string `path:"token" doc:"Public link token"`
}

func (s *Server) handleResolvePublicLink(ctx context.Context, input *ResolvePublicLinkInput) (*NoteOutput, error) {
	note, err := s.services.Shares.GetNoteByPublicToken(ctx, input.Token)
	if err != nil {
		return nil, err
	}

	return &NoteOutput{Body: mapNoteResponse(note)}, nil
}
