package api

import "github.com/notableapp/notable-server/internal/service"

// Services groups the service-layer dependencies handlers reach for.
type Services struct {
	Auth   *service.AuthService
	Notes  *service.NoteService
	Shares *service.ShareService
}
