package providers

import (
	"github.com/samber/do/v2"

	"github.com/notableapp/notable-server/internal/auth"
	"github.com/notableapp/notable-server/internal/logger"
	"github.com/notableapp/notable-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideNoteLocker provides the per-note mutex shared by the note and
// share services.
func ProvideNoteLocker(i do.Injector) (*service.NoteLocker, error) {
	return service.NewNoteLocker(), nil
}

// ProvideNoteService provides the note service.
func ProvideNoteService(i do.Injector) (*service.NoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	locks := do.MustInvoke[*service.NoteLocker](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewNoteService(storeHandle.Store, locks, log.Logger), nil
}

// ProvideShareService provides the sharing service.
func ProvideShareService(i do.Injector) (*service.ShareService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	locks := do.MustInvoke[*service.NoteLocker](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShareService(storeHandle.Store, locks, log.Logger), nil
}
