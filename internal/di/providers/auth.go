package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/notableapp/notable-server/internal/auth"
	"github.com/notableapp/notable-server/internal/config"
	"github.com/notableapp/notable-server/internal/logger"
)

// AuthKey holds the hex-encoded PASETO key.
type AuthKey string

// ProvideAuthKey loads or generates the authentication key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	keyHex, err := auth.LoadOrGenerateKey(cfg.AuthKeyPath())
	if err != nil {
		return "", err
	}

	// Update config with the loaded key.
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return "", err
	}
	cfg.Auth.AccessTokenKey = keyBytes

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(keyHex), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	authKey := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(authKey), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}
