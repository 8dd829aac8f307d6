package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Validate checks the broker connection values. Missing values are fatal in
// production; elsewhere they are logged and the defaults stand so local
// development works without a realm.
func Validate(cfg Config) error {
	missing := []string{}
	if cfg.GetKeycloakURL() == "" {
		missing = append(missing, "KEYCLOAK_URL")
	}
	if cfg.GetKeycloakRealm() == "" {
		missing = append(missing, "KEYCLOAK_REALM")
	}
	if cfg.GetClientID() == "" {
		missing = append(missing, "CLIENT_ID")
	}
	if len(missing) == 0 {
		return nil
	}

	if strings.EqualFold(cfg.GetEnv(), "production") {
		return errors.Errorf("[Validate] missing required environment variables: %s", strings.Join(missing, ", "))
	}
	log.Warn().Strs("missing", missing).Msg("missing environment variables, continuing with defaults")
	return nil
}
