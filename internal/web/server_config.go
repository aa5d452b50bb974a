package web

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
)

const (
	EnvListenAddr = "BONGO_LISTEN"
	EnvDevMode    = "BONGO_DEV"
)

// ServerConfig contains settings for running the status server.
//
// The defaults differ per binary:
// - overlay:   disabled unless an address is configured
// - simulator: :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
}

// ServerConfigFromEnv lets BONGO_LISTEN and BONGO_DEV override base.
func ServerConfigFromEnv(base ServerConfig) (ServerConfig, error) {
	if listenAddr := os.Getenv(EnvListenAddr); listenAddr != "" {
		base.ListenAddr = listenAddr
	}
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, errors.Wrapf(err, "%s must be a boolean (got %q)", EnvDevMode, raw)
		}
		base.DevMode = parsed
	}
	return base, nil
}
