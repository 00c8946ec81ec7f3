package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "PIXELTOY_LISTEN"
	EnvDevMode    = "PIXELTOY_DEV"
	EnvPanelURL   = "PIXELTOY_PANEL_URL"
)

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - real device: :80
// - simulator:   :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	// PanelURL is advertised in the HUD QR code; empty disables the code.
	PanelURL string
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, PanelURL: os.Getenv(EnvPanelURL)}, nil
}
