package cmd

import (
	"fmt"

	"github.com/geoquery/citysearch/pkg/backends"
	"github.com/geoquery/citysearch/pkg/config"
	"github.com/geoquery/citysearch/pkg/core"
	"github.com/geoquery/citysearch/pkg/log"
	"github.com/geoquery/citysearch/pkg/session"
)

// loadConfig reads the configuration and applies its debug setting. A
// missing file yields defaults.
func loadConfig(configPath string, debugFlag bool) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if debugFlag || cfg.Debug {
		log.SetGlobalDebug(true)
	}
	return cfg, nil
}

// newSession builds the registry and a session from the configuration. When
// backendName is non-empty it overrides the configured default.
func newSession(cfg *config.Config, backendName string, hooks session.Hooks) (*session.Session, *core.Registry, error) {
	registry, err := backends.NewRegistry(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("building backend registry: %w", err)
	}

	s, err := session.New(registry, cfg, hooks)
	if err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	if backendName != "" {
		if err := s.SetBackendByName(backendName); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
	}

	return s, registry, nil
}
