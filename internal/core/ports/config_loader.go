package ports

import "go.trai.ch/notekeep/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load resolves the configuration from defaults, the optional YAML file at path,
	// the environment and the given overrides, in increasing order of precedence.
	// An empty path selects the default configuration file if it exists.
	Load(path string, overrides map[string]any) (*domain.Config, error)
}
