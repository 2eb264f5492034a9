package ports

import (
	"context"

	"github.com/chalktalk/studio/internal/domain/entities"
)

// ConfigLoader loads configuration files from the hierarchy.
type ConfigLoader interface {
	// LoadGlobal loads the user-global config, creating it with defaults on
	// first use
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads the project-local config from workingDir; nil when the
	// file does not exist
	LoadLocal(ctx context.Context, workingDir string) (*entities.Config, error)

	// GetGlobalPath returns the global config file path
	GetGlobalPath() string

	// CreateDefaults writes a default config file at path
	CreateDefaults(ctx context.Context, path string) error
}

// ConfigMerger merges configuration layers and applies overrides.
type ConfigMerger interface {
	// Merge merges configs left to right, later values winning; with no
	// arguments it returns the defaults
	Merge(configs ...*entities.Config) *entities.Config

	// ApplyEnvVars overlays environment variable overrides
	ApplyEnvVars(config *entities.Config) *entities.Config

	// ApplyFlags overlays CLI flag overrides, the highest precedence layer
	ApplyFlags(config *entities.Config, flags map[string]interface{}) *entities.Config
}

// ConfigService resolves the effective configuration.
type ConfigService interface {
	// LoadConfig loads and merges defaults, global, local, env, and flags
	LoadConfig(ctx context.Context, workingDir string, flags map[string]interface{}) (*entities.Config, error)

	// GetDefaultConfig returns the built-in defaults
	GetDefaultConfig() *entities.Config

	// ValidateConfig validates a configuration
	ValidateConfig(config *entities.Config) error
}
