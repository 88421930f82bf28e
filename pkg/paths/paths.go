// Package paths provides centralized path handling for loom, following
// the XDG Base Directory specification. Library recipes and templates
// live under the XDG data directory, the engine config under the XDG
// config directory. Project-local directories passed on the command
// line always come before these on a search path.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable overrides
const (
	// EnvDataDir overrides the XDG data directory for loom
	EnvDataDir = "LOOM_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for loom
	EnvConfigDir = "LOOM_CONFIG_DIR"
)

// Names under loom's own directories. These define loom's layout and
// are not user-configurable.
const (
	AppDirName = "loom"

	// RecipesDirName is the subdirectory recipe definitions live in
	RecipesDirName = "recipes"

	// TemplatesDirName is the subdirectory template payloads live in
	TemplatesDirName = "templates"

	// ConfigFileName is the engine configuration file
	ConfigFileName = "loom.toml"
)

// Paths resolves loom's own directories
type Paths struct {
	dataDir   string
	configDir string
}

// New resolves paths from the environment
func New() *Paths {
	dataDir := os.Getenv(EnvDataDir)
	if dataDir == "" {
		dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	return &Paths{dataDir: dataDir, configDir: configDir}
}

// DataDir returns the directory for library recipes and templates
func (p *Paths) DataDir() string {
	return p.dataDir
}

// ConfigDir returns the directory for the engine configuration
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// ConfigFilePath returns the default engine config file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// RecipeSearchPath returns recipe directories in precedence order:
// explicit directories first, then the config dir, then the data dir.
func (p *Paths) RecipeSearchPath(extra []string) []string {
	out := append([]string{}, extra...)
	out = append(out,
		filepath.Join(p.configDir, RecipesDirName),
		filepath.Join(p.dataDir, RecipesDirName),
	)
	return out
}

// TemplateSearchPath returns template directories in precedence order
func (p *Paths) TemplateSearchPath(extra []string) []string {
	out := append([]string{}, extra...)
	out = append(out,
		filepath.Join(p.configDir, TemplatesDirName),
		filepath.Join(p.dataDir, TemplatesDirName),
	)
	return out
}
