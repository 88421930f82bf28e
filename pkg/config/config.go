// Package config loads loom's engine configuration. Layers, lowest to
// highest precedence: built-in defaults, the loom.toml file, then
// LOOM_* environment variables. Recipes never read this configuration;
// it shapes the engine around them (search paths, installer, scope
// surfaces), not their content.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/loom/pkg/errors"
	"github.com/arthur-debert/loom/pkg/install"
	"github.com/arthur-debert/loom/pkg/logging"
)

// EnvPrefix is the prefix for environment overrides. A double
// underscore separates nesting levels so keys may themselves contain
// underscores, e.g. LOOM_INSTALLER__COMMAND maps to installer.command.
const EnvPrefix = "LOOM_"

// Config is the engine configuration
type Config struct {
	// RecipeDirs are extra recipe directories searched before the
	// XDG library directories
	RecipeDirs []string `koanf:"recipe_dirs"`

	// TemplateDirs are extra template directories searched before the
	// XDG library directories
	TemplateDirs []string `koanf:"template_dirs"`

	// CommandTimeout bounds each shell operation and the installer
	CommandTimeout time.Duration `koanf:"command_timeout"`

	// Installer receives the finalized dependency list
	Installer install.CommandSpec `koanf:"installer"`

	// Formatter runs over the generated tree after install
	Formatter install.CommandSpec `koanf:"formatter"`

	// Scopes maps scope names to config surface paths, overriding the
	// built-in layout
	Scopes map[string]string `koanf:"scopes"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"command_timeout": "5m",
	}
}

// Load reads the configuration, layering defaults, the given file (if
// it exists) and the environment. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	logger := logging.GetLogger("config")

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to parse config file %s", path)
			}
			logger.Debug().Str("path", path).Msg("Loaded config file")
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode config")
	}

	return &cfg, nil
}

func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
