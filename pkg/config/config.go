package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/postinstall/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

const (
	// EnvPrefix is the prefix of configuration environment variables
	EnvPrefix = "POSTINSTALL_"

	// AppDirName is the directory name under XDG_CONFIG_HOME
	AppDirName = "postinstall"

	// UserConfigFile is the user configuration file name
	UserConfigFile = "config.toml"
)

// Config is the effective configuration of a run
type Config struct {
	Launcher Launcher `koanf:"launcher"`
	Icons    Tool     `koanf:"icons"`
	Schemas  Tool     `koanf:"schemas"`
	Desktop  Tool     `koanf:"desktop"`
	Commands Commands `koanf:"commands"`
	Manifest Manifest `koanf:"manifest"`
	Run      Run      `koanf:"run"`
	Output   Output   `koanf:"output"`

	// Sources lists the files that were loaded, in order
	Sources []string `koanf:"-"`

	raw map[string]interface{}
}

// Launcher configures the launcher symlink
type Launcher struct {
	Name    string      `koanf:"name"`
	DirMode os.FileMode `koanf:"dirmode"`
}

// Tool configures one external tool
type Tool struct {
	Enabled bool     `koanf:"enabled"`
	Command string   `koanf:"command"`
	Args    []string `koanf:"args"`
}

// Commands holds settings shared by every external command
type Commands struct {
	Timeout time.Duration `koanf:"timeout"`
}

// Manifest configures the install manifest
type Manifest struct {
	Path string `koanf:"path"`
}

// Run holds run-wide switches
type Run struct {
	Strict bool `koanf:"strict"`
	DryRun bool `koanf:"dryrun"`
}

// Output configures rendering
type Output struct {
	Format string `koanf:"format"`
}

// Options controls where configuration is loaded from
type Options struct {
	// File is an explicit configuration file (.toml, .yaml or .yml)
	File string

	// SkipUserConfig disables loading the XDG user config file
	SkipUserConfig bool

	// SkipEnv disables POSTINSTALL_* environment variables
	SkipEnv bool

	// Overrides are applied last, keyed by dotted path (e.g. "launcher.name")
	Overrides map[string]interface{}
}

// Load builds the configuration from all sources
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")
	var sources []string

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config if it exists
	if !opts.SkipUserConfig {
		path := UserConfigPath()
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to load user config from %s", path)
			}
			sources = append(sources, path)
		}
	}

	// 3. Explicit config file
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad,
				"config file not readable: %s", opts.File)
		}
		if err := k.Load(file.Provider(opts.File), parserFor(opts.File)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"failed to load config from %s", opts.File)
		}
		sources = append(sources, opts.File)
	}

	// 4. Environment
	if !opts.SkipEnv {
		err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
			return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
		}), nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	// 5. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	cfg.Sources = sources
	cfg.raw = k.Raw()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the embedded defaults only
func Default() (*Config, error) {
	return Load(Options{SkipUserConfig: true, SkipEnv: true})
}

// Validate checks the configuration for values a run cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Launcher.Name) == "" {
		return errors.New(errors.ErrConfigValid, "launcher.name must not be empty")
	}
	if strings.ContainsRune(c.Launcher.Name, filepath.Separator) {
		return errors.Newf(errors.ErrConfigValid,
			"launcher.name must not contain a path separator: %s", c.Launcher.Name)
	}
	if c.Commands.Timeout <= 0 {
		return errors.Newf(errors.ErrConfigValid,
			"commands.timeout must be positive, got %s", c.Commands.Timeout)
	}

	tools := map[string]Tool{"icons": c.Icons, "schemas": c.Schemas, "desktop": c.Desktop}
	for name, tool := range tools {
		if tool.Enabled && strings.TrimSpace(tool.Command) == "" {
			return errors.Newf(errors.ErrConfigValid, "%s.command must be set when %s is enabled", name, name)
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case "", "auto", "term", "terminal", "text", "plain", "json", "yaml", "toml":
	default:
		return errors.Newf(errors.ErrConfigValid, "unknown output.format: %s", c.Output.Format)
	}
	return nil
}

// Dump renders the effective configuration as TOML
func (c *Config) Dump() ([]byte, error) {
	if c.raw == nil {
		return nil, errors.New(errors.ErrInternal, "configuration was not loaded")
	}
	out, err := gotoml.Marshal(c.raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to render configuration")
	}
	return out, nil
}

// UserConfigPath returns the user configuration file location
func UserConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = xdg.ConfigHome
	}
	return filepath.Join(configHome, AppDirName, UserConfigFile)
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// String summarizes the config for debug logs
func (c *Config) String() string {
	return fmt.Sprintf("launcher=%s icons=%t schemas=%t desktop=%t manifest=%q strict=%t",
		c.Launcher.Name, c.Icons.Enabled, c.Schemas.Enabled, c.Desktop.Enabled, c.Manifest.Path, c.Run.Strict)
}
