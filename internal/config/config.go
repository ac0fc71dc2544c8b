package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"launcher/internal/extension"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultManifestTTL = time.Hour
	DefaultLogLevel    = "info"

	configDirName  = "launcher"
	configFileName = "config.yaml"
	cacheDirName   = "cache"
)

var extensionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

type Config struct {
	Extensions  map[string]extension.Extension `yaml:"extensions,omitempty"`
	Timeout     string                         `yaml:"timeout,omitempty"`
	ManifestTTL string                         `yaml:"manifest_ttl,omitempty"`
	LogLevel    string                         `yaml:"log_level,omitempty"`

	path string
}

// Dir returns the configuration directory. LAUNCHER_CONFIG_DIR overrides the
// OS default.
func Dir() (string, error) {
	if dir := os.Getenv("LAUNCHER_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName), nil
}

// CacheDir returns where cached manifests live.
func CacheDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cacheDirName), nil
}

// Load reads the config file, writing one with defaults if it does not exist.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(dir, configFileName))
}

// LoadFile reads the config at path, writing one with defaults if it does not exist.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.path = path

	if cfg.applyDefaults() {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to update config with defaults: %w", err)
		}
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() bool {
	updated := false
	defaults := DefaultConfig()

	if c.Timeout == "" {
		c.Timeout = defaults.Timeout
		updated = true
	}
	if c.ManifestTTL == "" {
		c.ManifestTTL = defaults.ManifestTTL
		updated = true
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
		updated = true
	}
	if c.Extensions == nil {
		c.Extensions = map[string]extension.Extension{}
	}

	return updated
}

func DefaultConfig() *Config {
	return &Config{
		Extensions:  map[string]extension.Extension{},
		Timeout:     DefaultTimeout.String(),
		ManifestTTL: DefaultManifestTTL.String(),
		LogLevel:    DefaultLogLevel,
	}
}

// Path is the file the config was loaded from
func (c *Config) Path() string { return c.path }

func (c *Config) Save() error {
	if c.path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, configFileName)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return err
	}

	data, err := yamlv3.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0o600)
}

// Registry returns the registered extensions.
func (c *Config) Registry() extension.Registry {
	return extension.Registry(c.Extensions)
}

// AddExtension registers ext under name, replacing any previous entry.
func (c *Config) AddExtension(name string, ext extension.Extension) error {
	if !extensionName.MatchString(name) {
		return fmt.Errorf("invalid extension name %q: use lowercase letters, digits, '-' and '_'", name)
	}
	if c.Extensions == nil {
		c.Extensions = map[string]extension.Extension{}
	}
	ext.Name = ""
	c.Extensions[name] = ext
	return nil
}

// RemoveExtension unregisters name.
func (c *Config) RemoveExtension(name string) error {
	if _, ok := c.Extensions[name]; !ok {
		return fmt.Errorf("extension %q is not registered", name)
	}
	delete(c.Extensions, name)
	return nil
}

func (c *Config) GetTimeout() time.Duration {
	return durationSetting(os.Getenv("LAUNCHER_TIMEOUT"), c.Timeout, DefaultTimeout)
}

func (c *Config) GetManifestTTL() time.Duration {
	return durationSetting(os.Getenv("LAUNCHER_MANIFEST_TTL"), c.ManifestTTL, DefaultManifestTTL)
}

func (c *Config) GetLogLevel() string {
	if env := os.Getenv("LAUNCHER_LOG_LEVEL"); env != "" {
		return env
	}
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

func durationSetting(env, value string, fallback time.Duration) time.Duration {
	for _, s := range []string{env, value} {
		if s == "" {
			continue
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return fallback
}

// Keys lists the scalar settings accepted by Get and Set.
func Keys() []string {
	return []string{"log_level", "manifest_ttl", "timeout"}
}

// Get returns the effective value of a scalar setting.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "timeout":
		return c.GetTimeout().String(), nil
	case "manifest_ttl":
		return c.GetManifestTTL().String(), nil
	case "log_level":
		return c.GetLogLevel(), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set validates and stores a scalar setting. It does not save.
func (c *Config) Set(key, value string) error {
	switch key {
	case "timeout", "manifest_ttl":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
		if key == "timeout" {
			c.Timeout = d.String()
		} else {
			c.ManifestTTL = d.String()
		}
	case "log_level":
		switch value {
		case "debug", "info", "warn", "error":
			c.LogLevel = value
		default:
			return fmt.Errorf("invalid log level %q: use debug, info, warn or error", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
