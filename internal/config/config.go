// Package config handles nvms configuration using Viper.
//
// Values are resolved in this order: flags bound by the caller, NVMS_* environment
// variables, the YAML config file, and finally the built-in defaults.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/nvms/internal/errors"
)

// EnvPrefix is the prefix for environment overrides (NVMS_API_URL, NVMS_LOG_LEVEL, ...).
const EnvPrefix = "NVMS"

// Config holds the client configuration.
type Config struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Auth   AuthConfig   `mapstructure:"auth" yaml:"auth"`
	Search SearchConfig `mapstructure:"search" yaml:"search"`
	Nav    NavConfig    `mapstructure:"nav" yaml:"nav"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// APIConfig describes the REST backend.
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int           `mapstructure:"burst" yaml:"burst"`
}

// AuthConfig locates the persisted token pair.
type AuthConfig struct {
	TokenFile string `mapstructure:"token_file" yaml:"token_file"`
}

// SearchConfig tunes the searchable select.
type SearchConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// NavConfig controls the navigation permission policy.
type NavConfig struct {
	AdminGroup    string `mapstructure:"admin_group" yaml:"admin_group"`
	AdminOverride bool   `mapstructure:"admin_override" yaml:"admin_override"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig holds command output settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

// Dir returns the per-user nvms directory (~/.nvms).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nvms"
	}
	return filepath.Join(home, ".nvms")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api/",
			Timeout:   30 * time.Second,
			RateLimit: 20,
			Burst:     10,
		},
		Auth: AuthConfig{
			TokenFile: filepath.Join(Dir(), "tokens.json"),
		},
		Search: SearchConfig{
			URL:      "projects/",
			Debounce: 300 * time.Millisecond,
		},
		Nav: NavConfig{
			AdminGroup:    "Admin",
			AdminOverride: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// defaultValues lists every key with its built-in value.
func defaultValues() map[string]any {
	d := Defaults()
	return map[string]any{
		"api.base_url":       d.API.BaseURL,
		"api.timeout":        d.API.Timeout,
		"api.rate_limit":     d.API.RateLimit,
		"api.burst":          d.API.Burst,
		"auth.token_file":    d.Auth.TokenFile,
		"search.url":         d.Search.URL,
		"search.debounce":    d.Search.Debounce,
		"nav.admin_group":    d.Nav.AdminGroup,
		"nav.admin_override": d.Nav.AdminOverride,
		"log.level":          d.Log.Level,
		"log.format":         d.Log.Format,
		"output.format":      d.Output.Format,
	}
}

// Keys returns the supported dotted keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaultValues()))
	for k := range defaultValues() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaultValues() {
		v.SetDefault(k, val)
	}
}

// EnvFile is the dotenv file read from the working directory before configuration loads.
const EnvFile = ".env"

// LoadEnvFile exports the NVMS_* style assignments in path into the process
// environment. Variables that are already set win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.NewFileUnmarshalError(path, "dotenv", err)
	}
	return nil
}

// NewViper returns a viper instance with defaults and environment binding set up.
// Callers may bind flags on it before passing it to Load.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// NVMS_API_URL is the documented name for the backend address.
	_ = v.BindEnv("api.base_url", EnvPrefix+"_API_URL", EnvPrefix+"_API_BASE_URL")
	return v
}

// Load reads configuration from file and environment.
// A missing config file is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}

	cfg.Auth.TokenFile = expandHome(cfg.Auth.TokenFile)
	cfg.API.BaseURL = normalizeBaseURL(cfg.API.BaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the client cannot run without.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.NewConfigInvalidError("api.base_url is empty")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return errors.NewConfigInvalidError("api.base_url must start with http:// or https://")
	}
	if c.Auth.TokenFile == "" {
		return errors.NewConfigInvalidError("auth.token_file is empty")
	}
	if c.API.RateLimit < 0 {
		return errors.NewConfigInvalidError("api.rate_limit must not be negative")
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		return errors.NewConfigInvalidError("api.burst must be at least 1 when api.rate_limit is set")
	}
	if c.Search.Debounce < 0 {
		return errors.NewConfigInvalidError("search.debounce must not be negative")
	}
	return nil
}

// Save writes the configuration as YAML, creating the parent directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create config directory", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config file", err)
	}
	return nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to encode configuration", err)
	}
	return data, nil
}

// Set returns the configuration stored at path with key changed to value.
// Only the file and the defaults are consulted, so environment overrides never
// leak into the saved file.
func Set(path, key, value string) (*Config, error) {
	if _, ok := defaultValues()[key]; !ok {
		return nil, errors.NewConfigInvalidError("unknown key " + key)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeConfigRead, "failed to read config file", err)
	}
	v.Set(key, value)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to decode configuration", err)
	}
	cfg.API.BaseURL = normalizeBaseURL(cfg.API.BaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeBaseURL guarantees a trailing slash so relative resource paths join cleanly.
func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	if u != "" && !strings.HasSuffix(u, "/") {
		u += "/"
	}
	return u
}

func expandHome(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
