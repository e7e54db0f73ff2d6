package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julianstephens/habitsync/internal/constants"
)

// EnvPrefix namespaces environment overrides (HABITSYNC_API_URL, ...).
const EnvPrefix = "HABITSYNC"

// APIConfig locates the remote habit service.
type APIConfig struct {
	URL     string        `mapstructure:"url" yaml:"url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// TokenConfig selects where the session token is persisted.
type TokenConfig struct {
	// Backend is "os" (system keyring) or "file" (encrypted file vault).
	Backend      string `mapstructure:"backend" yaml:"backend"`
	FileDir      string `mapstructure:"file_dir" yaml:"file_dir"`
	FilePassword string `mapstructure:"file_password" yaml:"file_password"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Debug bool   `mapstructure:"debug" yaml:"debug"`
	Dir   string `mapstructure:"dir" yaml:"dir"`
}

// Config is the top-level application configuration.
type Config struct {
	API   APIConfig   `mapstructure:"api" yaml:"api"`
	Token TokenConfig `mapstructure:"token" yaml:"token"`
	Log   LogConfig   `mapstructure:"log" yaml:"log"`
}

// Dir returns ~/.config/habitsync, falling back to the working directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", constants.AppName)
}

// DefaultPath returns the default path for the configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file or env overrides exist.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     constants.DefaultAPIURL,
			Timeout: constants.DefaultAPITimeout,
		},
		Token: TokenConfig{
			Backend: constants.TokenBackendOS,
			FileDir: filepath.Join(Dir(), "credentials"),
		},
		Log: LogConfig{
			Dir: filepath.Join(Dir(), constants.LogDirName),
		},
	}
}

// Load reads configuration from a .env file (if present), the YAML file at
// path and HABITSYNC_* environment variables, in increasing precedence. A
// missing config file yields defaults.
func Load(path string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	def := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.url", def.API.URL)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("token.backend", def.Token.Backend)
	v.SetDefault("token.file_dir", def.Token.FileDir)
	v.SetDefault("token.file_password", "")
	v.SetDefault("log.debug", false)
	v.SetDefault("log.dir", def.Log.Dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.url must be an absolute http(s) URL, got %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch c.Token.Backend {
	case constants.TokenBackendOS, constants.TokenBackendFile:
	default:
		return fmt.Errorf("token.backend must be %q or %q, got %q",
			constants.TokenBackendOS, constants.TokenBackendFile, c.Token.Backend)
	}
	return nil
}

// Save writes the configuration to a YAML file at path, creating parent
// directories if needed.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api.url", cfg.API.URL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("token.backend", cfg.Token.Backend)
	v.Set("token.file_dir", cfg.Token.FileDir)
	v.Set("log.debug", cfg.Log.Debug)
	v.Set("log.dir", cfg.Log.Dir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
