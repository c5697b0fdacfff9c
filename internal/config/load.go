package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME and the user cache dir.
	ConfigDir = "rgraph"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// CacheFile is the default SQLite cache file name.
	CacheFile = "cache.db"
)

// Environment variables that override the config file.
const (
	EnvS2APIKey       = "S2_API_KEY"
	EnvOpenAlexMailto = "OPENALEX_MAILTO"
	EnvSource         = "RGRAPH_SOURCE"
	EnvListen         = "RGRAPH_LISTEN"
	EnvCache          = "RGRAPH_CACHE"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvOllamaURL      = "OLLAMA_URL"
)

// loadedConfig caches the config loaded from the default path.
var loadedConfig *Config

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rgraph/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// CachePath returns the default SQLite cache location.
func CachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ConfigDir, CacheFile)
	}
	return filepath.Join(dir, ConfigDir, CacheFile)
}

// Load reads the config file at path over the defaults, applies environment
// overrides, and validates the result. A missing file is not an error. An
// empty path means Path().
func Load(path string) (*Config, error) {
	if path == "" {
		if loadedConfig != nil {
			return loadedConfig, nil
		}
		path = Path()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if path == Path() {
		loadedConfig = cfg
	}
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	loadedConfig = nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvS2APIKey); v != "" {
		c.S2APIKey = v
	}
	if v := os.Getenv(EnvOpenAlexMailto); v != "" {
		c.OpenAlexMailto = v
	}
	if v := os.Getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvCache); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" {
		c.LLM.URL = v
	}
}

// YAML renders the config for display, with secrets masked.
func (c *Config) YAML() ([]byte, error) {
	shown := *c
	if shown.S2APIKey != "" {
		shown.S2APIKey = "********"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return data, nil
}
