// Package config loads catalog settings from defaults, an optional YAML file,
// an optional .env file and CATALOG_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix      = "CATALOG_"
	ConfigFileEnv  = EnvPrefix + "CONFIG_FILE"
	defaultFile    = "config.yaml"
	defaultEnvFile = ".env"
)

type Config struct {
	Server struct {
		Port    int `koanf:"port"`
		Timeout struct {
			ReadHeader time.Duration `koanf:"readheader"`
			Shutdown   time.Duration `koanf:"shutdown"`
		} `koanf:"timeout"`
	} `koanf:"server"`

	Log struct {
		Level string `koanf:"level"`
	} `koanf:"log"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`

	RateLimit struct {
		Create struct {
			Limit  int           `koanf:"limit"`
			Window time.Duration `koanf:"window"`
		} `koanf:"create"`
	} `koanf:"ratelimit"`
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func (c Config) String() string {
	return fmt.Sprintf("server.port=%d server.timeout.readheader=%v server.timeout.shutdown=%v log.level=%s metrics.enabled=%t metrics.token=%s ratelimit.create.limit=%d ratelimit.create.window=%v",
		c.Server.Port,
		c.Server.Timeout.ReadHeader,
		c.Server.Timeout.Shutdown,
		c.Log.Level,
		c.Metrics.Enabled,
		mask(c.Metrics.Token),
		c.RateLimit.Create.Limit,
		c.RateLimit.Create.Window,
	)
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

var defaults = map[string]any{
	"server.port":               8082,
	"server.timeout.readheader": "5s",
	"server.timeout.shutdown":   "10s",
	"log.level":                 "info",
	"metrics.enabled":           true,
	"metrics.token":             "",
	"ratelimit.create.limit":    0,
	"ratelimit.create.window":   "1m",
}

type Loader struct {
	// File is the YAML file to read; a missing file is not an error.
	File string
	// EnvFile is the dotenv file to read; a missing file is not an error.
	EnvFile string
}

// Load reads configuration using the process environment and default file names.
func Load() (*Config, error) {
	path := os.Getenv(ConfigFileEnv)
	if path == "" {
		path = defaultFile
	}
	return Loader{File: path, EnvFile: defaultEnvFile}.Load()
}

func (l Loader) Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if l.File != "" {
		if err := k.Load(file.Provider(l.File), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", l.File, err)
		}
	}

	if l.EnvFile != "" {
		vars, err := godotenv.Read(l.EnvFile)
		switch {
		case err == nil:
			if err := k.Load(confmap.Provider(envMap(vars), "."), nil); err != nil {
				return nil, fmt.Errorf("load %s: %w", l.EnvFile, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", l.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Timeout.ReadHeader <= 0 {
		return fmt.Errorf("invalid read header timeout: %v", c.Server.Timeout.ReadHeader)
	}
	if c.Server.Timeout.Shutdown <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %v", c.Server.Timeout.Shutdown)
	}
	if c.RateLimit.Create.Limit < 0 {
		return fmt.Errorf("invalid create rate limit: %d", c.RateLimit.Create.Limit)
	}
	if c.RateLimit.Create.Limit > 0 && c.RateLimit.Create.Window <= 0 {
		return fmt.Errorf("invalid create rate window: %v", c.RateLimit.Create.Window)
	}
	return nil
}

// envMap turns dotenv entries into koanf paths, dropping keys without the prefix.
func envMap(vars map[string]string) map[string]any {
	out := make(map[string]any, len(vars))
	for key, value := range vars {
		if path := envKey(key); path != "" {
			out[path] = value
		}
	}
	return out
}

// envKey maps CATALOG_SERVER_TIMEOUT_READHEADER to server.timeout.readheader.
// An empty result tells koanf to skip the variable.
func envKey(key string) string {
	if !strings.HasPrefix(key, EnvPrefix) || key == ConfigFileEnv {
		return ""
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}
