package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment.
type Config struct {
	APIURL    string        `env:"TODO_API_URL" envDefault:"http://localhost:5000"`
	ConfigDir string        `env:"TODO_CONFIG_DIR"` // defaults to ~/.todo
	Token     string        `env:"TODO_TOKEN"`      // overrides the saved session
	Timeout   time.Duration `env:"TODO_TIMEOUT" envDefault:"10s"`
}

// LoadConfig parses the TODO_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.ConfigDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		cfg.ConfigDir = filepath.Join(home, ".todo")
	}

	return &cfg, nil
}
