package client

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("TODO_API_URL", "")
		t.Setenv("TODO_CONFIG_DIR", "")
		t.Setenv("TODO_TOKEN", "")
		t.Setenv("TODO_TIMEOUT", "")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.APIURL != "http://localhost:5000" {
			t.Errorf("APIURL = %q", cfg.APIURL)
		}
		if cfg.ConfigDir != filepath.Join(home, ".todo") {
			t.Errorf("ConfigDir = %q", cfg.ConfigDir)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v", cfg.Timeout)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("TODO_API_URL", "https://todo.example.com/")
		t.Setenv("TODO_CONFIG_DIR", "/tmp/todo-cfg")
		t.Setenv("TODO_TOKEN", "tok")
		t.Setenv("TODO_TIMEOUT", "3s")

		cfg, err := LoadConfig()
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.APIURL != "https://todo.example.com" || cfg.ConfigDir != "/tmp/todo-cfg" || cfg.Token != "tok" || cfg.Timeout != 3*time.Second {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("TODO_TIMEOUT", "soon")
		if _, err := LoadConfig(); err == nil {
			t.Fatal("LoadConfig() error = nil, want parse error")
		}
	})
}
