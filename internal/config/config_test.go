package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/AvengeMedia/dankfind/internal/errdefs"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RootDir == "" {
		t.Error("RootDir should not be empty")
	}

	if cfg.StorePath == "" {
		t.Error("StorePath should not be empty")
	}

	if cfg.ListenAddr != ":43655" {
		t.Errorf("ListenAddr = %v, want :43655", cfg.ListenAddr)
	}

	expectedWorkers := runtime.NumCPU() / 2
	if expectedWorkers < 1 {
		expectedWorkers = 1
	}
	if cfg.WorkerCount != expectedWorkers {
		t.Errorf("WorkerCount = %v, want %v", cfg.WorkerCount, expectedWorkers)
	}

	if cfg.QueueSize != 100 {
		t.Errorf("QueueSize = %v, want 100", cfg.QueueSize)
	}

	if len(cfg.ExcludeDirs) == 0 {
		t.Error("ExcludeDirs should not be empty")
	}

	if cfg.IncludeHidden {
		t.Error("IncludeHidden should be false by default")
	}

	if !cfg.UseGitignore {
		t.Error("UseGitignore should be true by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"empty root", func(c *Config) { c.RootDir = "" }, false},
		{"empty store path", func(c *Config) { c.StorePath = "" }, false},
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }, false},
		{"zero workers", func(c *Config) { c.WorkerCount = 0 }, false},
		{"negative workers", func(c *Config) { c.WorkerCount = -1 }, false},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }, false},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, false},
		{"unlimited depth", func(c *Config) { c.MaxDepth = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				var cerr *errdefs.CustomError
				if !errors.As(err, &cerr) || cerr.Type != errdefs.ErrTypeInvalidConfig {
					t.Errorf("Validate() error = %v, want ErrTypeInvalidConfig", err)
				}
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.RootDir = "/srv/data"
	cfg.WorkerCount = 3
	cfg.IncludeHidden = true
	cfg.ExcludeGlobs = []string{"**/*.tmp"}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.RootDir != "/srv/data" {
		t.Errorf("RootDir = %v, want /srv/data", loaded.RootDir)
	}
	if loaded.WorkerCount != 3 {
		t.Errorf("WorkerCount = %v, want 3", loaded.WorkerCount)
	}
	if !loaded.IncludeHidden {
		t.Error("IncludeHidden lost in round trip")
	}
	if len(loaded.ExcludeGlobs) != 1 || loaded.ExcludeGlobs[0] != "**/*.tmp" {
		t.Errorf("ExcludeGlobs = %v, want [**/*.tmp]", loaded.ExcludeGlobs)
	}
}

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != ":43655" {
		t.Errorf("ListenAddr = %v, want default", cfg.ListenAddr)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Load() should have written a default config: %v", err)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "root_dir = \"\"\nworker_count = 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject a config that fails validation")
	}
}

func TestGetDefaultStorePath(t *testing.T) {
	path := getDefaultStorePath()

	if path == "" {
		t.Error("getDefaultStorePath() should not return empty string")
	}

	if !filepath.IsAbs(path) {
		t.Errorf("getDefaultStorePath() = %v, expected absolute path", path)
	}

	if filepath.Base(filepath.Dir(path)) != "dankfind" {
		t.Errorf("getDefaultStorePath() = %v, expected a dankfind directory", path)
	}
}
