package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/AvengeMedia/dankfind/internal/errdefs"
	"github.com/AvengeMedia/dankfind/internal/log"
)

type Config struct {
	RootDir       string   `toml:"root_dir"`
	StorePath     string   `toml:"store_path"`
	ListenAddr    string   `toml:"listen_addr"`
	WorkerCount   int      `toml:"worker_count"`
	QueueSize     int      `toml:"queue_size"`
	MaxDepth      int      `toml:"max_depth"`
	IncludeHidden bool     `toml:"include_hidden"`
	UseGitignore  bool     `toml:"use_gitignore"`
	ExcludeDirs   []string `toml:"exclude_dirs"`
	ExcludeGlobs  []string `toml:"exclude_globs"`
}

func Default() *Config {
	home, _ := os.UserHomeDir()

	defaultExcludeDirs := []string{
		// JavaScript/Node.js
		"node_modules",
		"bower_components",
		".npm",
		".yarn",

		// Python
		"site-packages",
		"__pycache__",
		".venv",
		"venv",

		// Build outputs
		"dist",
		"build",
		"out",

		// Rust
		"target",

		// Go
		"vendor",

		// Java/JVM
		".gradle",
		".m2",

		// Cache directories
		".cache",
		".parcel-cache",
		".next",

		// OS specific
		".Trash-1000",

		// Language package manager caches
		".cargo",
		".rustup",
		".nvm",
		".composer",
		".gem",
	}

	workerCount := runtime.NumCPU() / 2
	if workerCount < 1 {
		workerCount = 1
	}

	return &Config{
		RootDir:      home,
		StorePath:    getDefaultStorePath(),
		ListenAddr:   ":43655",
		WorkerCount:  workerCount,
		QueueSize:    100,
		MaxDepth:     0,
		UseGitignore: true,
		ExcludeDirs:  defaultExcludeDirs,
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := cfg.Save(path); err != nil {
			log.Warnf("failed to create default config at %s: %v", path, err)
		} else {
			log.Infof("created default config at %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, errdefs.NewCustomError(errdefs.ErrTypeInvalidConfig, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the indexer and server cannot run
// with. MaxDepth zero means unlimited.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.RootDir, validation.Required),
		validation.Field(&c.StorePath, validation.Required),
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.WorkerCount, validation.Required, validation.Min(1)),
		validation.Field(&c.QueueSize, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxDepth, validation.Min(0)),
	)
	if err != nil {
		return errdefs.NewCustomError(errdefs.ErrTypeInvalidConfig, "invalid configuration", err)
	}
	return nil
}

func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	f.WriteString("# DankFind Configuration\n")
	f.WriteString("# See https://github.com/AvengeMedia/dankfind for documentation\n\n")

	return toml.NewEncoder(f).Encode(c)
}

func getDefaultStorePath() string {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
	} else {
		base = os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".cache")
		}
	}
	return filepath.Join(base, "dankfind", "catalog.db")
}

func GetDefaultConfigPath() string {
	var base string
	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, "dankfind", "config.toml")
}

type IndexStats struct {
	TotalFiles     int       `json:"total_files"`
	SkippedEntries int       `json:"skipped_entries"`
	LastIndexTime  time.Time `json:"last_index_time"`
	IndexDuration  string    `json:"index_duration"`
}
