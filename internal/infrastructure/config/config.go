package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/chamai/pkg/storage"
	"gopkg.in/yaml.v3"
)

// DefinitionEnv overrides the configured definition location.
const DefinitionEnv = "CHAMAI_DEFINITION"

const DefaultServerAddr = "127.0.0.1:8787"

// Config is the per-project settings file, .chamai/config.yaml.
type Config struct {
	// Definition is a path relative to the project root, an absolute path, or an http(s) URL.
	Definition string        `yaml:"definition"`
	StateKey   string        `yaml:"state_key"`
	ExportDir  string        `yaml:"export_dir"`
	Title      string        `yaml:"title"`
	Server     ServerConfig  `yaml:"server"`
	Logging    LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File receives logs instead of stderr when set.
	File string `yaml:"file"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Definition: storage.DefaultDefinitionPath,
		StateKey:   storage.DefaultStateKey,
		ExportDir:  ".",
		Title:      "ChAMAI",
		Server:     ServerConfig{Addr: DefaultServerAddr},
		Logging:    LoggingConfig{Level: "warn"},
	}
}

// Load reads .chamai/config.yaml under root. A missing file yields defaults.
// Empty fields in the file are filled from defaults, then CHAMAI_DEFINITION is applied.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		cfg.merge(&fileCfg)
	}

	if def := strings.TrimSpace(os.Getenv(DefinitionEnv)); def != "" {
		cfg.Definition = def
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.Definition != "" {
		c.Definition = o.Definition
	}
	if o.StateKey != "" {
		c.StateKey = o.StateKey
	}
	if o.ExportDir != "" {
		c.ExportDir = o.ExportDir
	}
	if o.Title != "" {
		c.Title = o.Title
	}
	if o.Server.Addr != "" {
		c.Server.Addr = o.Server.Addr
	}
	if o.Logging.Level != "" {
		c.Logging.Level = o.Logging.Level
	}
	if o.Logging.File != "" {
		c.Logging.File = o.Logging.File
	}
}

// Save writes cfg to .chamai/config.yaml under root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	if err := repo.Initialize(); err != nil {
		return err
	}
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
