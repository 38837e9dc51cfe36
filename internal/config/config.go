package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "reflow.yaml"

type Config struct {
	Platform      string `yaml:"platform"`
	SourcesFile   string `yaml:"sources_file"`
	TabWidth      int    `yaml:"tab_width"`
	Strict        bool   `yaml:"strict"`
	LoggerInclude string `yaml:"logger_include"`
	DB            string `yaml:"db"`
	Log           struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{
		Platform:    "ganymede",
		SourcesFile: "Sources.list",
		TabWidth:    4,
		DB:          "reflow.db",
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	}

	// 3. Override with Environment Variables if present
	if platform := os.Getenv("PLATFORM"); platform != "" {
		cfg.Platform = platform
	}
	if root := os.Getenv("REFLOW"); root != "" {
		cfg.LoggerInclude = filepath.Join(root, "digital", "packages", "log.svh")
	}
	if strict := os.Getenv("REFLOW_STRICT"); strict != "" {
		if v, err := strconv.ParseBool(strict); err == nil {
			cfg.Strict = v
		}
	}
	if level := os.Getenv("REFLOW_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if db := os.Getenv("REFLOW_DB"); db != "" {
		cfg.DB = db
	}

	if cfg.SourcesFile == "" {
		cfg.SourcesFile = "Sources.list"
	}
	if cfg.TabWidth <= 0 {
		cfg.TabWidth = 4
	}
	return cfg, nil
}
