package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML schema. Values come from YAML; Defaults() supplies a
// working baseline so the browser runs without a config file.
type Config struct {
	Version  int            `yaml:"version"`
	General  General        `yaml:"general"`
	UI       UIOptions      `yaml:"ui"`
	Quality  QualityConfig  `yaml:"quality"`
	Hardware HardwareConfig `yaml:"hardware"`
	Logging  Logging        `yaml:"logging"`
}

type General struct {
	DataRoot    string `yaml:"data_root"`    // sqlite cache lives here
	CatalogPath string `yaml:"catalog_path"` // JSON catalog export
}

type UIOptions struct {
	// ItemsPerPage is the pagination window size. If 0, defaults to 60.
	ItemsPerPage int `yaml:"items_per_page"`
	// ViewMode is the initial layout: grid | list
	ViewMode string `yaml:"view_mode"`
	// RefreshHz controls the TUI tick frequency. If 0, defaults to 2.
	// Values above 10 are clamped to 10.
	RefreshHz int `yaml:"refresh_hz"`
}

// QualityConfig tunes the spam filter applied at import time.
type QualityConfig struct {
	Enabled              bool     `yaml:"enabled"`
	MinSizeBytes         int64    `yaml:"min_size_bytes"`
	MinDownloads         int64    `yaml:"min_downloads"`
	SizeDropThreshold    float64  `yaml:"size_drop_threshold"`
	TrustedUploaders     []string `yaml:"trusted_uploaders"`
	MaxModelsPerUploader int      `yaml:"max_models_per_uploader"`
}

// HardwareConfig tunes the RAM requirement estimates.
type HardwareConfig struct {
	// RAMOverheadFactor scales file size to estimated RAM. If 0, defaults to 1.2.
	RAMOverheadFactor float64 `yaml:"ram_overhead_factor"`
}

type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // human|json
}

// Defaults returns a config usable without any file on disk.
func Defaults() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Version: 1,
		General: General{
			DataRoot:    filepath.Join(home, ".local", "share", "modbrowse"),
			CatalogPath: "gguf_models.json",
		},
		UI: UIOptions{ItemsPerPage: 60, ViewMode: "grid", RefreshHz: 2},
		Quality: QualityConfig{
			Enabled:              true,
			MinSizeBytes:         1 << 20,
			MinDownloads:         100,
			SizeDropThreshold:    0.05,
			MaxModelsPerUploader: 200,
		},
		Hardware: HardwareConfig{RAMOverheadFactor: 1.2},
		Logging:  Logging{Level: "info", Format: "human"},
	}
}

// Load reads, parses, expands, and validates a YAML config file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	expanded, err := expandTilde(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(expanded)
	if err != nil {
		return nil, err
	}
	// Expand ${ENV} placeholders before unmarshalling
	b = []byte(os.ExpandEnv(string(b)))
	c := Defaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}
	if err := c.expandPaths(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.General.DataRoot, err = expandTilde(c.General.DataRoot); err != nil {
		return err
	}
	if c.General.CatalogPath, err = expandTilde(c.General.CatalogPath); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.General.DataRoot == "" {
		return errors.New("general.data_root is required")
	}
	if c.UI.ItemsPerPage < 0 {
		return fmt.Errorf("ui.items_per_page must be >= 0")
	}
	switch strings.ToLower(c.UI.ViewMode) {
	case "", "grid", "list":
		// ok
	default:
		return fmt.Errorf("ui.view_mode invalid: %s", c.UI.ViewMode)
	}
	if c.UI.RefreshHz < 0 {
		return fmt.Errorf("ui.refresh_hz must be >= 0")
	}
	if c.Quality.SizeDropThreshold < 0 || c.Quality.SizeDropThreshold >= 1 {
		return fmt.Errorf("quality.size_drop_threshold must be in [0,1)")
	}
	if c.Quality.MinSizeBytes < 0 {
		return fmt.Errorf("quality.min_size_bytes must be >= 0")
	}
	if c.Hardware.RAMOverheadFactor < 0 {
		return fmt.Errorf("hardware.ram_overhead_factor must be >= 0")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		// ok
	default:
		return fmt.Errorf("logging.level invalid: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "human", "json":
		// ok
	default:
		return fmt.Errorf("logging.format invalid: %s", c.Logging.Format)
	}
	return nil
}

func expandTilde(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if p[0] != '~' {
		return p, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if p == "~" {
		return h, nil
	}
	return filepath.Join(h, p[2:]), nil
}
