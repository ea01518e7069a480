package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the viewer configuration structure.
// It defines table display defaults, image display defaults, and the
// file-access mode used when opening FITS containers.
type Config struct {
	Table struct {
		PageSize    int `yaml:"page_size"`    // Rows shown per page
		ColumnWidth int `yaml:"column_width"` // Fixed cell width in characters
		FontSize    int `yaml:"font_size"`    // Text area font size
		MaxColumns  int `yaml:"max_columns"`  // Columns selected when nothing is chosen
	} `yaml:"table"`
	Image struct {
		Colormap string  `yaml:"colormap"` // gray, gray_r or heat
		ZoomStep float64 `yaml:"zoom_step"` // Multiplicative zoom increment
		MinZoom  float64 `yaml:"min_zoom"`  // Lower bound on the zoom factor
		BaseSize int     `yaml:"base_size"` // Display size in pixels at zoom 1.0
	} `yaml:"image"`
	Window struct {
		Width  int `yaml:"width"`  // Viewer window width
		Height int `yaml:"height"` // Viewer window height
	} `yaml:"window"`
	Access struct {
		Mapped bool `yaml:"mapped"` // Open files memory-mapped when possible
	} `yaml:"access"`
}

// LoadConfig loads configuration from the default location
// (~/.config/fitsview/config.yaml).
func LoadConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".config", "fitsview", "config.yaml")
	return LoadConfigFile(configPath)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	// Start with default configuration
	cfg := defaultConfig()

	// Try to read the config file
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge the loaded config with defaults
	if tempCfg.Table.PageSize > 0 {
		cfg.Table.PageSize = tempCfg.Table.PageSize
	}
	if tempCfg.Table.ColumnWidth > 0 {
		cfg.Table.ColumnWidth = tempCfg.Table.ColumnWidth
	}
	if tempCfg.Table.FontSize > 0 {
		cfg.Table.FontSize = tempCfg.Table.FontSize
	}
	if tempCfg.Table.MaxColumns > 0 {
		cfg.Table.MaxColumns = tempCfg.Table.MaxColumns
	}
	if tempCfg.Image.Colormap != "" {
		cfg.Image.Colormap = tempCfg.Image.Colormap
	}
	if tempCfg.Image.ZoomStep > 1 {
		cfg.Image.ZoomStep = tempCfg.Image.ZoomStep
	}
	if tempCfg.Image.MinZoom > 0 {
		cfg.Image.MinZoom = tempCfg.Image.MinZoom
	}
	if tempCfg.Image.BaseSize > 0 {
		cfg.Image.BaseSize = tempCfg.Image.BaseSize
	}
	if tempCfg.Window.Width > 0 {
		cfg.Window.Width = tempCfg.Window.Width
	}
	if tempCfg.Window.Height > 0 {
		cfg.Window.Height = tempCfg.Window.Height
	}
	// Mapped defaults to true, so absent and false look the same after a
	// plain unmarshal. Decode again with a pointer to tell them apart.
	var accessCfg struct {
		Access struct {
			Mapped *bool `yaml:"mapped"`
		} `yaml:"access"`
	}
	if err := yaml.Unmarshal(data, &accessCfg); err == nil && accessCfg.Access.Mapped != nil {
		cfg.Access.Mapped = *accessCfg.Access.Mapped
	}

	// Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration with safe defaults.
func defaultConfig() *Config {
	cfg := &Config{}

	// Table display defaults match the classic viewer layout
	cfg.Table.PageSize = 50
	cfg.Table.ColumnWidth = 15
	cfg.Table.FontSize = 10
	cfg.Table.MaxColumns = 10

	// Image display defaults
	cfg.Image.Colormap = "gray"
	cfg.Image.ZoomStep = 1.2
	cfg.Image.MinZoom = 0.1
	cfg.Image.BaseSize = 600

	// Window geometry
	cfg.Window.Width = 1800
	cfg.Window.Height = 950

	// Memory-mapped access by default; large files stay on disk
	cfg.Access.Mapped = true

	return cfg
}

// New returns the default configuration.
func New() *Config {
	return defaultConfig()
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if c.Table.PageSize < 1 || c.Table.PageSize > 1000 {
		return fmt.Errorf("table.page_size must be in [1, 1000], got %d", c.Table.PageSize)
	}
	if c.Table.ColumnWidth <= 2 {
		return fmt.Errorf("table.column_width must be greater than 2, got %d", c.Table.ColumnWidth)
	}
	if c.Table.FontSize < 6 {
		return fmt.Errorf("table.font_size must be at least 6, got %d", c.Table.FontSize)
	}
	switch c.Image.Colormap {
	case "gray", "gray_r", "heat":
	default:
		return fmt.Errorf("image.colormap must be gray, gray_r or heat, got %q", c.Image.Colormap)
	}
	if c.Image.ZoomStep <= 1 {
		return fmt.Errorf("image.zoom_step must be greater than 1, got %g", c.Image.ZoomStep)
	}
	if c.Image.MinZoom <= 0 {
		return fmt.Errorf("image.min_zoom must be positive, got %g", c.Image.MinZoom)
	}
	return nil
}
