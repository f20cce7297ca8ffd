// Package config loads the daemon configuration from the standard location,
// merging file values over built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/dragsense/internal/grid"
)

// FrameTuning overrides the four-strip layout geometry. Zero values keep
// the built-in defaults.
type FrameTuning struct {
	ArmLength int `yaml:"arm_length,omitempty"`
	Thickness int `yaml:"thickness,omitempty"`
	Clearance int `yaml:"clearance,omitempty"`
}

// SparseTuning overrides the sparse grid geometry. Zero values keep the
// built-in defaults.
type SparseTuning struct {
	Rows       int `yaml:"rows,omitempty"`
	Cols       int `yaml:"cols,omitempty"`
	CellWidth  int `yaml:"cell_width,omitempty"`
	CellHeight int `yaml:"cell_height,omitempty"`
	Gap        int `yaml:"gap,omitempty"`
}

// Config is the daemon configuration.
type Config struct {
	// Layout names the sensor constellation: "frame4" or "sparse24".
	Layout string `yaml:"layout"`

	// ArmButtons lists the pointer buttons that arm the sensors
	// (1=left, 2=middle, 3=right). Empty means any button.
	ArmButtons []int `yaml:"arm_buttons,omitempty"`

	// HelperPath points at the sensor-window helper executable. Empty
	// hosts the sensor windows in-process.
	HelperPath string `yaml:"helper_path,omitempty"`

	// KeyboardMonitor starts global keyboard monitoring at daemon boot.
	// It can also be toggled later over IPC.
	KeyboardMonitor bool `yaml:"keyboard_monitor,omitempty"`

	// LogLevel: debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// QueueSize bounds the sensor manager's command queue. Zero keeps
	// the built-in default.
	QueueSize int `yaml:"queue_size,omitempty"`

	Frame  FrameTuning  `yaml:"frame,omitempty"`
	Sparse SparseTuning `yaml:"sparse,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Layout:   "frame4",
		LogLevel: "info",
	}
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "dragsense", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// is not an error; defaults apply.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if _, err := grid.ByName(c.Layout); err != nil {
		return err
	}
	for _, b := range c.ArmButtons {
		if b < 1 || b > 7 {
			return fmt.Errorf("arm_buttons: button %d out of range 1-7", b)
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.Sparse.Rows < 0 || c.Sparse.Cols < 0 || c.Sparse.Gap < 0 {
		return fmt.Errorf("sparse: negative dimensions")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size: must not be negative")
	}
	return nil
}

// GridLayout resolves the configured layout with tuning overrides applied.
func (c *Config) GridLayout() (grid.Layout, error) {
	layout, err := grid.ByName(c.Layout)
	if err != nil {
		return grid.Layout{}, err
	}

	switch layout.Kind {
	case grid.KindFrame:
		if c.Frame.ArmLength > 0 {
			layout.ArmLength = c.Frame.ArmLength
		}
		if c.Frame.Thickness > 0 {
			layout.Thickness = c.Frame.Thickness
		}
		if c.Frame.Clearance > 0 {
			layout.Clearance = c.Frame.Clearance
		}
	case grid.KindSparse:
		if c.Sparse.Rows > 0 {
			layout.Rows = c.Sparse.Rows
		}
		if c.Sparse.Cols > 0 {
			layout.Cols = c.Sparse.Cols
		}
		if c.Sparse.CellWidth > 0 {
			layout.CellWidth = c.Sparse.CellWidth
		}
		if c.Sparse.CellHeight > 0 {
			layout.CellHeight = c.Sparse.CellHeight
		}
		if c.Sparse.Gap > 0 {
			layout.Gap = c.Sparse.Gap
		}
	}
	return layout, nil
}
