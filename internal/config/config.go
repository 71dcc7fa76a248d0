// Package config loads service configuration from a JSON file. Fields are
// pointers so a partial file only overrides what it names; the Get*
// accessors supply the defaults for everything else.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neuronav-data/stereotax/internal/acpc"
	"github.com/neuronav-data/stereotax/internal/convention"
)

// Defaults returned by the Get* accessors when the file omits a field.
const (
	DefaultCenterMode   = "MC"
	DefaultConvention   = "ras"
	DefaultDatabasePath = "stereotax.db"
	DefaultListenAddr   = ":8080"
)

// Config is the root configuration. The schema matches the service flags
// so the same JSON can seed a deployment and a test fixture.
type Config struct {
	// CenterMode is the default centering choice when a request does not
	// specify one: "MC", "AC" or "PC".
	CenterMode *string `json:"center_mode,omitempty"`

	// DegeneracyTolerance is the minimum axis-vector norm before landmark
	// inputs are rejected as degenerate.
	DegeneracyTolerance *float64 `json:"degeneracy_tolerance,omitempty"`

	// OutputConvention selects the default coordinate convention for
	// returned matrices: "ras" or "lps".
	OutputConvention *string `json:"output_convention,omitempty"`

	DatabasePath *string `json:"database_path,omitempty"`
	ListenAddr   *string `json:"listen_addr,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads and validates a JSON config file. Omitted fields keep their
// defaults, so partial configs are safe.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate rejects values the service could not run with.
func (c *Config) Validate() error {
	if c.CenterMode != nil {
		if _, err := acpc.ParseCenterMode(*c.CenterMode); err != nil {
			return err
		}
	}
	if c.DegeneracyTolerance != nil && *c.DegeneracyTolerance <= 0 {
		return fmt.Errorf("degeneracy_tolerance must be positive, got %v", *c.DegeneracyTolerance)
	}
	if c.OutputConvention != nil {
		if _, err := convention.Parse(*c.OutputConvention); err != nil {
			return err
		}
	}
	if c.ListenAddr != nil && *c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DatabasePath != nil && *c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	return nil
}

// GetCenterMode returns the configured default centering mode.
func (c *Config) GetCenterMode() acpc.CenterMode {
	if c.CenterMode != nil {
		mode, err := acpc.ParseCenterMode(*c.CenterMode)
		if err == nil {
			return mode
		}
	}
	return acpc.CenterMC
}

// GetDegeneracyTolerance returns the configured tolerance.
func (c *Config) GetDegeneracyTolerance() float64 {
	if c.DegeneracyTolerance != nil && *c.DegeneracyTolerance > 0 {
		return *c.DegeneracyTolerance
	}
	return acpc.DefaultDegeneracyTolerance
}

// GetOutputConvention returns the configured default convention.
func (c *Config) GetOutputConvention() convention.Convention {
	if c.OutputConvention != nil {
		conv, err := convention.Parse(*c.OutputConvention)
		if err == nil {
			return conv
		}
	}
	return convention.RAS
}

// GetDatabasePath returns the configured database path.
func (c *Config) GetDatabasePath() string {
	if c.DatabasePath != nil {
		return *c.DatabasePath
	}
	return DefaultDatabasePath
}

// GetListenAddr returns the configured HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr != nil {
		return *c.ListenAddr
	}
	return DefaultListenAddr
}
