// Package config handles sift.toml engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	_ "github.com/tliron/commonlog/simple"

	"github.com/sift-lang/sift/interp"
)

// FileName is the configuration file name looked up by FindAndLoad.
const FileName = "sift.toml"

// Config represents a sift.toml engine configuration.
type Config struct {
	Limits   Limits   `toml:"limits"`
	Features Features `toml:"features"`
	Unknowns Unknowns `toml:"unknowns"`
	Cache    Cache    `toml:"cache"`

	// Dir is the directory containing the sift.toml file (set at load time).
	Dir string `toml:"-"`
}

// Limits bounds evaluation work.
type Limits struct {
	// MaxIterations caps total comprehension iterations per evaluation.
	// Zero means unbounded.
	MaxIterations int64 `toml:"max-iterations"`
	// StackDepthHint pre-sizes the operand stack. Zero uses the engine
	// default.
	StackDepthHint int `toml:"stack-depth-hint"`
}

// Features toggles optional evaluation semantics.
type Features struct {
	HeterogeneousEquality bool `toml:"heterogeneous-equality"`
	ListContains          bool `toml:"list-contains"`
}

// Unknowns configures unknown and missing attribute handling.
type Unknowns struct {
	// Mode is one of "disabled", "attributes", "attributes-and-functions".
	Mode                   string `toml:"mode"`
	MissingAttributeErrors bool   `toml:"missing-attribute-errors"`
}

// Cache configures the persistent plan store.
type Cache struct {
	// PlanStore is the SQLite database path, relative to the config
	// directory when not absolute. Empty disables persistence.
	PlanStore string `toml:"plan-store"`
}

// ParseUnknownMode maps a mode string to its processing level. The empty
// string means disabled.
func ParseUnknownMode(mode string) (interp.UnknownProcessing, error) {
	switch mode {
	case "", "disabled":
		return interp.UnknownDisabled, nil
	case "attributes":
		return interp.UnknownAttributesOnly, nil
	case "attributes-and-functions":
		return interp.UnknownAttributesAndFunctions, nil
	default:
		return 0, fmt.Errorf("unknown processing mode %q", mode)
	}
}

// Options converts the configuration into engine options, validating them.
func (c *Config) Options() (interp.Options, error) {
	mode, err := ParseUnknownMode(c.Unknowns.Mode)
	if err != nil {
		return interp.Options{}, err
	}
	opts := interp.Options{
		UnknownProcessing:            mode,
		EnableMissingAttributeErrors: c.Unknowns.MissingAttributeErrors,
		ComprehensionMaxIterations:   c.Limits.MaxIterations,
		EnableHeterogeneousEquality:  c.Features.HeterogeneousEquality,
		EnableListContains:           c.Features.ListContains,
		StackDepthHint:               c.Limits.StackDepthHint,
	}
	if err := opts.Validate(); err != nil {
		return interp.Options{}, err
	}
	return opts, nil
}

// PlanStorePath returns the absolute plan store path, or "" when persistence
// is disabled.
func (c *Config) PlanStorePath() string {
	if c.Cache.PlanStore == "" {
		return ""
	}
	if filepath.IsAbs(c.Cache.PlanStore) {
		return c.Cache.PlanStore
	}
	return filepath.Join(c.Dir, c.Cache.PlanStore)
}

// Load parses a sift.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Reject invalid option combinations at load time rather than at the
	// first evaluation.
	if _, err := c.Options(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}

	return &c, nil
}

// FindAndLoad walks up from startDir to find a sift.toml file, then loads
// and returns the configuration. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}
