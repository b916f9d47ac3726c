// Package config loads facesignal configuration from a YAML file, .env files
// and FACESIGNAL_* environment variables, and watches the file for changes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark/mesh"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FACESIGNAL_"

// Config is the full service configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Listen is the control API address. Empty disables the API.
	Listen string `yaml:"listen"`

	FrameRate     float64 `yaml:"frame_rate"`
	AutoEnable    bool    `yaml:"auto_enable"`
	DebugTracking bool    `yaml:"debug_tracking"`

	Camera camera.Config `yaml:"camera"`
	Mesh   mesh.Config   `yaml:"mesh"`
	Tuning face.Tuning   `yaml:"tuning"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Listen:     "127.0.0.1:8095",
		FrameRate:  30,
		AutoEnable: true,
		Camera:     camera.DefaultConfig(),
		Mesh:       mesh.DefaultConfig(),
		Tuning:     face.DefaultTuning(),
	}
}

// LoadDotEnv loads the given .env files, skipping missing ones. Variables
// already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies FACESIGNAL_* overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	set := func(name string, apply func(string) error) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		if err := apply(strings.TrimSpace(v)); err != nil {
			errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err))
		}
	}
	str := func(dst *string) func(string) error {
		return func(v string) error { *dst = v; return nil }
	}

	set("LOG_LEVEL", str(&c.LogLevel))
	set("LOG_FORMAT", str(&c.LogFormat))
	set("LISTEN", str(&c.Listen))
	set("CAMERA_DEVICE", str(&c.Camera.Device))
	set("MESH_DETECTOR_MODEL", str(&c.Mesh.DetectorModel))
	set("MESH_MODEL", str(&c.Mesh.MeshModel))
	set("FRAME_RATE", func(v string) (err error) {
		c.FrameRate, err = cast.ToFloat64E(v)
		return err
	})
	set("AUTO_ENABLE", func(v string) (err error) {
		c.AutoEnable, err = cast.ToBoolE(v)
		return err
	})
	set("DEBUG_TRACKING", func(v string) (err error) {
		c.DebugTracking, err = cast.ToBoolE(v)
		return err
	})
	set("SMOOTHING", func(v string) (err error) {
		c.Tuning.SmoothingFactor, err = cast.ToFloat64E(v)
		return err
	})
	set("BLINK_THRESHOLD", func(v string) (err error) {
		c.Tuning.BlinkThreshold, err = cast.ToFloat64E(v)
		return err
	})
	set("BLINK_DEBOUNCE", func(v string) (err error) {
		c.Tuning.BlinkDebounce, err = cast.ToDurationE(v)
		return err
	})

	return errors.Join(errs...)
}

// Validate checks every section.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log_format must be text or json, got %q", c.LogFormat))
	}
	if c.FrameRate <= 0 || c.FrameRate > camera.MaxFramerate {
		errs = append(errs, fmt.Errorf("config: frame_rate must be in (0, %d], got %v", camera.MaxFramerate, c.FrameRate))
	}
	if problems := c.Camera.Validate(); len(problems) > 0 {
		errs = append(errs, fmt.Errorf("config: camera: %s", strings.Join(problems, "; ")))
	}
	if err := c.Mesh.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if err := c.Tuning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	return errors.Join(errs...)
}
