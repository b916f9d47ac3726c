package camera

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/spf13/cast"
)

// Manager holds the current camera configuration and handles updates.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// Callback when config changes (for applying to camera)
	OnConfigChange func(cfg Config) error
}

// NewManager creates a new camera manager with the given config.
func NewManager(cfg Config) *Manager {
	return &Manager{
		config: cfg,
	}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig updates the camera configuration.
func (m *Manager) SetConfig(cfg Config) error {
	if errors := cfg.Validate(); len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	m.mu.Lock()
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to loosely typed values, as decoded from JSON.
// A "preset" key replaces the base config before the other fields apply.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	cfg := m.GetConfig()

	if raw, ok := params["preset"]; ok {
		name := cast.ToString(raw)
		preset := GetPreset(name)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", name)
		}
		cfg = *preset
	}

	for key, value := range params {
		var err error
		switch key {
		case "preset":
		case "device":
			cfg.Device, err = cast.ToStringE(value)
		case "width":
			cfg.Width, err = cast.ToIntE(value)
		case "height":
			cfg.Height, err = cast.ToIntE(value)
		case "framerate":
			cfg.Framerate, err = cast.ToIntE(value)
		case "quality":
			cfg.Quality, err = cast.ToIntE(value)
		case "mirror":
			cfg.Mirror, err = cast.ToBoolE(value)
		case "warmup_frames":
			cfg.WarmupFrames, err = cast.ToIntE(value)
		default:
			return fmt.Errorf("unknown field: %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	cfg := m.GetConfig()

	data, _ := json.Marshal(cfg)
	var result map[string]interface{}
	_ = json.Unmarshal(data, &result)

	return result
}
