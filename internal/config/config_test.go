package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Expected valid defaults, got %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facesignal.yaml")
	writeFile(t, path, `
log_level: debug
frame_rate: 24
camera:
  device: "1"
  width: 1280
  height: 720
  framerate: 24
  quality: 80
mesh:
  detector_model: /models/yunet.onnx
  mesh_model: /models/mesh.onnx
  max_faces: 1
  refine_landmarks: false
  min_detection_confidence: 0.6
  min_tracking_confidence: 0.5
  input_size: 192
tuning:
  smoothing_factor: 0.5
  blink_threshold: 0.25
  blink_debounce: 150ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.FrameRate != 24 {
		t.Errorf("Unexpected top level: %+v", cfg)
	}
	if cfg.Camera.Device != "1" || cfg.Camera.Width != 1280 {
		t.Errorf("Unexpected camera: %+v", cfg.Camera)
	}
	if cfg.Mesh.RefineLandmarks || cfg.Mesh.MinDetectionConfidence != 0.6 {
		t.Errorf("Unexpected mesh: %+v", cfg.Mesh)
	}
	if cfg.Tuning.SmoothingFactor != 0.5 || cfg.Tuning.BlinkDebounce != 150*time.Millisecond {
		t.Errorf("Unexpected tuning: %+v", cfg.Tuning)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected default log format kept, got %q", cfg.LogFormat)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "frame_rate: [")
	if _, err := Load(bad); err == nil {
		t.Error("Expected parse error")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "frame_rate: -1\nlog_format: xml\n")
	if _, err := Load(invalid); err == nil {
		t.Error("Expected validation error")
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"FACESIGNAL_LISTEN":         ":9000",
		"FACESIGNAL_FRAME_RATE":     "15",
		"FACESIGNAL_AUTO_ENABLE":    "false",
		"FACESIGNAL_CAMERA_DEVICE":  "/dev/video2",
		"FACESIGNAL_SMOOTHING":      "0.6",
		"FACESIGNAL_BLINK_DEBOUNCE": "250ms",
		"FACESIGNAL_DEBUG_TRACKING": "true",
		"FACESIGNAL_LOG_FORMAT":     " ",
		"UNRELATED":                 "x",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.Listen != ":9000" || cfg.FrameRate != 15 || cfg.AutoEnable || !cfg.DebugTracking {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Camera.Device != "/dev/video2" {
		t.Errorf("Expected camera override, got %q", cfg.Camera.Device)
	}
	if cfg.Tuning.SmoothingFactor != 0.6 || cfg.Tuning.BlinkDebounce != 250*time.Millisecond {
		t.Errorf("Unexpected tuning: %+v", cfg.Tuning)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("Expected blank override ignored, got %q", cfg.LogFormat)
	}
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"FACESIGNAL_FRAME_RATE":  "fast",
		"FACESIGNAL_AUTO_ENABLE": "maybe",
	}))
	if err == nil {
		t.Fatal("Expected errors for unparsable values")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	writeFile(t, path, "FACESIGNAL_TEST_DOTENV=loaded\n")
	t.Setenv("FACESIGNAL_TEST_DOTENV", "")
	os.Unsetenv("FACESIGNAL_TEST_DOTENV")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("FACESIGNAL_TEST_DOTENV"); got != "loaded" {
		t.Errorf("Expected loaded, got %q", got)
	}
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "facesignal.yaml")
	writeFile(t, path, "frame_rate: 30\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(c *Config) { changes <- c }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "frame_rate: 30\ntuning:\n  smoothing_factor: 0.8\n  blink_threshold: 0.2\n")

	select {
	case c := <-changes:
		if c.Tuning.SmoothingFactor != 0.8 {
			t.Errorf("Expected reloaded smoothing 0.8, got %v", c.Tuning.SmoothingFactor)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a reload")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop")
	}
}
