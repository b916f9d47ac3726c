package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"testing"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"permission", &fs.PathError{Op: "open", Path: "/dev/video0", Err: fs.ErrPermission}, camera.ErrPermissionDenied},
		{"missing", &fs.PathError{Op: "open", Path: "/dev/video9", Err: fs.ErrNotExist}, camera.ErrDeviceUnavailable},
		{"already classified", fmt.Errorf("x: %w", camera.ErrPermissionDenied), camera.ErrPermissionDenied},
		{"other", errors.New("VIDIOC_STREAMON failed"), camera.ErrDeviceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.in); !errors.Is(got, tc.want) {
				t.Errorf("Expected %v, got %v", tc.want, got)
			}
		})
	}
	if classify(nil) != nil {
		t.Error("Expected nil for nil")
	}
}

func TestCaptureTarget(t *testing.T) {
	if got := captureTarget("2"); got != 2 {
		t.Errorf("Expected index 2, got %v", got)
	}
	if got := captureTarget("rtsp://cam/stream"); got != "rtsp://cam/stream" {
		t.Errorf("Expected URL unchanged, got %v", got)
	}
}

func TestDevicePath(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("device nodes are only checked on linux")
	}
	tests := map[string]string{
		"0":                "/dev/video0",
		"/dev/video4":      "/dev/video4",
		"http://cam/mjpeg": "",
		"clip.mp4":         "",
	}
	for in, want := range tests {
		if got := devicePath(in); got != want {
			t.Errorf("devicePath(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestOpen_MissingDevice(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("device nodes are only checked on linux")
	}
	cfg := camera.DefaultConfig()
	cfg.Device = "/dev/video-does-not-exist"
	cam := New(camera.NewManager(cfg))

	_, err := cam.Open(context.Background())
	if !errors.Is(err, camera.ErrDeviceUnavailable) {
		t.Errorf("Expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestOpen_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cam := New(camera.NewManager(camera.DefaultConfig()))
	if _, err := cam.Open(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
