// Package device captures webcam frames with gocv.
package device

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
)

// maxMisses is how many failed reads in a row are tolerated before the
// device is reported unavailable.
const maxMisses = 30

// Camera opens gocv capture sources from the camera manager's current config.
type Camera struct {
	manager *camera.Manager
	log     *slog.Logger
}

// New creates a camera that reads its settings from m at every Open.
func New(m *camera.Manager) *Camera {
	return &Camera{manager: m, log: log.For("camera")}
}

// Open starts capturing. It fails with camera.ErrPermissionDenied or
// camera.ErrDeviceUnavailable.
func (c *Camera) Open(ctx context.Context) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := c.manager.GetConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: invalid config: %v", camera.ErrDeviceUnavailable, errs)
	}
	if err := probe(cfg.Device); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(captureTarget(cfg.Device))
	if err != nil {
		return nil, classify(err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s did not open", camera.ErrDeviceUnavailable, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))

	s := &Source{vc: vc, frame: gocv.NewMat(), cfg: cfg}
	for i := 0; i < cfg.WarmupFrames; i++ {
		if ctx.Err() != nil {
			s.Close()
			return nil, ctx.Err()
		}
		vc.Read(&s.frame)
	}

	c.log.Info("camera opened", "device", cfg.Device, "width", cfg.Width, "height", cfg.Height, "fps", cfg.Framerate)
	return s, nil
}

// Source is an open capture device.
type Source struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	frame  gocv.Mat
	cfg    camera.Config
	misses int
	closed bool
}

// CaptureJPEG reads the next frame and encodes it.
func (s *Source) CaptureJPEG() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: closed", camera.ErrDeviceUnavailable)
	}
	if ok := s.vc.Read(&s.frame); !ok || s.frame.Empty() {
		s.misses++
		if s.misses > maxMisses {
			return nil, fmt.Errorf("%w: no frames after %d reads", camera.ErrDeviceUnavailable, s.misses)
		}
		return nil, camera.ErrFrameNotReady
	}
	s.misses = 0

	if s.cfg.Mirror {
		gocv.Flip(s.frame, &s.frame, 1)
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, s.frame, []int{int(gocv.IMWriteJpegQuality), s.cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.frame.Close()
	return s.vc.Close()
}

// captureTarget turns "0" into a device index and leaves paths and URLs alone.
func captureTarget(device string) interface{} {
	if n, err := strconv.Atoi(device); err == nil {
		return n
	}
	return device
}

// devicePath returns the V4L2 node for a device, or "" when it cannot be
// checked on this platform.
func devicePath(device string) string {
	if runtime.GOOS != "linux" || strings.Contains(device, "://") {
		return ""
	}
	if n, err := strconv.Atoi(device); err == nil {
		return "/dev/video" + strconv.Itoa(n)
	}
	if strings.HasPrefix(device, "/dev/") {
		return device
	}
	return ""
}

// probe opens the device node so permission problems surface before gocv
// swallows them.
func probe(device string) error {
	path := devicePath(device)
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return classify(err)
	}
	return f.Close()
}

// classify maps OS errors onto the camera sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, camera.ErrPermissionDenied), errors.Is(err, camera.ErrDeviceUnavailable):
		return err
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", camera.ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %v", camera.ErrDeviceUnavailable, err)
	}
}
