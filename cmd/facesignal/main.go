// facesignal - live facial-signal analysis from a local camera.
// Runs the landmark pipeline and serves the control API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/config"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/metrics"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera/device"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/debug"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark/mesh"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/web"
)

type options struct {
	configPath string
	envFiles   []string
	record     string
	watch      bool
	accessLog  bool
}

func main() {
	cfg, opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "facesignal: %v\n", err)
		os.Exit(2)
	}

	log.Init(cfg.LogLevel, cfg.LogFormat)
	debug.Enabled = cfg.LogLevel == "debug"
	debug.Tracking = cfg.DebugTracking

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, opts); err != nil {
		log.Error("facesignal stopped", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads .env files and the config file, then applies flags that
// were set explicitly.
func parseFlags(args []string) (*config.Config, options, error) {
	var opts options
	fs := pflag.NewFlagSet("facesignal", pflag.ContinueOnError)

	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	fs.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, ".env files to load (missing files are skipped)")
	fs.StringVar(&opts.record, "record", "", "Write detected landmark frames to this JSON-lines file")
	fs.BoolVar(&opts.watch, "watch", true, "Reload tuning when the config file changes")
	fs.BoolVar(&opts.accessLog, "access-log", false, "Log every control API request")

	listen := fs.String("listen", "", "Control API address (empty string disables)")
	dev := fs.String("device", "", "Camera index or device path")
	fps := fs.Float64("fps", 0, "Analysis frame rate")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "", "Log format: text or json")
	detectorModel := fs.String("detector-model", "", "YuNet face detector ONNX model")
	meshModel := fs.String("mesh-model", "", "Face mesh ONNX model")
	noAutoEnable := fs.Bool("no-auto-enable", false, "Start with face tracking disabled")
	tracking := fs.Bool("debug-tracking", false, "Log every analyzed frame")

	if err := fs.Parse(args); err != nil {
		return nil, opts, err
	}

	if err := config.LoadDotEnv(opts.envFiles...); err != nil {
		return nil, opts, err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, opts, err
	}

	if fs.Changed("listen") {
		cfg.Listen = *listen
	}
	if fs.Changed("device") {
		cfg.Camera.Device = *dev
	}
	if fs.Changed("fps") {
		cfg.FrameRate = *fps
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if fs.Changed("log-format") {
		cfg.LogFormat = *logFormat
	}
	if fs.Changed("detector-model") {
		cfg.Mesh.DetectorModel = *detectorModel
	}
	if fs.Changed("mesh-model") {
		cfg.Mesh.MeshModel = *meshModel
	}
	if *noAutoEnable {
		cfg.AutoEnable = false
	}
	if *tracking {
		cfg.DebugTracking = true
	}
	return cfg, opts, cfg.Validate()
}

func run(ctx context.Context, cfg *config.Config, opts options) error {
	logger := log.For("main")

	var recorder *landmark.FrameWriter
	if opts.record != "" {
		f, err := os.Create(opts.record)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()
		recorder = landmark.NewFrameWriter(f)
		logger.Info("recording landmarks", "path", opts.record)
	}

	cameras := camera.NewManager(cfg.Camera)
	cam := device.New(cameras)
	openCamera := session.CameraFunc(func(ctx context.Context) (session.VideoSource, error) {
		src, err := cam.Open(ctx)
		if err != nil {
			return nil, err
		}
		return src, nil
	})

	meshCfg := cfg.Mesh
	detectors := func(ctx context.Context) (session.LandmarkDetector, error) {
		det, err := mesh.New(meshCfg)
		if err != nil {
			return nil, err
		}
		if recorder != nil {
			return &recordingDetector{LandmarkDetector: det, w: recorder}, nil
		}
		return det, nil
	}

	m := metrics.New()
	ctrl := session.New(openCamera, detectors,
		session.WithFrameRate(cfg.FrameRate),
		session.WithTuning(cfg.Tuning),
		session.WithObserver(m),
	)
	defer func() {
		logger.Info("session summary",
			"dominant_emotion", ctrl.DominantEmotion(),
			"trend", ctrl.EmotionTrend(),
			"frames", m.FramesProcessed.Load(),
			"frames_with_face", m.FramesWithFace.Load())
		if err := ctrl.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	cameras.OnConfigChange = cameraNotice(ctrl.Status, logger)

	ctrl.OnStatus(func(st session.Status) {
		logger.Info("face tracking status", "state", st.State, "session", st.SessionID, "error", st.Error)
	})

	if cfg.Listen != "" {
		srv := web.NewServer(cfg.Listen, ctrl,
			web.WithCamera(cameras),
			web.WithMetrics(m.Handler()),
			web.WithLogger(log.For("web")),
			accessLog(opts.accessLog),
		)
		srv.StartAsync()
		defer func() {
			if err := srv.Shutdown(); err != nil {
				logger.Warn("control API shutdown failed", "error", err)
			}
		}()
	}

	if opts.watch && opts.configPath != "" {
		go func() {
			err := config.Watch(ctx, opts.configPath, func(next *config.Config) {
				if _, err := ctrl.SetTuning(next.Tuning); err != nil {
					logger.Warn("reloaded tuning rejected", "error", err)
				}
				debug.Tracking = next.DebugTracking
			})
			if err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	if cfg.AutoEnable {
		if err := ctrl.Enable(ctx); err != nil {
			logger.Warn("face tracking not started", "reason", session.UserMessage(err))
			if cfg.Listen == "" {
				return err
			}
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// cameraNotice logs camera setting changes. A running session keeps its
// capture settings until it is enabled again.
func cameraNotice(status func() session.Status, logger *slog.Logger) func(camera.Config) error {
	return func(c camera.Config) error {
		attrs := []any{"device", c.Device, "width", c.Width, "height", c.Height, "framerate", c.Framerate}
		if status().Enabled {
			logger.Info("camera settings apply on next enable", attrs...)
			return nil
		}
		logger.Info("camera settings updated", attrs...)
		return nil
	}
}

func accessLog(enabled bool) web.Option {
	if enabled {
		return web.WithAccessLog()
	}
	return func(*web.Server) {}
}

// recordingDetector writes every detected frame before returning it.
type recordingDetector struct {
	session.LandmarkDetector
	w *landmark.FrameWriter
}

func (d *recordingDetector) Detect(jpeg []byte) (landmark.Frame, error) {
	f, err := d.LandmarkDetector.Detect(jpeg)
	if err == nil && f.HasFace() {
		if werr := d.w.Write(f); werr != nil {
			log.Warn("recording failed", "error", werr)
		}
	}
	return f, err
}
