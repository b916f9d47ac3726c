// Package web serves the facesignal control API: session lifecycle,
// tuning, camera settings, metrics and a status websocket.
//
// Derived face, emotion, presence and gesture signals are never exposed here.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/internal/log"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/hub"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
)

// Controller is the session surface the API drives.
type Controller interface {
	Status() session.Status
	OnStatus(fn func(session.Status))
	Enable(ctx context.Context) error
	Disable()
	ResetDetector()
	Tuning() face.Tuning
	SetTuning(p face.Tuning) (face.Tuning, error)
}

// Option configures a Server.
type Option func(*Server)

// WithCamera exposes camera settings under /api/camera.
func WithCamera(m *camera.Manager) Option {
	return func(s *Server) { s.cameras = m }
}

// WithMetrics serves h under /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithAccessLog enables per-request logging.
func WithAccessLog() Option {
	return func(s *Server) { s.accessLog = true }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Server is the control API server
type Server struct {
	app  *fiber.App
	addr string
	log  *slog.Logger

	ctrl      Controller
	cameras   *camera.Manager
	metrics   http.Handler
	accessLog bool

	statusHub *hub.Hub
}

// NewServer creates a control API for ctrl listening on addr.
func NewServer(addr string, ctrl Controller, opts ...Option) *Server {
	s := &Server{
		addr:      addr,
		log:       log.For("web"),
		ctrl:      ctrl,
		statusHub: hub.New("status"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.statusHub.OnConnect(func() (hub.Message, error) {
		return statusEvent(s.ctrl.Status()).Encode()
	})
	ctrl.OnStatus(func(st session.Status) {
		if err := s.statusHub.BroadcastEvent(statusEvent(st)); err != nil {
			s.log.Warn("status broadcast failed", "error", err)
		}
	})

	app := fiber.New(fiber.Config{
		AppName:               "facesignal",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if s.accessLog {
		app.Use(logger.New())
	}

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/session/enable", s.handleEnable)
	api.Post("/session/disable", s.handleDisable)
	api.Post("/session/reset", s.handleReset)
	api.Get("/tuning", s.handleGetTuning)
	api.Patch("/tuning", s.handlePatchTuning)
	if s.cameras != nil {
		api.Get("/camera", s.handleGetCamera)
		api.Patch("/camera", s.handlePatchCamera)
		api.Get("/camera/presets", s.handleCameraPresets)
	}

	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(s.metrics))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

func statusEvent(st session.Status) hub.Event {
	return hub.NewEvent("status", st, time.Now())
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the status hub and serves until Shutdown.
func (s *Server) Start() error {
	s.log.Info("control API listening", "addr", s.addr)
	go s.statusHub.Run()
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.log.Error("control API stopped", "error", err)
		}
	}()
}

// Shutdown gracefully stops the server and its hub.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	return s.app.Shutdown()
}
