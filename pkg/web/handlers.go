package web

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/spf13/cast"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/camera"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/face"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/hub"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/session"
)

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// handleStatus returns the session lifecycle.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleEnable(c *fiber.Ctx) error {
	if err := s.ctrl.Enable(c.UserContext()); err != nil {
		s.log.Warn("enable failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":  session.UserMessage(err),
			"status": s.ctrl.Status(),
		})
	}
	return c.JSON(s.ctrl.Status())
}

func (s *Server) handleDisable(c *fiber.Ctx) error {
	s.ctrl.Disable()
	return c.JSON(s.ctrl.Status())
}

// handleReset clears a recorded detector failure so enable may retry.
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.ctrl.ResetDetector()
	return c.JSON(s.ctrl.Status())
}

// tuningView is the wire form of face.Tuning with a readable debounce.
type tuningView struct {
	SmoothingFactor float64 `json:"smoothing_factor"`
	BlinkThreshold  float64 `json:"blink_threshold"`
	BlinkDebounce   string  `json:"blink_debounce"`
}

func viewTuning(t face.Tuning) tuningView {
	return tuningView{
		SmoothingFactor: t.SmoothingFactor,
		BlinkThreshold:  t.BlinkThreshold,
		BlinkDebounce:   t.BlinkDebounce.String(),
	}
}

func (s *Server) handleGetTuning(c *fiber.Ctx) error {
	return c.JSON(viewTuning(s.ctrl.Tuning()))
}

func (s *Server) handlePatchTuning(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, fmt.Errorf("invalid body: %w", err))
	}
	patch, err := parseTuning(params)
	if err != nil {
		return badRequest(c, err)
	}
	next, err := s.ctrl.SetTuning(patch)
	if err != nil {
		return badRequest(c, err)
	}
	return c.JSON(viewTuning(next))
}

// parseTuning coerces a loosely typed patch. Numeric blink_debounce values
// are milliseconds; strings use time.ParseDuration syntax.
func parseTuning(params map[string]interface{}) (face.Tuning, error) {
	var p face.Tuning
	for key, value := range params {
		var err error
		switch key {
		case "smoothing_factor":
			p.SmoothingFactor, err = cast.ToFloat64E(value)
		case "blink_threshold":
			p.BlinkThreshold, err = cast.ToFloat64E(value)
		case "blink_debounce":
			switch v := value.(type) {
			case float64:
				p.BlinkDebounce = time.Duration(v * float64(time.Millisecond))
			default:
				p.BlinkDebounce, err = cast.ToDurationE(v)
			}
		default:
			return p, fmt.Errorf("unknown field: %s", key)
		}
		if err != nil {
			return p, fmt.Errorf("invalid %s: %w", key, err)
		}
	}
	return p, nil
}

func (s *Server) handleGetCamera(c *fiber.Ctx) error {
	return c.JSON(s.cameras.GetConfigJSON())
}

// handlePatchCamera updates camera settings. They take effect on the next enable.
func (s *Server) handlePatchCamera(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return badRequest(c, fmt.Errorf("invalid body: %w", err))
	}
	if err := s.cameras.UpdateConfig(params); err != nil {
		return badRequest(c, err)
	}
	return c.JSON(s.cameras.GetConfigJSON())
}

func (s *Server) handleCameraPresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"presets":      camera.PresetNames(),
		"capabilities": camera.Capabilities(),
	})
}

// handleStatusWS streams lifecycle status events.
func (s *Server) handleStatusWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn)
	if client == nil {
		conn.Close()
		return
	}
	client.Run()
}
