// Package mesh is a gocv landmark detector: YuNet finds the face box and an
// ONNX face-mesh model regresses 468 points, or 478 with iris refinement.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// ErrModelNotFound is returned when a model file is missing.
var ErrModelNotFound = errors.New("mesh: model not found")

// Config holds detector configuration.
type Config struct {
	DetectorModel string `json:"detector_model" yaml:"detector_model"` // YuNet ONNX
	MeshModel     string `json:"mesh_model" yaml:"mesh_model"`         // face mesh ONNX

	// MaxFaces is the number of faces tracked. Only one is supported.
	MaxFaces int `json:"max_faces" yaml:"max_faces"`

	// RefineLandmarks selects the 478-point model with iris points, which
	// gaze estimation needs.
	RefineLandmarks bool `json:"refine_landmarks" yaml:"refine_landmarks"`

	MinDetectionConfidence float64 `json:"min_detection_confidence" yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence" yaml:"min_tracking_confidence"`

	InputSize int `json:"input_size" yaml:"input_size"` // mesh model input edge in pixels
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		DetectorModel:          "models/face_detection_yunet.onnx",
		MeshModel:              "models/face_landmark_refined.onnx",
		MaxFaces:               1,
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		InputSize:              192,
	}
}

// Topology returns the point layout the configured model produces.
func (c Config) Topology() landmark.Topology {
	if c.RefineLandmarks {
		return landmark.FaceMeshRefined
	}
	return landmark.FaceMesh
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DetectorModel == "" || c.MeshModel == "" {
		return fmt.Errorf("mesh: detector_model and mesh_model are required")
	}
	if c.MaxFaces != 1 {
		return fmt.Errorf("mesh: max_faces must be 1, got %d", c.MaxFaces)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("mesh: min_detection_confidence must be in [0, 1], got %v", c.MinDetectionConfidence)
	}
	if c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1 {
		return fmt.Errorf("mesh: min_tracking_confidence must be in [0, 1], got %v", c.MinTrackingConfidence)
	}
	if c.InputSize < 32 {
		return fmt.Errorf("mesh: input_size must be at least 32, got %d", c.InputSize)
	}
	return nil
}
