package mesh

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/debug"
	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// Detector finds one face per frame and returns its mesh. Between frames it
// tracks the face from the previous mesh and only falls back to YuNet when
// the tracking score drops below MinTrackingConfidence.
type Detector struct {
	config   Config
	faces    gocv.FaceDetectorYN
	net      gocv.Net
	outputs  []string
	topology landmark.Topology

	mu    sync.Mutex // Protects inference
	track image.Rectangle
}

// New loads both models.
func New(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, path := range []string{cfg.DetectorModel, cfg.MeshModel} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
	}

	net := gocv.ReadNetFromONNX(cfg.MeshModel)
	if net.Empty() {
		return nil, fmt.Errorf("mesh: failed to load %s", cfg.MeshModel)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	var outputs []string
	for _, id := range net.GetUnconnectedOutLayers() {
		layer := net.GetLayer(id)
		outputs = append(outputs, layer.GetName())
		layer.Close()
	}

	faces := gocv.NewFaceDetectorYNWithParams(
		cfg.DetectorModel,
		"",
		image.Pt(320, 320),
		float32(cfg.MinDetectionConfidence),
		0.3,
		5000,
		int(gocv.NetBackendDefault),
		int(gocv.NetTargetCPU),
	)

	return &Detector{
		config:   cfg,
		faces:    faces,
		net:      net,
		outputs:  outputs,
		topology: cfg.Topology(),
	}, nil
}

// Topology returns the layout of returned frames.
func (d *Detector) Topology() landmark.Topology {
	return d.topology
}

// Detect returns the face mesh in a JPEG image, or a frame without points.
func (d *Detector) Detect(jpeg []byte) (landmark.Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return landmark.Frame{}, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return landmark.Frame{}, fmt.Errorf("empty image")
	}
	w, h := img.Cols(), img.Rows()
	bounds := image.Rect(0, 0, w, h)

	roi := d.track
	if roi.Empty() {
		box, ok := d.detectBox(img)
		if !ok {
			return landmark.Frame{}, nil
		}
		roi = squareROI(box, bounds)
		debug.Log("mesh acquired face", "box", box.String(), "roi", roi.String())
	}
	if roi.Empty() {
		d.track = image.Rectangle{}
		return landmark.Frame{}, nil
	}

	pts, score, err := d.regress(img, roi, w, h)
	if err != nil {
		d.track = image.Rectangle{}
		return landmark.Frame{}, err
	}
	if score < d.config.MinTrackingConfidence {
		d.track = image.Rectangle{}
		debug.TrackLog("mesh lost face", "score", score)
		return landmark.Frame{}, nil
	}

	d.track = squareROI(boundsOf(pts, w, h), bounds)
	return landmark.Frame{Points: pts, Score: score}, nil
}

// detectBox runs YuNet and returns the highest-scoring face box.
func (d *Detector) detectBox(img gocv.Mat) (image.Rectangle, bool) {
	d.faces.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	out := gocv.NewMat()
	defer out.Close()
	d.faces.Detect(img, &out)

	best, bestScore := image.Rectangle{}, float32(-1)
	for r := 0; r < out.Rows(); r++ {
		// 0-3: x, y, w, h in pixels; 14: score
		score := out.GetFloatAt(r, 14)
		if score <= bestScore {
			continue
		}
		x, y := int(out.GetFloatAt(r, 0)), int(out.GetFloatAt(r, 1))
		bw, bh := int(out.GetFloatAt(r, 2)), int(out.GetFloatAt(r, 3))
		best, bestScore = image.Rect(x, y, x+bw, y+bh), score
	}
	return best, bestScore >= 0
}

// regress runs the mesh model on the roi crop.
func (d *Detector) regress(img gocv.Mat, roi image.Rectangle, w, h int) ([]landmark.Point, float64, error) {
	crop := img.Region(roi)
	defer crop.Close()

	size := image.Pt(d.config.InputSize, d.config.InputSize)
	blob := gocv.BlobFromImage(crop, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	outs := d.net.ForwardLayers(d.outputs)
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()

	var raw []float32
	score := 1.0
	for _, m := range outs {
		data, err := m.DataPtrFloat32()
		if err != nil {
			return nil, 0, fmt.Errorf("mesh output: %w", err)
		}
		switch {
		case len(data) == 1:
			score = sigmoid(float64(data[0]))
		case len(data) >= 3*d.topology.Size:
			raw = data
		}
	}
	if raw == nil {
		return nil, 0, fmt.Errorf("%w: no output with %d points", landmark.ErrTopologyMismatch, d.topology.Size)
	}

	return toImage(raw, d.topology.Size, d.config.InputSize, roi, w, h), score, nil
}

// Close releases the models.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faces.Close()
	return d.net.Close()
}
