package mesh

import (
	"image"
	"math"

	"github.com/Aurelia1-private-concierge/aurelia-access-sub003/pkg/landmark"
)

// roiScale enlarges a face box so the whole mesh fits in the crop.
const roiScale = 1.5

// squareROI grows r around its center to a square of roiScale times its
// longer edge, clipped to bounds.
func squareROI(r image.Rectangle, bounds image.Rectangle) image.Rectangle {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	half := math.Max(float64(r.Dx()), float64(r.Dy())) * roiScale / 2
	sq := image.Rect(
		int(math.Floor(cx-half)), int(math.Floor(cy-half)),
		int(math.Ceil(cx+half)), int(math.Ceil(cy+half)),
	)
	return sq.Intersect(bounds)
}

// boundsOf returns the pixel box around points already mapped to the image.
func boundsOf(pts []landmark.Point, w, h int) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return image.Rect(int(minX*float64(w)), int(minY*float64(h)), int(maxX*float64(w)), int(maxY*float64(h)))
}

// toImage maps raw model output (x, y, z triples in input pixels) from the
// crop roi back to normalized image coordinates. z shares x's scale.
func toImage(raw []float32, n, input int, roi image.Rectangle, w, h int) []landmark.Point {
	pts := make([]landmark.Point, n)
	sx := float64(roi.Dx()) / float64(input)
	sy := float64(roi.Dy()) / float64(input)
	for i := range pts {
		x, y, z := float64(raw[3*i]), float64(raw[3*i+1]), float64(raw[3*i+2])
		pts[i] = landmark.Point{
			X: (float64(roi.Min.X) + x*sx) / float64(w),
			Y: (float64(roi.Min.Y) + y*sy) / float64(h),
			Z: z * sx / float64(w),
		}
	}
	return pts
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
