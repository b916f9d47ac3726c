package landmark

import "fmt"

// Landmark names a point the geometry stage reads.
type Landmark int

const (
	NoseTip Landmark = iota
	Forehead
	Chin
	LeftEar
	RightEar

	LeftEyeTop
	LeftEyeBottom
	LeftEyeOuter
	LeftEyeInner
	RightEyeTop
	RightEyeBottom
	RightEyeInner
	RightEyeOuter

	LeftBrowInner
	LeftBrowArch
	RightBrowInner
	RightBrowArch

	UpperLip
	LowerLip
	MouthLeft
	MouthRight

	// Iris centers, only present in refined topologies.
	LeftIris
	RightIris

	numLandmarks
)

// Face mesh indices (MediaPipe canonical topology).
var meshIndex = [numLandmarks]int{
	NoseTip:  1,
	Forehead: 10,
	Chin:     152,
	LeftEar:  234,
	RightEar: 454,

	LeftEyeTop:     159,
	LeftEyeBottom:  145,
	LeftEyeOuter:   33,
	LeftEyeInner:   133,
	RightEyeTop:    386,
	RightEyeBottom: 374,
	RightEyeInner:  362,
	RightEyeOuter:  263,

	LeftBrowInner:  107,
	LeftBrowArch:   105,
	RightBrowInner: 336,
	RightBrowArch:  334,

	UpperLip:   13,
	LowerLip:   14,
	MouthLeft:  61,
	MouthRight: 291,

	LeftIris:  468,
	RightIris: 473,
}

var landmarkNames = [numLandmarks]string{
	"nose_tip", "forehead", "chin", "left_ear", "right_ear",
	"left_eye_top", "left_eye_bottom", "left_eye_outer", "left_eye_inner",
	"right_eye_top", "right_eye_bottom", "right_eye_inner", "right_eye_outer",
	"left_brow_inner", "left_brow_arch", "right_brow_inner", "right_brow_arch",
	"upper_lip", "lower_lip", "mouth_left", "mouth_right",
	"left_iris", "right_iris",
}

// Index returns the mesh index of l.
func (l Landmark) Index() int {
	return meshIndex[l]
}

// IsIris reports whether l is only available with refined landmarks.
func (l Landmark) IsIris() bool {
	return l == LeftIris || l == RightIris
}

// String returns the snake_case name.
func (l Landmark) String() string {
	if l < 0 || l >= numLandmarks {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// All returns every named landmark.
func All() []Landmark {
	out := make([]Landmark, 0, numLandmarks)
	for l := Landmark(0); l < numLandmarks; l++ {
		out = append(out, l)
	}
	return out
}

// Topology describes the point layout a detector produces.
type Topology struct {
	Name string `json:"name"`
	Size int    `json:"size"` // number of points per frame
	Iris bool   `json:"iris"` // refined iris points present
}

var (
	// FaceMesh is the 468-point face mesh without iris refinement.
	FaceMesh = Topology{Name: "face_mesh", Size: 468}

	// FaceMeshRefined is the 478-point mesh with iris centers and contours.
	FaceMeshRefined = Topology{Name: "face_mesh_refined", Size: 478, Iris: true}
)

// TopologyForSize returns the known topology with n points.
func TopologyForSize(n int) (Topology, bool) {
	switch n {
	case FaceMesh.Size:
		return FaceMesh, true
	case FaceMeshRefined.Size:
		return FaceMeshRefined, true
	}
	return Topology{}, false
}

// Validate checks that every required landmark is addressable in t.
// Iris landmarks are only required when t declares iris support.
func (t Topology) Validate() error {
	if t.Size <= 0 {
		return fmt.Errorf("%w: %q has no points", ErrMissingLandmark, t.Name)
	}
	for _, l := range All() {
		if l.IsIris() && !t.Iris {
			continue
		}
		if l.Index() >= t.Size {
			return fmt.Errorf("%w: %s (index %d) outside %q (%d points)",
				ErrMissingLandmark, l, l.Index(), t.Name, t.Size)
		}
	}
	return nil
}
