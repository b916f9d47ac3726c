package landmark

import "fmt"

// Mesh is a frame checked against a validated topology, so named lookups
// never go out of range.
type Mesh struct {
	points []Point
	topo   Topology
}

// NewMesh binds a frame to t. t must already have passed Validate.
func NewMesh(f Frame, t Topology) (Mesh, error) {
	if len(f.Points) != t.Size {
		return Mesh{}, fmt.Errorf("%w: got %d points, %q expects %d",
			ErrTopologyMismatch, len(f.Points), t.Name, t.Size)
	}
	return Mesh{points: f.Points, topo: t}, nil
}

// At returns the position of l. Iris landmarks on a topology without iris
// support return the zero point; use Iris to check availability.
func (m Mesh) At(l Landmark) Point {
	if l.IsIris() && !m.topo.Iris {
		return Point{}
	}
	return m.points[l.Index()]
}

// Iris returns both iris centers when the topology carries them.
func (m Mesh) Iris() (left, right Point, ok bool) {
	if !m.topo.Iris {
		return Point{}, Point{}, false
	}
	return m.points[LeftIris.Index()], m.points[RightIris.Index()], true
}

// Topology returns the topology the mesh was built with.
func (m Mesh) Topology() Topology {
	return m.topo
}
