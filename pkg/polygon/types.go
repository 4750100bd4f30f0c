package polygon

import "fmt"

// VertexID identifies a vertex. IDs are stable across structural edits.
type VertexID int

// EdgeID identifies an edge. IDs are stable across structural edits.
type EdgeID int

// Continuity is the junction requirement at a vertex shared by Bezier
// edges. It is stored for every vertex but only enforced when both
// incident edges are Bezier-shaped.
type Continuity int

const (
	G0 Continuity = iota // shared point only
	G1                   // collinear tangents, magnitudes free
	C1                   // exactly mirrored tangent vectors
)

func (c Continuity) String() string {
	switch c {
	case G0:
		return "G0"
	case G1:
		return "G1"
	case C1:
		return "C1"
	default:
		return fmt.Sprintf("Continuity(%d)", int(c))
	}
}

// Constraint is the interface for edge constraint variants.
// A nil Constraint means the edge is unconstrained.
type Constraint interface {
	constraint() // marker method restricting implementations to this package
	String() string
}

// Vertical forces both endpoints to share an x-coordinate.
type Vertical struct{}

func (Vertical) constraint()    {}
func (Vertical) String() string { return "vertical" }

// Horizontal forces both endpoints to share a y-coordinate.
type Horizontal struct{}

func (Horizontal) constraint()    {}
func (Horizontal) String() string { return "horizontal" }

// ConstWidth fixes the distance between the endpoints to Width,
// captured when the constraint is attached.
type ConstWidth struct {
	Width float64 `json:"width"`
}

func (ConstWidth) constraint() {}
func (w ConstWidth) String() string {
	return fmt.Sprintf("const-width(%g)", w.Width)
}

// Shape is the interface for edge shape variants.
type Shape interface {
	shape()
}

// Straight is a plain line segment between the edge's endpoints.
type Straight struct{}

func (Straight) shape() {}

// Bezier replaces the edge with a cubic curve. Ctrl1 is the control
// point adjacent to the edge's source vertex, Ctrl2 the one adjacent
// to its target vertex. Both are owned by the edge.
type Bezier struct {
	Ctrl1 Point `json:"ctrl1"`
	Ctrl2 Point `json:"ctrl2"`
}

func (Bezier) shape() {}

// Vertex is a polygon corner.
type Vertex struct {
	ID         VertexID   `json:"id"`
	Pos        Point      `json:"pos"`
	Continuity Continuity `json:"continuity"`
}

// Edge joins two consecutive vertices in the ring.
type Edge struct {
	ID         EdgeID     `json:"id"`
	Constraint Constraint `json:"-"`
	Shape      Shape      `json:"-"`

	// Broken marks a constraint that the solver could not satisfy
	// because two propagation wavefronts disagreed. The constraint
	// stays attached but its invariant is not re-checked until the
	// user re-attaches or removes it.
	Broken bool `json:"broken,omitempty"`
}

// IsBezier reports whether the edge is curve-shaped.
func (e *Edge) IsBezier() bool {
	_, ok := e.Shape.(Bezier)
	return ok
}

// BezierShape returns the edge's curve data when it is Bezier-shaped.
func (e *Edge) BezierShape() (Bezier, bool) {
	b, ok := e.Shape.(Bezier)
	return b, ok
}
