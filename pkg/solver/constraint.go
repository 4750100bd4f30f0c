// Package solver computes the vertex and control point positions that
// re-satisfy a polygon's constraints after a single element is moved.
// Both entry points are pure functions over a model snapshot: they
// never mutate the polygon, so an edit session can discard their
// results on cancellation.
package solver

import (
	"contour/pkg/polygon"
)

// Control selects one of a Bezier edge's two control points.
type Control int

const (
	Ctrl1 Control = iota // adjacent to the edge's source vertex
	Ctrl2                // adjacent to the edge's target vertex
)

func (c Control) String() string {
	if c == Ctrl1 {
		return "ctrl1"
	}
	return "ctrl2"
}

// ControlRef addresses one control point of one edge.
type ControlRef struct {
	Edge  polygon.EdgeID
	Which Control
}

// Result is the outcome of a propagation pass: every vertex and
// control point whose position changed, with its final position, and
// the edges whose constraints could not be satisfied because the two
// wavefronts disagreed. Broken holds each losing edge at most once.
type Result struct {
	Positions map[polygon.VertexID]polygon.Point
	Controls  map[ControlRef]polygon.Point
	Broken    []polygon.EdgeID
}

func newResult() Result {
	return Result{
		Positions: make(map[polygon.VertexID]polygon.Point),
		Controls:  make(map[ControlRef]polygon.Point),
	}
}

// Move propagates a requested displacement of one vertex through the
// ring so every edge constraint still holds.
//
// The two ring directions are processed as independent wavefronts in
// a fixed order: clockwise (ring order) first, then counter-clockwise.
// Each wavefront walks vertex by vertex, fixing the far endpoint of
// the next constrained edge, and halts at the first unconstrained
// edge or at a vertex whose computed position is already correct.
// Each direction takes at most N steps, so termination needs no
// visited-set bookkeeping. When the counter-clockwise front reaches a
// vertex the clockwise front already fixed and disagrees about it,
// the clockwise result wins and the losing edge is reported in
// Broken rather than silently averaged.
func Move(p *polygon.Polygon, origin polygon.VertexID, newPos polygon.Point) (Result, error) {
	oidx := p.VertexIndex(origin)
	if oidx < 0 {
		return Result{}, &polygon.UnknownIDError{Kind: "vertex", ID: int(origin)}
	}

	n := p.Len()
	pre := make([]polygon.Point, n) // positions before the edit
	cur := make([]polygon.Point, n) // working positions
	for i := 0; i < n; i++ {
		pre[i] = p.VertexAt(i).Pos
		cur[i] = pre[i]
	}
	cur[oidx] = newPos

	fixed := make([]bool, n) // assigned by a wavefront (or the origin)
	fixed[oidx] = true

	res := newResult()

	// Clockwise: edge i runs from vertex i to vertex i+1.
	at := oidx
	for step := 0; step < n; step++ {
		e := p.EdgeAt(at)
		if e.Constraint == nil {
			break
		}
		far := wrap(at+1, n)
		cand := applyConstraint(e.Constraint, cur[at], cur[far], pre, at, far, n)
		if fixed[far] {
			if !cand.Near(cur[far], polygon.Epsilon) {
				res.Broken = appendBroken(res.Broken, e.ID)
			}
			break
		}
		if cand.Near(cur[far], polygon.Epsilon) {
			break
		}
		cur[far] = cand
		fixed[far] = true
		at = far
	}

	// Counter-clockwise: the edge behind vertex i is edge i-1, whose
	// far endpoint is vertex i-1.
	at = oidx
	for step := 0; step < n; step++ {
		e := p.EdgeAt(at - 1)
		if e.Constraint == nil {
			break
		}
		far := wrap(at-1, n)
		cand := applyConstraint(e.Constraint, cur[at], cur[far], pre, at, far, n)
		if fixed[far] {
			if !cand.Near(cur[far], polygon.Epsilon) {
				res.Broken = appendBroken(res.Broken, e.ID)
			}
			break
		}
		if cand.Near(cur[far], polygon.Epsilon) {
			break
		}
		cur[far] = cand
		fixed[far] = true
		at = far
	}

	for i := 0; i < n; i++ {
		if cur[i].Near(pre[i], polygon.Epsilon) {
			continue
		}
		v := p.VertexAt(i)
		res.Positions[v.ID] = cur[i]
		dragControls(p, &res, i, cur[i].Sub(pre[i]))
	}
	return res, nil
}

// Translate shifts every vertex and control point by delta as one
// rigid motion. Relative positions are unchanged, so every constraint
// and continuity relation keeps holding and no propagation runs.
func Translate(p *polygon.Polygon, delta polygon.Vec2) Result {
	res := newResult()
	if delta.IsZero() {
		return res
	}
	for i := 0; i < p.Len(); i++ {
		v := p.VertexAt(i)
		res.Positions[v.ID] = v.Pos.Add(delta)
		e := p.EdgeAt(i)
		if b, ok := e.BezierShape(); ok {
			res.Controls[ControlRef{Edge: e.ID, Which: Ctrl1}] = b.Ctrl1.Add(delta)
			res.Controls[ControlRef{Edge: e.ID, Which: Ctrl2}] = b.Ctrl2.Add(delta)
		}
	}
	return res
}

// appendBroken records a broken edge once. Both wavefronts can hit the
// same losing edge, and Broken is a set to its consumers.
func appendBroken(ids []polygon.EdgeID, id polygon.EdgeID) []polygon.EdgeID {
	for _, have := range ids {
		if have == id {
			return ids
		}
	}
	return append(ids, id)
}

// applyConstraint computes where the far endpoint of a constrained
// edge must sit, given the near endpoint's (already fixed) position.
//
// Directional constraints copy one coordinate and leave the other
// untouched. Constant width preserves the pre-edit edge direction and
// corrects only the magnitude; a degenerate pre-edit edge falls back
// to the direction of the near vertex's other incident edge, and as a
// last resort to +X.
func applyConstraint(c polygon.Constraint, near, far polygon.Point, pre []polygon.Point, nearIdx, farIdx, n int) polygon.Point {
	switch c := c.(type) {
	case polygon.Vertical:
		return polygon.Pt(near.X, far.Y)
	case polygon.Horizontal:
		return polygon.Pt(far.X, near.Y)
	case polygon.ConstWidth:
		dir := pre[farIdx].Sub(pre[nearIdx])
		if dir.IsZero() {
			// The other incident edge of the near vertex: walking
			// clockwise farIdx is nearIdx+1, so the other neighbor is
			// nearIdx-1, and vice versa.
			other := wrap(nearIdx-1, n)
			if farIdx == wrap(nearIdx-1, n) {
				other = wrap(nearIdx+1, n)
			}
			dir = pre[nearIdx].Sub(pre[other])
		}
		if dir.IsZero() {
			dir = polygon.Vec2{X: 1, Y: 0}
		}
		return near.Add(dir.Normalize().Mul(c.Width))
	default:
		return far
	}
}

// dragControls shifts the control points adjacent to a moved vertex
// by the vertex's own displacement. Pure translation preserves both
// the curve shape and whatever continuity relation held before.
func dragControls(p *polygon.Polygon, res *Result, idx int, delta polygon.Vec2) {
	if in, ok := p.EdgeAt(idx - 1).BezierShape(); ok {
		res.Controls[ControlRef{Edge: p.EdgeAt(idx - 1).ID, Which: Ctrl2}] = in.Ctrl2.Add(delta)
	}
	if out, ok := p.EdgeAt(idx).BezierShape(); ok {
		res.Controls[ControlRef{Edge: p.EdgeAt(idx).ID, Which: Ctrl1}] = out.Ctrl1.Add(delta)
	}
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
