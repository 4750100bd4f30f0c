package solver

import (
	"fmt"

	"contour/pkg/polygon"
)

// MoveControl computes the consequences of dragging one Bezier control
// point. The junction vertex between the moved control and the
// neighboring edge carries a continuity mode; the paired control point
// on the other side of that vertex is repositioned so the mode still
// holds. The adjustment is strictly local: continuity is defined per
// vertex, so nothing cascades and no fixed-point iteration is needed.
//
// Rules, for junction vertex V and requested position P:
//
//	G0: the paired control is left alone.
//	G1: the paired control keeps its distance from V but moves onto
//	    the ray opposite V->P, so the tangents stay collinear.
//	C1: the paired control is set to exactly V - (P - V).
//
// When the neighboring edge is straight there is no paired control and
// only the moved point changes. The result always includes the moved
// control itself.
func MoveControl(p *polygon.Polygon, edge polygon.EdgeID, which Control, newPos polygon.Point) (Result, error) {
	i := p.EdgeIndex(edge)
	if i < 0 {
		return Result{}, &polygon.UnknownIDError{Kind: "edge", ID: int(edge)}
	}
	if _, ok := p.EdgeAt(i).BezierShape(); !ok {
		return Result{}, fmt.Errorf("edge %d is not a bezier edge", edge)
	}

	res := newResult()
	res.Controls[ControlRef{Edge: edge, Which: which}] = newPos

	// The junction vertex is the endpoint the moved control is
	// attached to; the paired control belongs to the other edge
	// incident to that vertex.
	var v *polygon.Vertex
	var pairEdge *polygon.Edge
	var pairWhich Control
	if which == Ctrl1 {
		v = p.VertexAt(i)
		pairEdge = p.EdgeAt(i - 1)
		pairWhich = Ctrl2
	} else {
		v = p.VertexAt(i + 1)
		pairEdge = p.EdgeAt(i + 1)
		pairWhich = Ctrl1
	}

	pair, ok := pairEdge.BezierShape()
	if !ok {
		return res, nil
	}
	pairOld := pair.Ctrl1
	if pairWhich == Ctrl2 {
		pairOld = pair.Ctrl2
	}

	arm := newPos.Sub(v.Pos)
	switch v.Continuity {
	case polygon.G0:
		// Curves already share V; nothing to hold.
	case polygon.G1:
		if arm.IsZero() {
			// No direction to mirror; leave the pair where it is.
			break
		}
		dist := pairOld.Sub(v.Pos).Hypot()
		res.Controls[ControlRef{Edge: pairEdge.ID, Which: pairWhich}] =
			v.Pos.Add(arm.Normalize().Negate().Mul(dist))
	case polygon.C1:
		res.Controls[ControlRef{Edge: pairEdge.ID, Which: pairWhich}] =
			v.Pos.Add(arm.Negate())
	}
	return res, nil
}
