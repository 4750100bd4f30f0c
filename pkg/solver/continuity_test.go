package solver

import (
	"testing"

	"contour/pkg/polygon"
)

// bezierPair builds a triangle whose first two edges are bezier, with
// the junction arms at vertex B set explicitly.
func bezierPair(t *testing.T, mode polygon.Continuity, inArm, outArm polygon.Vec2) *polygon.Polygon {
	t.Helper()
	p := mustPolygon(t, polygon.Pt(0, 0), polygon.Pt(10, 0), polygon.Pt(5, 8))
	for i := 0; i < 2; i++ {
		if err := p.ConvertToBezier(p.EdgeAt(i).ID); err != nil {
			t.Fatalf("ConvertToBezier edge %d: %v", i, err)
		}
	}
	b := p.VertexAt(1)
	if err := p.SetContinuity(b.ID, mode); err != nil {
		t.Fatalf("SetContinuity: %v", err)
	}

	in, _ := p.EdgeAt(0).BezierShape()
	out, _ := p.EdgeAt(1).BezierShape()
	in.Ctrl2 = b.Pos.Add(inArm)
	out.Ctrl1 = b.Pos.Add(outArm)
	p.EdgeAt(0).Shape = in
	p.EdgeAt(1).Shape = out
	return p
}

func TestMoveControlRejectsStraightEdge(t *testing.T) {
	p := mustPolygon(t, polygon.Pt(0, 0), polygon.Pt(10, 0), polygon.Pt(5, 8))
	if _, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl1, polygon.Pt(1, 1)); err == nil {
		t.Fatal("moving a control of a straight edge should fail")
	}
	if _, err := MoveControl(p, 999, Ctrl1, polygon.Pt(1, 1)); err == nil {
		t.Fatal("moving a control of an unknown edge should fail")
	}
}

func TestMoveControlC1Mirrors(t *testing.T) {
	p := bezierPair(t, polygon.C1, polygon.Vec2{X: -3, Y: 0}, polygon.Vec2{X: 3, Y: 0})
	b := p.VertexAt(1) // junction at (10, 0)

	// Drag the incoming arm; the outgoing arm mirrors it exactly.
	newPos := b.Pos.Add(polygon.Vec2{X: -5, Y: 2})
	res, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl2, newPos)
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}

	if got := res.Controls[ControlRef{Edge: p.EdgeAt(0).ID, Which: Ctrl2}]; got != newPos {
		t.Errorf("moved control = %v, want %v", got, newPos)
	}
	wantPair := b.Pos.Add(polygon.Vec2{X: 5, Y: -2})
	if got := res.Controls[ControlRef{Edge: p.EdgeAt(1).ID, Which: Ctrl1}]; !got.Near(wantPair, polygon.Epsilon) {
		t.Errorf("paired control = %v, want %v", got, wantPair)
	}
}

func TestMoveControlG1KeepsPairMagnitude(t *testing.T) {
	p := bezierPair(t, polygon.G1, polygon.Vec2{X: -3, Y: 0}, polygon.Vec2{X: 4, Y: 0})
	b := p.VertexAt(1)

	// Rotate the incoming arm; the outgoing arm turns opposite but
	// keeps its own length of 4.
	newPos := b.Pos.Add(polygon.Vec2{X: 0, Y: 3})
	res, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl2, newPos)
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}

	wantPair := b.Pos.Add(polygon.Vec2{X: 0, Y: -4})
	if got := res.Controls[ControlRef{Edge: p.EdgeAt(1).ID, Which: Ctrl1}]; !got.Near(wantPair, polygon.Epsilon) {
		t.Errorf("paired control = %v, want %v", got, wantPair)
	}
}

func TestMoveControlG1DegenerateArm(t *testing.T) {
	p := bezierPair(t, polygon.G1, polygon.Vec2{X: -3, Y: 0}, polygon.Vec2{X: 4, Y: 0})
	b := p.VertexAt(1)

	// Dropping the control onto the vertex leaves no direction to
	// mirror; the pair stays put.
	res, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl2, b.Pos)
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}
	if _, ok := res.Controls[ControlRef{Edge: p.EdgeAt(1).ID, Which: Ctrl1}]; ok {
		t.Error("degenerate arm should leave the paired control alone")
	}
}

func TestMoveControlG0IsLocal(t *testing.T) {
	p := bezierPair(t, polygon.G0, polygon.Vec2{X: -3, Y: 0}, polygon.Vec2{X: 3, Y: 0})

	res, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl2, polygon.Pt(2, 7))
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}
	if len(res.Controls) != 1 {
		t.Errorf("G0 should move only the dragged control, got %v", res.Controls)
	}
}

func TestMoveControlNoPairAcrossStraightEdge(t *testing.T) {
	// Only edge 0 is bezier. Dragging its Ctrl1 finds a straight
	// neighbor at the junction, so there is nothing to pair with even
	// under C1.
	p := mustPolygon(t, polygon.Pt(0, 0), polygon.Pt(10, 0), polygon.Pt(5, 8))
	if err := p.ConvertToBezier(p.EdgeAt(0).ID); err != nil {
		t.Fatalf("ConvertToBezier: %v", err)
	}

	res, err := MoveControl(p, p.EdgeAt(0).ID, Ctrl1, polygon.Pt(1, 4))
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}
	if len(res.Controls) != 1 {
		t.Errorf("expected only the moved control, got %v", res.Controls)
	}
}

func TestMoveControlCtrl1PairsBackward(t *testing.T) {
	// Ctrl1 of edge 1 shares vertex B with edge 0; under C1 the pair
	// is edge 0's Ctrl2.
	p := bezierPair(t, polygon.C1, polygon.Vec2{X: -3, Y: 0}, polygon.Vec2{X: 3, Y: 0})
	b := p.VertexAt(1)

	newPos := b.Pos.Add(polygon.Vec2{X: 1, Y: 6})
	res, err := MoveControl(p, p.EdgeAt(1).ID, Ctrl1, newPos)
	if err != nil {
		t.Fatalf("MoveControl: %v", err)
	}
	wantPair := b.Pos.Add(polygon.Vec2{X: -1, Y: -6})
	if got := res.Controls[ControlRef{Edge: p.EdgeAt(0).ID, Which: Ctrl2}]; !got.Near(wantPair, polygon.Epsilon) {
		t.Errorf("paired control = %v, want %v", got, wantPair)
	}
}
