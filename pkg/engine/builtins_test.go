package engine

import (
	"math"
	"strings"
	"testing"

	"contour/pkg/polygon"
)

func evalOK(t *testing.T, source string) *polygon.Polygon {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if p == nil {
		t.Fatal("no polygon produced")
	}
	return p
}

func evalFails(t *testing.T, source, wantSubstr string) {
	t.Helper()
	p, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if p != nil {
		t.Fatal("expected evaluation to fail")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, wantSubstr) {
		t.Errorf("error = %q, want containing %q", evalErrs[0].Message, wantSubstr)
	}
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", "(continuity 0 :c1)", `(continuity 0 "__kw_c1")`},
		{"kebab", "(const-width 0 10)", "(const_width 0 10)"},
		{"minus untouched", "(- 5 3)", "(- 5 3)"},
		{"negative number untouched", "(pt -5 3)", "(pt -5 3)"},
		{"comment", "(pt 0 0) ; corner", "(pt 0 0) // corner"},
		{"double comment", ";; header", "// header"},
		{"string preserved", `(print "a-b :c")`, `(print "a-b :c")`},
		{"assignment preserved", "(x := 3)", "(x := 3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.in); got != tt.want {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolygonBuiltin(t *testing.T) {
	p := evalOK(t, "(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))")
	if p.Len() != 4 {
		t.Fatalf("Len = %d, want 4", p.Len())
	}
	if got := p.VertexAt(2).Pos; got != polygon.Pt(10, 10) {
		t.Errorf("vertex 2 = %v, want (10, 10)", got)
	}
}

func TestPolygonRequiresPoints(t *testing.T) {
	evalFails(t, "(polygon (pt 0 0) 5 (pt 1 1))", "expected (pt x y)")
}

func TestPolygonOnlyOnce(t *testing.T) {
	evalFails(t, `
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
`, "already defined")
}

func TestConstraintBuiltins(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(horizontal 0)
(vertical 1)
(const-width 2 10)
`)
	if _, ok := p.EdgeAt(0).Constraint.(polygon.Horizontal); !ok {
		t.Errorf("edge 0 constraint = %v, want horizontal", p.EdgeAt(0).Constraint)
	}
	if _, ok := p.EdgeAt(1).Constraint.(polygon.Vertical); !ok {
		t.Errorf("edge 1 constraint = %v, want vertical", p.EdgeAt(1).Constraint)
	}
	w, ok := p.EdgeAt(2).Constraint.(polygon.ConstWidth)
	if !ok || w.Width != 10 {
		t.Errorf("edge 2 constraint = %v, want const-width 10", p.EdgeAt(2).Constraint)
	}
}

func TestConstraintBuiltinRejectsConflict(t *testing.T) {
	evalFails(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(vertical 1)
(vertical 2)
`, "vertical")
}

func TestShapeBuiltins(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(bezier 0)
(bezier 1)
(straight 1)
`)
	if !p.EdgeAt(0).IsBezier() {
		t.Error("edge 0 should be bezier")
	}
	if p.EdgeAt(1).IsBezier() {
		t.Error("edge 1 should be straight again")
	}
}

func TestContinuityBuiltin(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(continuity 1 :g1)
(continuity 2 :g0)
`)
	if got := p.VertexAt(1).Continuity; got != polygon.G1 {
		t.Errorf("vertex 1 continuity = %v, want G1", got)
	}
	if got := p.VertexAt(2).Continuity; got != polygon.G0 {
		t.Errorf("vertex 2 continuity = %v, want G0", got)
	}
	if got := p.VertexAt(0).Continuity; got != polygon.C1 {
		t.Errorf("vertex 0 continuity = %v, want the C1 default", got)
	}
}

func TestContinuityBuiltinRejectsBadMode(t *testing.T) {
	evalFails(t, `
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
(continuity 0 :c2)
`, "invalid continuity")
}

func TestMidpointBuiltin(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
(midpoint 0)
`)
	if p.Len() != 4 {
		t.Fatalf("Len = %d, want 4", p.Len())
	}
	if got := p.VertexAt(1).Pos; got != polygon.Pt(5, 0) {
		t.Errorf("new vertex = %v, want (5, 0)", got)
	}
}

func TestRemoveVertexBuiltin(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(remove-vertex 3)
`)
	if p.Len() != 3 {
		t.Fatalf("Len = %d, want 3", p.Len())
	}
}

func TestRemoveVertexBuiltinAtMinimum(t *testing.T) {
	evalFails(t, `
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
(remove-vertex 0)
`, "at least 3")
}

func TestMoveVertexBuiltinPropagates(t *testing.T) {
	// The scripted move must run the same propagation as a drag.
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(horizontal 0)
(vertical 1)
(move-vertex 1 12 3)
`)
	if got := p.VertexAt(1).Pos; got != polygon.Pt(12, 3) {
		t.Errorf("B = %v, want (12, 3)", got)
	}
	if got := p.VertexAt(0).Pos; got != polygon.Pt(0, 3) {
		t.Errorf("A = %v, want (0, 3)", got)
	}
	if got := p.VertexAt(2).Pos; got != polygon.Pt(12, 10) {
		t.Errorf("C = %v, want (12, 10)", got)
	}
}

func TestMovePolygonBuiltinIsRigid(t *testing.T) {
	// The whole document shifts; constraints and curves ride along
	// unchanged, so nothing is flagged broken.
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(horizontal 0)
(vertical 1)
(bezier 2)
(move-polygon 100 -20)
`)
	want := []polygon.Point{
		polygon.Pt(100, -20), polygon.Pt(110, -20), polygon.Pt(110, -10), polygon.Pt(100, -10)}
	for i, w := range want {
		if got := p.VertexAt(i).Pos; got != w {
			t.Errorf("vertex %d = %v, want %v", i, got, w)
		}
	}
	b, _ := p.EdgeAt(2).BezierShape()
	// Edge 2 controls started at the chord thirds of (10,10)-(0,10).
	if !b.Ctrl1.Near(polygon.Pt(110-10.0/3.0, -10), polygon.Epsilon) {
		t.Errorf("ctrl1 = %v, want the shifted chord third", b.Ctrl1)
	}
	for i := 0; i < p.Len(); i++ {
		if p.EdgeAt(i).Broken {
			t.Errorf("edge %d flagged broken by a rigid translation", i)
		}
	}
}

func TestMovePolygonBuiltinRequiresPolygon(t *testing.T) {
	evalFails(t, "(move-polygon 1 1)", "no polygon defined")
}

func TestMoveControlBuiltinHoldsContinuity(t *testing.T) {
	p := evalOK(t, `
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(bezier 0)
(bezier 1)
(move-control 0 :second 7 -2)
`)
	in, _ := p.EdgeAt(0).BezierShape()
	out, _ := p.EdgeAt(1).BezierShape()
	if in.Ctrl2 != polygon.Pt(7, -2) {
		t.Errorf("moved control = %v, want (7, -2)", in.Ctrl2)
	}
	// Vertex 1 is C1 by default: the pair mirrors through (10, 0).
	want := polygon.Pt(13, 2)
	if math.Abs(out.Ctrl1.X-want.X) > 1e-9 || math.Abs(out.Ctrl1.Y-want.Y) > 1e-9 {
		t.Errorf("paired control = %v, want %v", out.Ctrl1, want)
	}
}

func TestBuiltinsRequirePolygonFirst(t *testing.T) {
	evalFails(t, "(vertical 0)", "no polygon defined")
}

func TestIndexOutOfRange(t *testing.T) {
	evalFails(t, `
(polygon (pt 0 0) (pt 10 0) (pt 5 8))
(horizontal 7)
`, "out of range")
}

func TestKebabAndCommentsInRealSource(t *testing.T) {
	p := evalOK(t, `
; a constrained square with one curve
(polygon (pt 0 0) (pt 10 0) (pt 10 10) (pt 0 10))
(const-width 0 10)  ; bottom stays 10 wide
(bezier 2)
(continuity 2 :g1)
`)
	if _, ok := p.EdgeAt(0).Constraint.(polygon.ConstWidth); !ok {
		t.Error("const-width did not survive preprocessing")
	}
	if !p.EdgeAt(2).IsBezier() {
		t.Error("bezier edge missing")
	}
}
