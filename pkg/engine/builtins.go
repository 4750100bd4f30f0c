package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"contour/pkg/polygon"
	"contour/pkg/session"
	"contour/pkg/solver"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms Contour Lisp source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keywords need no global symbol registration.
//
//  2. Kebab-case to underscore: const-width -> const_width. zygomys
//     reads a hyphen inside an identifier as subtraction.
//
//  3. Line comments: ; -> //, since zygomys only knows // comments.
//
// All three respect string literal boundaries.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"' || b[i] == '`':
			i = copyQuoted(&out, b, i)

		case b[i] == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out.WriteByte(b[i])
				i++
			}

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j

		case b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]):
			// Hyphen between identifier characters, not a minus.
			out.WriteByte('_')
			i++

		default:
			out.WriteByte(b[i])
			i++
		}
	}
	return out.String()
}

// copyQuoted copies a quoted literal starting at b[i] verbatim and
// returns the index past its closing quote.
func copyQuoted(out *strings.Builder, b []byte, i int) int {
	quote := b[i]
	out.WriteByte(b[i])
	i++
	for i < len(b) && b[i] != quote {
		if quote == '"' && b[i] == '\\' && i+1 < len(b) {
			out.WriteByte(b[i])
			out.WriteByte(b[i+1])
			i += 2
			continue
		}
		out.WriteByte(b[i])
		i++
	}
	if i < len(b) {
		out.WriteByte(b[i])
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpPoint wraps a polygon.Point so (pt x y) results can be consumed
// by (polygon ...).
type sexpPoint struct {
	pos polygon.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.pos.X, p.pos.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toIndex extracts a non-negative integer ring index.
func toIndex(s zygo.Sexp) (int, error) {
	v, ok := s.(*zygo.SexpInt)
	if !ok {
		return 0, fmt.Errorf("expected integer index, got %T (%s)", s, s.SexpString(nil))
	}
	if v.Val < 0 {
		return 0, fmt.Errorf("index must be non-negative, got %d", v.Val)
	}
	return int(v.Val), nil
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_c1) and plain strings ("c1").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toContinuity converts a keyword to a polygon.Continuity.
func toContinuity(s zygo.Sexp) (polygon.Continuity, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected continuity keyword (:g0, :g1, :c1): %w", err)
	}
	switch strings.ToLower(name) {
	case "g0":
		return polygon.G0, nil
	case "g1":
		return polygon.G1, nil
	case "c1":
		return polygon.C1, nil
	}
	return 0, fmt.Errorf("invalid continuity %q, expected g0, g1, or c1", name)
}

// toControl converts a keyword to a solver.Control.
func toControl(s zygo.Sexp) (solver.Control, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected control keyword (:first, :second): %w", err)
	}
	switch strings.ToLower(name) {
	case "first", "ctrl1":
		return solver.Ctrl1, nil
	case "second", "ctrl2":
		return solver.Ctrl2, nil
	}
	return 0, fmt.Errorf("invalid control %q, expected first or second", name)
}

// ---------------------------------------------------------------------------
// Evaluation document
// ---------------------------------------------------------------------------

// document is the polygon being built by one evaluation. Move builtins
// go through a session so scripted edits run the same constraint and
// continuity propagation as interactive drags.
type document struct {
	poly *polygon.Polygon
	ses  *session.Session
}

// edge resolves a ring index to an edge ID.
func (d *document) edge(i int) (polygon.EdgeID, error) {
	if d.poly == nil {
		return 0, fmt.Errorf("no polygon defined yet, call (polygon ...) first")
	}
	if i >= d.poly.Len() {
		return 0, fmt.Errorf("edge index %d out of range, polygon has %d edges", i, d.poly.Len())
	}
	return d.poly.EdgeAt(i).ID, nil
}

// vertex resolves a ring index to a vertex ID.
func (d *document) vertex(i int) (polygon.VertexID, error) {
	if d.poly == nil {
		return 0, fmt.Errorf("no polygon defined yet, call (polygon ...) first")
	}
	if i >= d.poly.Len() {
		return 0, fmt.Errorf("vertex index %d out of range, polygon has %d vertices", i, d.poly.Len())
	}
	return d.poly.VertexAt(i).ID, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the Contour DSL builtins into a zygomys
// environment. The builtins populate doc during evaluation.
//
// Source must be preprocessed with preprocessSource() first so that
// :keyword tokens and kebab-case names are in the form zygomys reads.
func registerBuiltins(env *zygo.Zlisp, doc *document) {

	// -----------------------------------------------------------------------
	// (pt x y)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{pos: polygon.Pt(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon (pt 0 0) (pt 10 0) (pt 10 10) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if doc.poly != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: already defined, a document holds one polygon")
		}
		pts := make([]polygon.Point, 0, len(args))
		for i, a := range args {
			sp, ok := a.(*sexpPoint)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("polygon: argument %d: expected (pt x y), got %T (%s)",
					i, a, a.SexpString(nil))
			}
			pts = append(pts, sp.pos)
		}
		p, err := polygon.New(pts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		doc.poly = p
		doc.ses = session.New(p)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vertical i) / (horizontal i)
	// -----------------------------------------------------------------------
	env.AddFunction("vertical", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return setConstraint(doc, "vertical", args, polygon.Vertical{})
	})
	env.AddFunction("horizontal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return setConstraint(doc, "horizontal", args, polygon.Horizontal{})
	})

	// -----------------------------------------------------------------------
	// (const-width i w)
	// -----------------------------------------------------------------------
	env.AddFunction("const_width", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("const-width requires an edge index and a width, got %d arguments", len(args))
		}
		w, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("const-width: width: %w", err)
		}
		return setConstraint(doc, "const-width", args[:1], polygon.ConstWidth{Width: w})
	})

	// -----------------------------------------------------------------------
	// (bezier i) / (straight i)
	// -----------------------------------------------------------------------
	env.AddFunction("bezier", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		id, err := edgeArg(doc, "bezier", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := doc.poly.ConvertToBezier(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("bezier: %w", err)
		}
		return zygo.SexpNull, nil
	})
	env.AddFunction("straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		id, err := edgeArg(doc, "straight", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		if err := doc.poly.RevertToStraight(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (continuity i :g0|:g1|:c1)
	// -----------------------------------------------------------------------
	env.AddFunction("continuity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("continuity requires a vertex index and a mode, got %d arguments", len(args))
		}
		i, err := toIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("continuity: vertex: %w", err)
		}
		mode, err := toContinuity(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("continuity: %w", err)
		}
		id, err := doc.vertex(i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("continuity: %w", err)
		}
		if err := doc.poly.SetContinuity(id, mode); err != nil {
			return zygo.SexpNull, fmt.Errorf("continuity: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (midpoint i) -- split edge i at its chord midpoint
	// -----------------------------------------------------------------------
	env.AddFunction("midpoint", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("midpoint requires an edge index, got %d arguments", len(args))
		}
		i, err := toIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("midpoint: edge: %w", err)
		}
		id, err := doc.edge(i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("midpoint: %w", err)
		}
		a := doc.poly.VertexAt(i).Pos
		b := doc.poly.VertexAt(i + 1).Pos
		if _, err := doc.poly.AddVertex(id, a.Midpoint(b)); err != nil {
			return zygo.SexpNull, fmt.Errorf("midpoint: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (remove-vertex i)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove-vertex requires a vertex index, got %d arguments", len(args))
		}
		i, err := toIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-vertex: vertex: %w", err)
		}
		id, err := doc.vertex(i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-vertex: %w", err)
		}
		if err := doc.poly.RemoveVertex(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove-vertex: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (move-vertex i x y) -- full begin/drag/commit gesture
	// -----------------------------------------------------------------------
	env.AddFunction("move_vertex", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("move-vertex requires a vertex index and x y, got %d arguments", len(args))
		}
		i, err := toIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertex: vertex: %w", err)
		}
		x, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertex: x: %w", err)
		}
		y, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertex: y: %w", err)
		}
		id, err := doc.vertex(i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertex: %w", err)
		}
		if _, err := doc.ses.MoveVertex(id, polygon.Pt(x, y)); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-vertex: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (move-polygon dx dy) -- rigid translation of the whole document
	// -----------------------------------------------------------------------
	env.AddFunction("move_polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("move-polygon requires dx dy, got %d arguments", len(args))
		}
		dx, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-polygon: dx: %w", err)
		}
		dy, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-polygon: dy: %w", err)
		}
		if doc.poly == nil {
			return zygo.SexpNull, fmt.Errorf("move-polygon: no polygon defined yet, call (polygon ...) first")
		}
		if _, err := doc.ses.TranslatePolygon(polygon.Vec2{X: dx, Y: dy}); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-polygon: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (move-control i :first|:second x y)
	// -----------------------------------------------------------------------
	env.AddFunction("move_control", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("move-control requires an edge index, a control keyword, and x y, got %d arguments", len(args))
		}
		i, err := toIndex(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: edge: %w", err)
		}
		which, err := toControl(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: %w", err)
		}
		x, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: x: %w", err)
		}
		y, err := toFloat64(args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: y: %w", err)
		}
		id, err := doc.edge(i)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: %w", err)
		}
		if _, err := doc.ses.MoveControl(id, which, polygon.Pt(x, y)); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-control: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

// edgeArg resolves the single edge-index argument shared by several
// builtins.
func edgeArg(doc *document, fn string, args []zygo.Sexp) (polygon.EdgeID, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s requires an edge index, got %d arguments", fn, len(args))
	}
	i, err := toIndex(args[0])
	if err != nil {
		return 0, fmt.Errorf("%s: edge: %w", fn, err)
	}
	id, err := doc.edge(i)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", fn, err)
	}
	return id, nil
}

// setConstraint resolves the edge argument and attaches c to it.
func setConstraint(doc *document, fn string, args []zygo.Sexp, c polygon.Constraint) (zygo.Sexp, error) {
	id, err := edgeArg(doc, fn, args)
	if err != nil {
		return zygo.SexpNull, err
	}
	if err := doc.poly.SetConstraint(id, c); err != nil {
		return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
	}
	return zygo.SexpNull, nil
}
