package polygon

import (
	"fmt"
	"math"
)

// ValidationEpsilon is the tolerance used when checking geometric
// invariants after a completed edit.
const ValidationEpsilon = 1e-6

// ValidationSeverity indicates whether a validation finding means the
// model is structurally broken or merely that a geometric invariant
// drifted (e.g. a constraint the solver reported as broken).
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // structural breakage
	SeverityWarning                           // geometric drift
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Vertex   VertexID // which vertex, if vertex-scoped (-1 otherwise)
	Edge     EdgeID   // which edge, if edge-scoped (-1 otherwise)
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case e.Vertex >= 0:
		return fmt.Sprintf("[%s] vertex %d: %s", e.Severity, e.Vertex, e.Message)
	case e.Edge >= 0:
		return fmt.Sprintf("[%s] edge %d: %s", e.Severity, e.Edge, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// Validate checks every model invariant and returns all findings.
// It is read-only and never mutates the polygon. An empty result
// means every constraint and continuity requirement holds.
func Validate(p *Polygon) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateStructure(p)...)
	errs = append(errs, validateConstraints(p)...)
	errs = append(errs, validateContinuity(p)...)
	return errs
}

func validateStructure(p *Polygon) []ValidationError {
	var errs []ValidationError
	if p.Len() < MinVertices {
		errs = append(errs, ValidationError{
			Vertex:   -1,
			Edge:     -1,
			Message:  fmt.Sprintf("polygon has %d vertices, need at least %d", p.Len(), MinVertices),
			Severity: SeverityError,
		})
	}
	for i := 0; i < p.Len(); i++ {
		e := p.EdgeAt(i)
		if e.Constraint != nil && e.IsBezier() {
			errs = append(errs, ValidationError{
				Vertex:   -1,
				Edge:     e.ID,
				Message:  fmt.Sprintf("%s constraint attached to a bezier edge", e.Constraint),
				Severity: SeverityError,
			})
		}
		if w, ok := e.Constraint.(ConstWidth); ok && w.Width <= 0 {
			errs = append(errs, ValidationError{
				Vertex:   -1,
				Edge:     e.ID,
				Message:  fmt.Sprintf("constant width %g is not positive", w.Width),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validateConstraints(p *Polygon) []ValidationError {
	var errs []ValidationError
	for i := 0; i < p.Len(); i++ {
		e := p.EdgeAt(i)
		if e.Constraint == nil || e.Broken {
			// Broken edges are exempt until re-attached (solver
			// wavefronts disagreed; the user resolves it).
			continue
		}
		a := p.VertexAt(i).Pos
		b := p.VertexAt(i + 1).Pos
		switch c := e.Constraint.(type) {
		case Vertical:
			if math.Abs(a.X-b.X) > ValidationEpsilon {
				errs = append(errs, ValidationError{
					Vertex:   -1,
					Edge:     e.ID,
					Message:  fmt.Sprintf("vertical edge endpoints differ in x by %g", math.Abs(a.X-b.X)),
					Severity: SeverityWarning,
				})
			}
		case Horizontal:
			if math.Abs(a.Y-b.Y) > ValidationEpsilon {
				errs = append(errs, ValidationError{
					Vertex:   -1,
					Edge:     e.ID,
					Message:  fmt.Sprintf("horizontal edge endpoints differ in y by %g", math.Abs(a.Y-b.Y)),
					Severity: SeverityWarning,
				})
			}
		case ConstWidth:
			if d := a.Distance(b); math.Abs(d-c.Width) > ValidationEpsilon {
				errs = append(errs, ValidationError{
					Vertex:   -1,
					Edge:     e.ID,
					Message:  fmt.Sprintf("edge length %g, want constant width %g", d, c.Width),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

func validateContinuity(p *Polygon) []ValidationError {
	var errs []ValidationError
	for i := 0; i < p.Len(); i++ {
		v := p.VertexAt(i)
		in, ok1 := p.EdgeAt(i - 1).BezierShape()
		out, ok2 := p.EdgeAt(i).BezierShape()
		if !ok1 || !ok2 {
			// Continuity is unenforced with fewer than two adjacent
			// bezier control points.
			continue
		}
		cin := in.Ctrl2.Sub(v.Pos)  // incoming tangent arm
		cout := out.Ctrl1.Sub(v.Pos) // outgoing tangent arm
		switch v.Continuity {
		case C1:
			if !cout.Add(cin).IsZeroWithin(ValidationEpsilon) {
				errs = append(errs, ValidationError{
					Vertex:   v.ID,
					Edge:     -1,
					Message:  "control points are not exactly mirrored (C1)",
					Severity: SeverityWarning,
				})
			}
		case G1:
			if cin.IsZero() || cout.IsZero() {
				continue
			}
			if math.Abs(cin.Cross(cout)) > ValidationEpsilon*math.Max(1, cin.Hypot()*cout.Hypot()) ||
				cin.Dot(cout) >= 0 {
				// Arms must be collinear and point away from each
				// other (opposite directions through the vertex).
				errs = append(errs, ValidationError{
					Vertex:   v.ID,
					Edge:     -1,
					Message:  "control points are not collinear through the vertex (G1)",
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// IsZeroWithin reports whether both components of v are within eps of
// zero.
func (v Vec2) IsZeroWithin(eps float64) bool {
	return math.Abs(v.X) <= eps && math.Abs(v.Y) <= eps
}
