// Package session orchestrates interactive edit gestures. A Session
// owns the live polygon document and drives one drag at a time: every
// drag move is solved against the live model, which stays untouched
// until the gesture commits, and Cancel discards the pending result.
// The model is only ever mutated by Commit and by the structural
// operations on the polygon itself, and both are non-reentrant by the
// single-focus input contract.
package session

import (
	"errors"

	"contour/pkg/polygon"
	"contour/pkg/solver"
)

var (
	// ErrDragActive rejects starting a gesture while one is running.
	ErrDragActive = errors.New("session: a drag is already active")
	// ErrNoDrag rejects drag-move and commit without an active gesture.
	ErrNoDrag = errors.New("session: no active drag")
)

type dragKind int

const (
	dragNone dragKind = iota
	dragVertex
	dragControl
	dragPolygon
)

// Session drives edit gestures against one polygon document.
type Session struct {
	model *polygon.Polygon

	kind    dragKind
	vertex  polygon.VertexID
	control solver.ControlRef
	anchor  polygon.Point
	working solver.Result
}

// New creates a session for the given document.
func New(model *polygon.Polygon) *Session {
	return &Session{model: model}
}

// Model returns the live document.
func (s *Session) Model() *polygon.Polygon {
	return s.model
}

// Active reports whether a drag gesture is in progress.
func (s *Session) Active() bool {
	return s.kind != dragNone
}

// BeginVertexDrag starts a drag gesture on a vertex.
func (s *Session) BeginVertexDrag(id polygon.VertexID) error {
	if s.kind != dragNone {
		return ErrDragActive
	}
	if _, ok := s.model.Vertex(id); !ok {
		return &polygon.UnknownIDError{Kind: "vertex", ID: int(id)}
	}
	s.kind = dragVertex
	s.vertex = id
	s.working = solver.Result{}
	return nil
}

// BeginControlDrag starts a drag gesture on a Bezier control point.
func (s *Session) BeginControlDrag(edge polygon.EdgeID, which solver.Control) error {
	if s.kind != dragNone {
		return ErrDragActive
	}
	e, ok := s.model.Edge(edge)
	if !ok {
		return &polygon.UnknownIDError{Kind: "edge", ID: int(edge)}
	}
	if !e.IsBezier() {
		return errors.New("session: edge has no control points")
	}
	s.kind = dragControl
	s.control = solver.ControlRef{Edge: edge, Which: which}
	s.working = solver.Result{}
	return nil
}

// BeginPolygonDrag starts a rigid drag of the whole polygon. anchor is
// the grab point; each Drag position is taken relative to it.
func (s *Session) BeginPolygonDrag(anchor polygon.Point) error {
	if s.kind != dragNone {
		return ErrDragActive
	}
	s.kind = dragPolygon
	s.anchor = anchor
	s.working = solver.Result{}
	return nil
}

// Drag recomputes the working copy for the requested position. Every
// move is solved against the live model, which nothing else mutates
// during a gesture and which stays untouched until Commit, so repeated
// moves never accumulate drift.
func (s *Session) Drag(pos polygon.Point) (solver.Result, error) {
	switch s.kind {
	case dragVertex:
		res, err := solver.Move(s.model, s.vertex, pos)
		if err != nil {
			return solver.Result{}, err
		}
		s.working = res
		return res, nil
	case dragPolygon:
		res := solver.Translate(s.model, pos.Sub(s.anchor))
		s.working = res
		return res, nil
	case dragControl:
		res, err := solver.MoveControl(s.model, s.control.Edge, s.control.Which, pos)
		if err != nil {
			return solver.Result{}, err
		}
		s.working = res
		return res, nil
	default:
		return solver.Result{}, ErrNoDrag
	}
}

// Commit writes the working copy into the model atomically and ends
// the gesture. Committing a gesture with no moves is a no-op.
func (s *Session) Commit() error {
	if s.kind == dragNone {
		return ErrNoDrag
	}
	apply(s.model, s.working)
	s.reset()
	return nil
}

// Cancel discards the working copy with no model mutation.
func (s *Session) Cancel() {
	s.reset()
}

func (s *Session) reset() {
	s.kind = dragNone
	s.working = solver.Result{}
}

// MoveVertex performs a complete begin/drag/commit gesture in one
// call. This is the programmatic API used by scripts and bindings.
func (s *Session) MoveVertex(id polygon.VertexID, pos polygon.Point) (solver.Result, error) {
	if err := s.BeginVertexDrag(id); err != nil {
		return solver.Result{}, err
	}
	res, err := s.Drag(pos)
	if err != nil {
		s.Cancel()
		return solver.Result{}, err
	}
	if err := s.Commit(); err != nil {
		return solver.Result{}, err
	}
	return res, nil
}

// TranslatePolygon shifts the whole document by delta in one call.
// Relative positions are unchanged, so constraints and continuity
// relations survive without a solve.
func (s *Session) TranslatePolygon(delta polygon.Vec2) (solver.Result, error) {
	if err := s.BeginPolygonDrag(polygon.Pt(0, 0)); err != nil {
		return solver.Result{}, err
	}
	res, err := s.Drag(polygon.Pt(delta.X, delta.Y))
	if err != nil {
		s.Cancel()
		return solver.Result{}, err
	}
	if err := s.Commit(); err != nil {
		return solver.Result{}, err
	}
	return res, nil
}

// MoveControl performs a complete control point gesture in one call.
func (s *Session) MoveControl(edge polygon.EdgeID, which solver.Control, pos polygon.Point) (solver.Result, error) {
	if err := s.BeginControlDrag(edge, which); err != nil {
		return solver.Result{}, err
	}
	res, err := s.Drag(pos)
	if err != nil {
		s.Cancel()
		return solver.Result{}, err
	}
	if err := s.Commit(); err != nil {
		return solver.Result{}, err
	}
	return res, nil
}

// apply writes a solver result into the model. The result's IDs all
// came from the model and the model cannot have changed mid-gesture,
// so the writes cannot partially fail.
func apply(p *polygon.Polygon, res solver.Result) {
	for id, pos := range res.Positions {
		if v, ok := p.Vertex(id); ok {
			v.Pos = pos
		}
	}
	for ref, pos := range res.Controls {
		e, ok := p.Edge(ref.Edge)
		if !ok {
			continue
		}
		b, ok := e.BezierShape()
		if !ok {
			continue
		}
		if ref.Which == solver.Ctrl1 {
			b.Ctrl1 = pos
		} else {
			b.Ctrl2 = pos
		}
		e.Shape = b
	}
	for _, id := range res.Broken {
		if e, ok := p.Edge(id); ok {
			e.Broken = true
		}
	}
}
