package polygon

import "fmt"

// InvariantViolationError rejects a structural edit that would break a
// model invariant (e.g. dropping below three vertices). The model is
// left unchanged.
type InvariantViolationError struct {
	Op      string
	Message string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: invariant violation: %s", e.Op, e.Message)
}

// ConflictingConstraintError rejects a constraint attachment that is
// incompatible with the edge's current shape or its neighborhood. The
// model is left unchanged.
type ConflictingConstraintError struct {
	Edge    EdgeID
	Message string
}

func (e *ConflictingConstraintError) Error() string {
	return fmt.Sprintf("edge %d: conflicting constraint: %s", e.Edge, e.Message)
}

// UnknownIDError reports a vertex or edge ID that does not exist in
// the polygon.
type UnknownIDError struct {
	Kind string // "vertex" or "edge"
	ID   int
}

func (e *UnknownIDError) Error() string {
	return fmt.Sprintf("no %s with id %d", e.Kind, e.ID)
}
