// Package polygon defines the core data model for Contour: a closed
// 2D polygon whose edges may carry geometric constraints or be shaped
// as cubic Bezier curves with per-vertex junction continuity.
//
// The model is pure data plus structural operations. Every operation
// is atomic: it either leaves the polygon in an invariant-satisfying
// state or rejects the edit entirely. Constraint and continuity
// propagation live in the solver package; this package only stores
// the annotations and checks them in Validate.
package polygon
