package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"strings"
	"sync"

	"contour/pkg/engine"
	"contour/pkg/export"
	"contour/pkg/flatten"
	"contour/pkg/polygon"
	"contour/pkg/raster"
	"contour/pkg/raster/bresenham"
	"contour/pkg/raster/painter"
	"contour/pkg/session"
	"contour/pkg/solver"
)

// Editor colors.
var (
	colorBackground = color.RGBA{R: 0x1E, G: 0x1E, B: 0x24, A: 0xFF}
	colorOutline    = color.RGBA{R: 0xE8, G: 0xE8, B: 0xF0, A: 0xFF}
	colorBrokenEdge = color.RGBA{R: 0xE7, G: 0x4C, B: 0x3C, A: 0xFF}
	colorVertex     = color.RGBA{R: 0x4A, G: 0x90, B: 0xD9, A: 0xFF}
	colorControl    = color.RGBA{R: 0xF3, G: 0x9C, B: 0x12, A: 0xFF}
)

// App is the Wails backend. It owns the live polygon document and
// exposes the editor operations to the frontend via bindings. All
// bindings share one mutex: the frontend has a single pointer and a
// single script editor, so contention is nil, but Wails may call
// bindings from multiple goroutines.
type App struct {
	ctx    context.Context
	engine *engine.Engine

	mu      sync.Mutex
	session *session.Session
	raster  raster.Rasterizer
}

// NewApp creates the app with the starter document and the default
// pixel-stepping rasterizer.
func NewApp() *App {
	return &App{
		engine:  engine.NewEngine(),
		session: session.New(polygon.Sample()),
		raster:  bresenham.New(),
	}
}

// startup is called by Wails on app startup. The context is saved so
// we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// ---------------------------------------------------------------------------
// Frontend data types
// ---------------------------------------------------------------------------

// PointData is a JSON-serializable 2D point.
type PointData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// VertexData describes one polygon corner for the frontend.
type VertexData struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Continuity string  `json:"continuity"`
}

// EdgeData describes one edge for the frontend. Ctrl1/Ctrl2 are nil
// for straight edges.
type EdgeData struct {
	ID         int        `json:"id"`
	From       int        `json:"from"`
	To         int        `json:"to"`
	Constraint string     `json:"constraint"`
	Width      float64    `json:"width,omitempty"`
	Broken     bool       `json:"broken"`
	Ctrl1      *PointData `json:"ctrl1,omitempty"`
	Ctrl2      *PointData `json:"ctrl2,omitempty"`
}

// IssueData is a JSON-serializable validation finding.
type IssueData struct {
	Vertex   int    `json:"vertex"`
	Edge     int    `json:"edge"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// SceneData is the full document snapshot sent to the frontend after
// every operation.
type SceneData struct {
	Vertices []VertexData `json:"vertices"`
	Edges    []EdgeData   `json:"edges"`
	Outline  []PointData  `json:"outline"`
	Issues   []IssueData  `json:"issues"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of a script evaluation.
type EvalResult struct {
	Scene  *SceneData      `json:"scene"`
	Errors []EvalErrorData `json:"errors"`
}

// MeshData is the JSON-serializable mesh format for the 3D preview.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// ---------------------------------------------------------------------------
// Script evaluation
// ---------------------------------------------------------------------------

// Evaluate runs Lisp source and, on success, replaces the live
// document with the polygon it describes.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}}

	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.mu.Lock()
	a.session = session.New(p)
	a.mu.Unlock()

	scene := a.Scene()
	result.Scene = &scene
	return result
}

// ---------------------------------------------------------------------------
// Document snapshot
// ---------------------------------------------------------------------------

// Scene returns the current document snapshot.
func (a *App) Scene() SceneData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return buildScene(a.session.Model())
}

func buildScene(p *polygon.Polygon) SceneData {
	scene := SceneData{
		Vertices: []VertexData{},
		Edges:    []EdgeData{},
		Outline:  []PointData{},
		Issues:   []IssueData{},
	}
	for i := 0; i < p.Len(); i++ {
		v := p.VertexAt(i)
		scene.Vertices = append(scene.Vertices, VertexData{
			ID:         int(v.ID),
			X:          v.Pos.X,
			Y:          v.Pos.Y,
			Continuity: v.Continuity.String(),
		})

		e := p.EdgeAt(i)
		ed := EdgeData{
			ID:     int(e.ID),
			From:   int(v.ID),
			To:     int(p.VertexAt(i + 1).ID),
			Broken: e.Broken,
		}
		switch c := e.Constraint.(type) {
		case polygon.Vertical:
			ed.Constraint = "vertical"
		case polygon.Horizontal:
			ed.Constraint = "horizontal"
		case polygon.ConstWidth:
			ed.Constraint = "const-width"
			ed.Width = c.Width
		}
		if b, ok := e.BezierShape(); ok {
			ed.Ctrl1 = &PointData{X: b.Ctrl1.X, Y: b.Ctrl1.Y}
			ed.Ctrl2 = &PointData{X: b.Ctrl2.X, Y: b.Ctrl2.Y}
		}
		scene.Edges = append(scene.Edges, ed)
	}
	for _, pt := range flatten.Ring(p, 0) {
		scene.Outline = append(scene.Outline, PointData{X: pt.X, Y: pt.Y})
	}
	for _, issue := range polygon.Validate(p) {
		scene.Issues = append(scene.Issues, IssueData{
			Vertex:   int(issue.Vertex),
			Edge:     int(issue.Edge),
			Message:  issue.Message,
			Severity: issue.Severity.String(),
		})
	}
	return scene
}

// ---------------------------------------------------------------------------
// Drag gestures
// ---------------------------------------------------------------------------

// DragStartVertex begins a vertex drag gesture.
func (a *App) DragStartVertex(vertex int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.BeginVertexDrag(polygon.VertexID(vertex))
}

// DragStartControl begins a control point drag gesture. which is
// "first" or "second".
func (a *App) DragStartControl(edge int, which string) error {
	ctrl, err := parseControl(which)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.BeginControlDrag(polygon.EdgeID(edge), ctrl)
}

// DragStartPolygon begins a rigid whole-polygon drag anchored at the
// grab point. Relative positions are unchanged during the gesture, so
// no constraint can break.
func (a *App) DragStartPolygon(x, y float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.BeginPolygonDrag(polygon.Pt(x, y))
}

// DragMove recomputes the drag preview for the pointer position. The
// returned scene overlays the working positions on the committed
// model so the frontend draws the preview without mutating anything.
func (a *App) DragMove(x, y float64) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, err := a.session.Drag(polygon.Pt(x, y))
	if err != nil {
		return SceneData{}, err
	}
	preview := a.session.Model().Clone()
	applyPreview(preview, res)
	return buildScene(preview), nil
}

// DragEnd commits the active gesture and returns the new scene.
func (a *App) DragEnd() (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Commit(); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// DragCancel discards the active gesture, if any.
func (a *App) DragCancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.Cancel()
}

// MoveVertex performs a complete vertex move in one call.
func (a *App) MoveVertex(vertex int, x, y float64) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.session.MoveVertex(polygon.VertexID(vertex), polygon.Pt(x, y)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// MoveControl performs a complete control point move in one call.
func (a *App) MoveControl(edge int, which string, x, y float64) (SceneData, error) {
	ctrl, err := parseControl(which)
	if err != nil {
		return SceneData{}, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.session.MoveControl(polygon.EdgeID(edge), ctrl, polygon.Pt(x, y)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// TranslatePolygon shifts the whole document by (dx, dy) in one call.
func (a *App) TranslatePolygon(dx, dy float64) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.session.TranslatePolygon(polygon.Vec2{X: dx, Y: dy}); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// applyPreview writes a solver result onto a cloned model for preview
// rendering.
func applyPreview(p *polygon.Polygon, res solver.Result) {
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

// ---------------------------------------------------------------------------
// Structural and annotation operations
// ---------------------------------------------------------------------------

// SetConstraint attaches a constraint to an edge. kind is "vertical",
// "horizontal", "const-width" (width required), or "" to clear.
func (a *App) SetConstraint(edge int, kind string, width float64) (SceneData, error) {
	var c polygon.Constraint
	switch strings.ToLower(kind) {
	case "":
	case "vertical":
		c = polygon.Vertical{}
	case "horizontal":
		c = polygon.Horizontal{}
	case "const-width":
		c = polygon.ConstWidth{Width: width}
	default:
		return SceneData{}, fmt.Errorf("unknown constraint kind %q", kind)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Model().SetConstraint(polygon.EdgeID(edge), c); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// SetContinuity sets a vertex's junction mode: "g0", "g1", or "c1".
func (a *App) SetContinuity(vertex int, mode string) (SceneData, error) {
	var m polygon.Continuity
	switch strings.ToLower(mode) {
	case "g0":
		m = polygon.G0
	case "g1":
		m = polygon.G1
	case "c1":
		m = polygon.C1
	default:
		return SceneData{}, fmt.Errorf("unknown continuity mode %q", mode)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Model().SetContinuity(polygon.VertexID(vertex), m); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// ConvertToBezier turns a straight edge into a cubic curve.
func (a *App) ConvertToBezier(edge int) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Model().ConvertToBezier(polygon.EdgeID(edge)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// RevertToStraight turns a curve edge back into a straight segment.
func (a *App) RevertToStraight(edge int) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Model().RevertToStraight(polygon.EdgeID(edge)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// AddVertex splits an edge at the given position and returns the new
// vertex ID alongside the updated scene.
func (a *App) AddVertex(edge int, x, y float64) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.session.Model().AddVertex(polygon.EdgeID(edge), polygon.Pt(x, y)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// RemoveVertex deletes a vertex, merging its incident edges.
func (a *App) RemoveVertex(vertex int) (SceneData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.session.Model().RemoveVertex(polygon.VertexID(vertex)); err != nil {
		return SceneData{}, err
	}
	return buildScene(a.session.Model()), nil
}

// ---------------------------------------------------------------------------
// Rendering and export
// ---------------------------------------------------------------------------

// SetRasterizer switches the drawing backend: "bresenham" or
// "painter".
func (a *App) SetRasterizer(name string) error {
	var r raster.Rasterizer
	switch strings.ToLower(name) {
	case "bresenham":
		r = bresenham.New()
	case "painter":
		r = painter.New()
	default:
		return fmt.Errorf("unknown rasterizer %q", name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.raster = r
	return nil
}

// RenderPNG rasterizes the document into a w-by-h image and returns
// it base64-encoded for the frontend canvas.
func (a *App) RenderPNG(w, h int) (string, error) {
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("image size must be positive, got %dx%d", w, h)
	}

	a.mu.Lock()
	p := a.session.Model().Clone()
	r := a.raster
	a.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	// Broken edges draw in the alert color on top of the outline.
	raster.Outline(r, img, flatten.Outline(p, 0), colorOutline)
	for i := 0; i < p.Len(); i++ {
		if !p.EdgeAt(i).Broken {
			continue
		}
		r.Line(img, p.VertexAt(i).Pos, p.VertexAt(i+1).Pos, colorBrokenEdge)
	}

	var verts, ctrls []polygon.Point
	for i := 0; i < p.Len(); i++ {
		verts = append(verts, p.VertexAt(i).Pos)
		if b, ok := p.EdgeAt(i).BezierShape(); ok {
			ctrls = append(ctrls, b.Ctrl1, b.Ctrl2)
		}
	}
	raster.Markers(img, verts, 3, colorVertex)
	raster.Markers(img, ctrls, 2, colorControl)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encode: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ExtrudePreview extrudes the outline to the given height and returns
// the triangle mesh for the 3D preview pane.
func (a *App) ExtrudePreview(height float64) (MeshData, error) {
	a.mu.Lock()
	p := a.session.Model().Clone()
	a.mu.Unlock()

	mesh, err := export.Extrude(p, height, export.Options{})
	if err != nil {
		log.Printf("ExtrudePreview error: %v", err)
		return MeshData{}, err
	}
	return MeshData{
		Vertices: mesh.Vertices,
		Normals:  mesh.Normals,
		Indices:  mesh.Indices,
	}, nil
}

func parseControl(which string) (solver.Control, error) {
	switch strings.ToLower(which) {
	case "first", "ctrl1":
		return solver.Ctrl1, nil
	case "second", "ctrl2":
		return solver.Ctrl2, nil
	}
	return 0, fmt.Errorf("unknown control %q, expected first or second", which)
}
