package polygon

// MinVertices is the smallest ring the model accepts.
const MinVertices = 3

// Polygon is an ordered cyclic sequence of vertices. Edge i joins
// vertex i and vertex (i+1) mod N. Vertices and edges are stored in
// parallel slices and addressed by index internally; stable IDs are
// the external handle (arena + index, no back-references).
type Polygon struct {
	verts []*Vertex
	edges []*Edge

	nextVertexID VertexID
	nextEdgeID   EdgeID
}

// New creates a polygon from at least three corner positions. All
// edges start straight and unconstrained; all vertices default to C1.
func New(pts ...Point) (*Polygon, error) {
	if len(pts) < MinVertices {
		return nil, &InvariantViolationError{
			Op:      "New",
			Message: "a polygon needs at least 3 vertices",
		}
	}
	p := &Polygon{}
	for _, pos := range pts {
		p.verts = append(p.verts, &Vertex{ID: p.nextVertexID, Pos: pos, Continuity: C1})
		p.edges = append(p.edges, &Edge{ID: p.nextEdgeID, Shape: Straight{}})
		p.nextVertexID++
		p.nextEdgeID++
	}
	return p, nil
}

// Len returns the number of vertices (and edges).
func (p *Polygon) Len() int {
	return len(p.verts)
}

// VertexAt returns the vertex at ring index i (taken mod N).
func (p *Polygon) VertexAt(i int) *Vertex {
	return p.verts[p.wrap(i)]
}

// EdgeAt returns the edge at ring index i (taken mod N).
// Edge i runs from vertex i to vertex i+1.
func (p *Polygon) EdgeAt(i int) *Edge {
	return p.edges[p.wrap(i)]
}

func (p *Polygon) wrap(i int) int {
	n := len(p.verts)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// VertexIndex returns the ring index of the given vertex, or -1.
func (p *Polygon) VertexIndex(id VertexID) int {
	for i, v := range p.verts {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the ring index of the given edge, or -1.
func (p *Polygon) EdgeIndex(id EdgeID) int {
	for i, e := range p.edges {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Vertex returns the vertex with the given ID.
func (p *Polygon) Vertex(id VertexID) (*Vertex, bool) {
	if i := p.VertexIndex(id); i >= 0 {
		return p.verts[i], true
	}
	return nil, false
}

// Edge returns the edge with the given ID.
func (p *Polygon) Edge(id EdgeID) (*Edge, bool) {
	if i := p.EdgeIndex(id); i >= 0 {
		return p.edges[i], true
	}
	return nil, false
}

// Endpoints returns the source and target vertex IDs of an edge.
func (p *Polygon) Endpoints(id EdgeID) (VertexID, VertexID, error) {
	i := p.EdgeIndex(id)
	if i < 0 {
		return 0, 0, &UnknownIDError{Kind: "edge", ID: int(id)}
	}
	return p.verts[i].ID, p.VertexAt(i + 1).ID, nil
}

// IncidentEdges returns the edges meeting at a vertex: the incoming
// edge (ending at it) and the outgoing edge (starting at it).
func (p *Polygon) IncidentEdges(id VertexID) (in, out *Edge, err error) {
	i := p.VertexIndex(id)
	if i < 0 {
		return nil, nil, &UnknownIDError{Kind: "vertex", ID: int(id)}
	}
	return p.EdgeAt(i - 1), p.EdgeAt(i), nil
}

// Vertices returns the vertices in ring order.
func (p *Polygon) Vertices() []*Vertex {
	out := make([]*Vertex, len(p.verts))
	copy(out, p.verts)
	return out
}

// Edges returns the edges in ring order.
func (p *Polygon) Edges() []*Edge {
	out := make([]*Edge, len(p.edges))
	copy(out, p.edges)
	return out
}

// AddVertex splits the given edge at pos and returns the new vertex's
// ID. The split edge loses its constraint and both halves are
// straight: neither half inherits an annotation the user attached to
// the whole edge.
func (p *Polygon) AddVertex(after EdgeID, pos Point) (VertexID, error) {
	i := p.EdgeIndex(after)
	if i < 0 {
		return 0, &UnknownIDError{Kind: "edge", ID: int(after)}
	}

	v := &Vertex{ID: p.nextVertexID, Pos: pos, Continuity: C1}
	p.nextVertexID++
	e := &Edge{ID: p.nextEdgeID, Shape: Straight{}}
	p.nextEdgeID++

	split := p.edges[i]
	split.Constraint = nil
	split.Shape = Straight{}
	split.Broken = false

	at := i + 1
	p.verts = append(p.verts[:at], append([]*Vertex{v}, p.verts[at:]...)...)
	p.edges = append(p.edges[:at], append([]*Edge{e}, p.edges[at:]...)...)
	return v.ID, nil
}

// RemoveVertex deletes a vertex, merging its two incident edges into
// the incoming one. The merged edge loses its constraint and reverts
// to straight. Fails if the polygon would drop below three vertices.
func (p *Polygon) RemoveVertex(id VertexID) error {
	i := p.VertexIndex(id)
	if i < 0 {
		return &UnknownIDError{Kind: "vertex", ID: int(id)}
	}
	if len(p.verts) <= MinVertices {
		return &InvariantViolationError{
			Op:      "RemoveVertex",
			Message: "a polygon needs at least 3 vertices",
		}
	}

	merged := p.EdgeAt(i - 1)
	merged.Constraint = nil
	merged.Shape = Straight{}
	merged.Broken = false

	p.verts = append(p.verts[:i], p.verts[i+1:]...)
	p.edges = append(p.edges[:i], p.edges[i+1:]...)
	return nil
}

// SetConstraint attaches a constraint to an edge, or clears it when c
// is nil. Constraints apply only to straight edges; a directional
// constraint is also rejected when a neighboring edge already carries
// the same kind, since the pair could never both hold.
func (p *Polygon) SetConstraint(id EdgeID, c Constraint) error {
	i := p.EdgeIndex(id)
	if i < 0 {
		return &UnknownIDError{Kind: "edge", ID: int(id)}
	}
	e := p.edges[i]

	if c == nil {
		e.Constraint = nil
		e.Broken = false
		return nil
	}
	if e.IsBezier() {
		return &ConflictingConstraintError{
			Edge:    id,
			Message: "constraints apply only to straight edges",
		}
	}

	switch c := c.(type) {
	case ConstWidth:
		if c.Width <= 0 {
			return &ConflictingConstraintError{
				Edge:    id,
				Message: "constant width must be positive",
			}
		}
	case Vertical:
		if p.neighborHasConstraint(i, Vertical{}) {
			return &ConflictingConstraintError{
				Edge:    id,
				Message: "a neighboring edge is already vertical",
			}
		}
	case Horizontal:
		if p.neighborHasConstraint(i, Horizontal{}) {
			return &ConflictingConstraintError{
				Edge:    id,
				Message: "a neighboring edge is already horizontal",
			}
		}
	}

	e.Constraint = c
	e.Broken = false
	return nil
}

// neighborHasConstraint reports whether either ring neighbor of edge i
// carries a constraint of the same dynamic type as kind.
func (p *Polygon) neighborHasConstraint(i int, kind Constraint) bool {
	prev := p.EdgeAt(i - 1).Constraint
	next := p.EdgeAt(i + 1).Constraint
	switch kind.(type) {
	case Vertical:
		_, a := prev.(Vertical)
		_, b := next.(Vertical)
		return a || b
	case Horizontal:
		_, a := prev.(Horizontal)
		_, b := next.(Horizontal)
		return a || b
	}
	return false
}

// ConvertToBezier turns a straight edge into a cubic curve. Any
// constraint on the edge is cleared and the control points start at
// the 1/3 and 2/3 points of the chord. A no-op on curve edges.
func (p *Polygon) ConvertToBezier(id EdgeID) error {
	i := p.EdgeIndex(id)
	if i < 0 {
		return &UnknownIDError{Kind: "edge", ID: int(id)}
	}
	e := p.edges[i]
	if e.IsBezier() {
		return nil
	}
	a := p.verts[i].Pos
	b := p.VertexAt(i + 1).Pos
	e.Constraint = nil
	e.Broken = false
	e.Shape = Bezier{
		Ctrl1: a.Lerp(b, 1.0/3.0),
		Ctrl2: a.Lerp(b, 2.0/3.0),
	}
	return nil
}

// RevertToStraight turns a curve edge back into a straight segment,
// discarding its control points. A no-op on straight edges.
func (p *Polygon) RevertToStraight(id EdgeID) error {
	i := p.EdgeIndex(id)
	if i < 0 {
		return &UnknownIDError{Kind: "edge", ID: int(id)}
	}
	p.edges[i].Shape = Straight{}
	return nil
}

// SetContinuity stores the continuity mode for a vertex. The mode is
// always recorded; it only constrains geometry once both incident
// edges are Bezier-shaped.
func (p *Polygon) SetContinuity(id VertexID, mode Continuity) error {
	v, ok := p.Vertex(id)
	if !ok {
		return &UnknownIDError{Kind: "vertex", ID: int(id)}
	}
	v.Continuity = mode
	return nil
}

// Clone returns a deep copy of the polygon. Shape and Constraint
// variants are value types, so assigning them copies them.
func (p *Polygon) Clone() *Polygon {
	c := &Polygon{
		verts:        make([]*Vertex, len(p.verts)),
		edges:        make([]*Edge, len(p.edges)),
		nextVertexID: p.nextVertexID,
		nextEdgeID:   p.nextEdgeID,
	}
	for i, v := range p.verts {
		vc := *v
		c.verts[i] = &vc
	}
	for i, e := range p.edges {
		ec := *e
		c.edges[i] = &ec
	}
	return c
}
