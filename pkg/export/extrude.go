// Package export turns the drawn polygon into a 3D preview by
// extruding its flattened outline with the github.com/deadsy/sdfx CAD
// library and tessellating the result with marching cubes. The mesh
// uses flat arrays so it can be handed to the frontend renderer as-is.
package export

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"contour/pkg/flatten"
	"contour/pkg/polygon"
)

// defaultMeshCells controls marching cubes tessellation resolution.
const defaultMeshCells = 120

// Mesh is a triangle mesh suitable for rendering. All arrays are
// flat: vertices has 3 floats per vertex (x,y,z), normals has 3
// floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Options tunes the extrusion.
type Options struct {
	// Tolerance is the curve flattening tolerance; zero uses the
	// flatten package default.
	Tolerance float64
	// Cells is the marching cubes resolution; zero uses the default.
	Cells int
}

// Extrude flattens the polygon's closed outline and extrudes it to
// the given height, returning a triangle mesh of the resulting solid.
func Extrude(p *polygon.Polygon, height float64, opts Options) (*Mesh, error) {
	if height <= 0 {
		return nil, fmt.Errorf("export: extrusion height must be positive, got %g", height)
	}

	ring := flatten.Ring(p, opts.Tolerance)
	if len(ring) < polygon.MinVertices {
		return nil, fmt.Errorf("export: outline has %d points, need at least %d", len(ring), polygon.MinVertices)
	}
	// Screen-space rings wind clockwise (y grows downward); the SDF
	// profile wants counter-clockwise.
	if signedArea(ring) < 0 {
		for i, j := 0, len(ring)-1; i < j; i, j = i+1, j-1 {
			ring[i], ring[j] = ring[j], ring[i]
		}
	}
	vertices := make([]v2.Vec, len(ring))
	for i, pt := range ring {
		vertices[i] = v2.Vec{X: pt.X, Y: pt.Y}
	}

	profile, err := sdf.Polygon2D(vertices)
	if err != nil {
		return nil, fmt.Errorf("export: sdf.Polygon2D: %w", err)
	}
	solid := sdf.Extrude3D(profile, height)

	cells := opts.Cells
	if cells <= 0 {
		cells = defaultMeshCells
	}
	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))

	// Unroll the triangle soup into flat arrays with one face normal
	// per corner.
	numVerts := len(triangles) * 3
	mesh := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, nx, ny, nz)
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh, nil
}

// signedArea is twice the shoelace area: positive for a
// counter-clockwise ring.
func signedArea(ring []polygon.Point) float64 {
	var sum float64
	for i, a := range ring {
		b := ring[(i+1)%len(ring)]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}
