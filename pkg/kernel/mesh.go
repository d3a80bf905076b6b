package kernel

import (
	"github.com/chazu/voxelize/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which named solid this came from
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

// Face selects one side of an axis-aligned box.
type Face int

const (
	FaceNegX Face = iota
	FacePosX
	FaceNegY
	FacePosY
	FaceNegZ
	FacePosZ
)

// AllFaces lists every side of a box.
var AllFaces = []Face{FaceNegX, FacePosX, FaceNegY, FacePosY, FaceNegZ, FacePosZ}

// boxFaces lists the corners of each box face counter-clockwise seen from
// outside, as indices into geom.Box.Corners, with the outward normal.
// It is indexed by Face.
var boxFaces = [6]struct {
	corners [4]int
	normal  v3.Vec
}{
	FaceNegX: {[4]int{0, 4, 7, 3}, v3.Vec{X: -1}},
	FacePosX: {[4]int{1, 2, 6, 5}, v3.Vec{X: 1}},
	FaceNegY: {[4]int{0, 1, 5, 4}, v3.Vec{Y: -1}},
	FacePosY: {[4]int{3, 7, 6, 2}, v3.Vec{Y: 1}},
	FaceNegZ: {[4]int{0, 3, 2, 1}, v3.Vec{Z: -1}},
	FacePosZ: {[4]int{4, 5, 6, 7}, v3.Vec{Z: 1}},
}

// AppendBox appends the 12 triangles of an axis-aligned box with flat face
// normals.
func (m *Mesh) AppendBox(b geom.Box) {
	m.AppendBoxFaces(b, AllFaces...)
}

// AppendBoxFaces appends two triangles per selected face of b.
func (m *Mesh) AppendBoxFaces(b geom.Box, faces ...Face) {
	corners := b.Corners()
	for _, face := range faces {
		f := boxFaces[face]
		base := uint32(m.VertexCount())
		for _, c := range f.corners {
			p := corners[c]
			m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
			m.Normals = append(m.Normals, float32(f.normal.X), float32(f.normal.Y), float32(f.normal.Z))
		}
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
}
