package export

import (
	"github.com/chazu/voxelize/pkg/kernel"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// faceNeighbors holds the index offset of the cell across each face.
var faceNeighbors = [6]voxel.Index{
	kernel.FaceNegX: {I: -1},
	kernel.FacePosX: {I: 1},
	kernel.FaceNegY: {J: -1},
	kernel.FacePosY: {J: 1},
	kernel.FaceNegZ: {K: -1},
	kernel.FacePosZ: {K: 1},
}

// SurfaceMesh returns the outer surface of the intersecting cells of g.
// Faces shared by two intersecting cells are left out, so the mesh is
// closed.
func SurfaceMesh(g *voxel.Grid, name string) *kernel.Mesh {
	m := &kernel.Mesh{PartName: name}

	faces := make([]kernel.Face, 0, len(kernel.AllFaces))
	for _, c := range g.Intersecting() {
		faces = faces[:0]
		for _, f := range kernel.AllFaces {
			if !intersects(g, c.Index, faceNeighbors[f]) {
				faces = append(faces, f)
			}
		}
		m.AppendBoxFaces(c.Bounds, faces...)
	}
	return m
}

// intersects reports whether the cell at idx+off exists and intersects.
func intersects(g *voxel.Grid, idx, off voxel.Index) bool {
	n := voxel.Index{I: idx.I + off.I, J: idx.J + off.J, K: idx.K + off.K}
	if n.I < 0 || n.J < 0 || n.K < 0 ||
		n.I >= g.EdgeCount || n.J >= g.EdgeCount || n.K >= g.EdgeCount {
		return false
	}
	return g.Intersects(n)
}

// triangles converts an indexed mesh into sdfx triangles.
func triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	vertex := func(i uint32) v3.Vec {
		return v3.Vec{
			X: float64(m.Vertices[i*3]),
			Y: float64(m.Vertices[i*3+1]),
			Z: float64(m.Vertices[i*3+2]),
		}
	}

	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		tris = append(tris, &sdf.Triangle3{
			vertex(m.Indices[i]),
			vertex(m.Indices[i+1]),
			vertex(m.Indices[i+2]),
		})
	}
	return tris
}
