package export

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const generator = "voxelize"

// Document builds a glTF document holding the surface of the intersecting
// cells of g as one mesh named name. A grid without intersecting cells
// yields a document with an empty scene.
func Document(name string, g *voxel.Grid) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = generator

	m := SurfaceMesh(g, name)
	if m.IsEmpty() {
		return doc
	}

	positions, normals := vec3s(m.Vertices), vec3s(m.Normals)
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Mode:    gltf.PrimitiveTriangles,
			Indices: gltf.Index(modeler.WriteIndices(doc, m.Indices)),
			Attributes: map[string]int{
				gltf.POSITION: modeler.WritePosition(doc, positions),
				gltf.NORMAL:   modeler.WriteNormal(doc, normals),
			},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(len(doc.Meshes) - 1),
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc
}

// WriteGLB encodes the grid surface as binary glTF.
func WriteGLB(w io.Writer, name string, g *voxel.Grid) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(Document(name, g)); err != nil {
		return errors.New("encoding glb failed").
			WithType(ErrTypeWrite).
			Wrap(err)
	}
	return nil
}

// SaveGLB writes the grid surface to a .glb file.
func SaveGLB(path, name string, g *voxel.Grid) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = closeFile(f, err) }()

	return WriteGLB(f, name, g)
}

func vec3s(flat []float32) [][3]float32 {
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out
}
