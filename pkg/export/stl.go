package export

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/deadsy/sdfx/render"
)

// SaveSTL writes the surface of the intersecting cells of g as a binary
// STL file.
func SaveSTL(path string, g *voxel.Grid) error {
	if err := render.SaveSTL(path, triangles(SurfaceMesh(g, ""))); err != nil {
		return errors.New("writing stl failed").
			WithType(ErrTypeWrite).
			WithTag("path", path).
			Wrap(err)
	}
	return nil
}
