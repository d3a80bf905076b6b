package export

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/seqsense/pcgol/mat"
	"github.com/seqsense/pcgol/pc"
)

// Labels of the lattice points in a PCD file.
const (
	LabelOutside uint32 = 0
	LabelInside  uint32 = 1
)

// PointCloud returns every lattice vertex of g as a point, x-major, labeled
// LabelInside or LabelOutside.
func PointCloud(g *voxel.Grid) (*pc.PointCloud, error) {
	vertices := g.Vertices()

	pp := &pc.PointCloud{
		PointCloudHeader: pc.PointCloudHeader{
			Version: 0.7,
			Fields:  []string{"x", "y", "z", "label"},
			Size:    []int{4, 4, 4, 4},
			Type:    []string{"F", "F", "F", "U"},
			Count:   []int{1, 1, 1, 1},
			Width:   len(vertices),
			Height:  1,
		},
		Points: len(vertices),
	}
	pp.Data = make([]byte, len(vertices)*pp.Stride())

	it, err := pp.Vec3Iterator()
	if err != nil {
		return nil, err
	}
	itL, err := pp.Uint32Iterator("label")
	if err != nil {
		return nil, err
	}

	for _, v := range vertices {
		it.SetVec3(mat.Vec3{
			float32(v.Position.X),
			float32(v.Position.Y),
			float32(v.Position.Z),
		})
		label := LabelOutside
		if g.Inside(v.Index) {
			label = LabelInside
		}
		itL.SetUint32(label)
		it.Incr()
		itL.Incr()
	}
	return pp, nil
}

// WritePCD encodes the labeled lattice of g as a PCD point cloud.
func WritePCD(w io.Writer, g *voxel.Grid) error {
	pp, err := PointCloud(g)
	if err != nil {
		return errors.New("building point cloud failed").WithType(ErrTypeWrite).Wrap(err)
	}
	if err := pc.Marshal(pp, w); err != nil {
		return errors.New("encoding pcd failed").WithType(ErrTypeWrite).Wrap(err)
	}
	return nil
}

// SavePCD writes the labeled lattice of g to path.
func SavePCD(path string, g *voxel.Grid) (err error) {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer func() { err = closeFile(f, err) }()

	return WritePCD(f, g)
}
