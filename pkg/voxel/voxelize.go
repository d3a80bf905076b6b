package voxel

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/voxelize/pkg/geom"
	"github.com/google/uuid"
)

// Solid is the geometry a grid is computed for.
type Solid interface {
	// Bounds returns the axis-aligned bounding box of the solid, or false
	// when the solid has no usable bounds.
	Bounds() (geom.Box, bool)

	// ContainmentTest returns a point classifier for the solid. It is
	// requested once per Voxelize call.
	ContainmentTest() (ContainmentTest, error)
}

// Voxelize computes the classified voxel grid of s for a recommended cell
// size. It returns a nil grid and a nil error when s has no bounds.
func Voxelize(s Solid, recommendedCellSize float64, opts ...Option) (*Grid, error) {
	start := time.Now()
	g, err := voxelize(s, recommendedCellSize, uuid.NewString(), opts)
	instrumentRun(start, g, err)
	return g, err
}

func voxelize(s Solid, recommendedCellSize float64, runID string, opts []Option) (*Grid, error) {
	if s == nil {
		return nil, errors.New("solid is nil").WithType(ErrTypeInvalidArgument)
	}

	bounds, ok := s.Bounds()
	if !ok {
		logs.WithTag("run_id", runID).Debug("solid has no bounds, nothing to voxelize")
		return nil, nil
	}

	edgeCount, edgeLength, err := ComputeOptimalEdgeLength(bounds, recommendedCellSize)
	if err != nil {
		return nil, err
	}
	extents := ComputeGridExtents(bounds, edgeCount, edgeLength)

	g, err := Build(extents, edgeCount, edgeLength, opts...)
	if err != nil {
		return nil, err
	}
	logs.WithTag("run_id", runID).
		WithTag("edge_count", edgeCount).
		WithTag("edge_length", edgeLength).
		WithTag("extents", extents.String()).
		Debug("voxel grid built")

	test, err := s.ContainmentTest()
	if err != nil {
		return nil, errors.New("creating containment test failed").
			WithType(ErrTypeContainment).
			Wrap(err)
	}

	if err := Classify(g, test, opts...); err != nil {
		return nil, err
	}

	stats := g.Stats()
	logs.WithTag("run_id", runID).
		WithTag("cells", stats.Cells).
		WithTag("intersecting_cells", stats.IntersectingCells).
		Debug("voxel grid classified")

	return g, nil
}
