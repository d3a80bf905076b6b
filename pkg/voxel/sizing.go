package voxel

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/geom"
)

// maxEdgeCount bounds the per-axis cell count before it is converted to int.
const maxEdgeCount = 1 << 20

// ComputeOptimalEdgeLength picks the cell count per axis and the cell edge
// length for a solid with the given bounds. The count is
// ceil(longestEdge/recommendedCellSize), at least 1, and the edge length
// divides the longest edge exactly so that edgeCount cells span it.
func ComputeOptimalEdgeLength(bounds geom.Box, recommendedCellSize float64) (edgeCount int, edgeLength float64, err error) {
	if !(recommendedCellSize > 0) || math.IsInf(recommendedCellSize, 0) {
		return 0, 0, errors.New("recommended cell size must be a positive finite number").
			WithType(ErrTypeInvalidArgument).
			WithTag("cell_size", recommendedCellSize)
	}
	if !bounds.Valid() {
		return 0, 0, errors.New("invalid bounding box").
			WithType(ErrTypeInvalidArgument).
			WithTag("bounds", bounds.String())
	}

	longest := bounds.LongestEdge()
	if !(longest > 0) {
		return 0, 0, errors.New("bounding box is degenerate").
			WithType(ErrTypeInvalidArgument).
			WithTag("bounds", bounds.String())
	}

	count := math.Ceil(longest / recommendedCellSize)
	if count < 1 {
		count = 1
	}
	if count > maxEdgeCount {
		return 0, 0, errors.New("cell size too small for the solid").
			WithType(ErrTypeGridTooLarge).
			WithTag("cell_size", recommendedCellSize).
			WithTag("longest_edge", longest)
	}

	edgeCount = int(count)
	return edgeCount, longest / float64(edgeCount), nil
}

// ComputeGridExtents returns the cube of side edgeCount*edgeLength centered
// on the center of bounds. Axes shorter than the longest edge are padded
// equally on both sides.
func ComputeGridExtents(bounds geom.Box, edgeCount int, edgeLength float64) geom.Box {
	half := float64(edgeCount) * edgeLength / 2
	return geom.Cube(bounds.Center(), half)
}
