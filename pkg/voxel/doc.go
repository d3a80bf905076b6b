// Package voxel discretizes a solid's bounding volume into a cubic grid of
// cells and classifies every cell as intersecting the solid when at least one
// of its eight corner vertices lies inside or on the solid's boundary.
//
// The pipeline is one-way: Voxelize sizes the grid from the solid's bounds
// and a recommended cell size, builds the vertex lattice and the cells that
// reference it, then runs Classify against the solid's containment test.
// Cells only sample their corners; a thin feature that passes between the
// corners of a cell leaves that cell unmarked.
package voxel
