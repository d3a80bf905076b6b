// Package kernel defines the abstract geometry kernel interface.
// Implementations provide solid modeling and boolean operations behind
// this interface, and every solid they produce can be voxelized directly.
package kernel

import "github.com/chazu/voxelize/pkg/voxel"

// Solid is an opaque handle to a geometry kernel solid. It reports its
// bounds and answers point containment queries, which is all the voxel
// package needs.
type Solid interface {
	voxel.Solid
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives. Dimensions must be positive.
	Box(x, y, z float64) (Solid, error)
	Sphere(radius float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
