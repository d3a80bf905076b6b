// Package graph defines the design graph types.
// The design graph is an immutable DAG of primitives, transforms, boolean
// operations and named solids that describes the geometry to voxelize.
package graph
