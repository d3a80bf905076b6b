package voxel

// Error types attached to the errors returned by this package. Test them
// with errors.IsType from github.com/aukilabs/go-tooling/pkg/errors.
const (
	// ErrTypeInvalidArgument marks a non-positive cell size, degenerate
	// bounds or inconsistent grid parameters.
	ErrTypeInvalidArgument = "voxel_invalid_argument"

	// ErrTypeGridTooLarge marks a grid whose cell count exceeds the
	// configured limit.
	ErrTypeGridTooLarge = "voxel_grid_too_large"

	// ErrTypeContainment marks a failure reported by the containment test.
	ErrTypeContainment = "voxel_containment_failed"
)
