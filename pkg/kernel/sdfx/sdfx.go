// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// Point containment comes from the sign of the signed distance function:
// negative is inside, positive is outside, and values within the kernel
// tolerance of zero are on the boundary.
package sdfx

import (
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/geom"
	"github.com/chazu/voxelize/pkg/kernel"
	"github.com/chazu/voxelize/pkg/voxel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

const (
	// DefaultTolerance is the distance from the surface within which a point
	// is reported on the boundary.
	DefaultTolerance = 1e-9

	// defaultMeshCells controls marching cubes tessellation resolution.
	defaultMeshCells = 200

	// ErrTypePrimitive is the error type of invalid primitive dimensions.
	ErrTypePrimitive = "sdfx_invalid_primitive"
)

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s         sdf.SDF3
	tolerance float64
}

// Bounds returns the axis-aligned bounding box. Solids whose box is empty
// or degenerate report no bounds.
func (s *sdfxSolid) Bounds() (geom.Box, bool) {
	b := geom.FromSDF(s.s.BoundingBox())
	if !b.Valid() || b.LongestEdge() <= 0 {
		return geom.Box{}, false
	}
	return b, true
}

// ContainmentTest returns a classifier evaluating the signed distance
// function. It is safe for concurrent use.
func (s *sdfxSolid) ContainmentTest() (voxel.ContainmentTest, error) {
	return voxel.ContainmentFunc(s.classify), nil
}

func (s *sdfxSolid) classify(p v3.Vec) (geom.Containment, error) {
	d := s.s.Evaluate(p)
	switch {
	case math.IsNaN(d):
		return geom.Outside, errors.Newf("signed distance at (%g,%g,%g) is NaN", p.X, p.Y, p.Z)
	case math.Abs(d) <= s.tolerance:
		return geom.OnBoundary, nil
	case d < 0:
		return geom.Inside, nil
	default:
		return geom.Outside, nil
	}
}

// SDF returns the underlying signed distance function of a solid created by
// this package.
func SDF(s kernel.Solid) sdf.SDF3 {
	return unwrap(s)
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithTolerance sets the boundary tolerance of containment tests. Negative
// values are treated as zero.
func WithTolerance(tol float64) Option {
	return func(k *SdfxKernel) {
		k.tolerance = math.Max(tol, 0)
	}
}

// WithMeshCells sets the marching cubes resolution used by ToMesh.
func WithMeshCells(cells int) Option {
	return func(k *SdfxKernel) {
		if cells > 0 {
			k.meshCells = cells
		}
	}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	tolerance float64
	meshCells int
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{
		tolerance: DefaultTolerance,
		meshCells: defaultMeshCells,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Tolerance returns the boundary tolerance of the kernel's solids.
func (k *SdfxKernel) Tolerance() float64 {
	return k.tolerance
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func (k *SdfxKernel) wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s, tolerance: k.tolerance}
}

// positive reports whether every dimension is a positive finite number.
func positive(dims ...float64) bool {
	for _, d := range dims {
		if !(d > 0) || math.IsInf(d, 1) {
			return false
		}
	}
	return true
}

func errNotPositive(dims ...float64) error {
	return errors.New("dimensions must be positive").WithTag("dimensions", dims)
}

func invalidPrimitive(name string, err error) error {
	return errors.New("invalid " + name).
		WithType(ErrTypePrimitive).
		Wrap(err)
}

// Box creates a box with the given dimensions. The resulting solid has its
// minimum corner at the origin (0,0,0) so that a translation places that
// corner. sdf.Box3D centers the box at the origin, so it is shifted by
// half-dimensions.
func (k *SdfxKernel) Box(x, y, z float64) (kernel.Solid, error) {
	if !positive(x, y, z) {
		return nil, invalidPrimitive("box", errNotPositive(x, y, z))
	}
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, invalidPrimitive("box", err)
	}
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return k.wrap(sdf.Transform3D(s, m)), nil
}

// Sphere creates a sphere of the given radius centered at the origin.
func (k *SdfxKernel) Sphere(radius float64) (kernel.Solid, error) {
	if !positive(radius) {
		return nil, invalidPrimitive("sphere", errNotPositive(radius))
	}
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, invalidPrimitive("sphere", err)
	}
	return k.wrap(s), nil
}

// Cylinder creates a cylinder along Z centered at the origin.
func (k *SdfxKernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	if !positive(height, radius) {
		return nil, invalidPrimitive("cylinder", errNotPositive(height, radius))
	}
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, invalidPrimitive("cylinder", err)
	}
	return k.wrap(s), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return k.wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate rotates a solid by Euler angles (degrees) around X, Y, Z axes.
func (k *SdfxKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.RotateZ(sdf.DtoR(z)).Mul(sdf.RotateY(sdf.DtoR(y))).Mul(sdf.RotateX(sdf.DtoR(x)))
	return k.wrap(sdf.Transform3D(unwrap(s), m))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	renderer := render.NewMarchingCubesUniform(k.meshCells)
	triangles := render.ToTriangles(unwrap(s), renderer)

	numVerts := len(triangles) * 3
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}

	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}
