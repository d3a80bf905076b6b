package voxel

import (
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

func constant(c geom.Containment) ContainmentTest {
	return ContainmentFunc(func(v3.Vec) (geom.Containment, error) {
		return c, nil
	})
}

func sphereTest(center v3.Vec, radius float64) ContainmentTest {
	return ContainmentFunc(func(p v3.Vec) (geom.Containment, error) {
		d := p.Sub(center).Length()
		switch {
		case d < radius:
			return geom.Inside, nil
		case d == radius:
			return geom.OnBoundary, nil
		default:
			return geom.Outside, nil
		}
	})
}

func newGrid(t *testing.T, n int, opts ...Option) *Grid {
	t.Helper()
	g, err := Build(box(0, 0, 0, float64(n), float64(n), float64(n)), n, 1, opts...)
	require.NoError(t, err)
	return g
}

func TestClassifyAllOutside(t *testing.T) {
	g := newGrid(t, 3)
	require.NoError(t, Classify(g, constant(geom.Outside)))

	require.True(t, g.Classified())
	for _, v := range g.Vertices() {
		require.False(t, g.Inside(v.Index))
	}
	require.Empty(t, g.Intersecting())
	require.Zero(t, g.Stats().IntersectingCells)
}

func TestClassifyAllInside(t *testing.T) {
	g := newGrid(t, 3)
	require.NoError(t, Classify(g, constant(geom.Inside)))

	s := g.Stats()
	require.Equal(t, 64, s.InsideVertices)
	require.Equal(t, 27, s.IntersectingCells)
	require.Len(t, g.Intersecting(), 27)
}

func TestClassifyBoundaryCountsInside(t *testing.T) {
	g := newGrid(t, 2)
	require.NoError(t, Classify(g, constant(geom.OnBoundary)))

	require.Equal(t, 27, g.Stats().InsideVertices)
	require.Equal(t, 8, g.Stats().IntersectingCells)
}

func TestClassifySingleVertex(t *testing.T) {
	tests := []struct {
		vertex Index
		cells  int
	}{
		{Index{0, 0, 0}, 1},
		{Index{1, 0, 0}, 2},
		{Index{1, 1, 0}, 4},
		{Index{1, 1, 1}, 8},
		{Index{2, 2, 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.vertex.String(), func(t *testing.T) {
			g := newGrid(t, 2)
			target := g.Vertex(tt.vertex).Position
			test := ContainmentFunc(func(p v3.Vec) (geom.Containment, error) {
				if p == target {
					return geom.Inside, nil
				}
				return geom.Outside, nil
			})
			require.NoError(t, Classify(g, test))

			require.Equal(t, 1, g.Stats().InsideVertices)
			require.Len(t, g.Intersecting(), tt.cells)
			for _, c := range g.Intersecting() {
				require.Contains(t, g.Corners(c.Index), tt.vertex)
			}
		})
	}
}

func TestClassifyCellIsOrOfCorners(t *testing.T) {
	g := newGrid(t, 6)
	require.NoError(t, Classify(g, sphereTest(v3.Vec{X: 2.5, Y: 3, Z: 3.5}, 2.2)))

	for _, c := range g.Cells() {
		want := false
		for _, idx := range g.Corners(c.Index) {
			want = want || g.Inside(idx)
		}
		require.Equal(t, want, g.Intersects(c.Index), "cell %s", c.Index)
	}
}

func TestClassifyMatchesBruteForce(t *testing.T) {
	center, radius := v3.Vec{X: 4, Y: 4, Z: 4}, 3.0
	test := sphereTest(center, radius)

	g := newGrid(t, 8)
	require.NoError(t, Classify(g, test))

	for _, v := range g.Vertices() {
		want := v.Position.Sub(center).Length() <= radius
		require.Equal(t, want, g.Inside(v.Index), "vertex %s", v.Index)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	g := newGrid(t, 5)
	test := sphereTest(v3.Vec{X: 2, Y: 2, Z: 2}, 1.7)

	require.NoError(t, Classify(g, test))
	first := append([]bool(nil), g.intersects...)
	firstInside := append([]bool(nil), g.inside...)

	require.NoError(t, Classify(g, test))
	require.Equal(t, first, g.intersects)
	require.Equal(t, firstInside, g.inside)
}

func TestClassifyReplacesPreviousFlags(t *testing.T) {
	g := newGrid(t, 3)
	require.NoError(t, Classify(g, constant(geom.Inside)))
	require.NoError(t, Classify(g, constant(geom.Outside)))

	require.Zero(t, g.Stats().InsideVertices)
	require.Zero(t, g.Stats().IntersectingCells)
}

func TestClassifyMissesThinFeatures(t *testing.T) {
	g := newGrid(t, 4)

	// A slab strictly between two lattice planes contains no vertex.
	slab := ContainmentFunc(func(p v3.Vec) (geom.Containment, error) {
		if p.Z > 1.45 && p.Z < 1.55 {
			return geom.Inside, nil
		}
		return geom.Outside, nil
	})
	require.NoError(t, Classify(g, slab))
	require.True(t, g.Classified())
	require.Empty(t, g.Intersecting())
}

func TestClassifySameResultForAnyWorkerCount(t *testing.T) {
	test := sphereTest(v3.Vec{X: 5.1, Y: 4.3, Z: 6.2}, 3.9)

	single := newGrid(t, 10)
	require.NoError(t, Classify(single, test, WithWorkers(1)))

	for _, workers := range []int{2, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			g := newGrid(t, 10)
			require.NoError(t, Classify(g, test, WithWorkers(workers)))
			require.Equal(t, single.inside, g.inside)
			require.Equal(t, single.intersects, g.intersects)
		})
	}
}

func TestClassifyCallsTestOncePerVertex(t *testing.T) {
	g := newGrid(t, 4, WithWorkers(4))

	var calls atomic.Int64
	test := ContainmentFunc(func(v3.Vec) (geom.Containment, error) {
		calls.Add(1)
		return geom.Outside, nil
	})
	require.NoError(t, Classify(g, test, WithWorkers(4)))
	require.Equal(t, int64(g.VertexCount()), calls.Load())
}

func TestClassifyTestError(t *testing.T) {
	g := newGrid(t, 3)
	require.NoError(t, Classify(g, constant(geom.Inside)))
	require.True(t, g.Classified())

	failing := ContainmentFunc(func(p v3.Vec) (geom.Containment, error) {
		if p.X > 1.5 {
			return geom.Outside, fmt.Errorf("no answer at %v", p)
		}
		return geom.Inside, nil
	})

	err := Classify(g, failing)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeContainment))
	require.False(t, g.Classified())
	// No flags survive from the previous run or the partial one.
	for _, v := range g.Vertices() {
		require.False(t, g.Inside(v.Index), "vertex %s", v.Index)
	}
	require.Empty(t, g.Intersecting())
	require.Zero(t, g.Stats().InsideVertices)
}

func TestClassifyNilArguments(t *testing.T) {
	err := Classify(nil, constant(geom.Inside))
	require.True(t, errors.IsType(err, ErrTypeInvalidArgument))

	err = Classify(newGrid(t, 1), nil)
	require.True(t, errors.IsType(err, ErrTypeInvalidArgument))
}

func TestForEachSlabCoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100, 1001} {
		for _, workers := range []int{0, 1, 3, 16} {
			hits := make([]int32, n)
			err := forEachSlab(n, workers, func(lo, hi int) error {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
				return nil
			})
			require.NoError(t, err)
			for i, h := range hits {
				require.Equal(t, int32(1), h, "n=%d workers=%d offset=%d", n, workers, i)
			}
		}
	}
}

func TestForEachSlabReturnsError(t *testing.T) {
	want := fmt.Errorf("boom")
	err := forEachSlab(100, 4, func(lo, hi int) error {
		if lo == 0 {
			return want
		}
		return nil
	})
	require.Equal(t, want, err)
}

func TestSphereTestHelper(t *testing.T) {
	test := sphereTest(v3.Vec{}, 1)
	c, err := test.Classify(v3.Vec{X: 1})
	require.NoError(t, err)
	require.Equal(t, geom.OnBoundary, c)

	c, err = test.Classify(v3.Vec{X: math.Sqrt(2)})
	require.NoError(t, err)
	require.Equal(t, geom.Outside, c)
}
