package voxel

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// ContainmentTest classifies points against one fixed solid. Classify is
// called concurrently from several goroutines and must not depend on call
// order.
type ContainmentTest interface {
	Classify(p v3.Vec) (geom.Containment, error)
}

// ContainmentFunc adapts a function to the ContainmentTest interface.
type ContainmentFunc func(p v3.Vec) (geom.Containment, error)

// Classify calls f(p).
func (f ContainmentFunc) Classify(p v3.Vec) (geom.Containment, error) {
	return f(p)
}

// Classify marks every lattice vertex inside when the containment test does
// not report it Outside, then marks every cell intersecting when any of its
// eight corners is inside. Running it again with the same test yields the
// same flags.
//
// The first error returned by the test aborts classification and leaves
// the grid unclassified with every flag cleared.
func Classify(g *Grid, test ContainmentTest, opts ...Option) error {
	if g == nil {
		return errors.New("grid is nil").WithType(ErrTypeInvalidArgument)
	}
	if test == nil {
		return errors.New("containment test is nil").WithType(ErrTypeInvalidArgument)
	}

	o := newOptions(opts)
	g.classified = false

	err := g.classify(test, o)
	if err != nil {
		g.reset()
	}
	return err
}

func (g *Grid) classify(test ContainmentTest, o options) error {
	err := forEachSlab(len(g.vertices), o.workers, func(lo, hi int) error {
		for off := lo; off < hi; off++ {
			c, err := test.Classify(g.vertices[off].Position)
			if err != nil {
				return errors.New("containment test failed").
					WithType(ErrTypeContainment).
					WithTag("vertex", g.vertices[off].Index.String()).
					Wrap(err)
			}
			g.inside[off] = c.Occupied()
		}
		return nil
	})
	if err != nil {
		return err
	}

	err = forEachSlab(len(g.cells), o.workers, func(lo, hi int) error {
		for off := lo; off < hi; off++ {
			g.intersects[off] = g.anyCornerInside(g.cells[off].Index)
		}
		return nil
	})
	if err != nil {
		return err
	}

	g.classified = true
	return nil
}

// reset clears every flag so a failed run leaves no partial results.
func (g *Grid) reset() {
	clear(g.inside)
	clear(g.intersects)
}

func (g *Grid) anyCornerInside(idx Index) bool {
	n := g.EdgeCount + 1
	for _, o := range cornerOffsets {
		if g.inside[flatten(idx.add(o), n)] {
			return true
		}
	}
	return false
}

// forEachSlab splits [0,n) into contiguous slabs and runs fn on them with at
// most workers goroutines. Each offset belongs to exactly one slab. Slabs
// not yet started when a call fails are skipped.
func forEachSlab(n, workers int, fn func(lo, hi int) error) error {
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	slabs := workers * 4
	if slabs > n {
		slabs = n
	}
	size := (n + slabs - 1) / slabs

	eg, ctx := errgroup.WithContext(context.Background())
	eg.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		lo, hi := lo, min(lo+size, n)
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			return fn(lo, hi)
		})
	}
	return eg.Wait()
}
