package voxel

import "runtime"

// DefaultMaxCells is the largest grid Build accepts unless overridden with
// WithMaxCells. A 256³ grid allocates roughly one gigabyte of vertices and
// cells together.
const DefaultMaxCells = 256 * 256 * 256

// Option configures Build, Classify and Voxelize.
type Option func(*options)

type options struct {
	workers  int
	maxCells int
}

func newOptions(opts []Option) options {
	o := options{
		workers:  runtime.GOMAXPROCS(0),
		maxCells: DefaultMaxCells,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o
}

// WithWorkers sets the number of goroutines used to build and classify the
// grid. Values below 1 mean a single worker.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithMaxCells sets the largest number of cells a grid may have.
// A value of 0 or less disables the limit.
func WithMaxCells(n int) Option {
	return func(o *options) {
		o.maxCells = n
	}
}
