package voxel

import (
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"

	resultOK       = "ok"
	resultNoBounds = "no_bounds"
	resultError    = "error"
)

var (
	voxelizeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxelize_runs_total",
		Help: "The number of voxelization runs by result.",
	}, []string{resultLabel})

	voxelizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxelize_duration_seconds",
		Help:    "The duration of successful voxelization runs.",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	voxelizeCells = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxelize_cells_total",
		Help: "The total number of classified cells.",
	})

	voxelizeIntersectingCells = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxelize_intersecting_cells_total",
		Help: "The total number of cells classified as intersecting a solid.",
	})
)

func instrumentRun(start time.Time, g *Grid, err error) {
	switch {
	case err != nil:
		label := errors.Type(err)
		if label == "" {
			label = resultError
		}
		voxelizeRuns.With(prometheus.Labels{resultLabel: label}).Inc()

	case g == nil:
		voxelizeRuns.With(prometheus.Labels{resultLabel: resultNoBounds}).Inc()

	default:
		voxelizeRuns.With(prometheus.Labels{resultLabel: resultOK}).Inc()
		voxelizeDuration.Observe(time.Since(start).Seconds())

		s := g.Stats()
		voxelizeCells.Add(float64(s.Cells))
		voxelizeIntersectingCells.Add(float64(s.IntersectingCells))
	}
}
