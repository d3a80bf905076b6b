package main

import (
	"context"
	"os"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/voxelize/pkg/engine"
	"github.com/chazu/voxelize/pkg/export"
	"github.com/chazu/voxelize/pkg/kernel/sdfx"
	"github.com/chazu/voxelize/pkg/realize"
	"github.com/chazu/voxelize/pkg/voxel"
)

// summary describes what was written for one solid.
type summary struct {
	Name    string
	Stats   voxel.Stats
	Outputs []string
	Skipped bool
}

// run evaluates the scene, voxelizes the selected solids and writes their
// outputs. Solids without bounds are logged and skipped.
func run(ctx context.Context, conf config) ([]summary, error) {
	formats, err := export.ParseFormats(conf.Formats)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(conf.Scene)
	if err != nil {
		return nil, errors.New("reading scene failed").
			WithTag("scene", conf.Scene).
			Wrap(err)
	}

	res, err := engine.NewEngine(engine.WithTimeout(conf.EvalTimeout)).EvaluateAll(string(source))
	if err != nil {
		return nil, errors.New("evaluating scene failed").
			WithTag("scene", conf.Scene).
			Wrap(err)
	}
	for _, w := range res.Warnings {
		logs.WithTag("scene", conf.Scene).Warn(w.Message)
	}
	if len(res.Errors) > 0 {
		msgs := make([]string, len(res.Errors))
		for i, e := range res.Errors {
			msgs[i] = e.Error()
		}
		return nil, errors.Newf("scene has %d errors", len(res.Errors)).
			WithTag("scene", conf.Scene).
			WithTag("errors", msgs)
	}

	k := sdfx.New(sdfx.WithTolerance(conf.Tolerance))
	solids, err := realize.Solids(res.Graph, k)
	if err != nil {
		return nil, err
	}

	solids, err = selectSolids(solids, conf.Solids)
	if err != nil {
		return nil, err
	}

	opts := []voxel.Option{
		voxel.WithWorkers(conf.Workers),
		voxel.WithMaxCells(conf.MaxCells),
	}

	summaries := make([]summary, 0, len(solids))
	for _, s := range solids {
		if err := ctx.Err(); err != nil {
			return summaries, errors.New("voxelization canceled").Wrap(err)
		}

		cellSize := s.CellSize
		if conf.CellSize > 0 {
			cellSize = conf.CellSize
		}

		g, err := voxel.Voxelize(s.Solid, cellSize, opts...)
		if err != nil {
			return summaries, errors.Newf("voxelizing solid %q failed", s.Name).
				WithTag("cell_size", cellSize).
				Wrap(err)
		}
		if g == nil {
			logs.WithTag("solid", s.Name).Warn("solid has no bounds, skipped")
			summaries = append(summaries, summary{Name: s.Name, Skipped: true})
			continue
		}

		outputs, err := export.Write(conf.Out, s.Name, g, formats)
		if err != nil {
			return summaries, err
		}

		stats := g.Stats()
		logs.WithTag("solid", s.Name).
			WithTag("edge_count", stats.EdgeCount).
			WithTag("edge_length", stats.EdgeLength).
			WithTag("cells", stats.Cells).
			WithTag("intersecting_cells", stats.IntersectingCells).
			WithTag("outputs", outputs).
			Info("solid voxelized")

		summaries = append(summaries, summary{
			Name:    s.Name,
			Stats:   stats,
			Outputs: outputs,
		})
	}
	return summaries, nil
}

// selectSolids keeps the solids named in names, in scene order. An empty
// selection keeps every solid.
func selectSolids(solids []realize.NamedSolid, names []string) ([]realize.NamedSolid, error) {
	wanted := make(map[string]bool)
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			wanted[n] = true
		}
	}
	if len(wanted) == 0 {
		return solids, nil
	}

	var selected []realize.NamedSolid
	for _, s := range solids {
		if wanted[s.Name] {
			selected = append(selected, s)
			delete(wanted, s.Name)
		}
	}

	if len(wanted) > 0 {
		missing := make([]string, 0, len(wanted))
		for n := range wanted {
			missing = append(missing, n)
		}
		return nil, errors.New("unknown solids").WithTag("solids", missing)
	}
	return selected, nil
}
