package main

import (
	"context"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/chazu/voxelize/pkg/engine"
	"github.com/chazu/voxelize/pkg/export"
	"github.com/chazu/voxelize/pkg/graph"
	"github.com/chazu/voxelize/pkg/kernel"
	"github.com/chazu/voxelize/pkg/kernel/sdfx"
	"github.com/chazu/voxelize/pkg/realize"
	"github.com/chazu/voxelize/pkg/voxel"
)

// appMaxCells keeps interactive voxelization responsive.
const appMaxCells = 128 * 128 * 128

// colorPalette is a default palette used to assign distinct colors to solids.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	kernel kernel.Kernel
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// VoxelSolid is the voxelization of one named solid.
type VoxelSolid struct {
	Name    string      `json:"name"`
	Stats   voxel.Stats `json:"stats"`
	Mesh    MeshData    `json:"mesh"`
	Skipped bool        `json:"skipped"`
}

// VoxelResult is returned by the Voxelize binding.
type VoxelResult struct {
	Solids   []VoxelSolid    `json:"solids"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp() *App {
	return &App{
		engine: engine.NewEngine(),
		kernel: sdfx.New(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns one mesh per named solid plus
// errors. This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, ok := a.evaluate(source, &result.Errors, &result.Warnings)
	if !ok {
		return result
	}

	meshes, err := realize.Meshes(g, a.kernel)
	if err != nil {
		logs.Warn(errors.New("meshing scene failed").Wrap(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "meshing failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, meshData(m, i))
	}
	return result
}

// Voxelize evaluates source and voxelizes every named solid. A positive
// cellSize overrides the cell size set in the scene. Each solid comes back
// with its grid statistics and the surface of its intersecting cells.
func (a *App) Voxelize(source string, cellSize float64) VoxelResult {
	result := VoxelResult{
		Solids:   []VoxelSolid{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	g, ok := a.evaluate(source, &result.Errors, &result.Warnings)
	if !ok {
		return result
	}

	solids, err := realize.Solids(g, a.kernel)
	if err != nil {
		logs.Warn(errors.New("realizing scene failed").Wrap(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for i, s := range solids {
		size := s.CellSize
		if cellSize > 0 {
			size = cellSize
		}

		grid, err := voxel.Voxelize(s.Solid, size, voxel.WithMaxCells(appMaxCells))
		if err != nil {
			logs.WithTag("solid", s.Name).Warn(err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: "voxelizing " + s.Name + " failed: " + err.Error(),
			})
			continue
		}
		if grid == nil {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: "solid " + s.Name + " has no bounds",
			})
			result.Solids = append(result.Solids, VoxelSolid{Name: s.Name, Skipped: true})
			continue
		}

		logs.WithTag("solid", s.Name).
			WithTag("cell_size", size).
			WithTag("edge_count", grid.EdgeCount).
			Debug("solid voxelized")

		result.Solids = append(result.Solids, VoxelSolid{
			Name:  s.Name,
			Stats: grid.Stats(),
			Mesh:  meshData(export.SurfaceMesh(grid, s.Name), i),
		})
	}
	return result
}

// evaluate runs the engine and appends its errors and warnings. It reports
// whether a graph was produced.
func (a *App) evaluate(source string, errs, warns *[]EvalErrorData) (*graph.DesignGraph, bool) {
	res, err := a.engine.EvaluateAll(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logs.Warn(errors.New("evaluation failed").Wrap(err))
		*errs = append(*errs, EvalErrorData{Message: err.Error()})
		return nil, false
	}

	for _, w := range res.Warnings {
		*warns = append(*warns, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	for _, e := range res.Errors {
		*errs = append(*errs, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	return res.Graph, len(res.Errors) == 0 && res.Graph != nil
}

func meshData(m *kernel.Mesh, i int) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		PartName: m.PartName,
		Color:    colorPalette[i%len(colorPalette)],
	}
}
