package voxel

import (
	"fmt"
	"math"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Index is an integer grid coordinate.
type Index struct {
	I int `json:"i" yaml:"i"`
	J int `json:"j" yaml:"j"`
	K int `json:"k" yaml:"k"`
}

func (idx Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", idx.I, idx.J, idx.K)
}

func (idx Index) add(o Index) Index {
	return Index{idx.I + o.I, idx.J + o.J, idx.K + o.K}
}

// Vertex is one point of the grid lattice. Its inside flag is kept by the
// grid, see Grid.Inside.
type Vertex struct {
	Index    Index  `json:"index" yaml:"index"`
	Position v3.Vec `json:"position" yaml:"position"`
}

// Cell is one voxel of the grid. Its corners are lattice vertices
// Index..Index+(1,1,1), see Grid.Corners; its intersects flag is kept by
// the grid, see Grid.Intersects.
type Cell struct {
	Index  Index    `json:"index" yaml:"index"`
	Bounds geom.Box `json:"bounds" yaml:"bounds"`
}

// cornerOffsets lists the eight corners of a cell relative to its index,
// in the order V000, V001, V101, V100, V010, V011, V111, V110.
var cornerOffsets = [8]Index{
	{0, 0, 0},
	{0, 0, 1},
	{1, 0, 1},
	{1, 0, 0},
	{0, 1, 0},
	{0, 1, 1},
	{1, 1, 1},
	{1, 1, 0},
}

// Grid is a cubic voxel grid: (EdgeCount+1)³ lattice vertices and
// EdgeCount³ cells, both stored in flat x-major buffers. The shape never
// changes after Build; Classify only rewrites the inside and intersects
// flags, which live in buffers parallel to the vertices and cells.
type Grid struct {
	Extents    geom.Box
	EdgeCount  int
	EdgeLength float64

	vertices   []Vertex
	cells      []Cell
	inside     []bool
	intersects []bool
	classified bool
}

// Build constructs the lattice and cells of a grid spanning extents with
// edgeCount cells of edgeLength per axis. The longest edge of extents must
// equal edgeCount*edgeLength.
func Build(extents geom.Box, edgeCount int, edgeLength float64, opts ...Option) (*Grid, error) {
	o := newOptions(opts)

	if edgeCount < 1 {
		return nil, errors.New("edge count must be at least 1").
			WithType(ErrTypeInvalidArgument).
			WithTag("edge_count", edgeCount)
	}
	if !(edgeLength > 0) || math.IsInf(edgeLength, 0) {
		return nil, errors.New("edge length must be a positive finite number").
			WithType(ErrTypeInvalidArgument).
			WithTag("edge_length", edgeLength)
	}
	if !extents.Valid() {
		return nil, errors.New("invalid grid extents").
			WithType(ErrTypeInvalidArgument).
			WithTag("extents", extents.String())
	}

	// Extents far from the origin carry rounding error proportional to
	// their coordinates, not to their span.
	span := float64(edgeCount) * edgeLength
	tol := 1e-9*math.Max(1, span) + 1e-12*magnitude(extents)
	if math.Abs(extents.LongestEdge()-span) > tol {
		return nil, errors.New("grid extents do not match edge count and length").
			WithType(ErrTypeInvalidArgument).
			WithTag("extents", extents.String()).
			WithTag("edge_count", edgeCount).
			WithTag("edge_length", edgeLength)
	}

	if edgeCount > maxEdgeCount {
		return nil, errors.New("grid is too large").
			WithType(ErrTypeGridTooLarge).
			WithTag("edge_count", edgeCount)
	}
	cellCount := edgeCount * edgeCount * edgeCount
	if o.maxCells > 0 && cellCount > o.maxCells {
		return nil, errors.New("grid is too large").
			WithType(ErrTypeGridTooLarge).
			WithTag("cells", cellCount).
			WithTag("max_cells", o.maxCells)
	}

	n := edgeCount + 1
	g := &Grid{
		Extents:    extents,
		EdgeCount:  edgeCount,
		EdgeLength: edgeLength,
		vertices:   make([]Vertex, n*n*n),
		cells:      make([]Cell, cellCount),
		inside:     make([]bool, n*n*n),
		intersects: make([]bool, cellCount),
	}

	origin := extents.Min
	err := forEachSlab(len(g.vertices), o.workers, func(lo, hi int) error {
		for off := lo; off < hi; off++ {
			idx := unflatten(off, n)
			g.vertices[off] = Vertex{
				Index: idx,
				Position: v3.Vec{
					X: origin.X + float64(idx.I)*edgeLength,
					Y: origin.Y + float64(idx.J)*edgeLength,
					Z: origin.Z + float64(idx.K)*edgeLength,
				},
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachSlab(len(g.cells), o.workers, func(lo, hi int) error {
		for off := lo; off < hi; off++ {
			idx := unflatten(off, edgeCount)
			g.cells[off] = Cell{
				Index: idx,
				Bounds: geom.Box{
					Min: g.vertices[g.vertexOffset(idx)].Position,
					Max: g.vertices[g.vertexOffset(idx.add(Index{1, 1, 1}))].Position,
				},
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return g, nil
}

// unflatten converts an x-major offset into an index for an n³ buffer.
// magnitude returns the largest absolute coordinate of b.
func magnitude(b geom.Box) float64 {
	m := 0.0
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func unflatten(off, n int) Index {
	return Index{I: off / (n * n), J: (off / n) % n, K: off % n}
}

func flatten(idx Index, n int) int {
	return (idx.I*n+idx.J)*n + idx.K
}

func inRange(idx Index, n int) bool {
	return idx.I >= 0 && idx.I < n &&
		idx.J >= 0 && idx.J < n &&
		idx.K >= 0 && idx.K < n
}

func (g *Grid) vertexOffset(idx Index) int {
	n := g.EdgeCount + 1
	if !inRange(idx, n) {
		panic(fmt.Sprintf("voxel: vertex index %s out of range [0,%d]", idx, g.EdgeCount))
	}
	return flatten(idx, n)
}

func (g *Grid) cellOffset(idx Index) int {
	if !inRange(idx, g.EdgeCount) {
		panic(fmt.Sprintf("voxel: cell index %s out of range [0,%d)", idx, g.EdgeCount))
	}
	return flatten(idx, g.EdgeCount)
}

// VertexCount returns (EdgeCount+1)³.
func (g *Grid) VertexCount() int {
	return len(g.vertices)
}

// CellCount returns EdgeCount³.
func (g *Grid) CellCount() int {
	return len(g.cells)
}

// Vertex returns the lattice vertex at idx. It panics if idx is out of range.
func (g *Grid) Vertex(idx Index) Vertex {
	return g.vertices[g.vertexOffset(idx)]
}

// Cell returns the cell at idx. It panics if idx is out of range.
func (g *Grid) Cell(idx Index) Cell {
	return g.cells[g.cellOffset(idx)]
}

// Vertices returns all lattice vertices in x-major order.
// The slice is owned by the grid and must not be modified.
func (g *Grid) Vertices() []Vertex {
	return g.vertices
}

// Cells returns all cells in x-major order.
// The slice is owned by the grid and must not be modified.
func (g *Grid) Cells() []Cell {
	return g.cells
}

// Corners returns the lattice indices of the eight corners of the cell at
// idx, in the order V000, V001, V101, V100, V010, V011, V111, V110.
func (g *Grid) Corners(idx Index) [8]Index {
	g.cellOffset(idx)

	var corners [8]Index
	for i, o := range cornerOffsets {
		corners[i] = idx.add(o)
	}
	return corners
}

// Classified reports whether the flags reflect a completed Classify call.
func (g *Grid) Classified() bool {
	return g.classified
}

// Inside reports whether the vertex at idx was classified inside or on the
// boundary of the solid. It is false while the grid is unclassified.
func (g *Grid) Inside(idx Index) bool {
	return g.inside[g.vertexOffset(idx)]
}

// Intersects reports whether the cell at idx has at least one corner inside
// the solid. It is false while the grid is unclassified.
func (g *Grid) Intersects(idx Index) bool {
	return g.intersects[g.cellOffset(idx)]
}

// Intersecting returns the cells classified as intersecting the solid, in
// x-major order.
func (g *Grid) Intersecting() []Cell {
	var cells []Cell
	for off, hit := range g.intersects {
		if hit {
			cells = append(cells, g.cells[off])
		}
	}
	return cells
}

// Stats summarizes a grid.
type Stats struct {
	EdgeCount         int      `json:"edge_count" yaml:"edge_count"`
	EdgeLength        float64  `json:"edge_length" yaml:"edge_length"`
	Extents           geom.Box `json:"extents" yaml:"extents"`
	Vertices          int      `json:"vertices" yaml:"vertices"`
	Cells             int      `json:"cells" yaml:"cells"`
	InsideVertices    int      `json:"inside_vertices" yaml:"inside_vertices"`
	IntersectingCells int      `json:"intersecting_cells" yaml:"intersecting_cells"`
	Classified        bool     `json:"classified" yaml:"classified"`
}

// Stats returns the grid dimensions and classification counts.
func (g *Grid) Stats() Stats {
	s := Stats{
		EdgeCount:  g.EdgeCount,
		EdgeLength: g.EdgeLength,
		Extents:    g.Extents,
		Vertices:   len(g.vertices),
		Cells:      len(g.cells),
		Classified: g.classified,
	}
	for _, in := range g.inside {
		if in {
			s.InsideVertices++
		}
	}
	for _, hit := range g.intersects {
		if hit {
			s.IntersectingCells++
		}
	}
	return s
}
