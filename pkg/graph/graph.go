package graph

import "fmt"

// DefaultCellSize is the default recommended voxel edge length.
const DefaultCellSize = 1.0

// GlobalDefaults contains graph-wide default settings.
type GlobalDefaults struct {
	CellSize float64 `json:"cell_size"` // recommended voxel edge length
	Units    string  `json:"units"`     // "mm" (only option for now)
}

// DesignGraph is the top-level immutable data structure produced by Lisp evaluation.
// It is never mutated in place; each evaluation produces a new graph.
type DesignGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Defaults  GlobalDefaults    `json:"defaults"`
	Version   uint64            `json:"version"`
}

// New creates an empty DesignGraph with default settings.
func New() *DesignGraph {
	return &DesignGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Defaults: GlobalDefaults{
			CellSize: DefaultCellSize,
			Units:    "mm",
		},
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *DesignGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *DesignGraph) AddRoot(id NodeID) {
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given user-assigned name, or nil.
func (g *DesignGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *DesignGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *DesignGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Solids returns the root solid nodes in root order.
func (g *DesignGraph) Solids() []*Node {
	var solids []*Node
	for _, id := range g.Roots {
		if n := g.Nodes[id]; n != nil && n.Kind == NodeSolid {
			solids = append(solids, n)
		}
	}
	return solids
}

// CellSize returns the recommended cell size for a solid node: its own
// override when set, otherwise the graph default.
func (g *DesignGraph) CellSize(n *Node) float64 {
	if sd, ok := n.Data.(SolidData); ok && sd.CellSize > 0 {
		return sd.CellSize
	}
	return g.Defaults.CellSize
}

// Children returns the child nodes of the given node.
func (g *DesignGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// NodeCount returns the total number of nodes.
func (g *DesignGraph) NodeCount() int {
	return len(g.Nodes)
}
