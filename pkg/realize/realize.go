// Package realize walks a design graph and builds kernel solids from it.
// One solid is produced per named root, and each can be meshed for display
// or handed to the voxel package.
package realize

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/chazu/voxelize/pkg/graph"
	"github.com/chazu/voxelize/pkg/kernel"
)

// ErrTypeUnsupported marks a node the walker does not know how to build.
const ErrTypeUnsupported = "realize_unsupported_node"

// NamedSolid is the realized geometry of one root of a design graph.
type NamedSolid struct {
	Name        string
	Description string
	ID          graph.NodeID
	Solid       kernel.Solid

	// CellSize is the recommended voxel size for the solid, taken from the
	// solid itself or from the graph defaults.
	CellSize float64
}

// Solids builds one kernel solid per root of g, in root order. The graph is
// never mutated. Shared subgraphs are built once.
func Solids(g *graph.DesignGraph, k kernel.Kernel) ([]NamedSolid, error) {
	if g == nil {
		return nil, nil
	}

	w := walker{g: g, k: k, built: make(map[graph.NodeID]kernel.Solid)}
	var solids []NamedSolid
	for _, root := range g.Solids() {
		if len(root.Children) != 1 {
			return nil, errors.Newf("solid %q has %d bodies", root.Name, len(root.Children)).
				WithType(ErrTypeUnsupported)
		}

		body := g.Get(root.Children[0])
		if body == nil {
			return nil, errors.Newf("solid %q references a missing body", root.Name).
				WithType(ErrTypeUnsupported)
		}

		s, err := w.build(body)
		if err != nil {
			return nil, errors.Newf("building solid %q failed", root.Name).
				WithTag("node", root.ID.Short()).
				Wrap(err)
		}

		ns := NamedSolid{
			Name:     root.Name,
			ID:       root.ID,
			Solid:    s,
			CellSize: g.CellSize(root),
		}
		if sd, ok := root.Data.(graph.SolidData); ok {
			ns.Description = sd.Description
		}
		solids = append(solids, ns)
	}
	return solids, nil
}

// Meshes builds and tessellates every root of g. Each mesh is named after
// its solid.
func Meshes(g *graph.DesignGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	solids, err := Solids(g, k)
	if err != nil {
		return nil, err
	}

	meshes := make([]*kernel.Mesh, 0, len(solids))
	for _, s := range solids {
		m, err := k.ToMesh(s.Solid)
		if err != nil {
			return nil, errors.Newf("meshing solid %q failed", s.Name).Wrap(err)
		}
		m.PartName = s.Name
		meshes = append(meshes, m)
	}
	return meshes, nil
}

type walker struct {
	g     *graph.DesignGraph
	k     kernel.Kernel
	built map[graph.NodeID]kernel.Solid
}

// build returns the solid for n, building its children first.
func (w *walker) build(n *graph.Node) (kernel.Solid, error) {
	if s, ok := w.built[n.ID]; ok {
		return s, nil
	}

	var s kernel.Solid
	var err error
	switch n.Kind {
	case graph.NodePrimitive:
		s, err = w.primitive(n)
	case graph.NodeTransform:
		s, err = w.transform(n)
	case graph.NodeBoolean:
		s, err = w.boolean(n)
	case graph.NodeSolid:
		s, err = w.solid(n)
	default:
		err = errors.Newf("unknown node kind %v", n.Kind).WithType(ErrTypeUnsupported)
	}
	if err != nil {
		return nil, err
	}

	w.built[n.ID] = s
	return s, nil
}

func (w *walker) primitive(n *graph.Node) (kernel.Solid, error) {
	switch d := n.Data.(type) {
	case graph.BoxData:
		return w.k.Box(d.Size.X, d.Size.Y, d.Size.Z)
	case graph.SphereData:
		return w.k.Sphere(d.Radius)
	case graph.CylinderData:
		return w.k.Cylinder(d.Height, d.Radius)
	default:
		return nil, errors.Newf("primitive node %s has unsupported data %T", n.ID.Short(), n.Data).
			WithType(ErrTypeUnsupported)
	}
}

// transform applies the rotation first, then the translation.
func (w *walker) transform(n *graph.Node) (kernel.Solid, error) {
	td, ok := n.Data.(graph.TransformData)
	if !ok {
		return nil, errors.Newf("transform node %s has unexpected data %T", n.ID.Short(), n.Data).
			WithType(ErrTypeUnsupported)
	}

	children := w.g.Children(n)
	if len(children) != 1 {
		return nil, errors.Newf("transform node %s has %d children", n.ID.Short(), len(children)).
			WithType(ErrTypeUnsupported)
	}

	s, err := w.build(children[0])
	if err != nil {
		return nil, err
	}
	if r := td.Rotation; r != nil && (r.X != 0 || r.Y != 0 || r.Z != 0) {
		s = w.k.Rotate(s, r.X, r.Y, r.Z)
	}
	if t := td.Translation; t != nil && (t.X != 0 || t.Y != 0 || t.Z != 0) {
		s = w.k.Translate(s, t.X, t.Y, t.Z)
	}
	return s, nil
}

// boolean folds the operands left to right, so a difference subtracts every
// later operand from the first.
func (w *walker) boolean(n *graph.Node) (kernel.Solid, error) {
	bd, ok := n.Data.(graph.BooleanData)
	if !ok {
		return nil, errors.Newf("boolean node %s has unexpected data %T", n.ID.Short(), n.Data).
			WithType(ErrTypeUnsupported)
	}

	children := w.g.Children(n)
	if len(children) < 2 {
		return nil, errors.Newf("%s node %s has %d operands", bd.Op, n.ID.Short(), len(children)).
			WithType(ErrTypeUnsupported)
	}

	acc, err := w.build(children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range children[1:] {
		s, err := w.build(c)
		if err != nil {
			return nil, err
		}

		switch bd.Op {
		case graph.OpUnion:
			acc = w.k.Union(acc, s)
		case graph.OpDifference:
			acc = w.k.Difference(acc, s)
		case graph.OpIntersection:
			acc = w.k.Intersection(acc, s)
		default:
			return nil, errors.Newf("unknown boolean op %v", bd.Op).WithType(ErrTypeUnsupported)
		}
	}
	return acc, nil
}

// solid is reached when a named solid is used inside another one.
func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	children := w.g.Children(n)
	if len(children) != 1 {
		return nil, errors.Newf("solid %q has %d bodies", n.Name, len(children)).
			WithType(ErrTypeUnsupported)
	}
	return w.build(children[0])
}
