package engine

import (
	"fmt"

	"github.com/chazu/voxelize/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builder accumulates nodes into a graph during one evaluation. Anonymous
// nodes get ids from a per-evaluation sequence so the same source always
// produces the same ids.
type builder struct {
	g   *graph.DesignGraph
	seq int
}

func (b *builder) add(kind graph.NodeKind, label string, children []graph.NodeID, data graph.NodeData) *sexpNodeRef {
	b.seq++
	id := graph.NewNodeID(fmt.Sprintf("%s/%d", label, b.seq))
	b.g.AddNode(&graph.Node{
		ID:       id,
		Kind:     kind,
		Children: children,
		Data:     data,
	})
	return &sexpNodeRef{id: id, kind: kind}
}

func ids(refs []*sexpNodeRef) []graph.NodeID {
	out := make([]graph.NodeID, len(refs))
	for i, r := range refs {
		out[i] = r.id
	}
	return out
}

// registerBuiltins installs all scene DSL builtins into a zygomys environment.
// The builtins operate on the provided DesignGraph, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {
	b := &builder{g: g}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var v [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: v[0], Y: v[1], Z: v[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 5) or (box :size (vec3 10 20 5))
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var bd graph.BoxData

		switch {
		case len(pa.positional) == 3:
			dims := []*float64{&bd.Size.X, &bd.Size.Y, &bd.Size.Z}
			for i, dst := range dims {
				f, err := toFloat64(pa.positional[i])
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("box: dimension %d: %w", i+1, err)
				}
				*dst = f
			}
		case len(pa.positional) == 0:
			size, err := pa.vec("size")
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
			if size == nil {
				return zygo.SexpNull, fmt.Errorf("box requires three dimensions or :size")
			}
			bd.Size = *size
		default:
			return zygo.SexpNull, fmt.Errorf("box requires three dimensions, got %d", len(pa.positional))
		}

		return b.add(graph.NodePrimitive, "box", nil, bd), nil
	})

	// -----------------------------------------------------------------------
	// (sphere 5) or (sphere :radius 5)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		radius, err := pa.float("radius", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		if len(pa.positional) > 0 {
			if radius, err = toFloat64(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
		}
		return b.add(graph.NodePrimitive, "sphere", nil, graph.SphereData{Radius: radius}), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 10 :radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		height, err := pa.float("height", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		radius, err := pa.float("radius", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		if d, ok := pa.kw["diameter"]; ok {
			f, err := toFloat64(d)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: diameter: %w", err)
			}
			radius = f / 2
		}
		cd := graph.CylinderData{Height: height, Radius: radius}
		return b.add(graph.NodePrimitive, "cylinder", nil, cd), nil
	})

	// -----------------------------------------------------------------------
	// (union a b ...), (difference a b ...), (intersection a b ...)
	// -----------------------------------------------------------------------
	for _, op := range []graph.BooleanOp{graph.OpUnion, graph.OpDifference, graph.OpIntersection} {
		op := op
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			refs, err := flattenGeometry(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			if len(refs) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least 2 operands, got %d", op, len(refs))
			}
			return b.add(graph.NodeBoolean, op.String(), ids(refs), graph.BooleanData{Op: op}), nil
		})
	}

	// -----------------------------------------------------------------------
	// (place child :at (vec3 0 0 5) :rotate (vec3 0 0 90))
	// (translate child (vec3 0 0 5)), (rotate child (vec3 0 0 90))
	// -----------------------------------------------------------------------
	transform := func(label string, child zygo.Sexp, td graph.TransformData) (zygo.Sexp, error) {
		ref, err := toNodeRef(child)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		return b.add(graph.NodeTransform, label, []graph.NodeID{ref.id}, td), nil
	}

	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("place requires exactly one geometry argument")
		}

		var td graph.TransformData
		var err error
		if td.Translation, err = pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		return transform("place", pa.positional[0], td)
	})

	for _, label := range []string{"translate", "rotate"} {
		label := label
		env.AddFunction(label, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires geometry and a vec3, got %d arguments", label, len(args))
			}
			v, err := toVec3(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
			}

			var td graph.TransformData
			if label == "translate" {
				td.Translation = &v
			} else {
				td.Rotation = &v
			}
			return transform(label, args[0], td)
		})
	}

	// -----------------------------------------------------------------------
	// (defsolid "name" body :cell-size 0.5 :description "...")
	// -----------------------------------------------------------------------
	env.AddFunction("defsolid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("defsolid requires a name and a body expression")
		}

		solidName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: name: %w", err)
		}
		if solidName == "" {
			return zygo.SexpNull, fmt.Errorf("defsolid: name must not be empty")
		}
		if g.Lookup(solidName) != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid: solid %q already defined", solidName)
		}

		body, err := toNodeRef(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid %q: body: %w", solidName, err)
		}

		var sd graph.SolidData
		if sd.CellSize, err = pa.float("cell-size", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("defsolid %q: %w", solidName, err)
		}
		if v, ok := pa.kw["description"]; ok {
			if sd.Description, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("defsolid %q: description: %w", solidName, err)
			}
		}

		id := graph.NewNodeID("defsolid/" + solidName)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeSolid,
			Name:     solidName,
			Children: []graph.NodeID{body.id},
			Data:     sd,
		})
		g.AddRoot(id)

		return &sexpNodeRef{id: body.id, kind: body.kind, name: solidName}, nil
	})

	// -----------------------------------------------------------------------
	// (solid "name") returns the body of a previously defined solid.
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a name argument")
		}

		solidName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: name: %w", err)
		}

		n := g.Lookup(solidName)
		if n == nil || n.Kind != graph.NodeSolid || len(n.Children) != 1 {
			return zygo.SexpNull, fmt.Errorf("solid: no solid named %q", solidName)
		}
		body := g.Get(n.Children[0])
		return &sexpNodeRef{id: body.ID, kind: body.Kind, name: solidName}, nil
	})

	// -----------------------------------------------------------------------
	// (cell-size 0.5) sets the default recommended voxel size.
	// -----------------------------------------------------------------------
	env.AddFunction("cell_size", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cell-size requires exactly 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cell-size: %w", err)
		}
		if !(f > 0) {
			return zygo.SexpNull, fmt.Errorf("cell-size must be positive, got %g", f)
		}
		g.Defaults.CellSize = f
		return &zygo.SexpFloat{Val: f}, nil
	})
}
