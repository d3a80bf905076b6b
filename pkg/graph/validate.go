package graph

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks evaluation
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks evaluation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// Validate runs all structural and geometric checks on the design graph and
// returns the findings. A result without error-severity findings means the
// graph can be realized. This function is read-only and never mutates the
// graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateArity(g)...)
	errs = append(errs, validateData(g)...)
	errs = append(errs, validateDefaults(g)...)
	return errs
}

// HasErrors reports whether errs contains an error-severity finding.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// If we encounter a gray node during traversal, we have found a cycle.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray

		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}

		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}

		color[id] = black
		return false
	}

	// Start DFS from every node to catch disconnected components.
	for id := range g.Nodes {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateReferences checks that every child reference points to a node that
// actually exists in g.Nodes.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective (no two nodes share the
// same name) and that every entry in NameIndex points to an existing node.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root references an existing solid node and
// warns about orphan nodes (nodes unreachable from any root).
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	seen := make(map[NodeID]bool)
	for _, rid := range g.Roots {
		node, ok := g.Nodes[rid]
		switch {
		case !ok:
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		case node.Kind != NodeSolid:
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  fmt.Sprintf("root is %s, not solid", node.Kind),
				Severity: SeverityError,
			})
		case seen[rid]:
			errs = append(errs, ValidationError{
				NodeID:   rid,
				Message:  "root listed more than once",
				Severity: SeverityError,
			})
		}
		seen[rid] = true
	}

	if len(g.Nodes) == 0 {
		return errs
	}

	// Orphan detection: BFS from all roots through Children edges.
	reachable := make(map[NodeID]bool)
	queue := make([]NodeID, 0, len(g.Roots))
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; ok && !reachable[rid] {
			reachable[rid] = true
			queue = append(queue, rid)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node := g.Nodes[current]
		if node == nil {
			continue
		}
		for _, childID := range node.Children {
			if !reachable[childID] {
				reachable[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	for id, node := range g.Nodes {
		if !reachable[id] {
			name := node.Name
			if name == "" {
				name = id.Short()
			}
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("node %q is not reachable from any root (orphan)", name),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateArity checks the number and kind of children each node kind takes.
func validateArity(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		n := len(node.Children)
		var msg string

		switch node.Kind {
		case NodePrimitive:
			if n != 0 {
				msg = fmt.Sprintf("primitive has %d children, want 0", n)
			}
		case NodeTransform:
			if n != 1 {
				msg = fmt.Sprintf("transform has %d children, want 1", n)
			}
		case NodeBoolean:
			if n < 2 {
				op := "boolean"
				if bd, ok := node.Data.(BooleanData); ok {
					op = bd.Op.String()
				}
				msg = fmt.Sprintf("%s has %d operands, want at least 2", op, n)
			}
		case NodeSolid:
			if n != 1 {
				msg = fmt.Sprintf("solid has %d children, want 1", n)
				break
			}
			if child := g.Nodes[node.Children[0]]; child != nil && child.Kind == NodeSolid {
				msg = "solid wraps another solid node"
			}
		default:
			msg = fmt.Sprintf("unknown node kind %d", int(node.Kind))
		}

		if msg != "" {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  msg,
				Severity: SeverityError,
			})
		}
	}

	return errs
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func finite(v Vec3) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// validateData checks that each node carries the payload its kind requires
// and that dimensions are positive and finite.
func validateData(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	fail := func(id NodeID, format string, args ...any) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
		})
	}

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			if node.Kind != NodePrimitive {
				fail(node.ID, "box data on %s node", node.Kind)
			}
			if !positive(d.Size.X) || !positive(d.Size.Y) || !positive(d.Size.Z) {
				fail(node.ID, "box dimensions must be positive, got (%g, %g, %g)", d.Size.X, d.Size.Y, d.Size.Z)
			}
		case SphereData:
			if node.Kind != NodePrimitive {
				fail(node.ID, "sphere data on %s node", node.Kind)
			}
			if !positive(d.Radius) {
				fail(node.ID, "sphere radius must be positive, got %g", d.Radius)
			}
		case CylinderData:
			if node.Kind != NodePrimitive {
				fail(node.ID, "cylinder data on %s node", node.Kind)
			}
			if !positive(d.Height) || !positive(d.Radius) {
				fail(node.ID, "cylinder height and radius must be positive, got %g and %g", d.Height, d.Radius)
			}
		case TransformData:
			if node.Kind != NodeTransform {
				fail(node.ID, "transform data on %s node", node.Kind)
			}
			if d.Translation == nil && d.Rotation == nil {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  "transform has neither translation nor rotation",
					Severity: SeverityWarning,
				})
			}
			if (d.Translation != nil && !finite(*d.Translation)) || (d.Rotation != nil && !finite(*d.Rotation)) {
				fail(node.ID, "transform values must be finite")
			}
		case BooleanData:
			if node.Kind != NodeBoolean {
				fail(node.ID, "boolean data on %s node", node.Kind)
			}
			if d.Op < OpUnion || d.Op > OpIntersection {
				fail(node.ID, "unknown boolean op %d", int(d.Op))
			}
		case SolidData:
			if node.Kind != NodeSolid {
				fail(node.ID, "solid data on %s node", node.Kind)
			}
			if d.CellSize < 0 || math.IsNaN(d.CellSize) || math.IsInf(d.CellSize, 0) {
				fail(node.ID, "solid cell size must be positive, got %g", d.CellSize)
			}
			if node.Name == "" {
				fail(node.ID, "solid has no name")
			}
		case nil:
			fail(node.ID, "%s node has no data", node.Kind)
		}
	}

	return errs
}

// validateDefaults checks the graph-wide settings.
func validateDefaults(g *DesignGraph) []ValidationError {
	if positive(g.Defaults.CellSize) {
		return nil
	}
	return []ValidationError{{
		Message:  fmt.Sprintf("default cell size must be positive, got %g", g.Defaults.CellSize),
		Severity: SeverityError,
	}}
}
