package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/voxelize/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	kind graph.NodeKind
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(%s %q)", n.kind, n.name)
	}
	return fmt.Sprintf("(%s %s)", n.kind, n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float returns the keyword argument name as a number, or def when absent.
func (a kwArgs) float(name string, def float64) (float64, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// vec returns the keyword argument name as a vector, or nil when absent.
func (a kwArgs) vec(name string) (*graph.Vec3, error) {
	v, ok := a.kw[name]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nil"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toNodeRef extracts a node reference produced by another builtin.
func toNodeRef(s zygo.Sexp) (*sexpNodeRef, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref, nil
	}
	return nil, fmt.Errorf("expected geometry, got %s", describe(s))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %s", describe(s))
}

// flattenGeometry collects node references from args, descending into lists
// and arrays so that (union (list a b) c) works.
func flattenGeometry(args []zygo.Sexp) ([]*sexpNodeRef, error) {
	var refs []*sexpNodeRef
	for _, arg := range args {
		switch v := arg.(type) {
		case *sexpNodeRef:
			refs = append(refs, v)
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(v)
			if err != nil {
				return nil, err
			}
			nested, err := flattenGeometry(items)
			if err != nil {
				return nil, err
			}
			refs = append(refs, nested...)
		default:
			return nil, fmt.Errorf("expected geometry, got %s", describe(arg))
		}
	}
	return refs, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
