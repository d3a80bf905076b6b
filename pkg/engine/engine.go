// Package engine provides the Lisp evaluation engine for scenes.
// It wraps zygomys in a sandboxed environment and produces a DesignGraph
// from user source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/voxelize/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or an invalid graph.
type EvalError struct {
	Line    int          `json:"line"`
	Col     int          `json:"col"`
	Message string       `json:"message"`
	NodeID  graph.NodeID `json:"-"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int          `json:"line"`
	Col     int          `json:"col"`
	Message string       `json:"message"`
	NodeID  graph.NodeID `json:"-"`
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Graph    *graph.DesignGraph
	Errors   []EvalError
	Warnings []EvalWarning
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new DesignGraph.
//
// Return semantics:
//   - On success: returns graph + nil errors + nil error
//   - On parse/eval/validation failure: returns nil graph + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*graph.DesignGraph, []EvalError, error) {
	res, err := e.EvaluateAll(source)
	if err != nil {
		return nil, nil, err
	}
	return res.Graph, res.Errors, nil
}

// EvaluateAll is Evaluate with validation warnings included.
func (e *Engine) EvaluateAll(source string) (EvalResult, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		ch <- e.evaluate(source)
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) evalResult {
	// Empty source is a valid program that produces an empty graph.
	if strings.TrimSpace(source) == "" {
		return evalResult{graph: graph.New()}
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	g := graph.New()
	registerBuiltins(env, g)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}
	if _, err := env.Run(); err != nil {
		return evalResult{errors: parseZygomysError(err)}
	}

	var res evalResult
	for _, v := range graph.Validate(g) {
		if v.Severity == graph.SeverityError {
			res.errors = append(res.errors, EvalError{Message: v.Error(), NodeID: v.NodeID})
		} else {
			res.warnings = append(res.warnings, EvalWarning{Message: v.Error(), NodeID: v.NodeID})
		}
	}
	if len(res.errors) == 0 {
		res.graph = g
	}
	return res
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
