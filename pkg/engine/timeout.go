package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/chazu/voxelize/pkg/graph"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// evalResult is the internal type used to pass evaluation results through channels.
type evalResult struct {
	graph    *graph.DesignGraph
	errors   []EvalError
	warnings []EvalWarning
	err      error
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds timeout. It uses a generation counter to
// discard stale results from previous evaluations.
//
// On timeout, the goroutine may still be running; the generation check
// ensures its result is discarded when it eventually completes.
func waitWithTimeout(
	ch <-chan evalResult,
	gen uint64,
	timeout time.Duration,
	mu *sync.Mutex,
	currentGen *uint64,
) (EvalResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return EvalResult{}, fmt.Errorf("evaluation superseded by newer request")
		}
		if res.err != nil {
			return EvalResult{}, res.err
		}
		return EvalResult{
			Graph:    res.graph,
			Errors:   res.errors,
			Warnings: res.warnings,
		}, nil

	case <-timer.C:
		return EvalResult{}, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
