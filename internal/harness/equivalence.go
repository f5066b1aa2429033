package harness

import (
	"context"
	"fmt"

	"github.com/roach88/recstore/internal/canonical"
)

// EquivalenceReport holds the results of one scenario run with the Lookup
// Cache disabled and enabled.
type EquivalenceReport struct {
	Uncached *Result
	Cached   *Result

	// Diffs lists the trace positions where the two runs disagree.
	Diffs []string
}

// Pass is true if both runs passed and their traces are identical.
func (r *EquivalenceReport) Pass() bool {
	return r.Uncached.Pass && r.Cached.Pass && len(r.Diffs) == 0
}

// Failures returns every failure of both runs, labelled by run, followed by
// the trace differences.
func (r *EquivalenceReport) Failures() []string {
	var out []string
	for _, f := range r.Uncached.Failures {
		out = append(out, "cache disabled: "+f)
	}
	for _, f := range r.Cached.Failures {
		out = append(out, "cache enabled: "+f)
	}
	return append(out, r.Diffs...)
}

// RunEquivalence runs scenario twice on opts.Backend, once without and once
// with the Lookup Cache, and compares the traces event by event. opts.Cache
// is ignored.
func RunEquivalence(ctx context.Context, scenario *Scenario, opts Options) (*EquivalenceReport, error) {
	uncachedOpts := opts
	uncachedOpts.Cache = false
	uncached, err := Run(ctx, scenario, uncachedOpts)
	if err != nil {
		return nil, fmt.Errorf("cache disabled: %w", err)
	}

	cachedOpts := opts
	cachedOpts.Cache = true
	cached, err := Run(ctx, scenario, cachedOpts)
	if err != nil {
		return nil, fmt.Errorf("cache enabled: %w", err)
	}

	diffs, err := diffTraces(uncached.Trace, cached.Trace)
	if err != nil {
		return nil, err
	}

	return &EquivalenceReport{Uncached: uncached, Cached: cached, Diffs: diffs}, nil
}

func diffTraces(a, b []TraceEvent) ([]string, error) {
	var diffs []string
	if len(a) != len(b) {
		diffs = append(diffs, fmt.Sprintf("trace length: %d without cache, %d with cache", len(a), len(b)))
	}

	for i := 0; i < min(len(a), len(b)); i++ {
		ja, err := canonical.Marshal(a[i].canonical())
		if err != nil {
			return nil, fmt.Errorf("trace[%d]: %w", i, err)
		}
		jb, err := canonical.Marshal(b[i].canonical())
		if err != nil {
			return nil, fmt.Errorf("trace[%d]: %w", i, err)
		}
		if string(ja) != string(jb) {
			diffs = append(diffs, fmt.Sprintf("trace[%d]: %s without cache, %s with cache", i, ja, jb))
		}
	}
	return diffs, nil
}
