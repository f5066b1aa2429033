package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/store"
)

// runOptions covers every backend with the cache on and off.
func runOptions() map[string]Options {
	return map[string]Options{
		"memory/nocache": {Backend: store.BackendMemory},
		"memory/lru":     {Backend: store.BackendMemory, Cache: true},
		"sqlite/nocache": {Backend: store.BackendSQLite},
		"sqlite/lru":     {Backend: store.BackendSQLite, Cache: true},
	}
}

func TestRun_Example(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/example.yaml")
	require.NoError(t, err)

	for name, opts := range runOptions() {
		t.Run(name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario, opts)
			require.NoError(t, err)

			assert.True(t, result.Pass, "failures: %v", result.Failures)
			require.Len(t, result.Trace, 4)
			for i, e := range result.Trace {
				assert.Equal(t, int64(i+1), e.Seq)
			}
			assert.Equal(t, ExpectDuplicateID, result.Trace[1].Outcome)
			assert.Equal(t, &record.Record{ID: "m1", Name: "Up", Year: 2009, WasGood: true}, result.Trace[2].Record)
			assert.Nil(t, result.Trace[3].Record)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "every expectation is wrong",
		Steps: []Step{
			{Get: "m1", Expect: ExpectOK},
			{Put: &record.Record{ID: "m1", Name: "Up"}, Expect: ExpectDuplicateID},
			{Get: "m1", Record: &record.Record{ID: "m1", Name: "Down"}},
		},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Failures, 3)
	assert.Contains(t, result.Failures[0], "steps[0]: get m1: expected ok, got not_found")
	assert.Contains(t, result.Failures[1], "steps[1]: put m1: expected duplicate_id, got ok")
	assert.Contains(t, result.Failures[2], "expected record")

	// Mismatches do not stop the run.
	assert.Len(t, result.Trace, 3)
}

func TestRun_Race(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/race.yaml")
	require.NoError(t, err)

	for name, opts := range runOptions() {
		t.Run(name, func(t *testing.T) {
			result, err := Run(context.Background(), scenario, opts)
			require.NoError(t, err)
			require.True(t, result.Pass, "failures: %v", result.Failures)

			first := result.Trace[1]
			assert.Equal(t, 1, first.OK)
			assert.Equal(t, 7, first.DuplicateID)

			second := result.Trace[3]
			assert.Equal(t, 0, second.OK)
			assert.Equal(t, 4, second.DuplicateID)
		})
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	scenario := &Scenario{Name: "n", Description: "d", Steps: []Step{{Get: "m1"}}}
	_, err := Run(context.Background(), scenario, Options{Backend: "postgres"})
	assert.Error(t, err)
}

func TestRunEquivalence(t *testing.T) {
	for _, name := range []string{"example", "read_your_writes", "race"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(fmt.Sprintf("testdata/scenarios/%s.yaml", name))
			require.NoError(t, err)

			for _, backend := range []string{store.BackendMemory, store.BackendSQLite} {
				report, err := RunEquivalence(context.Background(), scenario, Options{Backend: backend})
				require.NoError(t, err)
				assert.True(t, report.Pass(), "%s: %v", backend, report.Failures())
				assert.Empty(t, report.Diffs)
			}
		})
	}
}

func TestDiffTraces(t *testing.T) {
	a := []TraceEvent{{Seq: 1, Op: OpGet, ID: "m1", Outcome: ExpectNotFound}}
	b := []TraceEvent{
		{Seq: 1, Op: OpGet, ID: "m1", Outcome: ExpectOK, Record: &record.Record{ID: "m1"}},
		{Seq: 2, Op: OpGet, ID: "m1", Outcome: ExpectOK},
	}

	diffs, err := diffTraces(a, b)
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Contains(t, diffs[0], "trace length: 1 without cache, 2 with cache")
	assert.Contains(t, diffs[1], "trace[0]")
}

func TestRunSuite(t *testing.T) {
	result, err := RunSuite(context.Background(), "testdata/scenarios", Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalScenarios)
	assert.Equal(t, 3, result.Passed)
	assert.True(t, result.Pass())

	result, err = RunSuite(context.Background(), "testdata/invalid", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Errors[0], "failed to load scenario")
}
