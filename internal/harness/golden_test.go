package harness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/store"
)

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"example", "read_your_writes", "race"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(fmt.Sprintf("testdata/scenarios/%s.yaml", name))
			require.NoError(t, err)

			// The same golden file holds for every backend and cache setting.
			for _, opts := range runOptions() {
				result, err := RunWithGolden(t, scenario, opts)
				require.NoError(t, err)
				assert.True(t, result.Pass, "failures: %v", result.Failures)
			}
		})
	}
}

func TestMarshalTrace_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/example.yaml")
	require.NoError(t, err)

	var first []byte
	for i := 0; i < 5; i++ {
		result, err := RunWithGolden(t, scenario, Options{Backend: store.BackendMemory, Cache: i%2 == 0})
		require.NoError(t, err)

		got, err := MarshalTrace(scenario.Name, result)
		require.NoError(t, err)
		if first == nil {
			first = got
			continue
		}
		assert.Equal(t, string(first), string(got))
	}
}
