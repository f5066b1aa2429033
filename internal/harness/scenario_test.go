package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/record"
)

func TestLoadScenario_Example(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/example.yaml")
	require.NoError(t, err)

	assert.Equal(t, "example", scenario.Name)
	require.Len(t, scenario.Steps, 4)

	assert.Equal(t, OpPut, scenario.Steps[0].Op())
	assert.Equal(t, &record.Record{ID: "m1", Name: "Up", Year: 2009, WasGood: true}, scenario.Steps[0].Put)
	assert.Equal(t, ExpectDuplicateID, scenario.Steps[1].Expect)
	assert.Equal(t, OpGet, scenario.Steps[2].Op())
	assert.Equal(t, "m1", scenario.Steps[2].ID())
	assert.Equal(t, ExpectNotFound, scenario.Steps[3].Expect)
}

func TestLoadScenario_Race(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/race.yaml")
	require.NoError(t, err)

	race := scenario.Steps[1]
	assert.Equal(t, OpRace, race.Op())
	assert.Equal(t, "r1", race.ID())
	assert.Equal(t, 8, race.Race.Writers)
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario("testdata/invalid/unknown_field.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "expects")
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "description: d\nsteps:\n  - get: m1\n    expect: not_found\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: n\nsteps:\n  - get: m1\n    expect: not_found\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: n\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "empty step",
			yaml: "name: n\ndescription: d\nsteps:\n  - expect: ok\n",
			want: "exactly one of put, get, race",
		},
		{
			name: "two operations",
			yaml: "name: n\ndescription: d\nsteps:\n  - get: m1\n    put: {id: m1, name: x, year: 1, was_good: true}\n",
			want: "exactly one of put, get, race",
		},
		{
			name: "put without id",
			yaml: "name: n\ndescription: d\nsteps:\n  - put: {name: x, year: 1, was_good: true}\n",
			want: "put: invalid record: id: must not be empty",
		},
		{
			name: "race with dot id",
			yaml: "name: n\ndescription: d\nsteps:\n  - race: {writers: 2, record: {id: \"..\", name: x, year: 1, was_good: true}}\n",
			want: "race: invalid record: id",
		},
		{
			name: "get expecting duplicate",
			yaml: "name: n\ndescription: d\nsteps:\n  - get: m1\n    expect: duplicate_id\n",
			want: "expect must be ok or not_found",
		},
		{
			name: "put expecting not found",
			yaml: "name: n\ndescription: d\nsteps:\n  - put: {id: m1, name: x, year: 1, was_good: true}\n    expect: not_found\n",
			want: "expect must be ok or duplicate_id",
		},
		{
			name: "record on put",
			yaml: "name: n\ndescription: d\nsteps:\n  - put: {id: m1, name: x, year: 1, was_good: true}\n    record: {id: m1, name: x, year: 1, was_good: true}\n",
			want: "record is only valid on a get",
		},
		{
			name: "record id mismatch",
			yaml: "name: n\ndescription: d\nsteps:\n  - get: m1\n    record: {id: m2, name: x, year: 1, was_good: true}\n",
			want: "does not match get",
		},
		{
			name: "race with one writer",
			yaml: "name: n\ndescription: d\nsteps:\n  - race: {writers: 1, record: {id: r, name: x, year: 1, was_good: true}}\n",
			want: "writers must be between 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFindScenarios(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "example.yaml"),
		filepath.Join("testdata", "scenarios", "race.yaml"),
		filepath.Join("testdata", "scenarios", "read_your_writes.yaml"),
	}, paths)

	paths, err = FindScenarios("testdata/scenarios/race.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/race.yaml"}, paths)
}

func TestFindScenarios_NotFound(t *testing.T) {
	_, err := FindScenarios(filepath.Join(t.TempDir(), "nope"))
	var nf *ScenarioNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestFindScenarios_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	paths, err := FindScenarios(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml")}, paths)
}
