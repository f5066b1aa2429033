package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recstore/internal/cache"
	"github.com/roach88/recstore/internal/httpapi"
	"github.com/roach88/recstore/internal/record"
	"github.com/roach88/recstore/internal/service"
	"github.com/roach88/recstore/internal/store"
	"github.com/roach88/recstore/internal/testutil"
)

func startServer(t *testing.T) string {
	t.Helper()
	c, err := cache.NewLRU(cache.DefaultOptions())
	require.NoError(t, err)
	svc := service.New(store.NewMemory(), c, nil)
	t.Cleanup(func() { svc.Close() })

	schema, err := record.NewSchema()
	require.NoError(t, err)

	ts := httptest.NewServer(httpapi.New(svc, schema, httpapi.Options{}).Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func newTestPutCommand(format string, ids ...string) *cobra.Command {
	opts := &PutOptions{
		ClientOptions: ClientOptions{RootOptions: &RootOptions{Format: format}},
		IDGenerator:   testutil.NewFixedIDGenerator(ids...),
	}
	return newPutCommand(opts)
}

func TestPutAndGet(t *testing.T) {
	url := startServer(t)

	out, err := execute(t, newTestPutCommand("text"), "--server", url, "--id", "m1", "--name", "Up", "--year", "2009", "--was-good")
	require.NoError(t, err)
	assert.Equal(t, "stored m1\n", out)

	out, err = execute(t, NewGetCommand(&RootOptions{Format: "text"}), "--server", url, "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1: \"Up\" (2009) was_good=true\n", out)
}

func TestPut_GeneratesID(t *testing.T) {
	url := startServer(t)

	out, err := execute(t, newTestPutCommand("json", "gen-1"), "--server", url, "--name", "Arrival", "--year", "2016")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"id": "gen-1", "name": "Arrival", "year": 2016.0, "was_good": false}, resp.Data)

	_, err = execute(t, NewGetCommand(&RootOptions{Format: "text"}), "--server", url, "gen-1")
	require.NoError(t, err)
}

func TestPut_Duplicate(t *testing.T) {
	url := startServer(t)

	_, err := execute(t, newTestPutCommand("text"), "--server", url, "--id", "m1", "--name", "Up")
	require.NoError(t, err)

	out, err := execute(t, newTestPutCommand("json"), "--server", url, "--id", "m1", "--name", "Other")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, record.IsDuplicateID(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeDuplicateID, resp.Error.Code)
}

func TestPut_UnaddressableID(t *testing.T) {
	url := startServer(t)

	for _, id := range []string{".", ".."} {
		out, err := execute(t, newTestPutCommand("json"), "--server", url, "--id", id, "--name", "Up")
		require.Error(t, err, "id %q", id)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.True(t, record.IsValidation(err))

		var resp CLIResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, CodeInvalidRecord, resp.Error.Code)
	}
}

func TestGet_NotFound(t *testing.T) {
	url := startServer(t)

	out, err := execute(t, NewGetCommand(&RootOptions{Format: "text"}), "--server", url, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_NOT_FOUND]")
}

func TestGet_Unreachable(t *testing.T) {
	out, err := execute(t, NewGetCommand(&RootOptions{Format: "text"}), "--server", "http://127.0.0.1:1", "m1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, CodeRequestFailed)
}

func TestGet_MissingArg(t *testing.T) {
	_, err := execute(t, NewGetCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
