package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/recstore/internal/harness"
	"github.com/roach88/recstore/internal/store"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Backend string
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <path>",
		Short: "Run scenario files",
		Long: `Run scenario files against a fresh in-process service.

path is a scenario file or a directory searched for *.yaml and *.yml files.
Each scenario runs twice, with the lookup cache disabled and enabled; it
passes when every expectation holds and both runs produce the same trace.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  recstore test ./scenarios
  recstore test ./scenarios/race.yaml --backend sqlite
  recstore test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Backend, "backend", store.BackendMemory, "record store backend (memory|sqlite)")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	result, err := harness.RunSuite(cmd.Context(), path, harness.Options{Backend: opts.Backend})
	if err != nil {
		var nf *harness.ScenarioNotFoundError
		if errors.As(err, &nf) {
			return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
		}
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// outputTestJSON outputs the suite result as JSON.
func outputTestJSON(cmd *cobra.Command, result *harness.SuiteResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.Pass() {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    CodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Pass() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the suite result as text.
func outputTestText(cmd *cobra.Command, result *harness.SuiteResult) error {
	w := cmd.OutOrStdout()

	if result.TotalScenarios == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	for _, failure := range result.Failures {
		name := failure.Scenario
		if name == "" {
			name = failure.ScenarioPath
		}
		fmt.Fprintf(w, "✗ %s\n", name)
		for _, e := range failure.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.TotalScenarios)

	if !result.Pass() {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
