package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClientOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a record from a running server",
		Long: `Fetch a record by id from a running recstore server.

Exit codes:
  0 - Record found
  1 - No record with that id
  2 - Command error (server unreachable, etc.)

Examples:
  recstore get m1
  recstore get m1 --server http://10.0.0.5:1234 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runGet(opts *ClientOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)
	f.VerboseLog("GET %s/movie/%s", opts.Server, id)

	rec, err := opts.client().Get(cmd.Context(), id)
	if err != nil {
		return reportError(f, err)
	}
	return f.Success(rec)
}
