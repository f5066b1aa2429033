package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/recstore/internal/record"
)

// PutOptions holds flags for the put command.
type PutOptions struct {
	ClientOptions
	ID      string
	Name    string
	Year    uint16
	WasGood bool

	// IDGenerator supplies the id when --id is omitted (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator IDGenerator
}

// NewPutCommand creates the put command.
func NewPutCommand(rootOpts *RootOptions) *cobra.Command {
	return newPutCommand(&PutOptions{ClientOptions: ClientOptions{RootOptions: rootOpts}})
}

func newPutCommand(opts *PutOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Store a record on a running server",
		Long: `Store a record on a running recstore server.

A UUIDv7 id is generated when --id is omitted.

Exit codes:
  0 - Record stored
  1 - A record with that id already exists
  2 - Command error (invalid id, server unreachable, etc.)

Examples:
  recstore put --id m1 --name Up --year 2009 --was-good
  recstore put --name Arrival --year 2016 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPut(opts, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.ID, "id", "", "record id (generated if empty)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "record name")
	cmd.Flags().Uint16Var(&opts.Year, "year", 0, "release year (0-65535)")
	cmd.Flags().BoolVar(&opts.WasGood, "was-good", false, "whether the movie was good")

	return cmd
}

func runPut(opts *PutOptions, cmd *cobra.Command) error {
	f := newFormatter(cmd, opts.RootOptions)

	id := opts.ID
	if id == "" {
		gen := opts.IDGenerator
		if gen == nil {
			gen = UUIDv7Generator{}
		}
		id = gen.Generate()
		f.VerboseLog("generated id %s", id)
	}

	rec := record.Record{ID: id, Name: opts.Name, Year: opts.Year, WasGood: opts.WasGood}
	if err := rec.Validate(); err != nil {
		return reportError(f, err)
	}
	f.VerboseLog("POST %s/movie", opts.Server)

	if err := opts.client().Put(cmd.Context(), rec); err != nil {
		return reportError(f, err)
	}

	if f.Format == "json" {
		return f.Success(rec)
	}
	return f.Success("stored " + rec.ID)
}
