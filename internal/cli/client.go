package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/recstore/internal/client"
	"github.com/roach88/recstore/internal/record"
)

// DefaultServer is the address put and get talk to.
const DefaultServer = "http://127.0.0.1:1234"

// ClientOptions holds flags shared by the commands that talk to a server.
type ClientOptions struct {
	*RootOptions
	Server string
}

func (o *ClientOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Server, "server", DefaultServer, "base URL of the recstore server")
}

func (o *ClientOptions) client() *client.Client {
	return client.New(o.Server, nil)
}

// reportError prints err through f and converts it to an ExitError. Duplicate
// and not-found answers are failures; anything else is a command error.
func reportError(f *OutputFormatter, err error) error {
	if record.IsValidation(err) {
		if outErr := f.Error(CodeInvalidRecord, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "invalid record", err)
	}

	var re *record.Error
	if errors.As(err, &re) {
		code := CodeNotFound
		if re.Code == record.CodeDuplicateID {
			code = CodeDuplicateID
		}
		if outErr := f.Error(code, re.Error(), map[string]string{"id": re.ID}); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "request rejected", err)
	}

	if outErr := f.Error(CodeRequestFailed, err.Error(), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "request to server failed", err)
}
