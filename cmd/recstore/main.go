// Command recstore serves and queries a network record store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
