package main

import (
	"fmt"
	"os"

	"github.com/roach88/relc/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Pipeline errors already printed their own diagnostic; errors from
		// cobra itself (bad flags, wrong arg count) have not.
		if !cli.IsExitError(err) {
			fmt.Fprintf(os.Stderr, "relc: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
