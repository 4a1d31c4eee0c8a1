// Command specdiff compares recorded HTTP traffic against an API
// specification and streams one finding per line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/specdiff/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
