// Command tenpair plays the number-matching puzzle and inspects its
// session journals.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tenpair/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
