// Command sorth is the CLI entry point: run, repl, and serve subcommands
// over the internal/interp Interpreter facade.
package main

import (
	"os"

	"github.com/cstrainge/sorth/cmd/sorth/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
