package cmd

import (
	"fmt"
	"os"

	"github.com/cstrainge/sorth/internal/thread"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <file> [script-arg...]",
	Short: "Compile and run a sorth source file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runScripts,
}

func init() { rootCmd.AddCommand(runCmd) }

// runScripts runs args[0] as the entry source file; any further
// positional args become sorth.args for the script to read, mirroring a
// conventional `interpreter script.ext arg1 arg2` invocation rather than
// accepting several files to compile in sequence.
func runScripts(_ *cobra.Command, args []string) error {
	it, logger, err := buildInterpreter(args[1:])
	if err != nil {
		return err
	}
	if logger != nil {
		defer logger.Close()
	}

	var runErr error
	if err := it.ProcessSource(args[0]); err != nil {
		runErr = err
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	// A script's sub-threads keep running after its own top-level code
	// finishes; wait for them so `run` doesn't abandon in-flight work.
	if r := thread.Reg(it); r != nil {
		r.Sweep()
		if err := r.Wait(); err != nil && runErr == nil {
			runErr = err
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	if dump {
		it.ExecuteWord("words")
	}

	if code := it.Machine.ExitCode(); code != 0 {
		exitCode = code
	} else if runErr != nil {
		exitCode = 1
	}

	return nil
}
