// Package cmd implements sorth's command-line surface: `run`, `repl`, and
// `serve`, built on cobra.
//
// Grounded on CWBudde-go-dws's cmd/dwscript/cmd package (root command plus
// one file per subcommand, persistent flags on the root, RunE handlers
// that build an interpreter and feed it a script), adapted from that
// pack's AST-walking interpreter to sorth's bytecode Interpreter facade.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	memLimit   string
	timeout    time.Duration
	trace      bool
	dump       bool
	searchPath []string
)

var rootCmd = &cobra.Command{
	Use:   "sorth",
	Short: "sorth is an interactive, extensible Forth-family bytecode interpreter",
	Long: `sorth compiles and runs a small Forth-family language: a tokenizer feeds a
compile-time context that emits bytecode for a stack-oriented VM, with
tagged-sum values, scoped dictionaries/variables, containers, exceptions,
and cooperative sub-threads.`,
}

// Execute runs the root command, returning the process's desired exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}

// exitCode is set by whichever subcommand ran, so main can os.Exit with
// the interpreter's own halt code rather than cobra's binary pass/fail.
var exitCode int

func init() {
	rootCmd.PersistentFlags().StringVar(&memLimit, "mem-limit", "",
		"soft memory limit (e.g. 512MiB), enforced via runtime/debug.SetMemoryLimit")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0,
		"halt the interpreter if it runs longer than this (0 disables)")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false,
		"log one line per executed instruction")
	rootCmd.PersistentFlags().BoolVar(&dump, "dump", false,
		"dump the dictionary's visible words after running")
	rootCmd.PersistentFlags().StringArrayVar(&searchPath, "search-path", nil,
		"additional include/module search path, innermost last (repeatable)")
}
