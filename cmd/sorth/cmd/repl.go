package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cstrainge/sorth/internal/interp"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-compile-execute loop",
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

func init() { rootCmd.AddCommand(replCmd) }

// rwCombo lets golang.org/x/term.NewTerminal drive a raw-mode session over
// a pair of file descriptors that aren't themselves a single ReadWriter.
type rwCombo struct {
	io.Reader
	io.Writer
}

func runRepl(_ *cobra.Command, _ []string) error {
	it, logger, err := buildInterpreter(nil)
	if err != nil {
		return err
	}
	if logger != nil {
		defer logger.Close()
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return replPlain(it)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return replPlain(it)
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(rwCombo{os.Stdin, os.Stdout}, "sorth> ")
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	for {
		line, err := t.ReadLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := it.ProcessText("<repl>", line); err != nil {
			fmt.Fprintf(t, "%v\r\n", err)
			it.Machine.ClearStack()
		}
		if it.Machine.Halted() {
			return nil
		}
	}
}

// replPlain is the non-tty fallback (piped stdin, or a terminal that
// refuses raw mode): a plain line-buffered loop with no prompt editing.
func replPlain(it *interp.Interpreter) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := it.ProcessText("<repl>", scanner.Text()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			it.Machine.ClearStack()
		}
		if it.Machine.Halted() {
			return nil
		}
	}
	return scanner.Err()
}
