package cmd

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/cstrainge/sorth/internal/builtin"
	"github.com/cstrainge/sorth/internal/interp"
	"github.com/cstrainge/sorth/internal/logio"
)

// buildInterpreter constructs an Interpreter from the root command's
// persistent flags: search paths, a --trace logger, and the positional
// args that become sorth.args. --mem-limit and --timeout apply to the
// process and the running script respectively rather than to the
// Interpreter itself, so they're wired here rather than threaded through
// interp.Option.
func buildInterpreter(args []string) (*interp.Interpreter, *logio.Logger, error) {
	if memLimit != "" {
		bytes, err := parseMemLimit(memLimit)
		if err != nil {
			return nil, nil, err
		}
		debug.SetMemoryLimit(bytes)
	}

	var logger *logio.Logger
	opts := []interp.Option{interp.WithSearchPath(searchPath...)}
	if trace {
		logger = &logio.Logger{}
		logger.SetOutput(nopCloser{os.Stderr})
		opts = append(opts, interp.WithLogf(logger.Printf))
	}

	it := interp.New(opts...)
	it.Machine.SetOutput(os.Stdout)
	builtin.Register(it)
	it.Args(args)

	if timeout > 0 {
		code := int64(124)
		time.AfterFunc(timeout, func() { it.Machine.Halt(&code) })
	}

	return it, logger, nil
}

// parseMemLimit parses a size like "512MiB", "2GB", or a bare byte count.
func parseMemLimit(s string) (int64, error) {
	s = strings.TrimSpace(s)
	units := []struct {
		suffix string
		scale  int64
	}{
		{"GiB", 1 << 30}, {"MiB", 1 << 20}, {"KiB", 1 << 10},
		{"GB", 1e9}, {"MB", 1e6}, {"KB", 1e3},
		{"G", 1 << 30}, {"M", 1 << 20}, {"K", 1 << 10},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			n, err := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 64)
			if err != nil {
				return 0, fmt.Errorf("--mem-limit: %w", err)
			}
			return int64(n * float64(u.scale)), nil
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("--mem-limit: invalid size %q", s)
	}
	return n, nil
}

type nopCloser struct{ *os.File }

func (nopCloser) Close() error { return nil }
