package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cstrainge/sorth/internal/debugsrv"
	"github.com/cstrainge/sorth/internal/thread"
	"github.com/go-co-op/gocron/v2"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve <file...>",
	Short: "Run one or more sorth source files behind an HTTP introspection endpoint",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8910", "address the debug HTTP server listens on")
	rootCmd.AddCommand(serveCmd)
}

// runServe loads the given scripts, then serves /words, /stack, and /eval
// against the resulting interpreter until interrupted. A gocron scheduler
// periodically sweeps the sub-thread registry's drained, finished entries,
// since a long-running server has no natural shutdown point to reap at.
func runServe(_ *cobra.Command, args []string) error {
	it, logger, err := buildInterpreter(nil)
	if err != nil {
		return err
	}
	if logger != nil {
		defer logger.Close()
	}

	for _, path := range args {
		if err := it.ProcessSource(path); err != nil {
			return err
		}
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("serve: could not start scheduler: %w", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(10*time.Second),
		gocron.NewTask(func() {
			if r := thread.Reg(it); r != nil {
				r.Sweep()
			}
		}),
	); err != nil {
		return fmt.Errorf("serve: could not schedule thread sweep: %w", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()

	srv := debugsrv.New(it, serveAddr, os.Stderr)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		}
	}()

	fmt.Fprintf(os.Stderr, "serve: listening on %s\n", serveAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return srv.Close()
}
