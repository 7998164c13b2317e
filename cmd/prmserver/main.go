// Command prmserver serves roadmap episodes over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prm-planner/internal/cli"
	"prm-planner/internal/ctxlog"
	"prm-planner/internal/planner"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/scenario"
	"prm-planner/internal/server"
)

type options struct {
	addr      string
	snapshot  string
	scenario  string
	logFormat string
	logLevel  string
}

func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	flagSet := flag.NewFlagSet("prmserver", flag.ContinueOnError)
	flagSet.SetOutput(output)

	opts := &options{}
	flagSet.StringVar(&opts.addr, "addr", ":8080", "Address to listen on.")
	flagSet.StringVar(&opts.snapshot, "snapshot", "roadmap.json", "Snapshot file loaded on start and written by builds with saveToFile. Empty disables.")
	flagSet.StringVar(&opts.scenario, "scenario", "", "Optional HCL scenario built on start when no snapshot is loaded.")
	flagSet.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	return opts, false, nil
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	opts, exit, err := parseArgs(args, stderr)
	if err != nil || exit {
		return err
	}
	logger, err := cli.NewLogger(opts.logFormat, opts.logLevel, stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	logger.Info("🚀 Roadmap planner server starting.")
	srv := server.New(logger, opts.snapshot)
	observer := roadmap.WithObserver(roadmap.LogObserver{Logger: logger})

	if opts.snapshot != "" {
		if ep, err := planner.LoadSnapshot(ctx, opts.snapshot, observer); err == nil {
			srv.SetEpisode(ep)
		} else {
			logger.Info("ℹ️  No snapshot loaded (this is normal on first run).", "error", err)
		}
	}

	if srv.Episode() == nil && opts.scenario != "" {
		ep, err := buildScenario(ctx, opts.scenario, observer)
		if err != nil {
			return err
		}
		srv.SetEpisode(ep)
	}

	httpServer := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening.", "addr", opts.addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func buildScenario(ctx context.Context, path string, opts ...roadmap.Option) (*planner.Episode, error) {
	sc, err := scenario.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	oracle, err := sc.Oracle()
	if err != nil {
		return nil, err
	}
	sampler, err := planner.NewSampler(sc.Sampler, sc.Obstacles, sc.Config.Bounds, sc.Seed)
	if err != nil {
		return nil, err
	}

	ep, err := planner.Build(ctx, oracle, sc.Source, sc.Destination, sampler, sc.Config, opts...)
	if err != nil && !(planner.IsPlanningFailure(err) && ep != nil) {
		return nil, err
	}
	if err != nil {
		ctxlog.FromContext(ctx).Warn("⚠️  Scenario did not connect.", "error", err)
	}
	return ep, nil
}
