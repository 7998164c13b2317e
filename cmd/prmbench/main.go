// Command prmbench builds roadmaps for an HCL scenario. With budgets set in
// the scenario (or with -budgets) it runs a trial batch and prints the mean
// path length per node budget; otherwise it builds a single episode and
// prints the extracted path.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"prm-planner/internal/cli"
	"prm-planner/internal/ctxlog"
	"prm-planner/internal/planner"
	"prm-planner/internal/roadmap"
	"prm-planner/internal/scenario"
)

type options struct {
	scenario string
	budgets  []int
	trials   int
	audit    bool
	logLevel string
}

func parseArgs(args []string, output io.Writer) (*options, bool, error) {
	flagSet := flag.NewFlagSet("prmbench", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, `
prmbench - probabilistic roadmap experiments.

Usage:
  prmbench [options] SCENARIO.hcl

Options:
`)
		flagSet.PrintDefaults()
	}

	opts := &options{}
	budgets := flagSet.String("budgets", "", "Comma-separated node budgets; overrides the scenario.")
	flagSet.IntVar(&opts.trials, "trials", 0, "Trials per budget; overrides the scenario.")
	flagSet.BoolVar(&opts.audit, "audit", false, "Verify the closure of a single episode against A* over direct edges.")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &cli.ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return nil, false, &cli.ExitError{Code: 2, Message: "exactly one scenario file is required"}
	}
	opts.scenario = flagSet.Arg(0)

	if *budgets != "" {
		for _, field := range strings.Split(*budgets, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, false, &cli.ExitError{Code: 2, Message: fmt.Sprintf("invalid budget %q", field)}
			}
			opts.budgets = append(opts.budgets, n)
		}
	}
	return opts, false, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, exit, err := parseArgs(args, stderr)
	if err != nil || exit {
		return err
	}

	logger, err := cli.NewLogger("text", opts.logLevel, stderr)
	if err != nil {
		return err
	}
	ctx = ctxlog.WithLogger(ctx, logger)

	sc, err := scenario.Load(ctx, opts.scenario)
	if err != nil {
		return err
	}
	if len(opts.budgets) > 0 {
		sc.Budgets = opts.budgets
	}
	if opts.trials > 0 {
		sc.Trials = opts.trials
	}

	oracle, err := sc.Oracle()
	if err != nil {
		return err
	}

	if len(sc.Budgets) > 0 {
		stats, err := planner.RunTrials(ctx, oracle, sc.Source, sc.Destination, sc.TrialConfig())
		if err != nil {
			return err
		}
		return writeStats(stdout, stats)
	}

	sampler, err := planner.NewSampler(sc.Sampler, sc.Obstacles, sc.Config.Bounds, sc.Seed)
	if err != nil {
		return err
	}
	ep, err := planner.Build(ctx, oracle, sc.Source, sc.Destination, sampler, sc.Config,
		roadmap.WithObserver(roadmap.LogObserver{Logger: logger}))
	if err != nil && !(planner.IsPlanningFailure(err) && ep != nil) {
		return err
	}

	fmt.Fprintf(stdout, "nodes: %d\nattempts: %d\nedges: %d\n", ep.Roadmap.Len(), ep.Attempts, len(ep.Roadmap.DirectEdges()))
	if opts.audit {
		if err := ep.Roadmap.Audit(); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "audit: ok")
	}
	if err != nil {
		fmt.Fprintf(stdout, "result: %v\n", err)
		return nil
	}

	path, err := ep.Path()
	if err != nil {
		if errors.Is(err, roadmap.ErrNoPath) {
			fmt.Fprintln(stdout, "result: no path")
			return nil
		}
		return err
	}
	fmt.Fprintf(stdout, "distance: %.4f\npath:", ep.Distance())
	for _, p := range path {
		fmt.Fprintf(stdout, " %v", p)
	}
	fmt.Fprintln(stdout)
	return nil
}

func writeStats(w io.Writer, stats []planner.BudgetStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "budget\ttrials\tconnected\tmean length\tmin\tmax\tmean attempts")
	for _, s := range stats {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.4f\t%.4f\t%.4f\t%.1f\n",
			s.Budget, s.Trials, s.Connected, s.MeanLength, s.MinLength, s.MaxLength, s.MeanAttempts)
	}
	return tw.Flush()
}
