package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/preload"
)

// NewPreloadCmd creates the "preload" command, which warms route content
// ahead of navigation. With no arguments it runs the critical batch; path
// arguments warm exactly those paths; --history feeds observed visits into
// the usage-based warmer.
func NewPreloadCmd() *cobra.Command {
	var (
		critical bool
		history  []string
	)

	cmd := &cobra.Command{
		Use:   "preload [path ...]",
		Short: "Warm route content ahead of navigation",
		Long: `Warm route content ahead of navigation.

Without arguments the critical routes (those flagged for preload) are
warmed. Path arguments warm exactly those paths. The --history flag takes
observed visits and warms the most frequent ones instead.

Partial failures are reported per path but never change the exit code.`,
		Example: `  # Warm the critical routes
  campsight preload

  # Warm specific paths
  campsight preload /campaigns /analytics

  # Warm the most visited paths from an observed history
  campsight preload --history / --history /campaigns --history /campaigns`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreloadCmd(cmd, args, critical, history)
		},
	}

	cmd.Flags().BoolVar(&critical, "critical", false, "Warm the routes flagged for preload")
	cmd.Flags().StringArrayVar(&history, "history", nil, "Observed visit to rank for usage-based warming (repeatable)")

	return cmd
}

func runPreloadCmd(cmd *cobra.Command, args []string, critical bool, history []string) error {
	if err := validatePreloadMode(args, critical, history); err != nil {
		return err
	}

	ws, err := newWorkspace(configFromCommand(cmd))
	if err != nil {
		return fmt.Errorf("building route registry: %w", err)
	}

	ctx := cmd.Context()

	var result preload.Result
	switch {
	case len(history) > 0:
		result = ws.scheduler.ByUsage(ctx, history)
	case len(args) > 0:
		result = ws.scheduler.Paths(ctx, args)
	default:
		result = ws.scheduler.Critical(ctx)
	}

	return displayPreloadResult(cmd, result)
}

// validatePreloadMode rejects ambiguous combinations: each invocation runs
// exactly one batch kind.
func validatePreloadMode(args []string, critical bool, history []string) error {
	modes := 0
	if critical {
		modes++
	}
	if len(history) > 0 {
		modes++
	}
	if len(args) > 0 {
		modes++
	}
	if modes > 1 {
		return fmt.Errorf("path arguments, --critical, and --history are mutually exclusive")
	}
	return nil
}

// displayPreloadResult prints per-path outcomes and the aggregate count.
// Partial failures are data, not control flow, so this never returns a
// non-nil error for a failed path.
func displayPreloadResult(cmd *cobra.Command, result preload.Result) error {
	out := cmd.OutOrStdout()

	if result.Attempted() > 0 {
		const tabPadding = 2
		w := tabwriter.NewWriter(out, 0, 0, tabPadding, ' ', 0)
		fmt.Fprintln(w, "Path\tResult\tElapsed")
		fmt.Fprintln(w, "----\t------\t-------")
		for _, outcome := range result.Outcomes {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				outcome.Path, formatOutcome(outcome), outcome.Elapsed.Round(time.Millisecond))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped unknown paths: %s\n", strings.Join(result.Skipped, ", "))
	}

	fmt.Fprintf(out, "Preloaded %d/%d routes (batch %s)\n",
		result.Succeeded(), result.Attempted(), result.BatchID)
	return nil
}

func formatOutcome(outcome preload.Outcome) string {
	if outcome.Succeeded() {
		return "ok"
	}
	return "failed: " + outcome.Err.Error()
}
