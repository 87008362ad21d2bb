package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/routes"
	"github.com/campsight/campsight/internal/views"
)

// NewRoutesCmd creates the "routes" command, which lists every registered
// dashboard route with its metadata and current load state. The `--verbose`
// flag adds the description and loader attempt counters.
func NewRoutesCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List registered dashboard routes",
		Long:  "List every registered route with its title, preload flag, and load state",
		Example: `  # List all routes
  campsight routes

  # List routes with descriptions and attempt counters
  campsight routes --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoutesCmd(cmd, verbose)
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show detailed route information")

	return cmd
}

func runRoutesCmd(cmd *cobra.Command, verbose bool) error {
	ws, err := newWorkspace(configFromCommand(cmd))
	if err != nil {
		return fmt.Errorf("building route registry: %w", err)
	}

	const tabPadding = 2
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)

	if verbose {
		return displayVerboseRoutes(w, ws.registry.All())
	}
	return displayRoutes(w, ws.registry.All())
}

func displayRoutes(w *tabwriter.Writer, all []routes.Entry[views.Page]) error {
	fmt.Fprintln(w, "Path\tTitle\tPreload\tState")
	fmt.Fprintln(w, "----\t-----\t-------\t-----")

	for _, route := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			route.Path, route.Title, formatPreloadFlag(route.Preload), route.Unit.State())
	}
	return w.Flush()
}

func displayVerboseRoutes(w *tabwriter.Writer, all []routes.Entry[views.Page]) error {
	fmt.Fprintln(w, "Path\tTitle\tPreload\tState\tAttempts\tNavigable\tDescription")
	fmt.Fprintln(w, "----\t-----\t-------\t-----\t--------\t---------\t-----------")

	for _, route := range all {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			route.Path,
			route.Title,
			formatPreloadFlag(route.Preload),
			route.Unit.State(),
			route.Unit.Attempts(),
			formatNavigable(route.Path),
			route.Description,
		)
	}
	return w.Flush()
}

func formatPreloadFlag(preload bool) string {
	if preload {
		return "critical"
	}
	return "-"
}

// formatNavigable marks parameterized paths, which stay out of navigation
// listings because they cannot be linked without concrete values.
func formatNavigable(path string) string {
	if routes.IsParameterized(path) {
		return "no (parameterized)"
	}
	return "yes"
}
