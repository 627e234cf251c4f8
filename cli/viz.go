// ABOUTME: Visualization CLI commands
// ABOUTME: Renders the viewer's report access hierarchy as a Graphviz graph
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/salesreport/viz"
)

// VizGraphTeamCommand generates the access hierarchy graph for a viewer.
func VizGraphTeamCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("viz graph team", flag.ExitOnError)
	viewer := fs.String("viewer", "", "ID of the viewing user (required)")
	output := fs.String("output", "", "Output file (default: stdout)")
	_ = fs.Parse(args)

	if *viewer == "" {
		return fmt.Errorf("--viewer is required")
	}

	ds, user, err := app.Service.Dataset(ctx, *viewer)
	if err != nil {
		return err
	}

	dot, err := viz.HierarchyGraph(ctx, user, ds.Users)
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(dot), 0644)
	}

	fmt.Fprintln(app.Out, dot)
	return nil
}
