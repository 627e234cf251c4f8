// ABOUTME: Data import CLI command
// ABOUTME: Loads a JSON dataset of users, leads, meetings and contracts into the record store
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/harperreed/salesreport/models"
)

// ImportCommand upserts the records in --file into the store.
func ImportCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "JSON dataset to import (required)")
	_ = fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	ds, err := models.LoadDatasetFile(*file)
	if err != nil {
		return err
	}

	stats, err := app.Store.ImportDataset(ctx, ds)
	if err != nil {
		return err
	}

	app.Logger.WithField("file", *file).Info("dataset imported")
	fmt.Fprintf(app.Out, "✓ Imported %s\n", stats)
	return nil
}
