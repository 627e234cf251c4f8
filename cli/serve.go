// ABOUTME: HTTP server and token CLI commands
// ABOUTME: Serves the report API and mints bearer tokens for it
package cli

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/harperreed/salesreport/report"
	"github.com/harperreed/salesreport/web"
)

// ServeCommand runs the HTTP API until ctx is cancelled.
func ServeCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", app.Config.HTTPAddr, "Listen address")
	_ = fs.Parse(args)

	srv, err := web.NewServer(app.Service, app.Config.JWTSecret, app.Config.RateLimit, app.Logger)
	if err != nil {
		return err
	}
	return srv.Start(ctx, *addr)
}

// TokenCommand prints a bearer token identifying --viewer.
func TokenCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	viewer := fs.String("viewer", "", "User ID the token identifies (required)")
	ttl := fs.Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = fs.Parse(args)

	if *viewer == "" {
		return fmt.Errorf("--viewer is required")
	}
	if app.Config.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is not set")
	}

	// refuse to mint tokens for users that do not exist
	ds, err := app.Store.LoadDataset(ctx)
	if err != nil {
		return err
	}
	if _, ok := ds.FindUser(*viewer); !ok {
		return fmt.Errorf("%w: %s", report.ErrUserNotFound, *viewer)
	}

	token, exp, err := web.GenerateToken([]byte(app.Config.JWTSecret), *viewer, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(app.Out, token)
	app.Logger.WithFields(logrus.Fields{"viewer": *viewer, "expires": exp.Format(time.RFC3339)}).Debug("token issued")
	return nil
}
