// ABOUTME: Entry point for the sales reporting CLI, HTTP API and MCP server
// ABOUTME: Routes to commands based on arguments after loading config and logging
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/salesreport/cli"
	"github.com/harperreed/salesreport/config"
	"github.com/harperreed/salesreport/logging"
	"github.com/harperreed/salesreport/report"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/salesreport/salesreport.db)")
	envFile := flag.String("env-file", "", "Env file to load (default: ./.env if present)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salesreport version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "report":
		if len(commandArgs) == 0 {
			fmt.Println("Error: report requires a subcommand (export, show, browse)")
			printUsage()
			os.Exit(1)
		}
		reportArgs := commandArgs[1:]
		switch commandArgs[0] {
		case "export":
			exitOnError(cli.ReportExportCommand(ctx, app, reportArgs))
		case "show":
			exitOnError(cli.ReportShowCommand(ctx, app, reportArgs))
		case "browse":
			exitOnError(cli.ReportBrowseCommand(ctx, app, reportArgs))
		default:
			fmt.Printf("Unknown report command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	case "viz":
		if len(commandArgs) < 2 || commandArgs[0] != "graph" || commandArgs[1] != "team" {
			fmt.Println("Error: usage is viz graph team --viewer <id>")
			printUsage()
			os.Exit(1)
		}
		exitOnError(cli.VizGraphTeamCommand(ctx, app, commandArgs[2:]))

	case "import":
		exitOnError(cli.ImportCommand(ctx, app, commandArgs))

	case "serve":
		exitOnError(cli.ServeCommand(ctx, app, commandArgs))

	case "mcp":
		exitOnError(cli.MCPCommand(ctx, app))

	case "token":
		exitOnError(cli.TokenCommand(ctx, app, commandArgs))

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// exitOnError prints err and exits 1. Capability failures print only the
// fixed denial message.
func exitOnError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, report.ErrAccessDenied) {
		fmt.Fprintln(os.Stderr, report.ErrAccessDenied.Error())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`salesreport v%s - Sales performance analytics and reporting

USAGE:
  salesreport [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/salesreport/salesreport.db)
  --env-file <path>      Env file to load (default: ./.env if present)

COMMANDS:
  report                 Generate, export and browse reports
  viz                    Visualization commands
  import                 Load a JSON dataset into the record store
  serve                  Start the HTTP API
  mcp                    Start MCP server on stdio
  token                  Mint a bearer token for the HTTP API

REPORT COMMANDS:
  salesreport report export   Save a report as an xlsx workbook
    --viewer <id>               Requesting user (required)
    --type <type>               team, sales, user, salesMember, allSalesMembers (default: team)
    --timeframe <tf>            today, week, month, last7days, last30days,
                                last3months, last6months, yearToDate, custom (default: month)
    --start <YYYY-MM-DD>        Custom range start
    --end <YYYY-MM-DD>          Custom range end
    --subject <id>              User the report is about (user, salesMember)
    --out <dir>                 Output directory (default: EXPORT_DIR)

  salesreport report show     Print a report summary (same flags as export, no --out)

  salesreport report browse   Interactive report browser
    --viewer <id>               Requesting user (required)
    --type <type>               Initial report type

VIZ COMMANDS:
  salesreport viz graph team  Graph of the users a viewer can see
    --viewer <id>               Viewing user (required)
    --output <file>             Output file (default: stdout)

OTHER COMMANDS:
  salesreport import --file <data.json>
  salesreport serve [--addr :8080]
  salesreport token --viewer <id> [--ttl 24h]

CONFIGURATION (environment or .env):
  DB_DRIVER, DB_PATH, DATABASE_URL, EXPORT_DIR, LOG_LEVEL, LOG_FORMAT, LOG_FILE,
  WEEK_START, FOLLOWUPS, TIMEZONE, ACTIVITY_CAP, TOP_PERFORMERS,
  HTTP_ADDR, JWT_SECRET, RATE_LIMIT

EXAMPLES:
  # Load records
  salesreport import --file crm-export.json

  # Export this month's team report for a team leader
  salesreport report export --viewer tl-1 --type team

  # Custom range sales report
  salesreport report export --viewer admin --type sales --timeframe custom --start 2024-01-01 --end 2024-03-31

`, version)
}
