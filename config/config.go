// ABOUTME: Application configuration loaded from an optional .env file and the environment
// ABOUTME: Defaults follow XDG paths; Validate rejects unknown enum values
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/db"
)

const appName = "salesreport"

type Config struct {
	DBDriver    string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH"`
	DatabaseURL string `env:"DATABASE_URL"`
	ExportDir   string `env:"EXPORT_DIR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	WeekStart     string `env:"WEEK_START" envDefault:"monday"`
	FollowUps     string `env:"FOLLOWUPS" envDefault:"not_tracked"`
	Timezone      string `env:"TIMEZONE" envDefault:"Local"`
	ActivityCap   int    `env:"ACTIVITY_CAP" envDefault:"50"`
	TopPerformers int    `env:"TOP_PERFORMERS" envDefault:"10"`

	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`
	RateLimit string `env:"RATE_LIMIT" envDefault:"60-M"`
}

// DataDir is the XDG data directory for the application.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// Load reads envFile (or ./.env when empty; a missing file is fine),
// then parses the environment and fills XDG defaults.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(DataDir(), appName+".db")
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = filepath.Join(DataDir(), "exports")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	var problems []string

	dialect, err := db.ParseDriver(c.DBDriver)
	if err != nil {
		problems = append(problems, err.Error())
	} else if dialect == db.DialectPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		problems = append(problems, "DATABASE_URL is required when DB_DRIVER=postgres")
	}
	if _, err := analytics.ParseWeekStart(c.WeekStart); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := analytics.ParseFollowUpSource(c.FollowUps); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("unknown log format: %q", c.LogFormat))
	}
	if c.ActivityCap < 1 {
		problems = append(problems, "ACTIVITY_CAP must be positive")
	}
	if c.TopPerformers < 1 {
		problems = append(problems, "TOP_PERFORMERS must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location resolves TIMEZONE.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Analytics returns the calculator, week start and follow-up settings.
func (c *Config) Analytics() (analytics.Calculator, analytics.WeekStart, error) {
	loc, err := c.Location()
	if err != nil {
		return analytics.Calculator{}, analytics.WeekStartsMonday, err
	}
	ws, err := analytics.ParseWeekStart(c.WeekStart)
	if err != nil {
		return analytics.Calculator{}, analytics.WeekStartsMonday, err
	}
	src, err := analytics.ParseFollowUpSource(c.FollowUps)
	if err != nil {
		return analytics.Calculator{}, analytics.WeekStartsMonday, err
	}
	return analytics.Calculator{Location: loc, FollowUps: src}, ws, nil
}
