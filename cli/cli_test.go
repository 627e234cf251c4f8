// ABOUTME: Tests for CLI commands
// ABOUTME: Imports a dataset into a temporary SQLite store and runs commands against it
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesreport/config"
	"github.com/harperreed/salesreport/models"
	"github.com/harperreed/salesreport/report"
	"github.com/harperreed/salesreport/web"
)

func setupApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	cfg := &config.Config{
		DBDriver:      "sqlite",
		DBPath:        filepath.Join(t.TempDir(), "salesreport.db"),
		ExportDir:     t.TempDir(),
		WeekStart:     "monday",
		FollowUps:     "not_tracked",
		Timezone:      "UTC",
		ActivityCap:   50,
		TopPerformers: 10,
		JWTSecret:     "test-secret",
		RateLimit:     "60-M",
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	app, err := NewApp(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	app.Service.Clock = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	var out bytes.Buffer
	app.Out = &out
	return app, &out
}

func writeDataset(t *testing.T) string {
	t.Helper()
	tl := models.StringPtr("tl")
	ds := models.Dataset{
		Users: []models.User{
			{ID: "admin", Name: "Ada Admin", Role: models.RoleAdmin},
			{ID: "tl", Name: "Tara Leader", Role: models.RoleTeamLeader},
			{ID: "rep-a", Name: "Rep A", Role: models.RoleSalesRep, TeamLeaderID: tl},
			{ID: "rep-b", Name: "Rep B", Role: models.RoleSalesRep, TeamLeaderID: tl},
		},
		Leads: []models.Lead{
			{ID: "l1", OwnerID: models.StringPtr("rep-a"), Name: "Acme", Status: models.StatusClosedDeal, CreatedAt: "2024-03-02"},
			{ID: "l2", OwnerID: models.StringPtr("rep-b"), Name: "Globex", Status: models.StatusFreshLead, CreatedAt: "2024-03-03"},
		},
		Contracts: []models.Contract{
			{ID: "c1", CreatedByID: "rep-a", ClientName: "Acme", DealValue: 1000, ContractDate: "2024-03-04", Status: models.ContractSigned},
		},
	}
	data, err := json.Marshal(ds)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func importDataset(t *testing.T, app *App, out *bytes.Buffer) {
	t.Helper()
	require.NoError(t, ImportCommand(context.Background(), app, []string{"--file", writeDataset(t)}))
	assert.Contains(t, out.String(), "Imported")
	out.Reset()
}

func TestImportCommandRequiresFile(t *testing.T) {
	app, _ := setupApp(t)
	assert.Error(t, ImportCommand(context.Background(), app, nil))
}

func TestReportExportCommand(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	dir := t.TempDir()
	err := ReportExportCommand(context.Background(), app, []string{
		"--viewer", "tl", "--type", "team", "--timeframe", "month", "--out", dir,
	})
	require.NoError(t, err)

	name := "Team_Report_Tara_Leader_2024-03-01_to_2024-03-31.xlsx"
	assert.Contains(t, out.String(), name)
	_, err = os.Stat(filepath.Join(dir, name))
	assert.NoError(t, err)
}

func TestReportExportDefaultsToExportDir(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	require.NoError(t, ReportExportCommand(context.Background(), app, []string{"--viewer", "admin", "--type", "sales"}))
	entries, err := os.ReadDir(app.Config.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "Sales_Report_Organization_"))
}

func TestReportExportAccessDenied(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	dir := t.TempDir()
	err := ReportExportCommand(context.Background(), app, []string{"--viewer", "rep-a", "--type", "sales", "--out", dir})
	assert.ErrorIs(t, err, report.ErrAccessDenied)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportExportRequiresViewer(t *testing.T) {
	app, _ := setupApp(t)
	assert.Error(t, ReportExportCommand(context.Background(), app, []string{"--type", "team"}))
}

func TestReportShowCommand(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	require.NoError(t, ReportShowCommand(context.Background(), app, []string{"--viewer", "tl", "--type", "salesMember"}))
	assert.Contains(t, out.String(), "SALES MEMBER REPORT")
	assert.Contains(t, out.String(), "Rep B")
}

func TestVizGraphTeamCommand(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	path := filepath.Join(t.TempDir(), "team.dot")
	require.NoError(t, VizGraphTeamCommand(context.Background(), app, []string{"--viewer", "tl", "--output", path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Rep A")

	err = VizGraphTeamCommand(context.Background(), app, []string{"--viewer", "rep-a"})
	assert.ErrorIs(t, err, report.ErrAccessDenied)
}

func TestTokenCommand(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	require.NoError(t, TokenCommand(context.Background(), app, []string{"--viewer", "tl"}))
	claims, err := web.ParseToken([]byte("test-secret"), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "tl", claims.UserID)

	err = TokenCommand(context.Background(), app, []string{"--viewer", "ghost"})
	assert.ErrorIs(t, err, report.ErrUserNotFound)
}

func TestMCPServerRegistersTools(t *testing.T) {
	app, out := setupApp(t)
	importDataset(t, app, out)

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	_, err := NewMCPServer(app).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"export_sales_report", "get_user_performance", "list_visible_users"}, names)

	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)
	require.Len(t, prompts.Prompts, 1)
	assert.Equal(t, "team_review", prompts.Prompts[0].Name)
}
