// ABOUTME: Tests for the record store
// ABOUTME: Imports datasets into in-memory SQLite and reads them back
package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesreport/models"
)

func sampleDataset() *models.Dataset {
	return &models.Dataset{
		Users: []models.User{
			{ID: "tl", Name: "Tara Leader", Role: models.RoleTeamLeader, TeamID: models.StringPtr("north")},
			{ID: "rep-a", Name: "Rep A", Role: models.RoleSalesRep, TeamLeaderID: models.StringPtr("tl")},
			{ID: "admin", Name: "Ada Admin", Role: models.RoleAdmin},
		},
		Leads: []models.Lead{
			{
				ID: "l1", OwnerID: models.StringPtr("rep-a"), Name: "Acme", Status: models.StatusOpenDeal,
				Source: "web", Budget: 12500.5, CreatedAt: "2024-03-02", LastCallDate: "2024-03-03",
				Calls:  []models.Call{{Date: "2024-03-03", Duration: 90, Outcome: "answered"}, {Date: "N/A"}},
				Visits: []models.Visit{{Date: "2024-03-04", Status: models.VisitCompleted, Notes: "site tour"}},
			},
			{ID: "l2", Name: "Unowned", Status: models.StatusFreshLead, CreatedAt: "garbage"},
		},
		Meetings: []models.Meeting{
			{ID: "m1", AssignedToID: "rep-a", Date: "2024-03-05T10:00:00Z", Status: models.MeetingCompleted, Client: "Acme", Title: "Demo"},
		},
		Contracts: []models.Contract{
			{CreatedByID: "rep-a", ClientName: "Acme", DealValue: 9999.99, ContractDate: "N/A", Status: models.ContractPending},
		},
	}
}

func TestImportAndLoadDataset(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewStore(database, DialectSQLite)
	ctx := context.Background()

	stats, err := store.ImportDataset(ctx, sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, ImportStats{Users: 3, Leads: 2, Calls: 2, Visits: 1, Meetings: 1, Contracts: 1}, stats)

	ds, err := store.LoadDataset(ctx)
	require.NoError(t, err)

	require.Len(t, ds.Users, 3)
	assert.Equal(t, "tl", ds.Users[0].ID)
	assert.Equal(t, models.RoleTeamLeader, ds.Users[0].Role)
	require.NotNil(t, ds.Users[0].TeamID)
	assert.Equal(t, "north", *ds.Users[0].TeamID)
	require.NotNil(t, ds.Users[1].TeamLeaderID)
	assert.Equal(t, "tl", *ds.Users[1].TeamLeaderID)
	assert.Nil(t, ds.Users[2].TeamLeaderID)

	require.Len(t, ds.Leads, 2)
	lead := ds.Leads[0]
	assert.Equal(t, models.StatusOpenDeal, lead.Status)
	assert.Equal(t, 12500.5, lead.Budget)
	require.Len(t, lead.Calls, 2)
	assert.Equal(t, 90, lead.Calls[0].Duration)
	assert.Equal(t, "N/A", lead.Calls[1].Date)
	require.Len(t, lead.Visits, 1)
	assert.Equal(t, "site tour", lead.Visits[0].Notes)
	assert.Nil(t, ds.Leads[1].OwnerID)
	assert.Equal(t, "garbage", ds.Leads[1].CreatedAt)

	require.Len(t, ds.Contracts, 1)
	assert.NotEmpty(t, ds.Contracts[0].ID)
	assert.Equal(t, 9999.99, ds.Contracts[0].DealValue)
	assert.Equal(t, "N/A", ds.Contracts[0].ContractDate)
}

func TestImportIsIdempotent(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()
	store := NewStore(database, DialectSQLite)
	ctx := context.Background()

	ds := sampleDataset()
	ds.Contracts = nil
	_, err := store.ImportDataset(ctx, ds)
	require.NoError(t, err)

	ds.Leads[0].Status = models.StatusClosedDeal
	ds.Leads[0].Calls = ds.Leads[0].Calls[:1]
	_, err = store.ImportDataset(ctx, ds)
	require.NoError(t, err)

	loaded, err := store.LoadDataset(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Users, 3)
	require.Len(t, loaded.Leads, 2)
	assert.Equal(t, models.StatusClosedDeal, loaded.Leads[0].Status)
	assert.Len(t, loaded.Leads[0].Calls, 1)
}

func TestLoadEmptyDataset(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	ds, err := NewStore(database, DialectSQLite).LoadDataset(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Users)
	assert.Empty(t, ds.Leads)
}

func TestUnknownRoleLoadsWithoutAccess(t *testing.T) {
	database := setupTestDB(t)
	defer database.Close()

	_, err := database.Exec(`INSERT INTO users (id, name, role) VALUES ('x', 'Mystery', 'intern')`)
	require.NoError(t, err)

	ds, err := NewStore(database, DialectSQLite).LoadDataset(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Users, 1)
	assert.Equal(t, models.RoleUnknown, ds.Users[0].Role)
	assert.False(t, ds.Users[0].Role.CanViewReports())
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("SALESREPORT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SALESREPORT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, "postgres", "", dsn)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.ImportDataset(ctx, sampleDataset())
	require.NoError(t, err)

	ds, err := store.LoadDataset(ctx)
	require.NoError(t, err)
	_, ok := ds.FindUser("rep-a")
	assert.True(t, ok)
}
