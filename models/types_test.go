// ABOUTME: Tests for collaborator data models
// ABOUTME: Covers role parsing, the report capability check and dataset loading
package models

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":       RoleAdmin,
		"sales_admin": RoleSalesAdmin,
		"team_leader": RoleTeamLeader,
		"sales_rep":   RoleSalesRep,
	}
	for in, want := range cases {
		got, err := ParseRole(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, in, got.String())
	}

	_, err := ParseRole("manager")
	assert.Error(t, err)
}

func TestCanViewReports(t *testing.T) {
	assert.True(t, RoleAdmin.CanViewReports())
	assert.True(t, RoleSalesAdmin.CanViewReports())
	assert.True(t, RoleTeamLeader.CanViewReports())
	assert.False(t, RoleSalesRep.CanViewReports())
	assert.False(t, RoleUnknown.CanViewReports())
}

func TestUserRoleJSON(t *testing.T) {
	var u User
	err := json.Unmarshal([]byte(`{"id":"u1","name":"Ana","role":"team_leader","teamId":"t1"}`), &u)
	require.NoError(t, err)
	assert.Equal(t, RoleTeamLeader, u.Role)
	require.NotNil(t, u.TeamID)
	assert.Equal(t, "t1", *u.TeamID)
	assert.Nil(t, u.TeamLeaderID)

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"team_leader"`)

	err = json.Unmarshal([]byte(`{"id":"u2","role":"ceo"}`), &u)
	assert.Error(t, err)
}

func TestLoadDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	raw := `{
		"users": [{"id": "u1", "name": "Ana", "role": "admin"}],
		"leads": [{"id": "l1", "ownerId": "u1", "status": "closed_deal", "createdAt": "2024-03-01",
			"calls": [{"date": "2024-03-02", "duration": 60}]}],
		"meetings": [{"id": "m1", "assignedToId": "u1", "date": "2024-03-03", "status": "Completed"}],
		"contracts": [{"id": "c1", "createdById": "u1", "dealValue": 1200.5, "contractDate": "N/A", "status": "Signed"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))

	ds, err := LoadDatasetFile(path)
	require.NoError(t, err)
	assert.Len(t, ds.Users, 1)
	assert.Len(t, ds.Leads[0].Calls, 1)
	assert.Equal(t, StatusClosedDeal, ds.Leads[0].Status)
	assert.Equal(t, "N/A", ds.Contracts[0].ContractDate)

	u, ok := ds.FindUser("u1")
	assert.True(t, ok)
	assert.Equal(t, "Ana", u.Name)
	_, ok = ds.FindUser("missing")
	assert.False(t, ok)

	_, err = LoadDatasetFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
