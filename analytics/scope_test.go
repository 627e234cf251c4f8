// ABOUTME: Tests for role-based visibility
// ABOUTME: Covers each role, the empty-team fallback and manager-based sibling lookup
package analytics

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/harperreed/salesreport/models"
)

func ids(users []models.User) []string {
	return lo.Map(users, func(u models.User, _ int) string { return u.ID })
}

func TestVisibleUsersAdminsSeeEveryone(t *testing.T) {
	all := roster()
	assert.Equal(t, ids(all), ids(VisibleUsers(adminUser, all)))
	assert.Equal(t, ids(all), ids(VisibleUsers(salesAdmin, all)))
}

func TestVisibleUsersSalesRepSeesNothing(t *testing.T) {
	assert.Empty(t, VisibleUsers(repA, roster()))
	assert.Empty(t, VisibleUsers(models.User{ID: "x"}, roster()))
}

func TestVisibleUsersTeamLeader(t *testing.T) {
	teammate := models.User{ID: "tm", Name: "Team Mate", Role: models.RoleSalesRep, TeamID: models.StringPtr("team-1")}
	all := append(roster(), teammate)

	visible := ids(VisibleUsers(leaderUser, all))
	assert.ElementsMatch(t, []string{"tl", "rep-a", "rep-b", "tm"}, visible)
	assert.NotContains(t, visible, "rep-c")
	assert.NotContains(t, visible, "admin")
}

func TestVisibleUsersTeamLeaderFallback(t *testing.T) {
	orphan := models.User{ID: "tl2", Name: "No Team", Role: models.RoleTeamLeader}
	all := append(roster(), orphan)

	visible := VisibleUsers(orphan, all)
	assert.Len(t, visible, len(all))
}

func TestVisibleUsersIsIdempotent(t *testing.T) {
	teammate := models.User{ID: "tm", Name: "Team Mate", Role: models.RoleSalesRep, TeamID: models.StringPtr("team-1")}
	orphan := models.User{ID: "tl2", Name: "No Team", Role: models.RoleTeamLeader}
	all := append(roster(), teammate, orphan)

	// leaderUser has a team; orphan falls back to the full roster
	assert.Less(t, len(VisibleUsers(leaderUser, all)), len(all))
	assert.Len(t, VisibleUsers(orphan, all), len(all))

	for _, viewer := range all {
		once := VisibleUsers(viewer, all)
		twice := VisibleUsers(viewer, once)
		assert.Equal(t, ids(once), ids(twice), viewer.ID)

		unique := lo.UniqBy(once, func(u models.User) string { return u.ID })
		assert.Len(t, unique, len(once), "duplicates for %s", viewer.ID)
	}
}

func TestDirectReportsAndSiblings(t *testing.T) {
	all := roster()

	assert.ElementsMatch(t, []string{"rep-a", "rep-b"}, ids(DirectReports(leaderUser, all)))
	assert.Empty(t, DirectReports(repA, all))

	assert.ElementsMatch(t, []string{"rep-a", "rep-b"}, ids(Siblings(repA, all)))
	assert.Equal(t, []string{"rep-c"}, ids(Siblings(loneRep, all)))
}

func TestCanSee(t *testing.T) {
	all := roster()
	assert.True(t, CanSee(leaderUser, "rep-a", all))
	assert.False(t, CanSee(leaderUser, "rep-c", all))
	assert.True(t, CanSee(adminUser, "rep-c", all))
	assert.False(t, CanSee(repA, "rep-a", all))
}
