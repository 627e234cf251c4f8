// ABOUTME: Shared fixtures for analytics tests
// ABOUTME: Builds a small org with one team leader, two reps and an admin
package analytics

import (
	"fmt"

	"github.com/harperreed/salesreport/models"
)

var (
	adminUser  = models.User{ID: "admin", Name: "Ada Admin", Role: models.RoleAdmin}
	salesAdmin = models.User{ID: "sadmin", Name: "Sam Sales", Role: models.RoleSalesAdmin}
	leaderUser = models.User{ID: "tl", Name: "Tara Leader", Role: models.RoleTeamLeader, TeamID: models.StringPtr("team-1")}
	repA       = models.User{ID: "rep-a", Name: "Rep A", Role: models.RoleSalesRep, TeamLeaderID: models.StringPtr("tl")}
	repB       = models.User{ID: "rep-b", Name: "Rep B", Role: models.RoleSalesRep, TeamLeaderID: models.StringPtr("tl")}
	loneRep    = models.User{ID: "rep-c", Name: "Rep C", Role: models.RoleSalesRep}
)

func roster() []models.User {
	return []models.User{adminUser, salesAdmin, leaderUser, repA, repB, loneRep}
}

// makeLeads creates n leads for owner, the first closed of which are closed deals.
func makeLeads(owner string, n, closed int, created string) []models.Lead {
	leads := make([]models.Lead, 0, n)
	for i := 0; i < n; i++ {
		status := models.StatusFreshLead
		if i < closed {
			status = models.StatusClosedDeal
		}
		leads = append(leads, models.Lead{
			ID:        fmt.Sprintf("%s-lead-%d", owner, i),
			OwnerID:   models.StringPtr(owner),
			Name:      fmt.Sprintf("Lead %d", i),
			Status:    status,
			Source:    "website",
			CreatedAt: created,
		})
	}
	return leads
}
