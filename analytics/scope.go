// ABOUTME: Access scope resolution over the organizational role hierarchy
// ABOUTME: Decides which users' activity a viewer may see in reports
package analytics

import (
	"github.com/samber/lo"

	"github.com/harperreed/salesreport/models"
)

// VisibleUsers returns the subset of all whose activity viewer may see.
//
// Team leaders see themselves, their reps and their team mates. A team
// leader with no configured links sees the whole roster instead of an
// empty team; exports and views depend on that fallback.
func VisibleUsers(viewer models.User, all []models.User) []models.User {
	switch viewer.Role {
	case models.RoleAdmin, models.RoleSalesAdmin:
		return append([]models.User{}, all...)
	case models.RoleTeamLeader:
		team := leaderTeam(viewer, all)
		if len(team) <= 1 {
			return append([]models.User{}, all...)
		}
		return team
	case models.RoleSalesRep, models.RoleUnknown:
		return []models.User{}
	}
	return []models.User{}
}

func leaderTeam(viewer models.User, all []models.User) []models.User {
	team := lo.Filter(all, func(u models.User, _ int) bool {
		switch {
		case u.ID == viewer.ID:
			return true
		case u.Role == models.RoleSalesRep && u.TeamLeaderID != nil && *u.TeamLeaderID == viewer.ID:
			return true
		case viewer.TeamID != nil && u.TeamID != nil && *u.TeamID == *viewer.TeamID:
			return true
		}
		return false
	})
	team = lo.UniqBy(team, func(u models.User) string { return u.ID })

	if !lo.ContainsBy(team, func(u models.User) bool { return u.ID == viewer.ID }) {
		team = append([]models.User{viewer}, team...)
	}
	return team
}

// DirectReports returns every user whose manager is leader.
func DirectReports(leader models.User, all []models.User) []models.User {
	return lo.Filter(all, func(u models.User, _ int) bool {
		return u.ID != leader.ID && u.TeamLeaderID != nil && *u.TeamLeaderID == leader.ID
	})
}

// Siblings returns every sales rep sharing rep's manager, rep included.
// A rep without a manager only has themself.
func Siblings(rep models.User, all []models.User) []models.User {
	if rep.TeamLeaderID == nil {
		return []models.User{rep}
	}
	siblings := lo.Filter(all, func(u models.User, _ int) bool {
		return u.Role == models.RoleSalesRep && u.TeamLeaderID != nil && *u.TeamLeaderID == *rep.TeamLeaderID
	})
	if !lo.ContainsBy(siblings, func(u models.User) bool { return u.ID == rep.ID }) {
		siblings = append([]models.User{rep}, siblings...)
	}
	return siblings
}

// CanSee reports whether target is inside viewer's scope.
func CanSee(viewer models.User, target string, all []models.User) bool {
	return lo.ContainsBy(VisibleUsers(viewer, all), func(u models.User) bool { return u.ID == target })
}
