// ABOUTME: Single-user, sales member and combined sales member reports
// ABOUTME: Includes the recency-ordered activity feed built from calls, visits and meetings
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
)

// UserReport is one subject's snapshot and detail records.
type UserReport struct {
	Meta
	Subject     models.User               `json:"subject"`
	Performance analytics.UserPerformance `json:"performance"`
	Records     analytics.UserRecords     `json:"records"`
}

// BuildUserReport builds the report for subject.
func BuildUserReport(in Input, subject models.User, opts Options) *UserReport {
	perf, recs := opts.Calculator.Compute(subject, in.Dataset.Leads, in.Dataset.Meetings, in.Dataset.Contracts, in.Range)
	return &UserReport{
		Meta:        in.meta(KindUser, subject.Name, opts),
		Subject:     subject,
		Performance: perf,
		Records:     recs,
	}
}

// Activity kinds in the feed.
const (
	ActivityCall    = "Call"
	ActivityVisit   = "Visit"
	ActivityMeeting = "Meeting"
)

// ActivityItem is one row of a recent activity feed.
type ActivityItem struct {
	Type     string     `json:"type"`
	UserID   string     `json:"userId"`
	UserName string     `json:"userName"`
	Subject  string     `json:"subject"`
	Status   string     `json:"status"`
	Date     string     `json:"date"`
	At       *time.Time `json:"at"`
}

func activityFeed(user models.User, recs analytics.UserRecords, loc *time.Location) []ActivityItem {
	var feed []ActivityItem
	add := func(kind, subject, status, raw string) {
		item := ActivityItem{Type: kind, UserID: user.ID, UserName: user.Name, Subject: subject, Status: status, Date: raw}
		if t, ok := analytics.ParseDate(raw, loc); ok {
			item.At = &t
		}
		feed = append(feed, item)
	}
	for _, c := range recs.Calls {
		status := "Not answered"
		if c.Completed {
			status = "Completed"
		}
		add(ActivityCall, c.LeadName, status, c.Date)
	}
	for _, v := range recs.Visits {
		add(ActivityVisit, v.LeadName, v.Status, v.Date)
	}
	for _, m := range recs.Meetings {
		add(ActivityMeeting, m.Client, m.Status, m.Date)
	}
	return feed
}

// capByRecency sorts newest first (undated items last) and keeps at most n.
func capByRecency(items []ActivityItem, n int) []ActivityItem {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].At, items[j].At
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.After(*b)
	})
	if len(items) > n {
		items = items[:n]
	}
	return items
}

// SalesMemberReport shows how a sales member's group is doing.
type SalesMemberReport struct {
	Meta
	Subject  models.User                `json:"subject"`
	Members  []MemberDetail             `json:"members"`
	Totals   analytics.GroupPerformance `json:"totals"`
	Activity []ActivityItem             `json:"activity"`
}

// Records concatenates the member detail records.
func (r *SalesMemberReport) Records() analytics.UserRecords {
	return Records(r.Members)
}

// Population returns the users a sales member report covers: a team
// leader's direct reports, or every rep sharing a sales rep's manager.
func Population(subject models.User, all []models.User) ([]models.User, error) {
	switch subject.Role {
	case models.RoleTeamLeader:
		return analytics.DirectReports(subject, all), nil
	case models.RoleSalesRep:
		return analytics.Siblings(subject, all), nil
	case models.RoleAdmin, models.RoleSalesAdmin, models.RoleUnknown:
		return nil, &ValidationError{Problems: []string{
			fmt.Sprintf("subject %s has role %s; sales member reports need a team_leader or sales_rep", subject.ID, subject.Role),
		}}
	}
	return nil, nil
}

// withinScope drops population members the viewer may not see.
func withinScope(viewer models.User, population, all []models.User) []models.User {
	visible := lo.SliceToMap(analytics.VisibleUsers(viewer, all), func(u models.User) (string, struct{}) {
		return u.ID, struct{}{}
	})
	return lo.Filter(population, func(u models.User, _ int) bool {
		_, ok := visible[u.ID]
		return ok
	})
}

// BuildSalesMemberReport builds the sales member report for subject.
func BuildSalesMemberReport(in Input, subject models.User, opts Options) (*SalesMemberReport, error) {
	population, err := Population(subject, in.Dataset.Users)
	if err != nil {
		return nil, err
	}
	return buildSalesMember(in, subject, population, opts), nil
}

func buildSalesMember(in Input, subject models.User, population []models.User, opts Options) *SalesMemberReport {
	population = withinScope(in.Viewer, population, in.Dataset.Users)
	members := computeMembers(population, in, opts)
	var feed []ActivityItem
	for i, m := range members {
		feed = append(feed, activityFeed(population[i], m.Records, opts.Calculator.Location)...)
	}
	return &SalesMemberReport{
		Meta:     in.meta(KindSalesMember, subject.Name, opts),
		Subject:  subject,
		Members:  members,
		Totals:   opts.rollup(performances(members)),
		Activity: capByRecency(feed, opts.activityCap()),
	}
}

// AllSalesMembersReport is the union of the sales member reports of every
// accessible sales rep and team leader. Overlapping populations are counted
// once per report they appear in.
type AllSalesMembersReport struct {
	Meta
	Reports   []*SalesMemberReport       `json:"reports"`
	Totals    analytics.GroupPerformance `json:"totals"`
	Activity  []ActivityItem             `json:"activity"`
	Leads     []models.Lead              `json:"leads"`
	Meetings  []models.Meeting           `json:"meetings"`
	Contracts []models.Contract          `json:"contracts"`
}

// BuildAllSalesMembersReport builds the combined report for in.Viewer.
func BuildAllSalesMembersReport(in Input, opts Options) *AllSalesMembersReport {
	subjects := lo.Filter(analytics.VisibleUsers(in.Viewer, in.Dataset.Users), func(u models.User, _ int) bool {
		return u.Role == models.RoleSalesRep || u.Role == models.RoleTeamLeader
	})

	out := &AllSalesMembersReport{Meta: in.meta(KindAllSalesMembers, "All_Sales_Members", opts)}
	groups := make([]analytics.GroupPerformance, 0, len(subjects))
	var feed []ActivityItem
	for _, s := range subjects {
		population, err := Population(s, in.Dataset.Users)
		if err != nil {
			continue
		}
		r := buildSalesMember(in, s, population, opts)
		out.Reports = append(out.Reports, r)
		groups = append(groups, r.Totals)
		feed = append(feed, r.Activity...)

		recs := r.Records()
		out.Leads = append(out.Leads, recs.Leads...)
		out.Meetings = append(out.Meetings, recs.Meetings...)
		out.Contracts = append(out.Contracts, recs.Contracts...)
	}
	out.Totals = analytics.CombineGroups(groups)
	out.Activity = capByRecency(feed, opts.activityCap())
	return out
}
