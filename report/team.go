// ABOUTME: Team leader and organization-wide sales reports
// ABOUTME: Per-member snapshots, a group rollup and the status/source/month breakdowns
package report

import (
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
)

// TeamLeaderReport covers every user visible to the viewer. Members keeps
// the viewer's own row; Team rolls up everyone else.
type TeamLeaderReport struct {
	Meta
	Members []MemberDetail             `json:"members"`
	Team    analytics.GroupPerformance `json:"team"`
}

// BuildTeamLeaderReport builds the team report for in.Viewer.
func BuildTeamLeaderReport(in Input, opts Options) *TeamLeaderReport {
	members := computeMembers(analytics.VisibleUsers(in.Viewer, in.Dataset.Users), in, opts)
	return &TeamLeaderReport{
		Meta:    in.meta(KindTeam, in.Viewer.Name, opts),
		Members: members,
		Team:    opts.rollup(performances(teamOf(in.Viewer, members))),
	}
}

func teamOf(viewer models.User, members []MemberDetail) []MemberDetail {
	return lo.Filter(members, func(m MemberDetail, _ int) bool {
		return m.Performance.UserID != viewer.ID
	})
}

// Bucket is one entry of a count breakdown.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// MonthRevenue is contract revenue for one calendar month (YYYY-MM).
type MonthRevenue struct {
	Month     string          `json:"month"`
	Revenue   decimal.Decimal `json:"revenue"`
	Contracts int             `json:"contracts"`
}

// UnknownMonth collects revenue from contracts without a parseable date.
const UnknownMonth = "unknown"

// SalesReportData is the organization-wide report over the viewer's scope.
type SalesReportData struct {
	Meta
	Users          []MemberDetail              `json:"users"`
	Totals         analytics.GroupPerformance  `json:"totals"`
	LeadsByStatus  []Bucket                    `json:"leadsByStatus"`
	LeadsBySource  []Bucket                    `json:"leadsBySource"`
	RevenueByMonth []MonthRevenue              `json:"revenueByMonth"`
	TopPerformers  []analytics.UserPerformance `json:"topPerformers"`
}

// BuildSalesReport builds the sales report for in.Viewer. Breakdowns are
// taken over the scoped users' filtered leads and contracts.
func BuildSalesReport(in Input, opts Options) *SalesReportData {
	members := computeMembers(analytics.VisibleUsers(in.Viewer, in.Dataset.Users), in, opts)
	perfs := performances(members)
	recs := Records(members)

	top := append([]analytics.UserPerformance{}, perfs...)
	analytics.SortByRevenue(top)
	if n := opts.topPerformers(); len(top) > n {
		top = top[:n]
	}

	return &SalesReportData{
		Meta:           in.meta(KindSales, "Organization", opts),
		Users:          members,
		Totals:         opts.rollup(perfs),
		LeadsByStatus:  leadsByStatus(recs.Leads),
		LeadsBySource:  leadsBySource(recs.Leads),
		RevenueByMonth: revenueByMonth(recs.Contracts, opts.Calculator),
		TopPerformers:  top,
	}
}

// leadsByStatus lists every known status in lifecycle order, then any
// unrecognised statuses alphabetically.
func leadsByStatus(leads []models.Lead) []Bucket {
	counts := lo.CountValuesBy(leads, func(l models.Lead) string { return string(l.Status) })

	out := make([]Bucket, 0, len(models.LeadStatuses))
	for _, s := range models.LeadStatuses {
		out = append(out, Bucket{Key: string(s), Count: counts[string(s)]})
		delete(counts, string(s))
	}
	extra := lo.Keys(counts)
	sort.Strings(extra)
	for _, k := range extra {
		out = append(out, Bucket{Key: k, Count: counts[k]})
	}
	return out
}

// leadsBySource is ordered by count, highest first, then by source name.
func leadsBySource(leads []models.Lead) []Bucket {
	counts := lo.CountValuesBy(leads, func(l models.Lead) string {
		if l.Source == "" {
			return "unknown"
		}
		return l.Source
	})
	out := lo.MapToSlice(counts, func(k string, v int) Bucket { return Bucket{Key: k, Count: v} })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func revenueByMonth(contracts []models.Contract, calc analytics.Calculator) []MonthRevenue {
	loc := calc.Location
	byMonth := map[string]*MonthRevenue{}
	for _, ct := range contracts {
		month := UnknownMonth
		if t, ok := analytics.ParseDate(ct.ContractDate, loc); ok {
			month = t.Format("2006-01")
		}
		m, ok := byMonth[month]
		if !ok {
			m = &MonthRevenue{Month: month, Revenue: decimal.Zero}
			byMonth[month] = m
		}
		m.Revenue = m.Revenue.Add(decimal.NewFromFloat(ct.DealValue))
		m.Contracts++
	}

	out := make([]MonthRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month == UnknownMonth || out[j].Month == UnknownMonth {
			return out[j].Month == UnknownMonth && out[i].Month != UnknownMonth
		}
		return out[i].Month < out[j].Month
	})
	return out
}
