// ABOUTME: Per-user performance metric calculation
// ABOUTME: Filters a user's leads, meetings and contracts by date range and derives counts, rates and revenue
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/harperreed/salesreport/models"
)

// NoActivity is shown when a user has no dated activity in range.
const NoActivity = "No activity"

// Counts holds the summable part of a performance snapshot.
type Counts struct {
	TotalLeads        int             `json:"totalLeads"`
	TotalCalls        int             `json:"totalCalls"`
	CompletedCalls    int             `json:"completedCalls"`
	TotalVisits       int             `json:"totalVisits"`
	CompletedVisits   int             `json:"completedVisits"`
	TotalMeetings     int             `json:"totalMeetings"`
	CompletedMeetings int             `json:"completedMeetings"`
	ClosedDeals       int             `json:"closedDeals"`
	OpenDeals         int             `json:"openDeals"`
	ContractCount     int             `json:"contractCount"`
	SignedContracts   int             `json:"signedContracts"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	SignedRevenue     decimal.Decimal `json:"signedRevenue"`
	PendingRevenue    decimal.Decimal `json:"pendingRevenue"`
	FollowUps         FollowUpStats   `json:"followUps"`
}

func (c Counts) add(o Counts) Counts {
	return Counts{
		TotalLeads:        c.TotalLeads + o.TotalLeads,
		TotalCalls:        c.TotalCalls + o.TotalCalls,
		CompletedCalls:    c.CompletedCalls + o.CompletedCalls,
		TotalVisits:       c.TotalVisits + o.TotalVisits,
		CompletedVisits:   c.CompletedVisits + o.CompletedVisits,
		TotalMeetings:     c.TotalMeetings + o.TotalMeetings,
		CompletedMeetings: c.CompletedMeetings + o.CompletedMeetings,
		ClosedDeals:       c.ClosedDeals + o.ClosedDeals,
		OpenDeals:         c.OpenDeals + o.OpenDeals,
		ContractCount:     c.ContractCount + o.ContractCount,
		SignedContracts:   c.SignedContracts + o.SignedContracts,
		TotalRevenue:      c.TotalRevenue.Add(o.TotalRevenue),
		SignedRevenue:     c.SignedRevenue.Add(o.SignedRevenue),
		PendingRevenue:    c.PendingRevenue.Add(o.PendingRevenue),
		FollowUps:         c.FollowUps.add(o.FollowUps),
	}
}

// Rates are percentages in [0, 100] rounded to one decimal.
type Rates struct {
	ConversionRate         float64 `json:"conversionRate"`
	CallCompletionRate     float64 `json:"callCompletionRate"`
	VisitCompletionRate    float64 `json:"visitCompletionRate"`
	MeetingCompletionRate  float64 `json:"meetingCompletionRate"`
	FollowUpCompletionRate float64 `json:"followUpCompletionRate"`
}

func ratesFromCounts(c Counts) Rates {
	r := Rates{
		ConversionRate:        Percent(c.ClosedDeals+c.OpenDeals, c.TotalLeads),
		CallCompletionRate:    Percent(c.CompletedCalls, c.TotalCalls),
		VisitCompletionRate:   Percent(c.CompletedVisits, c.TotalVisits),
		MeetingCompletionRate: Percent(c.CompletedMeetings, c.TotalMeetings),
	}
	if c.FollowUps.Tracked {
		r.FollowUpCompletionRate = Percent(c.FollowUps.Completed, c.FollowUps.Total)
	}
	return r
}

// UserPerformance is one user's snapshot for one report run.
type UserPerformance struct {
	UserID   string      `json:"userId"`
	UserName string      `json:"userName"`
	Role     models.Role `json:"role"`
	Counts
	Rates
	AverageDealSize decimal.Decimal `json:"averageDealSize"`
	LastActivity    *time.Time      `json:"lastActivity"`
}

// LastActivityLabel formats the last activity or the "No activity" sentinel.
func (p UserPerformance) LastActivityLabel() string {
	return activityLabel(p.LastActivity)
}

func activityLabel(t *time.Time) string {
	if t == nil {
		return NoActivity
	}
	return t.Format("2006-01-02 15:04")
}

// CallRecord is a call flattened out of its lead.
type CallRecord struct {
	models.Call
	LeadID    string `json:"leadId"`
	LeadName  string `json:"leadName"`
	OwnerID   string `json:"ownerId"`
	Completed bool   `json:"completed"`
}

// VisitRecord is a visit flattened out of its lead.
type VisitRecord struct {
	models.Visit
	LeadID    string `json:"leadId"`
	LeadName  string `json:"leadName"`
	OwnerID   string `json:"ownerId"`
	Completed bool   `json:"completed"`
}

// UserRecords are the filtered records a snapshot was derived from.
type UserRecords struct {
	Leads     []models.Lead     `json:"leads"`
	Meetings  []models.Meeting  `json:"meetings"`
	Contracts []models.Contract `json:"contracts"`
	Calls     []CallRecord      `json:"calls"`
	Visits    []VisitRecord     `json:"visits"`
	FollowUps []FollowUp        `json:"followUps"`
}

// Calculator computes user performance. The zero value reads zone-less
// dates in time.Local and does not track follow-ups.
type Calculator struct {
	Location  *time.Location
	FollowUps FollowUpSource
}

func (c Calculator) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Calculator) followUps() FollowUpSource {
	if c.FollowUps == nil {
		return NotTracked{}
	}
	return c.FollowUps
}

// ComputeUserPerformance uses the zero Calculator.
func ComputeUserPerformance(user models.User, leads []models.Lead, meetings []models.Meeting, contracts []models.Contract, rng DateRange) UserPerformance {
	perf, _ := Calculator{}.Compute(user, leads, meetings, contracts, rng)
	return perf
}

// Filter selects the records that belong to user and fall inside rng.
func (c Calculator) Filter(user models.User, leads []models.Lead, meetings []models.Meeting, contracts []models.Contract, rng DateRange) UserRecords {
	loc := c.loc()

	recs := UserRecords{
		Leads: lo.Filter(leads, func(l models.Lead, _ int) bool {
			if l.OwnerID == nil || *l.OwnerID != user.ID {
				return false
			}
			if !rng.Bounded() {
				return true
			}
			return rng.Includes(l.CreatedAt, loc) || rng.Includes(l.LastCallDate, loc) || rng.Includes(l.LastVisitDate, loc)
		}),
		Meetings: lo.Filter(meetings, func(m models.Meeting, _ int) bool {
			return m.AssignedToID == user.ID && rng.Includes(m.Date, loc)
		}),
		Contracts: lo.Filter(contracts, func(ct models.Contract, _ int) bool {
			return ct.CreatedByID == user.ID && rng.Includes(ct.ContractDate, loc)
		}),
	}

	src := c.followUps()
	for _, l := range recs.Leads {
		// Call completion follows the lead's current status, not the call outcome.
		answered := l.Status != models.StatusNoAnswer
		for _, call := range l.Calls {
			if !rng.Includes(call.Date, loc) {
				continue
			}
			recs.Calls = append(recs.Calls, CallRecord{Call: call, LeadID: l.ID, LeadName: l.Name, OwnerID: user.ID, Completed: answered})
		}
		for _, v := range l.Visits {
			if !rng.Includes(v.Date, loc) {
				continue
			}
			recs.Visits = append(recs.Visits, VisitRecord{Visit: v, LeadID: l.ID, LeadName: l.Name, OwnerID: user.ID, Completed: v.Status == models.VisitCompleted})
		}
		recs.FollowUps = append(recs.FollowUps, src.FollowUpsFor(l)...)
	}

	return recs
}

// Compute filters the records and derives user's performance from them.
func (c Calculator) Compute(user models.User, leads []models.Lead, meetings []models.Meeting, contracts []models.Contract, rng DateRange) (UserPerformance, UserRecords) {
	recs := c.Filter(user, leads, meetings, contracts, rng)
	return c.Summarize(user, recs, rng), recs
}

// Summarize derives a performance snapshot from already filtered records.
func (c Calculator) Summarize(user models.User, recs UserRecords, rng DateRange) UserPerformance {
	src := c.followUps()

	counts := Counts{
		TotalLeads:        len(recs.Leads),
		TotalCalls:        len(recs.Calls),
		CompletedCalls:    lo.CountBy(recs.Calls, func(r CallRecord) bool { return r.Completed }),
		TotalVisits:       len(recs.Visits),
		CompletedVisits:   lo.CountBy(recs.Visits, func(r VisitRecord) bool { return r.Completed }),
		TotalMeetings:     len(recs.Meetings),
		CompletedMeetings: lo.CountBy(recs.Meetings, func(m models.Meeting) bool { return m.Status == models.MeetingCompleted }),
		ClosedDeals:       lo.CountBy(recs.Leads, func(l models.Lead) bool { return l.Status == models.StatusClosedDeal }),
		OpenDeals:         lo.CountBy(recs.Leads, func(l models.Lead) bool { return l.Status == models.StatusOpenDeal }),
		ContractCount:     len(recs.Contracts),
		SignedContracts:   lo.CountBy(recs.Contracts, func(ct models.Contract) bool { return ct.Status == models.ContractSigned }),
		TotalRevenue:      decimal.Zero,
		SignedRevenue:     decimal.Zero,
		PendingRevenue:    decimal.Zero,
		FollowUps: FollowUpStats{
			Tracked:   src.Tracked(),
			Synthetic: src.Synthetic(),
			Total:     len(recs.FollowUps),
			Completed: lo.CountBy(recs.FollowUps, func(f FollowUp) bool { return f.Completed }),
		},
	}

	for _, ct := range recs.Contracts {
		v := decimal.NewFromFloat(ct.DealValue)
		counts.TotalRevenue = counts.TotalRevenue.Add(v)
		switch ct.Status {
		case models.ContractSigned:
			counts.SignedRevenue = counts.SignedRevenue.Add(v)
		case models.ContractPending:
			counts.PendingRevenue = counts.PendingRevenue.Add(v)
		}
	}

	return UserPerformance{
		UserID:          user.ID,
		UserName:        user.Name,
		Role:            user.Role,
		Counts:          counts,
		Rates:           ratesFromCounts(counts),
		AverageDealSize: averageDealSize(counts.TotalRevenue, counts.ContractCount),
		LastActivity:    c.lastActivity(recs, rng),
	}
}

func (c Calculator) lastActivity(recs UserRecords, rng DateRange) *time.Time {
	loc := c.loc()
	var candidates []string
	for _, l := range recs.Leads {
		candidates = append(candidates, l.CreatedAt, l.LastCallDate, l.LastVisitDate)
	}
	for _, call := range recs.Calls {
		candidates = append(candidates, call.Date)
	}
	for _, v := range recs.Visits {
		candidates = append(candidates, v.Date)
	}
	for _, m := range recs.Meetings {
		candidates = append(candidates, m.Date)
	}

	var latest *time.Time
	for _, raw := range candidates {
		t, ok := ParseDate(raw, loc)
		if !ok || !rng.Contains(t) {
			continue
		}
		if latest == nil || t.After(*latest) {
			latest = &t
		}
	}
	return latest
}

// Percent returns 100*part/total rounded to one decimal and clamped to
// [0, 100]. Non-positive totals yield 0.
func Percent(part, total int) float64 {
	if total <= 0 || part <= 0 {
		return 0
	}
	return clampRate(float64(part) * 100 / float64(total))
}

func clampRate(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		v = 100
	}
	return math.Round(v*10) / 10
}

func averageDealSize(revenue decimal.Decimal, contracts int) decimal.Decimal {
	if contracts <= 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(int64(contracts)), 2)
}

// SortByRevenue orders snapshots by total revenue, highest first, then by name.
func SortByRevenue(perfs []UserPerformance) {
	sort.SliceStable(perfs, func(i, j int) bool {
		if cmp := perfs[i].TotalRevenue.Cmp(perfs[j].TotalRevenue); cmp != 0 {
			return cmp > 0
		}
		return perfs[i].UserName < perfs[j].UserName
	})
}
