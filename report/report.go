// ABOUTME: Report shapes and the assembler that builds them from a dataset snapshot
// ABOUTME: Every build starts with the viewer capability check and is a pure function of its inputs
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/salesreport/analytics"
	"github.com/harperreed/salesreport/models"
)

var (
	// ErrAccessDenied is the fixed authorization failure. Surfaces render it as "access denied".
	ErrAccessDenied = errors.New("access denied")
	ErrUserNotFound = errors.New("user not found")
)

// Kind selects a report shape.
type Kind string

const (
	KindTeam            Kind = "team"
	KindSales           Kind = "sales"
	KindUser            Kind = "user"
	KindSalesMember     Kind = "salesMember"
	KindAllSalesMembers Kind = "allSalesMembers"
)

// Kinds lists every report shape.
var Kinds = []Kind{KindTeam, KindSales, KindUser, KindSalesMember, KindAllSalesMembers}

// ParseKind validates a report type name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report type: %q", s)
}

// Title is the human name used in filenames and headings.
func (k Kind) Title() string {
	switch k {
	case KindTeam:
		return "Team_Report"
	case KindSales:
		return "Sales_Report"
	case KindUser:
		return "User_Report"
	case KindSalesMember:
		return "Sales_Member_Report"
	case KindAllSalesMembers:
		return "All_Sales_Members_Report"
	}
	return "Report"
}

// Report is any assembled report document.
type Report interface {
	Kind() Kind
	ContextName() string
	Range() analytics.DateRange
	Info() Meta
}

// Meta is the header shared by every report shape.
type Meta struct {
	ReportKind  Kind                `json:"reportType"`
	Context     string              `json:"contextName"`
	Viewer      models.User         `json:"viewer"`
	Timeframe   analytics.Timeframe `json:"timeframe"`
	DateRange   analytics.DateRange `json:"dateRange"`
	GeneratedAt time.Time           `json:"generatedAt"`
	// SyntheticFollowUps marks follow-up figures as generated demo data.
	SyntheticFollowUps bool `json:"syntheticFollowUps"`
}

func (m Meta) Kind() Kind                 { return m.ReportKind }
func (m Meta) ContextName() string        { return m.Context }
func (m Meta) Range() analytics.DateRange { return m.DateRange }
func (m Meta) Info() Meta                 { return m }

// Options tune report assembly.
type Options struct {
	Calculator    analytics.Calculator
	Strategies    analytics.Strategies
	ActivityCap   int
	TopPerformers int
}

const (
	DefaultActivityCap   = 50
	DefaultTopPerformers = 10
)

func (o Options) activityCap() int {
	if o.ActivityCap <= 0 {
		return DefaultActivityCap
	}
	return o.ActivityCap
}

func (o Options) topPerformers() int {
	if o.TopPerformers <= 0 {
		return DefaultTopPerformers
	}
	return o.TopPerformers
}

func (o Options) rollup(members []analytics.UserPerformance) analytics.GroupPerformance {
	if o.Strategies == nil {
		return analytics.Rollup(members)
	}
	return analytics.RollupWith(members, o.Strategies)
}

// Input is everything a build needs besides the options.
type Input struct {
	Dataset     *models.Dataset
	Viewer      models.User
	Subject     *models.User
	Timeframe   analytics.Timeframe
	Range       analytics.DateRange
	GeneratedAt time.Time
}

func (in Input) meta(kind Kind, context string, opts Options) Meta {
	src := opts.Calculator.FollowUps
	return Meta{
		ReportKind:         kind,
		Context:            context,
		Viewer:             in.Viewer,
		Timeframe:          in.Timeframe,
		DateRange:          in.Range,
		GeneratedAt:        in.GeneratedAt,
		SyntheticFollowUps: src != nil && src.Synthetic(),
	}
}

// CheckCapability fails with ErrAccessDenied unless viewer may view reports.
func CheckCapability(viewer models.User) error {
	if !viewer.Role.CanViewReports() {
		return ErrAccessDenied
	}
	return nil
}

// Assemble builds the report of the given kind.
func Assemble(kind Kind, in Input, opts Options) (Report, error) {
	if err := CheckCapability(in.Viewer); err != nil {
		return nil, err
	}
	if in.Dataset == nil {
		in.Dataset = &models.Dataset{}
	}

	switch kind {
	case KindTeam:
		return BuildTeamLeaderReport(in, opts), nil
	case KindSales:
		return BuildSalesReport(in, opts), nil
	case KindUser:
		subject, err := in.subject()
		if err != nil {
			return nil, err
		}
		return BuildUserReport(in, subject, opts), nil
	case KindSalesMember:
		subject, err := in.subject()
		if err != nil {
			return nil, err
		}
		return BuildSalesMemberReport(in, subject, opts)
	case KindAllSalesMembers:
		return BuildAllSalesMembersReport(in, opts), nil
	}
	return nil, fmt.Errorf("unknown report type: %q", kind)
}

// subject returns the report subject, defaulting to the viewer. A subject
// outside the viewer's scope is denied.
func (in Input) subject() (models.User, error) {
	if in.Subject == nil || in.Subject.ID == in.Viewer.ID {
		return in.Viewer, nil
	}
	if !analytics.CanSee(in.Viewer, in.Subject.ID, in.Dataset.Users) {
		return models.User{}, ErrAccessDenied
	}
	return *in.Subject, nil
}

// MemberDetail is one user's snapshot plus the records it was computed from.
type MemberDetail struct {
	Performance analytics.UserPerformance `json:"performance"`
	Records     analytics.UserRecords     `json:"records"`
}

func computeMembers(users []models.User, in Input, opts Options) []MemberDetail {
	out := make([]MemberDetail, 0, len(users))
	for _, u := range users {
		perf, recs := opts.Calculator.Compute(u, in.Dataset.Leads, in.Dataset.Meetings, in.Dataset.Contracts, in.Range)
		out = append(out, MemberDetail{Performance: perf, Records: recs})
	}
	return out
}

func performances(members []MemberDetail) []analytics.UserPerformance {
	out := make([]analytics.UserPerformance, 0, len(members))
	for _, m := range members {
		out = append(out, m.Performance)
	}
	return out
}

// Records concatenates the member record lists in member order.
func Records(members []MemberDetail) analytics.UserRecords {
	var out analytics.UserRecords
	for _, m := range members {
		out.Leads = append(out.Leads, m.Records.Leads...)
		out.Meetings = append(out.Meetings, m.Records.Meetings...)
		out.Contracts = append(out.Contracts, m.Records.Contracts...)
		out.Calls = append(out.Calls, m.Records.Calls...)
		out.Visits = append(out.Visits, m.Records.Visits...)
		out.FollowUps = append(out.FollowUps, m.Records.FollowUps...)
	}
	return out
}
