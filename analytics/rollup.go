// ABOUTME: Group-level rollup of per-user performance snapshots
// ABOUTME: Sums counts and revenue; rates follow an explicit per-metric strategy
package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// RollupStrategy says how a rate is aggregated over a group.
type RollupStrategy int

const (
	// MeanOfRates is the unweighted mean of member rates over member count.
	MeanOfRates RollupStrategy = iota
	// RatioOfSums recomputes the rate from summed counts.
	RatioOfSums
)

func (s RollupStrategy) String() string {
	if s == RatioOfSums {
		return "ratio-of-sums"
	}
	return "mean-of-rates"
}

// RateMetric names a rate field.
type RateMetric string

const (
	RateConversion         RateMetric = "conversion"
	RateCallCompletion     RateMetric = "call_completion"
	RateVisitCompletion    RateMetric = "visit_completion"
	RateMeetingCompletion  RateMetric = "meeting_completion"
	RateFollowUpCompletion RateMetric = "follow_up_completion"
)

// Strategies maps each rate to its rollup strategy.
type Strategies map[RateMetric]RollupStrategy

// DefaultStrategies averages member rates without weighting. Team
// conversion for a 4-lead rep at 50% and a 6-lead rep at 0% is 25%, not 20%.
func DefaultStrategies() Strategies {
	return Strategies{
		RateConversion:         MeanOfRates,
		RateCallCompletion:     MeanOfRates,
		RateVisitCompletion:    MeanOfRates,
		RateMeetingCompletion:  MeanOfRates,
		RateFollowUpCompletion: MeanOfRates,
	}
}

// GroupPerformance is a team or organization aggregate.
type GroupPerformance struct {
	MemberCount int `json:"memberCount"`
	Counts
	Rates
	AverageDealSize decimal.Decimal `json:"averageDealSize"`
	LastActivity    *time.Time      `json:"lastActivity"`
}

// Rollup aggregates members with DefaultStrategies.
func Rollup(members []UserPerformance) GroupPerformance {
	return RollupWith(members, DefaultStrategies())
}

// RollupWith aggregates members using the given strategies. Metrics
// missing from strategies use MeanOfRates.
func RollupWith(members []UserPerformance, strategies Strategies) GroupPerformance {
	parts := make([]ratePart, 0, len(members))
	for _, m := range members {
		parts = append(parts, ratePart{Counts: m.Counts, Rates: m.Rates, LastActivity: m.LastActivity})
	}
	return aggregate(len(members), parts, strategies)
}

// CombineGroups aggregates group snapshots the same way Rollup aggregates
// users: counts are summed, rates are averaged over the groups.
func CombineGroups(groups []GroupPerformance) GroupPerformance {
	parts := make([]ratePart, 0, len(groups))
	members := 0
	for _, g := range groups {
		parts = append(parts, ratePart{Counts: g.Counts, Rates: g.Rates, LastActivity: g.LastActivity})
		members += g.MemberCount
	}
	out := aggregate(len(groups), parts, DefaultStrategies())
	out.MemberCount = members
	return out
}

type ratePart struct {
	Counts
	Rates
	LastActivity *time.Time
}

func aggregate(n int, parts []ratePart, strategies Strategies) GroupPerformance {
	var total Counts
	var sum Rates
	var latest *time.Time
	for _, p := range parts {
		total = total.add(p.Counts)
		sum.ConversionRate += p.ConversionRate
		sum.CallCompletionRate += p.CallCompletionRate
		sum.VisitCompletionRate += p.VisitCompletionRate
		sum.MeetingCompletionRate += p.MeetingCompletionRate
		sum.FollowUpCompletionRate += p.FollowUpCompletionRate
		if p.LastActivity != nil && (latest == nil || p.LastActivity.After(*latest)) {
			t := *p.LastActivity
			latest = &t
		}
	}

	ratio := ratesFromCounts(total)
	pick := func(metric RateMetric, meanSum, ratioValue float64) float64 {
		if strategies[metric] == RatioOfSums {
			return ratioValue
		}
		if n <= 0 {
			return 0
		}
		return clampRate(meanSum / float64(n))
	}

	rates := Rates{
		ConversionRate:        pick(RateConversion, sum.ConversionRate, ratio.ConversionRate),
		CallCompletionRate:    pick(RateCallCompletion, sum.CallCompletionRate, ratio.CallCompletionRate),
		VisitCompletionRate:   pick(RateVisitCompletion, sum.VisitCompletionRate, ratio.VisitCompletionRate),
		MeetingCompletionRate: pick(RateMeetingCompletion, sum.MeetingCompletionRate, ratio.MeetingCompletionRate),
	}
	if total.FollowUps.Tracked {
		rates.FollowUpCompletionRate = pick(RateFollowUpCompletion, sum.FollowUpCompletionRate, ratio.FollowUpCompletionRate)
	}

	return GroupPerformance{
		MemberCount:     n,
		Counts:          total,
		Rates:           rates,
		AverageDealSize: averageDealSize(total.TotalRevenue, total.ContractCount),
		LastActivity:    latest,
	}
}

// LastActivityLabel formats the latest member activity or the "No activity" sentinel.
func (g GroupPerformance) LastActivityLabel() string {
	return activityLabel(g.LastActivity)
}
