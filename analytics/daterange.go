// ABOUTME: Date range resolution for report timeframes
// ABOUTME: Maps named timeframes or custom bounds to inclusive [start, end] pairs
package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownTimeframe = errors.New("unknown timeframe")
	ErrInvalidRange     = errors.New("start date is after end date")
)

// Timeframe is a named reporting window.
type Timeframe string

const (
	TimeframeToday       Timeframe = "today"
	TimeframeWeek        Timeframe = "week"
	TimeframeMonth       Timeframe = "month"
	TimeframeLast7Days   Timeframe = "last7days"
	TimeframeLast30Days  Timeframe = "last30days"
	TimeframeLast3Months Timeframe = "last3months"
	TimeframeLast6Months Timeframe = "last6months"
	TimeframeYearToDate  Timeframe = "yearToDate"
	TimeframeCustom      Timeframe = "custom"
)

// Timeframes lists every accepted timeframe.
var Timeframes = []Timeframe{
	TimeframeToday,
	TimeframeWeek,
	TimeframeMonth,
	TimeframeLast7Days,
	TimeframeLast30Days,
	TimeframeLast3Months,
	TimeframeLast6Months,
	TimeframeYearToDate,
	TimeframeCustom,
}

// ParseTimeframe validates a timeframe name.
func ParseTimeframe(s string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if string(tf) == s {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeframe, s)
}

// WeekStart selects the first day of the "week" timeframe.
type WeekStart int

const (
	// WeekStartsMonday is the ISO week.
	WeekStartsMonday WeekStart = iota
	// WeekStartsSunday matches the legacy day-of-week subtraction.
	WeekStartsSunday
)

// ParseWeekStart accepts "monday" or "sunday".
func ParseWeekStart(s string) (WeekStart, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monday":
		return WeekStartsMonday, nil
	case "sunday":
		return WeekStartsSunday, nil
	}
	return WeekStartsMonday, fmt.Errorf("unknown week start: %q", s)
}

// CustomRange carries date-only bounds (YYYY-MM-DD). Empty means unbounded.
type CustomRange struct {
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// DateRange is inclusive on both ends. A nil bound is unbounded.
type DateRange struct {
	Start *time.Time `json:"startDate"`
	End   *time.Time `json:"endDate"`
}

// Bounded reports whether either end limits the range.
func (r DateRange) Bounded() bool {
	return r.Start != nil || r.End != nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Includes applies the range to a raw record date. Unbounded ranges accept
// everything; bounded ranges reject dates that do not parse.
func (r DateRange) Includes(raw string, loc *time.Location) bool {
	if !r.Bounded() {
		return true
	}
	t, ok := ParseDate(raw, loc)
	if !ok {
		return false
	}
	return r.Contains(t)
}

// StartLabel returns the start date as YYYY-MM-DD, or "all".
func (r DateRange) StartLabel() string {
	if r.Start == nil {
		return "all"
	}
	return r.Start.Format(dateOnly)
}

// EndLabel returns the end date as YYYY-MM-DD, or "all".
func (r DateRange) EndLabel() string {
	if r.End == nil {
		return "all"
	}
	return r.End.Format(dateOnly)
}

func (r DateRange) String() string {
	if !r.Bounded() {
		return "All time"
	}
	return r.StartLabel() + " to " + r.EndLabel()
}

const dateOnly = "2006-01-02"

// Resolve turns a timeframe into a concrete range relative to now.
// It is evaluated on every call; callers must not cache the result across days.
func Resolve(tf Timeframe, custom *CustomRange, now time.Time, weekStart WeekStart) (DateRange, error) {
	today := startOfDay(now)
	endToday := endOfDay(now)

	switch tf {
	case TimeframeToday:
		return span(today, endToday), nil
	case TimeframeWeek:
		offset := int(now.Weekday())
		if weekStart == WeekStartsMonday {
			offset = (offset + 6) % 7
		}
		start := today.AddDate(0, 0, -offset)
		return span(start, endOfDay(start.AddDate(0, 0, 6))), nil
	case TimeframeMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location())
		return span(start, endOfDay(last)), nil
	case TimeframeLast7Days:
		return span(today.AddDate(0, 0, -7), endToday), nil
	case TimeframeLast30Days:
		return span(today.AddDate(0, 0, -30), endToday), nil
	case TimeframeLast3Months:
		return span(today.AddDate(0, -3, 0), endToday), nil
	case TimeframeLast6Months:
		return span(today.AddDate(0, -6, 0), endToday), nil
	case TimeframeYearToDate:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return span(start, endToday), nil
	case TimeframeCustom:
		return resolveCustom(custom, now.Location())
	}
	return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownTimeframe, string(tf))
}

func resolveCustom(custom *CustomRange, loc *time.Location) (DateRange, error) {
	var r DateRange
	if custom == nil {
		return r, nil
	}
	if t, err := time.ParseInLocation(dateOnly, strings.TrimSpace(custom.StartDate), loc); err == nil {
		r.Start = &t
	}
	if t, err := time.ParseInLocation(dateOnly, strings.TrimSpace(custom.EndDate), loc); err == nil {
		end := endOfDay(t)
		r.End = &end
	}
	if r.Start != nil && r.End != nil && r.Start.After(*r.End) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

func span(start, end time.Time) DateRange {
	return DateRange{Start: &start, End: &end}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dateOnly,
}

// ParseDate parses a record date in any of the formats the CRM emits.
// Zone-less values are read in loc. The bool is false for empty or
// malformed input; such records count as having no date.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
