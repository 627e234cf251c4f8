// ABOUTME: Tests for timeframe resolution and tolerant date parsing
// ABOUTME: Pins "now" so every named range resolves to fixed bounds
package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayEnd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, 999000000, time.UTC)
}

func TestResolveToday(t *testing.T) {
	r, err := Resolve(TimeframeToday, nil, fixedNow, WeekStartsMonday)
	require.NoError(t, err)
	require.NotNil(t, r.Start)
	require.NotNil(t, r.End)

	assert.Equal(t, "2024-03-15T00:00:00.000", r.Start.Format("2006-01-02T15:04:05.000"))
	assert.Equal(t, "2024-03-15T23:59:59.999", r.End.Format("2006-01-02T15:04:05.000"))
}

func TestResolveNamedRanges(t *testing.T) {
	cases := []struct {
		tf    Timeframe
		week  WeekStart
		start time.Time
		end   time.Time
	}{
		{TimeframeWeek, WeekStartsMonday, day(2024, 3, 11), dayEnd(2024, 3, 17)},
		{TimeframeWeek, WeekStartsSunday, day(2024, 3, 10), dayEnd(2024, 3, 16)},
		{TimeframeMonth, WeekStartsMonday, day(2024, 3, 1), dayEnd(2024, 3, 31)},
		{TimeframeLast7Days, WeekStartsMonday, day(2024, 3, 8), dayEnd(2024, 3, 15)},
		{TimeframeLast30Days, WeekStartsMonday, day(2024, 2, 14), dayEnd(2024, 3, 15)},
		{TimeframeLast3Months, WeekStartsMonday, day(2023, 12, 15), dayEnd(2024, 3, 15)},
		{TimeframeLast6Months, WeekStartsMonday, day(2023, 9, 15), dayEnd(2024, 3, 15)},
		{TimeframeYearToDate, WeekStartsMonday, day(2024, 1, 1), dayEnd(2024, 3, 15)},
	}

	for _, tc := range cases {
		t.Run(string(tc.tf), func(t *testing.T) {
			r, err := Resolve(tc.tf, nil, fixedNow, tc.week)
			require.NoError(t, err)
			assert.True(t, tc.start.Equal(*r.Start), "start: got %s", r.Start)
			assert.True(t, tc.end.Equal(*r.End), "end: got %s", r.End)
		})
	}
}

func TestResolveWeekOnSunday(t *testing.T) {
	sunday := time.Date(2024, 3, 17, 9, 0, 0, 0, time.UTC)

	iso, err := Resolve(TimeframeWeek, nil, sunday, WeekStartsMonday)
	require.NoError(t, err)
	assert.True(t, day(2024, 3, 11).Equal(*iso.Start))

	legacy, err := Resolve(TimeframeWeek, nil, sunday, WeekStartsSunday)
	require.NoError(t, err)
	assert.True(t, day(2024, 3, 17).Equal(*legacy.Start))
}

func TestResolveBoundsAreOrdered(t *testing.T) {
	for _, tf := range Timeframes {
		if tf == TimeframeCustom {
			continue
		}
		for _, ws := range []WeekStart{WeekStartsMonday, WeekStartsSunday} {
			r, err := Resolve(tf, nil, fixedNow, ws)
			require.NoError(t, err)
			assert.False(t, r.Start.After(*r.End), "%s start after end", tf)
		}
	}
}

func TestResolveCustom(t *testing.T) {
	r, err := Resolve(TimeframeCustom, &CustomRange{StartDate: "2024-01-10", EndDate: "2024-02-20"}, fixedNow, WeekStartsMonday)
	require.NoError(t, err)
	assert.True(t, day(2024, 1, 10).Equal(*r.Start))
	assert.True(t, dayEnd(2024, 2, 20).Equal(*r.End))
	assert.Equal(t, "2024-01-10 to 2024-02-20", r.String())

	open, err := Resolve(TimeframeCustom, &CustomRange{EndDate: "2024-02-20"}, fixedNow, WeekStartsMonday)
	require.NoError(t, err)
	assert.Nil(t, open.Start)
	assert.NotNil(t, open.End)
	assert.Equal(t, "all", open.StartLabel())

	none, err := Resolve(TimeframeCustom, nil, fixedNow, WeekStartsMonday)
	require.NoError(t, err)
	assert.False(t, none.Bounded())
	assert.Equal(t, "All time", none.String())

	_, err = Resolve(TimeframeCustom, &CustomRange{StartDate: "2024-03-01", EndDate: "2024-02-01"}, fixedNow, WeekStartsMonday)
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestResolveUnknownTimeframe(t *testing.T) {
	_, err := Resolve(Timeframe("fortnight"), nil, fixedNow, WeekStartsMonday)
	assert.True(t, errors.Is(err, ErrUnknownTimeframe))

	_, err = ParseTimeframe("fortnight")
	assert.True(t, errors.Is(err, ErrUnknownTimeframe))

	tf, err := ParseTimeframe("yearToDate")
	require.NoError(t, err)
	assert.Equal(t, TimeframeYearToDate, tf)
}

func TestDateRangeContainsIsInclusive(t *testing.T) {
	r, err := Resolve(TimeframeToday, nil, fixedNow, WeekStartsMonday)
	require.NoError(t, err)

	assert.True(t, r.Contains(*r.Start))
	assert.True(t, r.Contains(*r.End))
	assert.False(t, r.Contains(r.End.Add(time.Millisecond)))
	assert.False(t, r.Contains(r.Start.Add(-time.Millisecond)))
}

func TestParseDate(t *testing.T) {
	valid := []string{
		"2024-03-15",
		"2024-03-15T10:30:00Z",
		"2024-03-15T10:30:00.123Z",
		"2024-03-15T10:30:00+02:00",
		"2024-03-15T10:30:00",
		"2024-03-15 10:30:00",
	}
	for _, raw := range valid {
		_, ok := ParseDate(raw, time.UTC)
		assert.True(t, ok, raw)
	}

	for _, raw := range []string{"", "N/A", "15/03/2024", "soon"} {
		_, ok := ParseDate(raw, time.UTC)
		assert.False(t, ok, raw)
	}
}

func TestIncludesTreatsMalformedAsAbsent(t *testing.T) {
	r, err := Resolve(TimeframeMonth, nil, fixedNow, WeekStartsMonday)
	require.NoError(t, err)

	assert.True(t, r.Includes("2024-03-02", time.UTC))
	assert.False(t, r.Includes("N/A", time.UTC))
	assert.True(t, DateRange{}.Includes("N/A", time.UTC))
}

func TestParseWeekStart(t *testing.T) {
	ws, err := ParseWeekStart("Sunday")
	require.NoError(t, err)
	assert.Equal(t, WeekStartsSunday, ws)

	ws, err = ParseWeekStart("")
	require.NoError(t, err)
	assert.Equal(t, WeekStartsMonday, ws)

	_, err = ParseWeekStart("friday")
	assert.Error(t, err)
}
