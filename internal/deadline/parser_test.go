package deadline

import (
	"testing"
	"time"

	"github.com/wokaidabaoma/econ-site/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixed reference date: September 15, 2025.
var refDate = time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	return NewParser(refDate)
}

func TestParseRolling(t *testing.T) {
	tests := []string{"Rolling basis", "rolling", "Rolling admission", "ROLLING"}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			result := newTestParser().Parse(text)

			assert.Equal(t, model.DeadlineRolling, result.Type)
			require.Len(t, result.Rounds, 1)
			assert.Equal(t, "rolling", result.Rounds[0].ID)
			assert.True(t, result.Rounds[0].Deadline.After(refDate))
			assert.Equal(t, 2026, result.Rounds[0].Deadline.Year())
			assert.False(t, result.HasMultipleRounds)
			assert.Equal(t, text, result.OriginalText)
		})
	}
}

func TestParseOngoing(t *testing.T) {
	tests := []string{"november 2024 onwards", "ongoing", "Applications open", "continuous intake"}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			result := newTestParser().Parse(text)

			// "onwards" takes precedence over month-year matching.
			assert.Equal(t, model.DeadlineOngoing, result.Type)
			require.Len(t, result.Rounds, 1)
			assert.Equal(t, "ongoing", result.Rounds[0].ID)
			assert.True(t, result.Rounds[0].Deadline.After(refDate))
		})
	}
}

func TestParseMultiplePhases(t *testing.T) {
	result := newTestParser().Parse("phase1-10/12/25; phase2-11/30/25")

	assert.Equal(t, model.DeadlineMultiple, result.Type)
	assert.True(t, result.HasMultipleRounds)
	require.Len(t, result.Rounds, 2)

	assert.Equal(t, "phase1", result.Rounds[0].ID)
	assert.Equal(t, "Phase 1", result.Rounds[0].Name)
	assert.Equal(t, time.Date(2025, time.October, 12, 0, 0, 0, 0, time.UTC), result.Rounds[0].Deadline)
	assert.Equal(t, "phase2", result.Rounds[1].ID)
	assert.Equal(t, time.Date(2025, time.November, 30, 0, 0, 0, 0, time.UTC), result.Rounds[1].Deadline)
}

func TestParseMultiplePhasesSortedByDate(t *testing.T) {
	// Textual order does not match chronological order.
	result := newTestParser().Parse("round 2 - 1/15/26; round 1 - 11/1/25; round 3 - 3/1/26")

	require.Len(t, result.Rounds, 3)
	for i := 1; i < len(result.Rounds); i++ {
		assert.True(t, result.Rounds[i-1].Deadline.Before(result.Rounds[i].Deadline),
			"rounds must be sorted ascending by deadline")
	}
	assert.Equal(t, "round1", result.Rounds[0].ID)
}

func TestParseMultiplePhasesCountMatchesMarkers(t *testing.T) {
	tests := []struct {
		text  string
		count int
	}{
		{"phase1-10/12/25; phase2-11/30/25", 2},
		{"batch 1: 9/30/25, batch 2: 11/15/25, batch 3: 1/10/26", 3},
		{"tier1 10/1/25; tier2 12/1/25", 2},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result := newTestParser().Parse(tt.text)
			assert.Len(t, result.Rounds, tt.count)
		})
	}
}

func TestParseMultiplePhasesBareDateFallback(t *testing.T) {
	// Two round markers, but the dates carry no year so the marker pattern
	// cannot pair them up; the bare-date fallback numbers every date token
	// in order of appearance.
	result := newTestParser().Parse("round 1/round 2: 10/15, 12/15")

	assert.Equal(t, model.DeadlineMultiple, result.Type)
	require.Len(t, result.Rounds, 2)
	assert.Equal(t, "round1", result.Rounds[0].ID)
	assert.Equal(t, "Round 1", result.Rounds[0].Name)
	assert.Equal(t, time.Date(2025, time.October, 15, 0, 0, 0, 0, time.UTC), result.Rounds[0].Deadline)
	assert.Equal(t, time.Date(2025, time.December, 15, 0, 0, 0, 0, time.UTC), result.Rounds[1].Deadline)
}

func TestParseMarkersWithoutOrdinalsUnparsable(t *testing.T) {
	// "round one"/"round two" carry no numeric ordinal, so the text never
	// classifies as multi-phase and falls through to the placeholder.
	result := newTestParser().Parse("round one and round two, see website")

	assert.Equal(t, model.DeadlineSingle, result.Type)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, "unknown", result.Rounds[0].ID)
}

func TestParseSimpleBareDate(t *testing.T) {
	// Reference month is September. 6/1 is earlier in the year, so it rolls
	// into next year; 10/1 has not passed yet and stays in the current year.
	tests := []struct {
		text string
		want time.Time
	}{
		{"6/1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"10/1", time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)},
		{"9/30", time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			result := newTestParser().Parse(tt.text)

			assert.Equal(t, model.DeadlineSingle, result.Type)
			require.Len(t, result.Rounds, 1)
			assert.Equal(t, tt.want, result.Rounds[0].Deadline)
		})
	}
}

func TestParseSimpleDateRoundTrip(t *testing.T) {
	result := newTestParser().Parse("6/1")

	require.Len(t, result.Rounds, 1)
	d := result.Rounds[0].Deadline
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 1, d.Day())
}

func TestParseMonthYear(t *testing.T) {
	result := newTestParser().Parse("November 2024")

	assert.Equal(t, model.DeadlineSingle, result.Type)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, time.Date(2024, time.November, 28, 0, 0, 0, 0, time.UTC), result.Rounds[0].Deadline)
}

func TestParseInvalidCalendarDate(t *testing.T) {
	// 2/30 matches the simple-date shape but is not a real date; it must
	// neither crash nor produce a round claiming February 30.
	result := newTestParser().Parse("2/30")

	assert.Equal(t, model.DeadlineSingle, result.Type)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, "unknown", result.Rounds[0].ID)
	assert.Equal(t, "Deadline Pending", result.Rounds[0].Name)
	assert.Equal(t, "2/30", result.Rounds[0].Description)
}

func TestParseInvalidDateTokenSkippedInPhases(t *testing.T) {
	result := newTestParser().Parse("phase1-2/30/25; phase2-11/30/25")

	require.Len(t, result.Rounds, 1)
	assert.Equal(t, "phase2", result.Rounds[0].ID)
}

func TestParseUnparsable(t *testing.T) {
	result := newTestParser().Parse("check the website for details")

	assert.Equal(t, model.DeadlineSingle, result.Type)
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, "Deadline Pending", result.Rounds[0].Name)
	assert.Equal(t, "check the website for details", result.Rounds[0].Description)
	assert.Equal(t, 2026, result.Rounds[0].Deadline.Year())
}

func TestParseEmptyText(t *testing.T) {
	result := newTestParser().Parse("")

	assert.Equal(t, model.DeadlineSingle, result.Type)
	assert.Empty(t, result.Rounds)

	_, ok := result.EarliestRound()
	assert.False(t, ok)
}

func TestTwoDigitYearBase(t *testing.T) {
	result := newTestParser().Parse("phase1-10/12/25; phase2-11/30/99")

	require.Len(t, result.Rounds, 2)
	assert.Equal(t, 2025, result.Rounds[0].Deadline.Year())
	assert.Equal(t, 2099, result.Rounds[1].Deadline.Year())
}

func TestYearPolicyConfigurable(t *testing.T) {
	p := NewParserWithPolicy(refDate, YearPolicy{
		TwoDigitYearBase:      1900,
		RollForwardPastMonths: false,
	})

	result := p.Parse("6/1")
	require.Len(t, result.Rounds, 1)
	assert.Equal(t, 2025, result.Rounds[0].Deadline.Year())

	result = p.Parse("phase1-10/12/25; phase2-11/30/25")
	require.Len(t, result.Rounds, 2)
	assert.Equal(t, 1925, result.Rounds[0].Deadline.Year())
}

func TestRoundOptions(t *testing.T) {
	parsed := newTestParser().Parse("phase1-10/12/25; phase2-11/30/25")
	options := RoundOptions(parsed)

	require.Len(t, options, 2)
	assert.Equal(t, "phase1", options[0].Value)
	assert.Equal(t, "Phase 1 (10/12/2025)", options[0].Label)

	single := newTestParser().Parse("6/1")
	options = RoundOptions(single)
	require.Len(t, options, 1)
	assert.Equal(t, "Application Deadline", options[0].Label)
}

func TestEarliestRoundIsDefault(t *testing.T) {
	parsed := newTestParser().Parse("round 2 - 1/15/26; round 1 - 11/1/25")

	earliest, ok := parsed.EarliestRound()
	require.True(t, ok)
	assert.Equal(t, "round1", earliest.ID)
	assert.Equal(t, time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC), earliest.Deadline)
}
