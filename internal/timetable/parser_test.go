package timetable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-api/internal/models"
)

func TestParseTimeGridWithDayRows(t *testing.T) {
	text := strings.Join([]string{
		"TIMETABLE 9 TO 10 10 TO 11 11 TO 12",
		"MONDAY MAT101 201",
		"TUESDAY MAT101 202",
	}, "\n")

	candidates := Parse(text)
	require.NotEmpty(t, candidates)

	byDay := map[string]models.CandidateSlot{}
	for _, c := range candidates {
		if c.Subject == "MAT101" {
			byDay[c.Day] = c
		}
	}

	mon, ok := byDay["Mon"]
	require.True(t, ok, "expected a Monday candidate for MAT101")
	assert.Equal(t, "09:00", mon.StartTime)
	assert.Equal(t, "10:00", mon.EndTime)
	assert.Equal(t, "201", mon.Location)

	tue, ok := byDay["Tue"]
	require.True(t, ok, "expected a Tuesday candidate for MAT101")
	assert.Equal(t, "202", tue.Location)
}

func TestParseLastHeaderWins(t *testing.T) {
	text := strings.Join([]string{
		"8 TO 9 9 TO 10 10 TO 11",
		"10 TO 11 11 TO 12 12 TO 13",
		"MONDAY PHY201",
	}, "\n")

	candidates := Parse(text)
	require.Len(t, candidates, 1)
	assert.Equal(t, "10:00", candidates[0].StartTime)
	assert.Equal(t, "11:00", candidates[0].EndTime)
}

func TestParseDropsStructuralTokens(t *testing.T) {
	text := strings.Join([]string{
		"9 TO 10 10 TO 11 11 TO 12",
		"MONDAY BREAK ROOM FLOOR CHE105 301",
	}, "\n")

	candidates := Parse(text)
	require.Len(t, candidates, 1)
	assert.Equal(t, "CHE105", candidates[0].Subject)
	assert.Equal(t, "301", candidates[0].Location)
}

func TestParseDefaultsWhenGridShorterThanSubjects(t *testing.T) {
	text := strings.Join([]string{
		"9 TO 10 10 TO 11 11 TO 12",
		"MONDAY AAA101 BBB102 CCC103 DDD104",
	}, "\n")

	candidates := Parse(text)
	require.Len(t, candidates, 4)
	// Fourth subject runs past the three-column grid.
	assert.Equal(t, "09:00", candidates[3].StartTime)
	assert.Equal(t, "10:00", candidates[3].EndTime)
}

func TestParseFallbackWithoutDayKeywords(t *testing.T) {
	text := "Semester 4 CSE201 Lab 305"

	candidates := Parse(text)
	require.Len(t, candidates, 5, "fallback schedules one candidate per weekday")
	for i, c := range candidates {
		assert.Equal(t, "CSE201", c.Subject)
		assert.Equal(t, models.Weekdays[i], c.Day)
		assert.Equal(t, "09:00", c.StartTime)
		assert.Equal(t, "10:00", c.EndTime)
		assert.Equal(t, "305", c.Location)
	}
}

func TestParseFallbackExcludesNoiseWords(t *testing.T) {
	text := "SEMESTER TIMETABLE UNIVERSE CSE201 000"

	candidates := Parse(text)
	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.Equal(t, "CSE201", c.Subject)
		assert.Empty(t, c.Location, "000 is not a valid room")
	}
}

func TestParseNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"!!!@@@###",
		"1234567890",
		strings.Repeat("a ", 10000),
		"monday", // day keyword, no subjects
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() { Parse(input) })
	}
}

func TestParseEmptyInputYieldsNothing(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("   \n \t \n"))
}
