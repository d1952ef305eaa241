package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-api/internal/models"
)

func TestNormalizeMergesSameTripleAcrossDays(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "Physics", Day: "Mon", StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
		{Subject: "Physics", Day: "Wed", StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1)
	group := result.Groups[0]
	assert.Equal(t, "physics", group.Key)
	assert.Equal(t, "Physics", group.Name)
	require.Len(t, group.Slots, 1)
	assert.Equal(t, []string{"Mon", "Wed"}, group.Slots[0].Days)
}

func TestNormalizeKeepsDistinctTriplesApart(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "MAT101", Day: "Mon", StartTime: "09:00", EndTime: "10:00", Location: "201"},
		{Subject: "MAT101", Day: "Tue", StartTime: "09:00", EndTime: "10:00", Location: "202"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1)
	require.Len(t, result.Groups[0].Slots, 2, "different locations must stay separate slots")
}

func TestNormalizeNoDuplicateTriplesInOutput(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "CHE105", Day: "Mon", StartTime: "10:00", EndTime: "11:00", Location: "301"},
		{Subject: "CHE105", Day: "Mon", StartTime: "10:00", EndTime: "11:00", Location: "301"},
		{Subject: "CHE105", Day: "Fri", StartTime: "10:00", EndTime: "11:00", Location: "301"},
		{Subject: "CHE105", Day: "Fri", StartTime: "14:00", EndTime: "15:00", Location: "301"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1)
	seen := map[string]bool{}
	for _, slot := range result.Groups[0].Slots {
		require.False(t, seen[slot.TimeKey()], "duplicate (start, end, location) triple in output")
		seen[slot.TimeKey()] = true
	}
	require.Len(t, result.Groups[0].Slots, 2)
	assert.Equal(t, []string{"Mon", "Fri"}, result.Groups[0].Slots[0].Days)
}

func TestNormalizeSubjectKeyIsCaseAndSpaceInsensitive(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "  Physics ", Day: "Mon", StartTime: "09:00", EndTime: "10:00"},
		{Subject: "PHYSICS", Day: "Tue", StartTime: "09:00", EndTime: "10:00"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Physics", result.Groups[0].Name, "first seen spelling is kept")
	assert.Equal(t, []string{"Mon", "Tue"}, result.Groups[0].Slots[0].Days)
}

func TestNormalizeLastNonEmptyCourseCodeWins(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "Physics", CourseCode: "PHY101", Day: "Mon", StartTime: "09:00", EndTime: "10:00"},
		{Subject: "Physics", CourseCode: "", Day: "Tue", StartTime: "09:00", EndTime: "10:00"},
		{Subject: "Physics", CourseCode: "PHY102", Day: "Wed", StartTime: "09:00", EndTime: "10:00"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "PHY102", result.Groups[0].CourseCode)
}

func TestNormalizeDropsBlankSubjects(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "   ", Day: "Mon", StartTime: "09:00", EndTime: "10:00"},
		{Subject: "", Day: "Tue", StartTime: "09:00", EndTime: "10:00"},
	}

	result := Normalize(candidates)
	assert.Empty(t, result.Groups)
}

func TestNormalizeFlagsInvertedSlots(t *testing.T) {
	candidates := []models.CandidateSlot{
		{Subject: "Physics", Day: "Mon", StartTime: "11:00", EndTime: "10:00"},
	}

	result := Normalize(candidates)
	require.Len(t, result.Groups, 1, "inverted slots are flagged, not dropped")
	require.Len(t, result.Groups[0].Slots, 1)
	assert.NotEmpty(t, result.Warnings)
}

func TestMergeSlotsUnionsDaysOnTripleMatch(t *testing.T) {
	existing := models.SlotList{
		{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}
	incoming := models.SlotList{
		{Days: []string{"Tue"}, StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}

	merged := MergeSlots(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"Mon", "Tue"}, merged[0].Days)
}

func TestMergeSlotsAppendsOnDistinctTriple(t *testing.T) {
	existing := models.SlotList{
		{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}
	incoming := models.SlotList{
		{Days: []string{"Tue"}, StartTime: "14:00", EndTime: "15:00", Location: "Room2"},
	}

	merged := MergeSlots(existing, incoming)
	require.Len(t, merged, 2)
}

func TestMergeSlotsDoesNotMutateInputs(t *testing.T) {
	existing := models.SlotList{
		{Days: []string{"Mon"}, StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}
	incoming := models.SlotList{
		{Days: []string{"Tue"}, StartTime: "09:00", EndTime: "10:00", Location: "Room1"},
	}

	_ = MergeSlots(existing, incoming)
	assert.Equal(t, []string{"Mon"}, existing[0].Days)
	assert.Equal(t, []string{"Tue"}, incoming[0].Days)
}
