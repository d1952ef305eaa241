package timetable

import (
	"fmt"
	"strings"

	"github.com/attendly/attendly-api/internal/models"
)

// NormalizeResult carries the per-subject groups plus non-fatal findings
// surfaced to the user during review.
type NormalizeResult struct {
	Groups   []models.SubjectGroup
	Warnings []string
}

// Normalize canonicalizes a flat candidate list into per-subject groups.
// Candidates are grouped by trimmed, lower-cased subject name; within a
// group, candidates sharing a (start, end, location) triple are merged into
// one slot whose day set unions in insertion order. The last non-empty
// course code seen within a group wins. Blank subjects are dropped.
func Normalize(candidates []models.CandidateSlot) NormalizeResult {
	var result NormalizeResult
	index := map[string]int{}

	for _, cand := range candidates {
		name := strings.TrimSpace(cand.Subject)
		if name == "" {
			continue
		}
		key := models.SubjectKey(name)

		pos, ok := index[key]
		if !ok {
			pos = len(result.Groups)
			index[key] = pos
			result.Groups = append(result.Groups, models.SubjectGroup{Key: key, Name: name})
		}
		group := &result.Groups[pos]

		if code := strings.TrimSpace(cand.CourseCode); code != "" {
			group.CourseCode = code
		}

		incoming := models.Slot{
			Days:      []string{cand.Day},
			StartTime: cand.StartTime,
			EndTime:   cand.EndTime,
			Location:  cand.Location,
		}
		merged := false
		for i := range group.Slots {
			if group.Slots[i].TimeKey() == incoming.TimeKey() {
				group.Slots[i].AddDays(incoming.Days)
				merged = true
				break
			}
		}
		if !merged {
			group.Slots = append(group.Slots, incoming)
		}
	}

	for _, group := range result.Groups {
		for _, slot := range group.Slots {
			if slot.Inverted() {
				result.Warnings = append(result.Warnings, fmt.Sprintf(
					"%s: slot %s-%s does not end after it starts", group.Name, slot.StartTime, slot.EndTime))
			}
		}
	}

	return result
}

// MergeSlots folds freshly normalized slots into a course's existing slot
// list: an incoming slot whose (start, end, location) triple matches an
// existing one contributes its days to that slot; otherwise it is appended.
// The existing list is not mutated.
func MergeSlots(existing, incoming models.SlotList) models.SlotList {
	merged := make(models.SlotList, len(existing))
	for i, slot := range existing {
		merged[i] = models.Slot{
			Days:      append([]string(nil), slot.Days...),
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Location:  slot.Location,
		}
	}

	for _, slot := range incoming {
		matched := false
		for i := range merged {
			if merged[i].TimeKey() == slot.TimeKey() {
				merged[i].AddDays(slot.Days)
				matched = true
				break
			}
		}
		if !matched {
			merged = append(merged, models.Slot{
				Days:      append([]string(nil), slot.Days...),
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Location:  slot.Location,
			})
		}
	}

	return merged
}
