// Package timetable turns unstructured timetable input into normalized
// per-subject schedule groups. The parser is a pure function over OCR text
// so it can be tested against fixed transcripts without an OCR engine.
package timetable

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/attendly/attendly-api/internal/models"
)

var (
	timeSlotRegex = regexp.MustCompile(`(?i)(\d{1,2})\s+TO\s+(\d{1,2})`)
	subjectRegex  = regexp.MustCompile(`\b[A-Z]{2,}[0-9]*(?:-[A-Z0-9]+)*\b`)
	roomRegex     = regexp.MustCompile(`\b\d{3}\b`)
)

// Structural words that look like subject codes but never are. Day labels
// belong here too: they mark rows, not subjects.
var structuralTokens = map[string]struct{}{
	"BREAK": {}, "DIV": {}, "VJR": {}, "VRD": {}, "NDG": {}, "JK": {},
	"DB": {}, "STB": {}, "PW": {}, "SDT": {}, "EM": {}, "SM": {},
	"FLOOR": {}, "ROOM": {}, "TO": {},
	"MONDAY": {}, "TUESDAY": {}, "WEDNESDAY": {}, "THURSDAY": {},
	"FRIDAY": {}, "SATURDAY": {}, "SUNDAY": {},
}

var fallbackBlacklist = map[string]struct{}{
	"BREAK": {}, "DIV": {}, "ROOM": {}, "FLOOR": {}, "TIME": {},
	"TABLE": {}, "SEMESTER": {}, "UNIVERSE": {}, "TO": {},
}

var dayNames = []struct {
	full string
	abbr string
}{
	{"monday", "Mon"},
	{"tuesday", "Tue"},
	{"wednesday", "Wed"},
	{"thursday", "Thu"},
	{"friday", "Fri"},
	{"saturday", "Sat"},
	{"sunday", "Sun"},
}

const (
	defaultStartTime = "09:00"
	defaultEndTime   = "10:00"
)

// The lines below a day keyword that are considered part of its row block.
const dayBlockWindow = 5

type timeRange struct {
	start string
	end   string
}

// Parse extracts candidate slots from a raw OCR text blob. It never fails:
// malformed input yields an empty slice at worst. Over- and under-extraction
// are expected; results are surfaced for user review before commit.
func Parse(text string) []models.CandidateSlot {
	lines := nonBlankLines(text)

	// A header line with three or more "H TO H" tokens defines the ordered
	// time grid. When several lines qualify, the last one wins.
	var grid []timeRange
	for _, line := range lines {
		matches := timeSlotRegex.FindAllStringSubmatch(line, -1)
		if len(matches) >= 3 {
			grid = grid[:0]
			for _, m := range matches {
				grid = append(grid, timeRange{start: padHour(m[1]), end: padHour(m[2])})
			}
		}
	}

	var candidates []models.CandidateSlot
	for i, line := range lines {
		lower := strings.ToLower(line)
		for _, day := range dayNames {
			if !strings.Contains(lower, day.full) {
				continue
			}

			end := i + dayBlockWindow
			if end > len(lines) {
				end = len(lines)
			}
			block := strings.Join(lines[i:end], " ")

			subjects := extractSubjects(block)
			rooms := roomRegex.FindAllString(block, -1)

			for idx, subject := range subjects {
				slot := timeRange{start: defaultStartTime, end: defaultEndTime}
				if idx < len(grid) {
					slot = grid[idx]
				}
				candidates = append(candidates, models.CandidateSlot{
					Subject:    subject,
					CourseCode: subject,
					Day:        day.abbr,
					StartTime:  slot.start,
					EndTime:    slot.end,
					Location:   pickRoom(rooms, idx),
				})
			}
			break
		}
	}

	if len(candidates) == 0 {
		candidates = parseLoose(lines)
	}

	return candidates
}

// parseLoose is the second strategy, attempted only when day detection found
// nothing: the whole text is treated as one ungrouped pool of tokens and
// every surviving subject is scheduled on all five weekdays.
func parseLoose(lines []string) []models.CandidateSlot {
	allText := strings.Join(lines, " ")

	var subjects []string
	seen := map[string]struct{}{}
	for _, token := range subjectRegex.FindAllString(allText, -1) {
		if !looseSubjectOK(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		subjects = append(subjects, token)
	}

	var rooms []string
	for _, room := range roomRegex.FindAllString(allText, -1) {
		if room != "000" {
			rooms = append(rooms, room)
		}
	}

	var candidates []models.CandidateSlot
	for idx, subject := range subjects {
		location := ""
		if len(rooms) > 0 {
			location = rooms[idx%len(rooms)]
		}
		for _, day := range models.Weekdays[:5] {
			candidates = append(candidates, models.CandidateSlot{
				Subject:    subject,
				CourseCode: subject,
				Day:        day,
				StartTime:  defaultStartTime,
				EndTime:    defaultEndTime,
				Location:   location,
			})
		}
	}
	return candidates
}

func looseSubjectOK(token string) bool {
	if len(token) < 2 || len(token) > 20 {
		return false
	}
	if _, blocked := fallbackBlacklist[strings.ToUpper(token)]; blocked {
		return false
	}
	hasLetter := strings.ContainsAny(token, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	if !hasLetter {
		return false
	}
	// Long unbroken uppercase runs without digits are treated as noise
	// words rather than course codes.
	if len(token) > 4 && !strings.Contains(token, "-") && !strings.ContainsAny(token, "0123456789") {
		return false
	}
	return true
}

func extractSubjects(block string) []string {
	var subjects []string
	seen := map[string]struct{}{}
	for _, token := range subjectRegex.FindAllString(block, -1) {
		if len(token) < 2 {
			continue
		}
		if _, structural := structuralTokens[token]; structural {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		subjects = append(subjects, token)
	}
	return subjects
}

func pickRoom(rooms []string, idx int) string {
	if idx < len(rooms) {
		return rooms[idx]
	}
	if len(rooms) > 0 {
		return rooms[0]
	}
	return ""
}

func padHour(raw string) string {
	hour, err := strconv.Atoi(raw)
	if err != nil {
		return defaultStartTime
	}
	return fmt.Sprintf("%02d:00", hour)
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
