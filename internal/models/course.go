package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday abbreviations accepted in slot day sets, Monday first.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ValidWeekday reports whether the token is one of the known abbreviations.
func ValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// SubjectKey derives the reconciliation identity key from a course or
// subject name: trimmed and lower-cased.
func SubjectKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Slot is a recurring weekly time block belonging to a course.
type Slot struct {
	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location,omitempty"`
}

// TimeKey identifies slots that must be merged: same start, end and location.
func (s Slot) TimeKey() string {
	return s.StartTime + "-" + s.EndTime + "-" + s.Location
}

// Inverted reports a start time that does not precede the end time.
// Such slots are kept and surfaced as warnings, never dropped.
func (s Slot) Inverted() bool {
	return s.StartTime >= s.EndTime
}

// HasDay reports whether the slot meets on the given weekday abbreviation.
func (s Slot) HasDay(day string) bool {
	for _, d := range s.Days {
		if d == day {
			return true
		}
	}
	return false
}

// AddDays unions the given days into the slot, preserving insertion order.
func (s *Slot) AddDays(days []string) {
	for _, day := range days {
		if !s.HasDay(day) {
			s.Days = append(s.Days, day)
		}
	}
}

// SlotList stores course slots as a JSONB column.
type SlotList []Slot

// Value implements driver.Valuer for JSONB storage.
func (l SlotList) Value() (driver.Value, error) {
	if l == nil {
		l = SlotList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *SlotList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported slot list source type %T", src)
	}
}

// Course is a tracked subject with its weekly meeting slots.
type Course struct {
	ID               string    `db:"id" json:"id"`
	OwnerID          string    `db:"owner_id" json:"owner_id"`
	Name             string    `db:"name" json:"name"`
	CourseCode       string    `db:"course_code" json:"course_code,omitempty"`
	Professor        string    `db:"professor" json:"professor,omitempty"`
	Slots            SlotList  `db:"slots" json:"slots"`
	TargetPercentage int       `db:"target_percentage" json:"target_percentage"`
	Color            string    `db:"color" json:"color,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTargetPercentage applies to newly created courses.
const DefaultTargetPercentage = 75

// Key returns the course's reconciliation identity key.
func (c Course) Key() string {
	return SubjectKey(c.Name)
}

// MeetsOn reports whether any slot of the course includes the weekday of
// the given date. A course without slots matches no date.
func (c Course) MeetsOn(date time.Time) bool {
	day := date.Weekday().String()
	if len(day) > 3 {
		day = day[:3]
	}
	for _, slot := range c.Slots {
		if slot.HasDay(day) {
			return true
		}
	}
	return false
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Name             string   `json:"name" validate:"required"`
	CourseCode       string   `json:"course_code"`
	Professor        string   `json:"professor"`
	Slots            SlotList `json:"slots" validate:"dive"`
	TargetPercentage *int     `json:"target_percentage" validate:"omitempty,min=1,max=100"`
	Color            string   `json:"color"`
}
