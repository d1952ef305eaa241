package models

import "time"

// AttendanceStatus represents the status for attendance marks.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// AttendanceMark records presence for one course on one calendar date.
// At most one mark exists per (owner, course, date); a repeat mark for the
// same triple updates the stored one.
type AttendanceMark struct {
	ID        string           `db:"id" json:"id"`
	OwnerID   string           `db:"owner_id" json:"owner_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// MarkAttendanceRequest is the payload for recording a mark.
type MarkAttendanceRequest struct {
	CourseID string           `json:"course_id" validate:"required"`
	Date     string           `json:"date" validate:"required,datetime=2006-01-02"`
	Status   AttendanceStatus `json:"status" validate:"required"`
	Notes    *string          `json:"notes"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	CourseID  string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortOrder string
}
