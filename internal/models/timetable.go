package models

import "time"

// CandidateSlot is a single-day slot guess produced by the timetable parser
// or by manual day-by-day entry, prior to normalization.
type CandidateSlot struct {
	Subject    string `json:"subject"`
	CourseCode string `json:"course_code,omitempty"`
	Day        string `json:"day"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location,omitempty"`
}

// SubjectGroup is the normalized schedule for one subject: candidates that
// share a (start, end, location) triple are merged into one slot with a
// unioned day set.
type SubjectGroup struct {
	Key        string   `json:"key"`
	Name       string   `json:"name"`
	CourseCode string   `json:"course_code,omitempty"`
	Slots      SlotList `json:"slots"`
}

// ManualSlotEntry is one day-by-day schedule row entered by hand.
type ManualSlotEntry struct {
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
	Day        string `json:"day" validate:"required"`
	StartTime  string `json:"start_time" validate:"required"`
	EndTime    string `json:"end_time" validate:"required"`
	Location   string `json:"location"`
}

// ManualImportRequest carries hand-entered schedule rows. Entries with a
// blank name are skipped rather than rejected.
type ManualImportRequest struct {
	Entries []ManualSlotEntry `json:"entries" validate:"required,min=1,dive"`
}

// Import sources.
const (
	ImportSourceOCR    = "ocr"
	ImportSourceManual = "manual"
)

// ImportProposal is a staged OCR import awaiting user confirmation.
type ImportProposal struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Source    string         `json:"source"`
	RawText   string         `json:"raw_text,omitempty"`
	ImagePath string         `json:"image_path,omitempty"`
	Groups    []SubjectGroup `json:"groups"`
	Warnings  []string       `json:"warnings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ImportResult summarises a committed reconciliation batch.
type ImportResult struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Courses  []Course `json:"courses"`
	Warnings []string `json:"warnings,omitempty"`
}
