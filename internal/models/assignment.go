package models

import "time"

// Assignment represents a published survey task definition. The registry is
// append-only: a correction is a superseding assignment, never an edit.
type Assignment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Type         string    `gorm:"size:32;not null" json:"type"`
	Deadline     time.Time `gorm:"not null" json:"deadline"`
	Instructions string    `gorm:"type:text" json:"instructions"`
	FileURL      string    `gorm:"size:512" json:"file_url"`
	PublishedAt  time.Time `gorm:"not null" json:"published_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Submissions  []Submission
}

const (
	// AssignmentTypeThemeSelection asks students to pick a survey theme.
	AssignmentTypeThemeSelection = "theme_selection"
	// AssignmentTypeProcessMaterial collects mid-project material.
	AssignmentTypeProcessMaterial = "process_material"
	// AssignmentTypeFinalReport collects the final survey report.
	AssignmentTypeFinalReport = "final_report"
)

// IsPastDeadline returns true when the deadline has already passed.
func (a Assignment) IsPastDeadline(reference time.Time) bool {
	return reference.After(a.Deadline)
}
