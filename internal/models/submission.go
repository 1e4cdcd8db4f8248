package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission holds the single active record a student has for an assignment.
// Resubmission overwrites this record; a new row is never created for the
// same (student, assignment) pair.
type Submission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	AssignmentID uint           `gorm:"not null;uniqueIndex:idx_submission_owner" json:"assignment_id"`
	StudentID    uint           `gorm:"not null;uniqueIndex:idx_submission_owner" json:"student_id"`
	Status       string         `gorm:"size:32;not null" json:"status"`
	Content      string         `gorm:"type:text" json:"content"`
	Attachments  datatypes.JSON `gorm:"type:json" json:"attachments"`
	Score        *float64       `json:"score"`
	Feedback     string         `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time      `gorm:"not null" json:"submitted_at"`
	ReviewedAt   *time.Time     `json:"reviewed_at"`
	ReviewedBy   *uint          `json:"reviewed_by"`
	// Revision increments on every state mutation; writers compare-and-swap
	// against it so a losing concurrent writer fails instead of overwriting.
	Revision  uint      `gorm:"not null;default:0" json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Assignment Assignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
}

// Submission statuses. The absence of a record is the portal's "pending"
// state and is never stored.
const (
	// SubmissionStatusSubmitted indicates the student handed in work awaiting review.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusReviewing indicates a teacher opened the submission for review.
	SubmissionStatusReviewing = "reviewing"
	// SubmissionStatusApproved is terminal; the record can no longer be mutated.
	SubmissionStatusApproved = "approved"
	// SubmissionStatusRejected sends the work back for revision.
	SubmissionStatusRejected = "rejected"
)

// IsLocked reports whether the submission reached its terminal state.
func (s Submission) IsLocked() bool {
	return s.Status == SubmissionStatusApproved
}

// AcceptsResubmission reports whether a student may overwrite the record.
func (s Submission) AcceptsResubmission() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusRejected
}
