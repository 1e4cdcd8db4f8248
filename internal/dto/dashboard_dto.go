package dto

import "time"

// StudentDashboardResponse aggregates assignment progress for a student.
type StudentDashboardResponse struct {
	Summary     ProgressSummary      `json:"summary"`
	Assignments []AssignmentProgress `json:"assignments"`
}

// ProgressSummary captures aggregated statistics for the dashboard.
type ProgressSummary struct {
	TotalAssignments int     `json:"total_assignments"`
	Submitted        int     `json:"submitted"`
	Approved         int     `json:"approved"`
	Rejected         int     `json:"rejected"`
	Pending          int     `json:"pending"`
	Overdue          int     `json:"overdue"`
	AverageScore     float64 `json:"average_score"`
	CompletionRate   float64 `json:"completion_rate"`
}

// AssignmentProgress describes one assignment relative to a student.
type AssignmentProgress struct {
	AssignmentID uint      `json:"assignment_id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Deadline     time.Time `json:"deadline"`
	Status       string    `json:"status"`
	SubmissionID *uint     `json:"submission_id"`
	Score        *float64  `json:"score"`
	Feedback     string    `json:"feedback"`
	UpdatedAt    time.Time `json:"updated_at"`
	Overdue      bool      `json:"overdue"`
}
