package service

import (
	"context"
	"time"
)

// TransitionEvent describes one successful status change of a submission.
// The core emits these best-effort; delivery is the notification
// collaborator's concern, and a publish failure never fails the transition.
type TransitionEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// TransitionPublisher consumes submission transition events.
type TransitionPublisher interface {
	PublishTransition(ctx context.Context, event TransitionEvent) error
}
