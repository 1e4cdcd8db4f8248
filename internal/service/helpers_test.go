package service

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
	"github.com/luoxin-dev/survey-portal-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeUploader struct {
	fail error
}

func (u *fakeUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if u.fail != nil {
		return "", u.fail
	}
	return "https://cdn.example.com/" + name, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []TransitionEvent
	fail   error
}

func (p *recordingPublisher) PublishTransition(_ context.Context, event TransitionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) recorded() []TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]TransitionEvent(nil), p.events...)
}

type fakeAssignmentRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Assignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{items: map[uint]models.Assignment{}}
}

func (r *fakeAssignmentRepo) List(_ context.Context) ([]models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignments := make([]models.Assignment, 0, len(r.items))
	for _, assignment := range r.items {
		assignments = append(assignments, assignment)
	}
	return assignments, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id uint) (models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.items[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *fakeAssignmentRepo) Create(_ context.Context, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	assignment.ID = r.nextID
	r.items[assignment.ID] = *assignment
	return nil
}

// fakeSubmissionRepo mirrors the revision compare-and-swap contract of the
// real repository so concurrency behavior can be exercised in-memory.
type fakeSubmissionRepo struct {
	mu     sync.Mutex
	nextID uint
	items  map[uint]models.Submission
	// afterGet runs once after the next GetByID, letting tests interleave a
	// competing write between read and compare-and-swap.
	afterGet func()
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{items: map[uint]models.Submission{}}
}

func (r *fakeSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	submissions := make([]models.Submission, 0, len(r.items))
	for _, submission := range r.items {
		if filter.AssignmentID != nil && submission.AssignmentID != *filter.AssignmentID {
			continue
		}
		if filter.StudentID != nil && submission.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != nil && submission.Status != *filter.Status {
			continue
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}

func (r *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	r.mu.Lock()
	submission, ok := r.items[id]
	hook := r.afterGet
	r.afterGet = nil
	r.mu.Unlock()

	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	if hook != nil {
		hook()
	}
	return submission, nil
}

func (r *fakeSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID uint) (models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, submission := range r.items {
		if submission.AssignmentID == assignmentID && submission.StudentID == studentID {
			return submission, nil
		}
	}
	return models.Submission{}, gorm.ErrRecordNotFound
}

func (r *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	submission.ID = r.nextID
	r.items[submission.ID] = *submission
	return nil
}

func (r *fakeSubmissionRepo) UpdateWithRevision(_ context.Context, submission *models.Submission, expectedRevision uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[submission.ID]
	if !ok || stored.Revision != expectedRevision {
		return repository.ErrRevisionConflict
	}
	submission.Revision = expectedRevision + 1
	r.items[submission.ID] = *submission
	return nil
}

// bumpRevision simulates another writer winning a race on the record.
func (r *fakeSubmissionRepo) bumpRevision(id uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.items[id]
	stored.Revision++
	r.items[id] = stored
}
