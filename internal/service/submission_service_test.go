package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(body, writer.Boundary())
	form, err := reader.ReadForm(int64(body.Len()) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files"][0]
}

type submissionFixture struct {
	service     SubmissionService
	submissions *fakeSubmissionRepo
	assignments *fakeAssignmentRepo
	events      *recordingPublisher
}

func newSubmissionFixture(t *testing.T) submissionFixture {
	t.Helper()

	assignments := newFakeAssignmentRepo()
	submissions := newFakeSubmissionRepo()
	events := &recordingPublisher{}
	validate := validator.New(validator.WithRequiredStructEnabled())

	svc := NewSubmissionService(submissions, assignments, validate, &fakeUploader{}, events, testLogger())

	require.NoError(t, assignments.Create(context.Background(), &models.Assignment{
		Title:       "Field Survey Theme",
		Type:        models.AssignmentTypeThemeSelection,
		Deadline:    time.Now().Add(48 * time.Hour),
		PublishedAt: time.Now(),
	}))

	return submissionFixture{service: svc, submissions: submissions, assignments: assignments, events: events}
}

func (f submissionFixture) submit(t *testing.T, content string) dto.SubmissionResponse {
	t.Helper()
	response, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
		Content:      content,
	}, nil)
	require.NoError(t, err)
	return response
}

func TestSubmitCreatesRecord(t *testing.T) {
	f := newSubmissionFixture(t)

	response := f.submit(t, "初步选题：城市公共交通满意度调查")
	require.NotZero(t, response.ID)
	require.Equal(t, models.SubmissionStatusSubmitted, response.Status)
	require.Nil(t, response.Score)
	require.Empty(t, response.Feedback)

	events := f.events.recorded()
	require.Len(t, events, 1)
	require.Equal(t, "", events[0].From)
	require.Equal(t, models.SubmissionStatusSubmitted, events[0].To)
}

func TestSubmitRequiresContentOrFile(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
		Content:      "   ",
	}, nil)
	require.ErrorIs(t, err, ErrEmptyPayload)
}

func TestSubmitSanitizesContent(t *testing.T) {
	f := newSubmissionFixture(t)

	response := f.submit(t, `<script>alert(1)</script>选题说明`)
	require.Equal(t, "选题说明", response.Content)
}

func TestSubmitUnknownAssignment(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 99,
		StudentID:    7,
		Content:      "content",
	}, nil)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestSubmitWithAttachment(t *testing.T) {
	f := newSubmissionFixture(t)

	file := newTestFileHeader(t, "report.txt", []byte("survey findings"))
	response, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
	}, []*multipart.FileHeader{file})
	require.NoError(t, err)
	require.Len(t, response.Attachments, 1)
	require.Contains(t, response.Attachments[0], "report.txt")
}

func TestSubmitRejectsUnsupportedFileType(t *testing.T) {
	f := newSubmissionFixture(t)

	// PNG magic bytes are not in the accepted attachment types.
	file := newTestFileHeader(t, "image.png", []byte("\x89PNG\r\n\x1a\n0000"))
	_, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
	}, []*multipart.FileHeader{file})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file type")
}

func TestResubmitWhileReviewing(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "first draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
		Content:      "second draft",
	}, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestResubmitAfterApprovalLocked(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "final draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	score := 92.0
	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
	}, 2)
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
		Content:      "late edit",
	}, nil)
	require.ErrorIs(t, err, ErrSubmissionLocked)
}

func TestResubmitAfterRejectionClearsReview(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "first draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusRejected,
		Feedback: "章节结构需要调整",
	}, 2)
	require.NoError(t, err)

	resubmitted, err := f.service.Submit(context.Background(), dto.SubmissionSubmitRequest{
		AssignmentID: 1,
		StudentID:    7,
		Content:      "revised draft",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, submitted.ID, resubmitted.ID)
	require.Equal(t, models.SubmissionStatusSubmitted, resubmitted.Status)
	require.Nil(t, resubmitted.Score)
	require.Empty(t, resubmitted.Feedback)
	require.Nil(t, resubmitted.ReviewedAt)
	require.Nil(t, resubmitted.ReviewedBy)
	require.Greater(t, resubmitted.Revision, submitted.Revision)
}

func TestBeginReviewOnlyFromSubmitted(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	reviewing, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReviewing, reviewing.Status)

	_, err = f.service.BeginReview(context.Background(), submitted.ID, 3)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestBeginReviewMissingSubmission(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.service.BeginReview(context.Background(), 42, 2)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestDecideScoreBoundaries(t *testing.T) {
	cases := []struct {
		name  string
		score *float64
		want  error
	}{
		{name: "nil score", score: nil, want: ErrInvalidScore},
		{name: "below range", score: ptrFloat(-1), want: ErrInvalidScore},
		{name: "above range", score: ptrFloat(101), want: ErrInvalidScore},
		{name: "lower bound", score: ptrFloat(0), want: nil},
		{name: "upper bound", score: ptrFloat(100), want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newSubmissionFixture(t)
			submitted := f.submit(t, "draft")
			_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
			require.NoError(t, err)

			payload := dto.ReviewDecisionRequest{Decision: models.SubmissionStatusApproved, Score: tc.score}
			response, err := f.service.Decide(context.Background(), submitted.ID, payload, 2)
			if tc.want != nil {
				require.ErrorIs(t, err, tc.want)
				return
			}
			require.NoError(t, err)
			require.Equal(t, models.SubmissionStatusApproved, response.Status)
			require.NotNil(t, response.Score)
			require.Equal(t, *tc.score, *response.Score)
		})
	}
}

func TestDecideRejectRequiresFeedback(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusRejected,
		Feedback: "   ",
	}, 2)
	require.ErrorIs(t, err, ErrMissingFeedback)

	// Markup-only feedback sanitizes down to nothing.
	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusRejected,
		Feedback: "<img src=x>",
	}, 2)
	require.ErrorIs(t, err, ErrMissingFeedback)
}

func TestDecideBeforeReviewOpened(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	score := 80.0
	_, err := f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
	}, 2)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDecideOnApprovedIsLocked(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	score := 90.0
	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
	}, 2)
	require.NoError(t, err)

	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusRejected,
		Feedback: "second thoughts",
	}, 3)
	require.ErrorIs(t, err, ErrSubmissionLocked)
}

func TestDecideConcurrentWriterLoses(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	// A competing reviewer commits between our read and our write.
	f.submissions.afterGet = func() { f.submissions.bumpRevision(submitted.ID) }

	score := 75.0
	_, err = f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
	}, 3)
	require.ErrorIs(t, err, ErrConflict)
}

func TestReviewLifecycle(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "调查问卷设计初稿")
	reviewing, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReviewing, reviewing.Status)

	score := 88.0
	approved, err := f.service.Decide(context.Background(), submitted.ID, dto.ReviewDecisionRequest{
		Decision: models.SubmissionStatusApproved,
		Score:    &score,
		Feedback: "问卷设计合理",
	}, 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, approved.Status)
	require.NotNil(t, approved.Score)
	require.Equal(t, 88.0, *approved.Score)
	require.NotNil(t, approved.ReviewedAt)
	require.NotNil(t, approved.ReviewedBy)
	require.Equal(t, uint(2), *approved.ReviewedBy)

	events := f.events.recorded()
	require.Len(t, events, 3)
	require.Equal(t, models.SubmissionStatusSubmitted, events[0].To)
	require.Equal(t, models.SubmissionStatusReviewing, events[1].To)
	require.Equal(t, models.SubmissionStatusApproved, events[2].To)
	require.Equal(t, models.SubmissionStatusReviewing, events[2].From)
}

func TestListFiltersByStatus(t *testing.T) {
	f := newSubmissionFixture(t)

	submitted := f.submit(t, "draft")
	_, err := f.service.BeginReview(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	status := models.SubmissionStatusReviewing
	listed, err := f.service.List(context.Background(), dto.SubmissionFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	other := models.SubmissionStatusApproved
	empty, err := f.service.List(context.Background(), dto.SubmissionFilter{Status: &other})
	require.NoError(t, err)
	require.Empty(t, empty)
}

func ptrFloat(v float64) *float64 {
	return &v
}
