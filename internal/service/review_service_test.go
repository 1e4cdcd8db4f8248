package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

func TestReviewServiceLifecycle(t *testing.T) {
	f := newSubmissionFixture(t)
	review := NewReviewService(f.service, testLogger())

	submitted := f.submit(t, "调查报告终稿")

	opened, err := review.Open(context.Background(), submitted.ID, 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusReviewing, opened.Status)

	approved, err := review.Approve(context.Background(), submitted.ID, 88, "结构完整", 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, approved.Status)
	require.NotNil(t, approved.Score)
	require.Equal(t, 88.0, *approved.Score)
}

func TestReviewServiceReject(t *testing.T) {
	f := newSubmissionFixture(t)
	review := NewReviewService(f.service, testLogger())

	submitted := f.submit(t, "初稿")
	_, err := review.Open(context.Background(), submitted.ID, 2)
	require.NoError(t, err)

	rejected, err := review.Reject(context.Background(), submitted.ID, "数据支撑不足", 2)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusRejected, rejected.Status)
	require.Equal(t, "数据支撑不足", rejected.Feedback)
	require.Nil(t, rejected.Score)
}

func TestReviewServicePropagatesTransitionErrors(t *testing.T) {
	f := newSubmissionFixture(t)
	review := NewReviewService(f.service, testLogger())

	submitted := f.submit(t, "初稿")

	// Approving before the review is opened is an invalid transition.
	_, err := review.Approve(context.Background(), submitted.ID, 90, "", 2)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = review.Open(context.Background(), 999, 2)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
