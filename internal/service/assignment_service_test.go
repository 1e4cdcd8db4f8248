package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
	"github.com/luoxin-dev/survey-portal-api/internal/models"
)

func newAssignmentService(t *testing.T) (AssignmentService, *fakeAssignmentRepo) {
	t.Helper()
	repo := newFakeAssignmentRepo()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssignmentService(repo, validate, &fakeUploader{}, testLogger()), repo
}

func TestPublishAssignment(t *testing.T) {
	svc, _ := newAssignmentService(t)

	deadline := time.Now().Add(72 * time.Hour)
	response, err := svc.Publish(context.Background(), dto.AssignmentPublishRequest{
		Title:        "问卷主题选定",
		Type:         models.AssignmentTypeThemeSelection,
		Deadline:     deadline.Format(time.RFC3339),
		Instructions: "提交选题说明",
	}, nil)
	require.NoError(t, err)
	require.NotZero(t, response.ID)
	require.Equal(t, models.AssignmentTypeThemeSelection, response.Type)
	require.False(t, response.PublishedAt.IsZero())
	require.WithinDuration(t, deadline, response.Deadline, time.Second)
}

func TestPublishAssignmentWithFile(t *testing.T) {
	svc, _ := newAssignmentService(t)

	file := newTestFileHeader(t, "brief.txt", []byte("survey brief"))
	response, err := svc.Publish(context.Background(), dto.AssignmentPublishRequest{
		Title:    "过程材料提交",
		Type:     models.AssignmentTypeProcessMaterial,
		Deadline: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}, file)
	require.NoError(t, err)
	require.Contains(t, response.FileURL, "brief.txt")
}

func TestPublishRejectsPastDeadline(t *testing.T) {
	svc, _ := newAssignmentService(t)

	_, err := svc.Publish(context.Background(), dto.AssignmentPublishRequest{
		Title:    "过期任务",
		Type:     models.AssignmentTypeFinalReport,
		Deadline: time.Now().Add(-time.Hour).Format(time.RFC3339),
	}, nil)
	require.ErrorIs(t, err, ErrDeadlinePast)
}

func TestPublishRejectsMalformedDeadline(t *testing.T) {
	svc, _ := newAssignmentService(t)

	_, err := svc.Publish(context.Background(), dto.AssignmentPublishRequest{
		Title:    "格式错误",
		Type:     models.AssignmentTypeFinalReport,
		Deadline: "2026/01/01",
	}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid deadline")
}

func TestPublishRejectsUnknownType(t *testing.T) {
	svc, _ := newAssignmentService(t)

	_, err := svc.Publish(context.Background(), dto.AssignmentPublishRequest{
		Title:    "未知类型",
		Type:     "essay",
		Deadline: time.Now().Add(time.Hour).Format(time.RFC3339),
	}, nil)
	require.Error(t, err)
}

func TestGetAssignmentNotFound(t *testing.T) {
	svc, _ := newAssignmentService(t)

	_, err := svc.Get(context.Background(), 41)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestListAssignments(t *testing.T) {
	svc, repo := newAssignmentService(t)

	require.NoError(t, repo.Create(context.Background(), &models.Assignment{
		Title: "A", Type: models.AssignmentTypeThemeSelection,
		Deadline: time.Now().Add(time.Hour), PublishedAt: time.Now(),
	}))
	require.NoError(t, repo.Create(context.Background(), &models.Assignment{
		Title: "B", Type: models.AssignmentTypeFinalReport,
		Deadline: time.Now().Add(2 * time.Hour), PublishedAt: time.Now(),
	}))

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 2)
}
