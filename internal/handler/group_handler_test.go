package handler_test

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/luoxin-dev/survey-portal-api/internal/dto"
)

func createGroup(t *testing.T, app *fiber.App, name string) dto.GroupResponse {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/v1/groups",
		strings.NewReader(fmt.Sprintf(`{"name": %q, "slogan": "用数据说话"}`, name)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data dto.GroupResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	return envelope.Data
}

func TestGroupCreateAndGet(t *testing.T) {
	app := setupApp(t)

	group := createGroup(t, app, "城市交通调研组")
	require.Len(t, group.Members, 1)
	require.Equal(t, "leader", group.Members[0].Role)

	req := httptest.NewRequest("GET", fmt.Sprintf("/api/v1/groups/%d", group.ID), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		Data dto.GroupResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "城市交通调研组", envelope.Data.Name)
}

func TestGroupInviteCapacityConflict(t *testing.T) {
	app := setupApp(t)

	group := createGroup(t, app, "满员组")

	for userID := 2; userID <= 5; userID++ {
		req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/groups/%d/invitations", group.ID),
			strings.NewReader(fmt.Sprintf(`{"user_id": %d}`, userID)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/groups/%d/invitations", group.ID),
		strings.NewReader(`{"user_id": 99}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGroupInviteDuplicateConflict(t *testing.T) {
	app := setupApp(t)

	group := createGroup(t, app, "调研组")

	req := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/groups/%d/invitations", group.ID),
		strings.NewReader(`{"user_id": 1}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGroupUpdateInfo(t *testing.T) {
	app := setupApp(t)

	group := createGroup(t, app, "旧名字")

	req := httptest.NewRequest("PATCH", fmt.Sprintf("/api/v1/groups/%d", group.ID),
		strings.NewReader(`{"name": "新名字"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	empty := httptest.NewRequest("PATCH", fmt.Sprintf("/api/v1/groups/%d", group.ID),
		strings.NewReader(`{}`))
	empty.Header.Set("Content-Type", "application/json")
	emptyResp, err := app.Test(empty)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, emptyResp.StatusCode)
}

func TestGroupNotFound(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest("GET", "/api/v1/groups/404", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
