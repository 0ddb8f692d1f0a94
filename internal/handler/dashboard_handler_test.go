package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/echoclass/classboard/internal/dto"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/store"
	"github.com/echoclass/classboard/internal/view"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func newDashboardApp(st *store.Store) (*fiber.App, *view.HideList) {
	hideList := view.NewHideList(nil, "abc", testLogger())
	engine := view.NewEngine(st, hideList, testLogger())
	h := NewDashboardHandler(engine, hideList, testLogger())

	app := fiber.New()
	h.Register(app.Group("/api/v1/dashboard"))
	return app, hideList
}

func decodeData[T any](t *testing.T, resp io.Reader) T {
	t.Helper()
	var payload struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp).Decode(&payload))
	require.True(t, payload.Success)

	var data T
	require.NoError(t, json.Unmarshal(payload.Data, &data))
	return data
}

func TestRosterEndpointSortsByScore(t *testing.T) {
	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 101, StudentIndex: 1, Name: "Ana", Score: 2})
	st.UpsertStudent(models.Student{StudentUserID: 102, StudentIndex: 2, Name: "Bram", Score: 8})
	app, _ := newDashboardApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/roster?sort=starsHighToLow", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	roster := decodeData[[]models.Student](t, resp.Body)
	require.Len(t, roster, 2)
	require.Equal(t, "Bram", roster[0].Name)
}

func TestRosterEndpointUnknownSortFallsBack(t *testing.T) {
	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 102, StudentIndex: 2})
	st.UpsertStudent(models.Student{StudentUserID: 101, StudentIndex: 1})
	app, _ := newDashboardApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/roster?sort=bogus", nil), -1)
	require.NoError(t, err)

	roster := decodeData[[]models.Student](t, resp.Body)
	require.Equal(t, 1, roster[0].StudentIndex)
}

func TestHideAndShowTask(t *testing.T) {
	st := store.New()
	st.UpsertTask(models.Task{ID: 4, Display: models.DisplayPublished})
	app, hideList := newDashboardApp(st)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/dashboard/tasks/4/hide", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, hideList.Contains(4))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/tasks", nil), -1)
	require.NoError(t, err)
	require.Empty(t, decodeData[[]models.Task](t, resp.Body))

	resp, err = app.Test(httptest.NewRequest("POST", "/api/v1/dashboard/tasks/4/show", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.False(t, hideList.Contains(4))
}

func TestHideRejectsNonNumericID(t *testing.T) {
	app, _ := newDashboardApp(store.New())

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/dashboard/tasks/abc/hide", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAggregatesEndpoint(t *testing.T) {
	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 101, StudentIndex: 1})
	st.UpsertStudent(models.Student{StudentUserID: 102, StudentIndex: 2})
	st.UpsertTask(models.Task{ID: 1, Display: models.DisplayPublished})
	stars := 5
	st.UpsertSubmission(models.Submission{ID: 1, Student: 101, Task: 1, Stars: &stars})
	app, _ := newDashboardApp(st)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/aggregates", nil), -1)
	require.NoError(t, err)

	aggs := decodeData[[]dto.TaskAggregate](t, resp.Body)
	require.Len(t, aggs, 1)
	require.Equal(t, 1, aggs[0].Completed)
	require.Equal(t, 50.0, aggs[0].PercentComplete)
}

func TestStudentSummaryNotFound(t *testing.T) {
	app, _ := newDashboardApp(store.New())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/dashboard/students/99/summary", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
