package contract_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/echoclass/classboard/internal/handler"
	"github.com/echoclass/classboard/internal/models"
	"github.com/echoclass/classboard/internal/store"
	"github.com/echoclass/classboard/internal/view"
)

func TestAggregatesContract(t *testing.T) {
	schema := compileSchema(t, "aggregates.schema.json")

	st := store.New()
	st.UpsertStudent(models.Student{StudentUserID: 101, StudentIndex: 1, Name: "Ana"})
	st.UpsertStudent(models.Student{StudentUserID: 102, StudentIndex: 2, Name: "Bram"})
	st.UpsertStudent(models.Student{StudentUserID: 103, StudentIndex: 3, Name: "Cleo"})
	st.UpsertTask(models.Task{ID: 1, Name: "Fractions", Display: models.DisplayPublished})
	stars := 5
	st.UpsertSubmission(models.Submission{ID: 1, Student: 101, Task: 1, Stars: &stars})
	st.UpsertSubmission(models.Submission{ID: 2, Student: 102, Task: 1})

	hideList := view.NewHideList(nil, "abc", zerolog.Nop())
	engine := view.NewEngine(st, hideList, zerolog.Nop())
	h := handler.NewDashboardHandler(engine, hideList, zerolog.Nop())

	app := fiber.New()
	h.Register(app.Group("/api/v1/dashboard"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/aggregates", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
