package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiredesk/pkg/models"
	"hiredesk/pkg/utils"
)

func renderError(t *testing.T, env *testEnv, err error) (*httptest.ResponseRecorder, models.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	c, rec := env.newContext(req)
	ErrorHandler()(err, c)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestErrorHandlerRendersCustomError(t *testing.T) {
	env := newTestEnv()

	rec, resp := renderError(t, env, utils.NewConflictError("Search has not finished processing"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", resp.Error)
	assert.Equal(t, "Search has not finished processing", resp.Message)
	assert.Equal(t, "test-request", resp.RequestID)
}

func TestErrorHandlerIncludesDetail(t *testing.T) {
	env := newTestEnv()

	rec, resp := renderError(t, env, utils.NewLLMError("provider timed out"))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "upstream_error", resp.Error)
	assert.Equal(t, "LLM processing failed: provider timed out", resp.Message)
}

func TestErrorHandlerPassesEchoErrorsThrough(t *testing.T) {
	env := newTestEnv()

	rec, resp := renderError(t, env, echo.NewHTTPError(http.StatusNotFound, "Not Found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", resp.Error)
}

func TestErrorHandlerDefaultsToInternal(t *testing.T) {
	env := newTestEnv()

	rec, resp := renderError(t, env, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", resp.Error)
	assert.Equal(t, "Internal server error", resp.Message)
}

func TestErrorHandlerSkipsCommittedResponse(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	c, rec := env.newContext(req)
	require.NoError(t, c.JSON(http.StatusOK, models.StatusResponse{Success: true}))

	ErrorHandler()(utils.NewInternalServerError("late failure"), c)
	assert.Equal(t, http.StatusOK, rec.Code)
}
