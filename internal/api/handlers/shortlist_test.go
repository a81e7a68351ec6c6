package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiredesk/pkg/models"
)

const shortlistCorpus = `Alice Smith, alice@example.com, 6 years of Go and Postgres.

---

Bob Jones, bob@example.com, 3 years of Python.

---

Carol White, carol@example.com, 8 years of Go, Postgres and Kubernetes.`

func (env *testEnv) postShortlist(t *testing.T, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(fields)
	req := httptest.NewRequest(http.MethodPost, "/api/shortlist", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	c, rec := env.newContext(req)
	env.handle(c, ShortlistHandler(env.deps))
	return rec
}

func TestShortlistCreatesSearchAndQueuesRun(t *testing.T) {
	env := newTestEnv()

	rec := env.postShortlist(t, map[string]string{
		"search_name":     "Backend hiring",
		"job_role":        "Backend Engineer",
		"skills":          "Go, Postgres",
		"candidate_text":  shortlistCorpus,
		"candidate_count": "2",
		"company":         "Acme",
		"remote":          "true",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ShortlistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.IsUpdate)
	require.NotEmpty(t, resp.SearchID)

	search, err := env.searches.GetByID(context.Background(), resp.SearchID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Postgres"}, search.Skills)
	assert.Equal(t, 2, search.CandidateCount)
	assert.Equal(t, "Yes", search.Shared.Remote)

	// The search is registered as the caller's pending run
	status, err := env.tracker.Status(context.Background(), "tester")
	require.NoError(t, err)
	assert.Equal(t, resp.SearchID, status.SearchID)
	assert.False(t, status.Processed)
}

func TestShortlistAggregatesValidationErrors(t *testing.T) {
	env := newTestEnv()

	rec := env.postShortlist(t, map[string]string{
		"candidate_count": "2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp models.IntakeSubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// Name, role, skills and corpus are all reported in one response
	assert.GreaterOrEqual(t, len(resp.Errors), 4)
}

func TestShortlistEmptyCorpusRejected(t *testing.T) {
	env := newTestEnv()

	rec := env.postShortlist(t, map[string]string{
		"search_name":     "Backend hiring",
		"job_role":        "Backend Engineer",
		"skills":          "Go",
		"candidate_text":  "   \n\t  ",
		"candidate_count": "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "no_match", resp.Error)
	assert.Contains(t, resp.Message, "No candidates matched")
}

func TestShortlistUpdateResetsProgress(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0, 1})

	rec := env.postShortlist(t, map[string]string{
		"search_id":       search.ID,
		"search_name":     "Backend hiring v2",
		"job_role":        "Backend Engineer",
		"skills":          "Go",
		"candidate_text":  shortlistCorpus,
		"candidate_count": "1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ShortlistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.IsUpdate)
	assert.Equal(t, search.ID, resp.SearchID)

	stored, err := env.searches.GetByID(context.Background(), search.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend hiring v2", stored.Name)
	assert.False(t, stored.Processed)
	assert.Empty(t, stored.ShortlistedIndices)
	assert.Equal(t, 0, stored.Submitted)
}

func TestShortlistUpdateClearsPreviousCandidates(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})

	// Walk the first run's intake to completion so a candidate row exists.
	rec, resp := env.intakeSubmit(t, search.ID, map[string]string{"resume_text": sampleResumeText})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/loading", resp.Redirect)

	before, err := env.candidates.ListBySearch(context.Background(), search.ID)
	require.NoError(t, err)
	require.Len(t, before, 1)

	// Re-submitting the criteria for the same search resets the run and
	// drops the previous intake's candidates with it.
	rec2 := env.postShortlist(t, map[string]string{
		"search_id":       search.ID,
		"search_name":     "Backend hiring v2",
		"job_role":        "Backend Engineer",
		"skills":          "Go",
		"candidate_text":  shortlistCorpus,
		"candidate_count": "1",
	})
	require.Equal(t, http.StatusOK, rec2.Code)

	cleared, err := env.candidates.ListBySearch(context.Background(), search.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared)

	// After the re-run's intake, results hold only the new row.
	require.NoError(t, env.searches.SetShortlist(context.Background(), search.ID, models.IndexList{0}))
	rec, resp = env.intakeSubmit(t, search.ID, map[string]string{"resume_text": sampleResumeText})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/loading", resp.Redirect)

	after, err := env.candidates.ListBySearch(context.Background(), search.ID)
	require.NoError(t, err)
	assert.Len(t, after, 1)
}

func TestLoadingAndCheckProcessing(t *testing.T) {
	env := newTestEnv()

	rec := env.postShortlist(t, map[string]string{
		"search_name":     "Backend hiring",
		"job_role":        "Backend Engineer",
		"skills":          "Go",
		"candidate_text":  shortlistCorpus,
		"candidate_count": "2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.ShortlistResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	req := httptest.NewRequest(http.MethodGet, "/api/loading", nil)
	c, rec2 := env.newContext(req)
	env.handle(c, LoadingHandler(env.deps))
	require.Equal(t, http.StatusOK, rec2.Code)

	// Poll until the background run lands
	deadline := time.Now().Add(2 * time.Second)
	var status models.ProcessingStatusResponse
	for {
		req := httptest.NewRequest(http.MethodGet, "/api/check-processing", nil)
		c, rec := env.newContext(req)
		env.handle(c, CheckProcessingHandler(env.deps))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		if status.Processed || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	require.True(t, status.Processed)
	assert.Equal(t, created.SearchID, status.SearchID)

	search, err := env.searches.GetByID(context.Background(), created.SearchID)
	require.NoError(t, err)
	assert.True(t, search.Processed)
	assert.Len(t, search.ShortlistedIndices, 2)
}

func TestLoadingWithoutPendingRun(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/loading", nil)
	c, rec := env.newContext(req)
	env.handle(c, LoadingHandler(env.deps))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
