package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiredesk/pkg/models"
)

func TestResultsHandler(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0, 1, 2})
	require.NoError(t, env.searches.SetCustomQuestion(context.Background(), search.ID, "Why Go?"))

	alice := seedCandidate(t, env, search.ID, "Alice Smith", 92)
	seedCandidate(t, env, search.ID, "Bob Jones", 85)
	seedCandidate(t, env, search.ID, "Carol White", 78)
	require.NoError(t, env.candidates.SetCallStatus(context.Background(), alice.ID, models.CallStatusScheduled))

	req := httptest.NewRequest(http.MethodGet, "/api/results?searchID="+search.ID, nil)
	c, rec := env.newContext(req)
	env.handle(c, ResultsHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.CallsScheduled)
	assert.Equal(t, 0, resp.RescheduledCalls)
	assert.Equal(t, "Why Go?", resp.CustomQuestion)
}

func TestResultsHandlerMissingSearchID(t *testing.T) {
	env := newTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/results", nil)
	c, rec := env.newContext(req)
	env.handle(c, ResultsHandler(env.deps))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinalSelectsBatch(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0, 1})
	alice := seedCandidate(t, env, search.ID, "Alice Smith", 92)
	bob := seedCandidate(t, env, search.ID, "Bob Jones", 85)

	rec := env.postJSON(t, "/api/final-selects", models.FinalSelectsRequest{
		SearchID:   search.ID,
		AddToFinal: []string{alice.ID, bob.ID},
	}, FinalSelectsHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.candidates.ListFinalSelects(context.Background(), search.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// Joined toggle and removal in one batch; removal clears joined
	rec = env.postJSON(t, "/api/final-selects", models.FinalSelectsRequest{
		SearchID:        search.ID,
		Joined:          []models.JoinedUpdate{{CandidateID: alice.ID, Joined: true}},
		RemoveFromFinal: []string{bob.ID},
	}, FinalSelectsHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	storedAlice, err := env.candidates.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.True(t, storedAlice.Joined)

	storedBob, err := env.candidates.GetByID(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.False(t, storedBob.FinalSelect)
	assert.False(t, storedBob.Joined)
}

func TestFinalSelectsEmptyBatch(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})

	rec := env.postJSON(t, "/api/final-selects", models.FinalSelectsRequest{
		SearchID: search.ID,
	}, FinalSelectsHandler(env.deps))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinalSelectsList(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0, 1})
	alice := seedCandidate(t, env, search.ID, "Alice Smith", 92)
	seedCandidate(t, env, search.ID, "Bob Jones", 85)
	require.NoError(t, env.candidates.SetFinalSelect(context.Background(), []string{alice.ID}, true))

	req := httptest.NewRequest(http.MethodGet, "/api/final-selects?search_id="+search.ID, nil)
	c, rec := env.newContext(req)
	env.handle(c, FinalSelectsListHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Alice Smith", resp.Candidates[0].Name)
}
