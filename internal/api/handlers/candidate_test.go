package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiredesk/pkg/models"
)

func (env *testEnv) postJSON(t *testing.T, path string, payload interface{}, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c, rec := env.newContext(req)
	env.handle(c, handler)
	return rec
}

func seedCandidate(t *testing.T, env *testEnv, searchID string, name string, score int) *models.Candidate {
	t.Helper()
	candidate := &models.Candidate{
		SearchID:   searchID,
		Name:       name,
		Email:      strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
		Phone:      "+15551234567",
		MatchScore: score,
	}
	require.NoError(t, env.candidates.Create(context.Background(), candidate))
	return candidate
}

func TestLikeCandidate(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})
	candidate := seedCandidate(t, env, search.ID, "Alice Smith", 92)

	rec := env.postJSON(t, "/api/like-candidate",
		models.LikeRequest{CandidateID: candidate.ID, Liked: true},
		LikeCandidateHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.candidates.GetByID(context.Background(), candidate.ID)
	require.NoError(t, err)
	assert.True(t, stored.Liked)
}

func TestLikeCandidateNotFound(t *testing.T) {
	env := newTestEnv()

	rec := env.postJSON(t, "/api/like-candidate",
		models.LikeRequest{CandidateID: "missing", Liked: true},
		LikeCandidateHandler(env.deps))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCandidateRequiresSearch(t *testing.T) {
	env := newTestEnv()

	rec := env.postJSON(t, "/api/candidate", models.CandidateUpsertRequest{
		SearchID:   "missing",
		Name:       "Alice Smith",
		Email:      "alice@example.com",
		Phone:      "+15551234567",
		MatchScore: 90,
	}, CreateCandidateHandler(env.deps))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndUpdateCandidate(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})

	rec := env.postJSON(t, "/api/candidate", models.CandidateUpsertRequest{
		SearchID:   search.ID,
		Name:       "Alice Smith",
		Email:      "alice@example.com",
		Phone:      "+15551234567",
		MatchScore: 90,
	}, CreateCandidateHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.CandidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Candidate)
	assert.Equal(t, models.CallStatusNotCalled, created.Candidate.CallStatus)

	rec = env.postJSON(t, "/api/candidate", models.CandidateUpsertRequest{
		CandidateID: created.Candidate.ID,
		SearchID:    search.ID,
		Name:        "Alice Jones",
		Email:       "alice@example.com",
		Phone:       "+15551234567",
		MatchScore:  95,
	}, UpdateCandidateHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.candidates.GetByID(context.Background(), created.Candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", stored.Name)
	assert.Equal(t, 95, stored.MatchScore)
}

func TestDeleteCandidate(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})
	candidate := seedCandidate(t, env, search.ID, "Alice Smith", 92)

	req := httptest.NewRequest(http.MethodDelete, "/api/candidate?candidate_id="+candidate.ID, nil)
	c, rec := env.newContext(req)
	env.handle(c, DeleteCandidateHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.candidates.GetByID(context.Background(), candidate.ID)
	assert.Error(t, err)
}

func TestCallHandlerSchedulesCandidates(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0, 1})
	require.NoError(t, env.searches.SetSharedFields(context.Background(), search.ID, models.SharedFields{Company: "Acme"}))
	first := seedCandidate(t, env, search.ID, "Alice Smith", 92)
	second := seedCandidate(t, env, search.ID, "Bob Jones", 85)

	rec := env.postJSON(t, "/api/call", models.CallRequest{
		SearchID: search.ID,
		Candidates: []models.CallCandidate{
			{CandidateID: first.ID, Name: first.Name, Phone: first.Phone},
			{CandidateID: second.ID, Name: second.Name, Phone: second.Phone},
		},
	}, CallHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.dialer.requests, 1)
	dispatched := env.dialer.requests[0].Candidates
	require.Len(t, dispatched, 2)

	// The calling service receives the search's company for every candidate
	// the client left blank
	assert.Equal(t, "Acme", dispatched[0].Company)
	assert.Equal(t, "Acme", dispatched[1].Company)

	stored, err := env.candidates.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusScheduled, stored.CallStatus)
}

func TestCallHandlerDialFailure(t *testing.T) {
	env := newTestEnv()
	search := seedProcessedSearch(t, env, models.IndexList{0})
	candidate := seedCandidate(t, env, search.ID, "Alice Smith", 92)
	env.dialer.fail = true

	rec := env.postJSON(t, "/api/call", models.CallRequest{
		SearchID: search.ID,
		Candidates: []models.CallCandidate{
			{CandidateID: candidate.ID, Name: candidate.Name, Phone: candidate.Phone},
		},
	}, CallHandler(env.deps))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	// No candidate is marked scheduled when the dispatch fails
	stored, err := env.candidates.GetByID(context.Background(), candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallStatusNotCalled, stored.CallStatus)
}

func TestCallStatusWebhookRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv()

	rec := env.postJSON(t, "/api/call-status", models.CallStatusUpdate{
		CandidateID: "cand-1",
		Status:      models.CallStatus("answered_maybe"),
	}, CallStatusHandler(env.deps))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.calls.updates)
}

func TestCallStatusWebhookRecordsOutcome(t *testing.T) {
	env := newTestEnv()

	rec := env.postJSON(t, "/api/call-status", models.CallStatusUpdate{
		CandidateID: "cand-1",
		Status:      models.CallStatusAnswered,
		Duration:    180,
		Summary:     "Good conversation",
	}, CallStatusHandler(env.deps))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.calls.updates, 1)
	assert.Equal(t, models.CallStatusAnswered, env.calls.updates[0].Status)
}
