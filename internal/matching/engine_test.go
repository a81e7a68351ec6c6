package matching

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiredesk/internal/config"
	"hiredesk/internal/llm"
	"hiredesk/pkg/models"
)

type fakeSearchStore struct {
	mu         sync.Mutex
	shortlists map[string]models.IndexList
}

func newFakeSearchStore() *fakeSearchStore {
	return &fakeSearchStore{shortlists: make(map[string]models.IndexList)}
}

func (s *fakeSearchStore) Create(ctx context.Context, search *models.Search) error { return nil }
func (s *fakeSearchStore) Update(ctx context.Context, search *models.Search) error { return nil }
func (s *fakeSearchStore) GetByID(ctx context.Context, id string) (*models.Search, error) {
	return nil, nil
}
func (s *fakeSearchStore) SetShortlist(ctx context.Context, id string, indices models.IndexList) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shortlists[id] = indices
	return nil
}
func (s *fakeSearchStore) SetSubmitted(ctx context.Context, id string, submitted int) error {
	return nil
}
func (s *fakeSearchStore) SetSharedFields(ctx context.Context, id string, fields models.SharedFields) error {
	return nil
}
func (s *fakeSearchStore) SetCustomQuestion(ctx context.Context, id, question string) error {
	return nil
}
func (s *fakeSearchStore) Archive(ctx context.Context, id string) error { return nil }

func (s *fakeSearchStore) shortlist(id string) models.IndexList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shortlists[id]
}

func engineTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Matching.MaxConcurrentRuns = 2
	cfg.Matching.RunTimeout = 5 * time.Second
	return cfg
}

func waitProcessed(t *testing.T, tracker RunTracker, owner string) *RunStatus {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("matching run did not complete in time")
		case <-time.After(10 * time.Millisecond):
			status, err := tracker.Status(context.Background(), owner)
			if err == nil && status.Processed {
				return status
			}
		}
	}
}

func TestEngineRunShortlistsTopCandidates(t *testing.T) {
	store := newFakeSearchStore()
	tracker := NewMemoryRunTracker()
	engine := NewEngine(engineTestConfig(), llm.NewHeuristicProvider(), store, tracker)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))
	defer engine.Stop(ctx)

	// Block 1 matches both skills, block 0 matches one, block 2 none
	search := &models.Search{
		ID:      "search-1",
		JobRole: "Backend Engineer",
		Skills:  []string{"Go", "Kubernetes"},
		CandidateCorpus: "Bob Jones\nSeasoned Go developer\n---\n" +
			"Alice Smith\nGo and Kubernetes platform engineer\n---\n" +
			"Carol White\nGraphic designer",
		CandidateCount: 2,
	}

	require.NoError(t, engine.StartRun(ctx, "owner-1", search))
	status := waitProcessed(t, tracker, "owner-1")

	assert.Equal(t, "search-1", status.SearchID)
	assert.Equal(t, models.IndexList{1, 0}, store.shortlist("search-1"))
}

func TestEngineRunCapsAtAvailableCandidates(t *testing.T) {
	store := newFakeSearchStore()
	tracker := NewMemoryRunTracker()
	engine := NewEngine(engineTestConfig(), llm.NewHeuristicProvider(), store, tracker)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))
	defer engine.Stop(ctx)

	search := &models.Search{
		ID:              "search-2",
		JobRole:         "Backend Engineer",
		Skills:          []string{"Go"},
		CandidateCorpus: "Alice Smith\nGo developer\n---\nBob Jones\nGo developer",
		CandidateCount:  10,
	}

	require.NoError(t, engine.StartRun(ctx, "owner-2", search))
	waitProcessed(t, tracker, "owner-2")

	assert.Len(t, store.shortlist("search-2"), 2)
}

func TestEngineRejectsRunsWhenStopped(t *testing.T) {
	store := newFakeSearchStore()
	tracker := NewMemoryRunTracker()
	engine := NewEngine(engineTestConfig(), llm.NewHeuristicProvider(), store, tracker)

	err := engine.StartRun(context.Background(), "owner-3", &models.Search{ID: "search-3"})
	assert.Error(t, err)
}

func TestEngineTiesKeepCorpusOrder(t *testing.T) {
	store := newFakeSearchStore()
	tracker := NewMemoryRunTracker()
	engine := NewEngine(engineTestConfig(), llm.NewHeuristicProvider(), store, tracker)

	ctx := context.Background()
	require.NoError(t, engine.Start(ctx))
	defer engine.Stop(ctx)

	search := &models.Search{
		ID:              "search-4",
		JobRole:         "Backend Engineer",
		Skills:          []string{"Go"},
		CandidateCorpus: "Alice\nGo developer\n---\nBob\nGo developer\n---\nCarol\nGo developer",
		CandidateCount:  3,
	}

	require.NoError(t, engine.StartRun(ctx, "owner-4", search))
	waitProcessed(t, tracker, "owner-4")

	assert.Equal(t, models.IndexList{0, 1, 2}, store.shortlist("search-4"))
}
