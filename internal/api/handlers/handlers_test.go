package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"hiredesk/internal/config"
	"hiredesk/internal/docext"
	"hiredesk/internal/llm"
	"hiredesk/internal/matching"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
)

// In-memory fakes for the store interfaces, so handler tests run without a
// database.

type fakeSearches struct {
	mu       sync.Mutex
	searches map[string]*models.Search
	nextID   int
}

func newFakeSearches() *fakeSearches {
	return &fakeSearches{searches: make(map[string]*models.Search)}
}

func (s *fakeSearches) Create(ctx context.Context, search *models.Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	if search.ID == "" {
		search.ID = "search-" + string(rune('0'+s.nextID))
	}
	copied := *search
	s.searches[search.ID] = &copied
	return nil
}

func (s *fakeSearches) Update(ctx context.Context, search *models.Search) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.searches[search.ID]
	if !ok || existing.Archived {
		return storage.ErrNotFound
	}
	copied := *search
	copied.Processed = false
	copied.ShortlistedIndices = nil
	copied.Submitted = 0
	s.searches[search.ID] = &copied
	return nil
}

func (s *fakeSearches) GetByID(ctx context.Context, id string) (*models.Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search, ok := s.searches[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *search
	return &copied, nil
}

func (s *fakeSearches) SetShortlist(ctx context.Context, id string, indices models.IndexList) error {
	return s.mutate(id, func(search *models.Search) {
		search.ShortlistedIndices = indices
		search.Processed = true
	})
}

func (s *fakeSearches) SetSubmitted(ctx context.Context, id string, submitted int) error {
	return s.mutate(id, func(search *models.Search) { search.Submitted = submitted })
}

func (s *fakeSearches) SetSharedFields(ctx context.Context, id string, fields models.SharedFields) error {
	return s.mutate(id, func(search *models.Search) { search.Shared = fields })
}

func (s *fakeSearches) SetCustomQuestion(ctx context.Context, id, question string) error {
	return s.mutate(id, func(search *models.Search) { search.CustomQuestion = question })
}

func (s *fakeSearches) Archive(ctx context.Context, id string) error {
	return s.mutate(id, func(search *models.Search) { search.Archived = true })
}

func (s *fakeSearches) mutate(id string, fn func(*models.Search)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	search, ok := s.searches[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(search)
	return nil
}

type fakeCandidates struct {
	mu         sync.Mutex
	candidates map[string]*models.Candidate
	nextID     int
}

func newFakeCandidates() *fakeCandidates {
	return &fakeCandidates{candidates: make(map[string]*models.Candidate)}
}

func (s *fakeCandidates) Create(ctx context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	candidate.ID = "cand-" + string(rune('0'+s.nextID))
	if candidate.CallStatus == "" {
		candidate.CallStatus = models.CallStatusNotCalled
	}
	copied := *candidate
	s.candidates[candidate.ID] = &copied
	return nil
}

func (s *fakeCandidates) Update(ctx context.Context, candidate *models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; !ok {
		return storage.ErrNotFound
	}
	copied := *candidate
	s.candidates[candidate.ID] = &copied
	return nil
}

func (s *fakeCandidates) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *candidate
	return &copied, nil
}

func (s *fakeCandidates) ListBySearch(ctx context.Context, searchID string) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.SearchID == searchID {
			out = append(out, *candidate)
		}
	}
	return out, nil
}

func (s *fakeCandidates) ListFinalSelects(ctx context.Context, searchID string) ([]models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Candidate, 0)
	for _, candidate := range s.candidates {
		if candidate.SearchID == searchID && candidate.FinalSelect {
			out = append(out, *candidate)
		}
	}
	return out, nil
}

func (s *fakeCandidates) SetLiked(ctx context.Context, id string, liked bool) error {
	return s.mutate(id, func(candidate *models.Candidate) { candidate.Liked = liked })
}

func (s *fakeCandidates) SetCallStatus(ctx context.Context, id string, status models.CallStatus) error {
	return s.mutate(id, func(candidate *models.Candidate) { candidate.CallStatus = status })
}

func (s *fakeCandidates) SetFinalSelect(ctx context.Context, ids []string, final bool) error {
	for _, id := range ids {
		err := s.mutate(id, func(candidate *models.Candidate) {
			candidate.FinalSelect = final
			if !final {
				candidate.Joined = false
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeCandidates) SetJoined(ctx context.Context, updates []models.JoinedUpdate) error {
	for _, update := range updates {
		err := s.mutate(update.CandidateID, func(candidate *models.Candidate) {
			if candidate.FinalSelect {
				candidate.Joined = update.Joined
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeCandidates) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.candidates, id)
	return nil
}

func (s *fakeCandidates) DeleteBySearch(ctx context.Context, searchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, candidate := range s.candidates {
		if candidate.SearchID == searchID {
			delete(s.candidates, id)
		}
	}
	return nil
}

func (s *fakeCandidates) CountByCallStatus(ctx context.Context, searchID string, status models.CallStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, candidate := range s.candidates {
		if candidate.SearchID == searchID && candidate.CallStatus == status {
			count++
		}
	}
	return count, nil
}

func (s *fakeCandidates) mutate(id string, fn func(*models.Candidate)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[id]
	if !ok {
		return storage.ErrNotFound
	}
	fn(candidate)
	return nil
}

type fakeCalls struct {
	mu      sync.Mutex
	updates []models.CallStatusUpdate
}

func (s *fakeCalls) ListByCandidate(ctx context.Context, candidateID string) ([]models.Call, error) {
	return nil, nil
}

func (s *fakeCalls) ApplyUpdate(ctx context.Context, update *models.CallStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, *update)
	return nil
}

type fakeTasks struct {
	mu    sync.Mutex
	tasks map[string]*models.Task
}

func newFakeTasks() *fakeTasks { return &fakeTasks{tasks: make(map[string]*models.Task)} }

func (s *fakeTasks) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task.ID = "task-1"
	copied := *task
	s.tasks[task.ID] = &copied
	return nil
}

func (s *fakeTasks) GetByID(ctx context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *fakeTasks) ListByAssignee(ctx context.Context, assignee string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0)
	for _, task := range s.tasks {
		if task.AssignedTo == assignee {
			out = append(out, *task)
		}
	}
	return out, nil
}

func (s *fakeTasks) SetStatus(ctx context.Context, id string, status models.TaskStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return storage.ErrNotFound
	}
	task.Status = status
	return nil
}

type fakeDialer struct {
	mu       sync.Mutex
	requests []models.CallRequest
	fail     bool
}

func (d *fakeDialer) Dial(ctx context.Context, request *models.CallRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return context.DeadlineExceeded
	}
	d.requests = append(d.requests, *request)
	return nil
}

type testEnv struct {
	deps       *Deps
	echo       *echo.Echo
	searches   *fakeSearches
	candidates *fakeCandidates
	calls      *fakeCalls
	tasks      *fakeTasks
	dialer     *fakeDialer
	tracker    *matching.MemoryRunTracker
}

func newTestEnv() *testEnv {
	cfg := &config.Config{}
	cfg.Matching.MaxConcurrentRuns = 2
	cfg.Matching.RunTimeout = 5 * time.Second

	searches := newFakeSearches()
	candidates := newFakeCandidates()
	calls := &fakeCalls{}
	tasks := newFakeTasks()
	dialer := &fakeDialer{}
	tracker := matching.NewMemoryRunTracker()
	provider := llm.NewHeuristicProvider()

	engine := matching.NewEngine(cfg, provider, searches, tracker)
	_ = engine.Start(context.Background())

	return &testEnv{
		deps: &Deps{
			Config:     cfg,
			Searches:   searches,
			Candidates: candidates,
			Calls:      calls,
			Tasks:      tasks,
			Engine:     engine,
			Tracker:    tracker,
			Provider:   provider,
			Caller:     dialer,
			Extractor:  docext.NewExtractor(""),
		},
		echo:       echo.New(),
		searches:   searches,
		candidates: candidates,
		calls:      calls,
		tasks:      tasks,
		dialer:     dialer,
		tracker:    tracker,
	}
}

func (env *testEnv) newContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)
	c.Set("request_id", "test-request")
	c.Set("owner", "tester")
	return c, rec
}

// handle invokes a handler and routes any returned error through the same
// error handler the server installs, so error responses carry the envelope.
func (env *testEnv) handle(c echo.Context, handler echo.HandlerFunc) {
	if err := handler(c); err != nil {
		ErrorHandler()(err, c)
	}
}

// multipartBody builds a multipart form from string fields.
func multipartBody(fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		_ = writer.WriteField(name, value)
	}
	_ = writer.Close()
	return body, writer.FormDataContentType()
}
