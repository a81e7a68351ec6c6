package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hiredesk/internal/config"
	"hiredesk/internal/llm"
	"hiredesk/internal/logging"
	"hiredesk/internal/storage"
	"hiredesk/pkg/models"
)

// Engine runs matching jobs in the background: it scores every corpus block
// against the search criteria, keeps the top N ordinals as the shortlist and
// flips the search's processed flag when done.
type Engine struct {
	config   *config.Config
	provider llm.Provider
	searches storage.SearchStore
	tracker  RunTracker
	logger   logging.Logger
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewEngine creates a matching engine
func NewEngine(cfg *config.Config, provider llm.Provider, searches storage.SearchStore, tracker RunTracker) *Engine {
	maxRuns := cfg.Matching.MaxConcurrentRuns
	if maxRuns <= 0 {
		maxRuns = 10
	}

	return &Engine{
		config:   cfg,
		provider: provider,
		searches: searches,
		tracker:  tracker,
		logger:   logging.GetGlobalLogger(),
		sem:      make(chan struct{}, maxRuns),
	}
}

// Start prepares the engine for accepting runs
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return fmt.Errorf("matching engine already running")
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running = true
	return nil
}

// Stop waits for in-flight runs to finish
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.cancel()
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("matching engine shutdown timed out: %w", ctx.Err())
	}
}

// StartRun launches the matching run for a search in the background. The
// owner key ties the run to the caller so the status endpoint can answer
// polls without a search id.
func (e *Engine) StartRun(ctx context.Context, owner string, search *models.Search) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return fmt.Errorf("matching engine not running")
	}
	e.mu.Unlock()

	if err := e.tracker.Begin(ctx, owner, search.ID); err != nil {
		return fmt.Errorf("begin run tracking: %w", err)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.sem <- struct{}{}
		defer func() { <-e.sem }()

		runCtx, cancel := context.WithTimeout(e.ctx, e.config.Matching.RunTimeout)
		defer cancel()

		if err := e.run(runCtx, owner, search); err != nil {
			e.logger.Error("Matching run failed", map[string]interface{}{
				"search_id": search.ID,
				"error":     err.Error(),
			})
		}
	}()

	return nil
}

func (e *Engine) run(ctx context.Context, owner string, search *models.Search) error {
	startTime := time.Now()

	blocks := SplitCorpus(search.CandidateCorpus)
	if len(blocks) == 0 {
		return fmt.Errorf("empty candidate corpus for search %s", search.ID)
	}

	job := llm.JobContext{
		Role:   search.JobRole,
		Skills: search.Skills,
	}

	type scored struct {
		index int
		score int
	}

	results := make([]scored, 0, len(blocks))
	for i, block := range blocks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		evaluation, err := e.provider.ScoreResume(ctx, job, block)
		if err != nil {
			e.logger.Warn("Scoring failed for corpus block, skipping", map[string]interface{}{
				"search_id": search.ID,
				"index":     i,
				"error":     err.Error(),
			})
			continue
		}

		results = append(results, scored{index: i, score: evaluation.Score})
	}

	// Highest score first; ties keep corpus order so reruns are stable
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	count := search.CandidateCount
	if count > len(results) {
		count = len(results)
	}

	indices := make(models.IndexList, 0, count)
	for _, r := range results[:count] {
		indices = append(indices, r.index)
	}

	if err := e.searches.SetShortlist(ctx, search.ID, indices); err != nil {
		return fmt.Errorf("store shortlist: %w", err)
	}

	if err := e.tracker.MarkProcessed(ctx, owner); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}

	e.logger.Info("Matching run completed", map[string]interface{}{
		"search_id":       search.ID,
		"corpus_blocks":   len(blocks),
		"shortlisted":     len(indices),
		"processing_time": time.Since(startTime),
		"provider":        e.provider.GetProviderName(),
	})

	return nil
}
