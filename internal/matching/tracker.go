package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"hiredesk/internal/config"
)

// ErrNoActiveRun is returned when the owner has no matching run in flight.
var ErrNoActiveRun = errors.New("no active matching run")

// RunStatus is the poll target for the processing monitor: which search the
// owner's latest run belongs to and whether it has finished.
type RunStatus struct {
	SearchID  string    `json:"search_id"`
	Processed bool      `json:"processed"`
	StartedAt time.Time `json:"started_at"`
}

// RunTracker records the caller's active matching run so the status endpoint
// can answer polls without a search id.
type RunTracker interface {
	Begin(ctx context.Context, owner, searchID string) error
	MarkProcessed(ctx context.Context, owner string) error
	Status(ctx context.Context, owner string) (*RunStatus, error)
}

// RedisRunTracker implements RunTracker on Redis with TTL keys.
type RedisRunTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRunTracker creates a tracker backed by the configured Redis.
func NewRedisRunTracker(cfg *config.Config) (*RedisRunTracker, error) {
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Redis.Password != "" {
		opts.Password = cfg.Redis.Password
	}
	opts.DB = cfg.Redis.DB
	opts.DialTimeout = cfg.Redis.Timeout
	opts.ReadTimeout = cfg.Redis.Timeout
	opts.WriteTimeout = cfg.Redis.Timeout

	return &RedisRunTracker{
		client: redis.NewClient(opts),
		ttl:    cfg.Matching.StatusTTL,
	}, nil
}

// Ping tests the Redis connection
func (t *RedisRunTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (t *RedisRunTracker) Close() error {
	return t.client.Close()
}

func (t *RedisRunTracker) Begin(ctx context.Context, owner, searchID string) error {
	status := RunStatus{
		SearchID:  searchID,
		Processed: false,
		StartedAt: time.Now(),
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal run status: %w", err)
	}

	if err := t.client.Set(ctx, t.runKey(owner), payload, t.ttl).Err(); err != nil {
		return fmt.Errorf("store run status: %w", err)
	}

	return nil
}

func (t *RedisRunTracker) MarkProcessed(ctx context.Context, owner string) error {
	status, err := t.Status(ctx, owner)
	if err != nil {
		return err
	}

	status.Processed = true
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal run status: %w", err)
	}

	if err := t.client.Set(ctx, t.runKey(owner), payload, t.ttl).Err(); err != nil {
		return fmt.Errorf("update run status: %w", err)
	}

	return nil
}

func (t *RedisRunTracker) Status(ctx context.Context, owner string) (*RunStatus, error) {
	payload, err := t.client.Get(ctx, t.runKey(owner)).Result()
	if err == redis.Nil {
		return nil, ErrNoActiveRun
	}
	if err != nil {
		return nil, fmt.Errorf("get run status: %w", err)
	}

	var status RunStatus
	if err := json.Unmarshal([]byte(payload), &status); err != nil {
		return nil, fmt.Errorf("unmarshal run status: %w", err)
	}

	return &status, nil
}

func (t *RedisRunTracker) runKey(owner string) string {
	return fmt.Sprintf("matching:run:%s", owner)
}

// MemoryRunTracker is the in-process fallback used when Redis is not
// configured, and by tests.
type MemoryRunTracker struct {
	mu   sync.RWMutex
	runs map[string]*RunStatus
}

func NewMemoryRunTracker() *MemoryRunTracker {
	return &MemoryRunTracker{runs: make(map[string]*RunStatus)}
}

func (t *MemoryRunTracker) Begin(ctx context.Context, owner, searchID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[owner] = &RunStatus{SearchID: searchID, StartedAt: time.Now()}
	return nil
}

func (t *MemoryRunTracker) MarkProcessed(ctx context.Context, owner string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	status, exists := t.runs[owner]
	if !exists {
		return ErrNoActiveRun
	}
	status.Processed = true
	return nil
}

func (t *MemoryRunTracker) Status(ctx context.Context, owner string) (*RunStatus, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	status, exists := t.runs[owner]
	if !exists {
		return nil, ErrNoActiveRun
	}

	copied := *status
	return &copied, nil
}
