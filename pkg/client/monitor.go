package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"hiredesk/pkg/models"
)

// ErrProcessingTimeout is the terminal state of a monitor that never saw
// completion; the caller must surface it and offer a manual retry.
var ErrProcessingTimeout = errors.New("processing timed out, please retry")

// ErrMonitorStopped reports a monitor cancelled before completion.
var ErrMonitorStopped = errors.New("processing monitor stopped")

const (
	monitorPollInterval = 2 * time.Second
	monitorTimeout      = 20 * time.Second
)

// MonitorResult is delivered exactly once when the monitor finishes.
type MonitorResult struct {
	SearchID string
	Err      error
}

// Monitor drives the processing stage: it fires the one-shot trigger, polls
// the status endpoint on a fixed interval and gives up after a hard timeout.
// The reported progress is synthetic: it only ever increases, is capped, and
// jumps to 100 on completion. Every timer is owned by the monitor and
// released on success, timeout and Stop alike.
type Monitor struct {
	client       *Client
	pollInterval time.Duration
	timeout      time.Duration
	onProgress   func(percent int)

	mu      sync.Mutex
	cancel  context.CancelFunc
	started bool
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithProgress registers a callback for the synthetic progress value.
func WithProgress(fn func(percent int)) MonitorOption {
	return func(m *Monitor) { m.onProgress = fn }
}

// WithPollInterval overrides the poll cadence. Intended for tests.
func WithPollInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.pollInterval = d }
}

// WithMonitorTimeout overrides the hard timeout. Intended for tests.
func WithMonitorTimeout(d time.Duration) MonitorOption {
	return func(m *Monitor) { m.timeout = d }
}

// NewMonitor creates a processing monitor bound to this client's session.
func (c *Client) NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{
		client:       c,
		pollInterval: monitorPollInterval,
		timeout:      monitorTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start triggers processing and begins polling. The returned channel yields
// exactly one result. Start may only be called once per Monitor.
func (m *Monitor) Start(ctx context.Context) (<-chan MonitorResult, error) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil, errors.New("monitor already started")
	}
	m.started = true
	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.mu.Unlock()

	results := make(chan MonitorResult, 1)

	go func() {
		defer cancel()
		results <- m.run(runCtx)
	}()

	return results, nil
}

// Stop cancels polling. Safe to call at any point, including after
// completion.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *Monitor) run(ctx context.Context) MonitorResult {
	// One-shot trigger
	if err := m.client.getJSON(ctx, "/api/loading", nil, nil); err != nil {
		return MonitorResult{Err: err}
	}

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(m.timeout)
	defer deadline.Stop()

	progress := 5
	m.report(progress)

	for {
		select {
		case <-ctx.Done():
			return MonitorResult{Err: ErrMonitorStopped}

		case <-deadline.C:
			return MonitorResult{Err: ErrProcessingTimeout}

		case <-ticker.C:
			var status models.ProcessingStatusResponse
			if err := m.client.getJSON(ctx, "/api/check-processing", nil, &status); err != nil {
				// Transient poll failures are absorbed; the deadline is
				// the backstop
				continue
			}

			if status.Processed {
				m.report(100)
				return MonitorResult{SearchID: status.SearchID}
			}

			// Synthetic increment, capped below completion
			progress += 9
			if progress > 90 {
				progress = 90
			}
			m.report(progress)
		}
	}
}

func (m *Monitor) report(percent int) {
	if m.onProgress != nil {
		m.onProgress(percent)
	}
}
