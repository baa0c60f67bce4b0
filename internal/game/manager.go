package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordarcade/internal/content"
	"wordarcade/internal/models"
	"wordarcade/internal/scoring"
)

// ErrShuttingDown is returned by Start once Shutdown has been called
var ErrShuttingDown = errors.New("session manager is shutting down")

// ManagerOptions configures session hosting
type ManagerOptions struct {
	TickInterval time.Duration

	// Retention is how long a finished session stays readable.
	Retention time.Duration

	NewTicker NewTickerFunc
	Now       func() time.Time
	Logger    *slog.Logger
}

// Manager is the registry of live sessions
type Manager struct {
	catalog *content.Catalog
	rules   scoring.Rules
	settle  SettleFunc
	opts    ManagerOptions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	runners map[string]*Runner
}

// NewManager creates a session registry. settle is invoked once for every
// session that ends.
func NewManager(catalog *content.Catalog, rules scoring.Rules, settle SettleFunc, opts ManagerOptions) *Manager {
	if opts.Retention <= 0 {
		opts.Retention = 10 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		catalog: catalog,
		rules:   rules,
		settle:  settle,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		runners: make(map[string]*Runner),
	}
}

// Start creates, starts and begins hosting a session for userID
func (m *Manager) Start(userID int64, game models.GameKind, bucket models.Bucket) (*Runner, error) {
	id := uuid.NewString()
	engine := NewEngine(m.catalog, m.rules)
	if err := engine.Start(Config{SessionID: id, Game: game, Bucket: bucket, Seed: rand.Uint64()}); err != nil {
		return nil, err
	}

	r := NewRunner(id, userID, engine, m.settle, RunnerOptions{
		Interval:  m.opts.TickInterval,
		NewTicker: m.opts.NewTicker,
		Now:       m.opts.Now,
		Logger:    m.opts.Logger,
	})

	// Registration and wg.Add happen under the lock Shutdown takes before
	// cancelling, so no runner is added once Wait may have started.
	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		return nil, ErrShuttingDown
	}
	m.runners[id] = r
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		r.Run(m.ctx)
	}()

	m.opts.Logger.Info("session started", "session_id", id, "user_id", userID, "game", game, "bucket", bucket)
	return r, nil
}

// Get returns a hosted session
func (m *Manager) Get(id string) (*Runner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.runners[id]
	if !ok {
		return nil, models.NotFoundError{Resource: "session", Key: id}
	}
	return r, nil
}

// Len returns the number of hosted sessions, finished ones included
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners)
}

// Sweep drops finished sessions older than the retention period and returns
// how many were removed.
func (m *Manager) Sweep() int {
	cutoff := m.opts.Now().Add(-m.opts.Retention)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, r := range m.runners {
		select {
		case <-r.Done():
		default:
			continue
		}
		if r.EndedAt().Before(cutoff) {
			delete(m.runners, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				m.opts.Logger.Debug("swept finished sessions", "count", n)
			}
		}
	}
}

// Shutdown abandons every live session and waits for their settlement
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
