package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wordarcade/internal/models"
	"wordarcade/internal/scoring"
)

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop() { f.stopped.Store(true) }

// fakeClock hands out tickers the test fires by hand
type fakeClock struct {
	base time.Time
	ms   atomic.Int64

	mu      sync.Mutex
	tickers []*fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{base: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.base.Add(time.Duration(c.ms.Load()) * time.Millisecond)
}

func (c *fakeClock) advance(ms int64) time.Time {
	c.ms.Add(ms)
	return c.now()
}

func (c *fakeClock) newTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

// ticker waits for the runner to create its i-th ticker
func (c *fakeClock) ticker(i int) *fakeTicker {
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		if i < len(c.tickers) {
			t := c.tickers[i]
			c.mu.Unlock()
			return t
		}
		c.mu.Unlock()
		if time.Now().After(deadline) {
			panic("ticker was never created")
		}
		time.Sleep(time.Millisecond)
	}
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

type settleRecorder struct {
	mu        sync.Mutex
	calls     int
	summaries []models.SessionSummary
	err       error
}

func (s *settleRecorder) settle(_ context.Context, _ int64, summary models.SessionSummary) (*models.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.summaries = append(s.summaries, summary)
	if s.err != nil {
		return nil, s.err
	}
	return &models.SubmitResult{Rewards: models.Rewards{XPEarned: summary.RoundsCompleted}}, nil
}

func (s *settleRecorder) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func startRunner(t *testing.T, clock *fakeClock, rec *settleRecorder) (*Runner, context.CancelFunc) {
	t.Helper()
	e := startEngine(t, models.GameFallingWords, models.BucketEasy)
	r := NewRunner("s-1", 42, e, rec.settle, RunnerOptions{
		Interval:  100 * time.Millisecond,
		NewTicker: clock.newTicker,
		Now:       clock.now,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go r.Run(ctx)
	t.Cleanup(cancel)
	return r, cancel
}

func waitDone(t *testing.T, r *Runner) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not finish")
	}
}

func TestRunnerTicksUntilEndAndSettlesOnce(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{}
	r, _ := startRunner(t, clock, rec)

	// Each tick carries one full prompt deadline.
	for range 3 {
		clock.ticker(0).c <- clock.advance(6000)
	}
	waitDone(t, r)

	if got := rec.count(); got != 1 {
		t.Fatalf("settle called %d times, want 1", got)
	}
	sum := rec.summaries[0]
	if sum.Missed != 3 || sum.DurationMs != 18_000 || sum.SessionID != "s-1" {
		t.Errorf("summary = %+v", sum)
	}

	view := r.View()
	if view.Status != StatusEnded || !view.Settled || view.Result == nil {
		t.Errorf("view = %+v", view)
	}
	if !clock.ticker(0).stopped.Load() {
		t.Error("ticker not stopped after end")
	}

	out, err := r.Submit(context.Background(), Answer{Text: "cat"})
	if err != nil || !out.Ignored {
		t.Errorf("submit after end = %+v, %v", out, err)
	}
	if got := rec.count(); got != 1 {
		t.Errorf("settle called %d times after late input, want 1", got)
	}
}

func TestRunnerCommandsAreVisibleImmediately(t *testing.T) {
	clock := newFakeClock()
	r, _ := startRunner(t, clock, &settleRecorder{})

	word := r.View().Prompt.Text
	out, err := r.Submit(context.Background(), Answer{Text: word})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Correct {
		t.Fatalf("outcome = %+v", out)
	}
	if view := r.View(); view.Score != out.Points || view.RoundsCompleted != 1 {
		t.Errorf("view after submit = %+v", view)
	}

	_, err = r.Submit(context.Background(), Answer{Text: ""})
	if !models.IsValidation(err) {
		t.Errorf("empty submit = %v, want ValidationError", err)
	}
}

func TestRunnerPauseExcludesPausedTime(t *testing.T) {
	clock := newFakeClock()
	r, _ := startRunner(t, clock, &settleRecorder{})
	ctx := context.Background()

	clock.ticker(0).c <- clock.advance(2000)

	if _, err := r.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	if !clock.ticker(0).stopped.Load() {
		t.Fatal("ticker still running while paused")
	}
	if r.View().Status != StatusPaused {
		t.Fatalf("status = %s, want paused", r.View().Status)
	}

	// A long pause must not reach the engine.
	clock.advance(60_000)

	if _, err := r.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	if n := clock.tickerCount(); n != 2 {
		t.Fatalf("ticker count = %d, want 2 after resume", n)
	}
	clock.ticker(1).c <- clock.advance(1000)

	// Round-trip a command so the tick is processed before reading.
	if _, err := r.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	view := r.View()
	if view.ElapsedMs != 3000 {
		t.Errorf("elapsed = %d, want 3000", view.ElapsedMs)
	}
	if view.Missed != 0 {
		t.Errorf("missed = %d, want 0", view.Missed)
	}
}

func TestRunnerPauseBetweenTicksKeepsRunningTime(t *testing.T) {
	clock := newFakeClock()
	r, _ := startRunner(t, clock, &settleRecorder{})
	ctx := context.Background()

	clock.ticker(0).c <- clock.advance(1000)
	// Three seconds of play with no tick before the pause.
	clock.advance(3000)

	if _, err := r.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	if got := r.View().ElapsedMs; got != 4000 {
		t.Fatalf("elapsed at pause = %d, want 4000", got)
	}

	clock.advance(60_000)
	if _, err := r.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	clock.ticker(1).c <- clock.advance(1500)

	if _, err := r.Pause(ctx); err != nil {
		t.Fatal(err)
	}
	view := r.View()
	if view.ElapsedMs != 5500 {
		t.Errorf("elapsed = %d, want 5500", view.ElapsedMs)
	}
	if view.Missed != 0 {
		t.Errorf("missed = %d, want 0", view.Missed)
	}
}

func TestRunnerQuickPausesStillExpirePrompts(t *testing.T) {
	clock := newFakeClock()
	r, _ := startRunner(t, clock, &settleRecorder{})
	ctx := context.Background()

	// Easy prompts last 6000ms. Pausing just before every tick must not
	// stop that clock.
	for range 6 {
		clock.advance(99)
		if _, err := r.Pause(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := r.Resume(ctx); err != nil {
			t.Fatal(err)
		}
		clock.advance(900)
		if _, err := r.Skip(ctx); err != nil {
			t.Fatal(err)
		}
	}
	// 5994ms played, six prompts skipped; the seventh spawned at 5994.
	view := r.View()
	if view.ElapsedMs != 5994 || view.Skipped != 6 {
		t.Fatalf("view = elapsed %d skipped %d, want 5994 and 6", view.ElapsedMs, view.Skipped)
	}

	clock.advance(6000)
	out, err := r.Submit(ctx, Answer{Text: "late"})
	if err != nil {
		t.Fatal(err)
	}
	if out.Correct {
		t.Error("answer after the deadline was accepted")
	}
	view = r.View()
	if view.Missed != 1 {
		t.Errorf("missed = %d, want 1", view.Missed)
	}
	if view.ElapsedMs != 11_994 {
		t.Errorf("elapsed = %d, want 11994", view.ElapsedMs)
	}
}

func TestRunnerCancelAbandonsAndSettles(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{}
	r, cancel := startRunner(t, clock, rec)

	cancel()
	waitDone(t, r)

	if rec.count() != 1 {
		t.Fatalf("settle called %d times, want 1", rec.count())
	}
	if got := r.View().EndReason; got != EndAbandoned {
		t.Errorf("end reason = %s, want %s", got, EndAbandoned)
	}
}

func TestRunnerRecordsSettleFailure(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{err: errors.New("database unavailable")}
	r, _ := startRunner(t, clock, rec)

	if _, err := r.Abandon(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitDone(t, r)

	view := r.View()
	if view.Settled {
		t.Error("failed settlement reported as settled")
	}
	if view.SettleError == "" {
		t.Error("settle error not recorded")
	}
}

func TestManagerLifecycle(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{}
	m := NewManager(testCatalog(t), scoring.Default(), rec.settle, ManagerOptions{
		Retention: time.Minute,
		NewTicker: clock.newTicker,
		Now:       clock.now,
	})

	if _, err := m.Start(1, models.GameConjugation, models.BucketFree); !models.IsValidation(err) {
		t.Fatalf("Start() with bad bucket = %v, want ConfigError", err)
	}

	r, err := m.Start(1, models.GameWordGuess, models.BucketEasy)
	if err != nil {
		t.Fatal(err)
	}
	if r.UserID() != 1 || r.ID() == "" {
		t.Errorf("runner identity = %q/%d", r.ID(), r.UserID())
	}

	got, err := m.Get(r.ID())
	if err != nil || got != r {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if _, err := m.Get("missing"); !models.IsNotFound(err) {
		t.Errorf("Get(missing) = %v, want NotFoundError", err)
	}

	if _, err := r.Abandon(context.Background()); err != nil {
		t.Fatal(err)
	}
	waitDone(t, r)

	if n := m.Sweep(); n != 0 {
		t.Errorf("swept %d sessions inside retention", n)
	}
	clock.advance(int64(2 * time.Minute / time.Millisecond))
	if n := m.Sweep(); n != 1 {
		t.Errorf("swept %d sessions, want 1", n)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
}

func TestManagerShutdownSettlesLiveSessions(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{}
	m := NewManager(testCatalog(t), scoring.Default(), rec.settle, ManagerOptions{
		NewTicker: clock.newTicker,
		Now:       clock.now,
	})

	for range 3 {
		if _, err := m.Start(7, models.GameFallingWords, models.BucketMedium); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if rec.count() != 3 {
		t.Errorf("settled %d sessions, want 3", rec.count())
	}

	if _, err := m.Start(7, models.GameFallingWords, models.BucketMedium); !errors.Is(err, ErrShuttingDown) {
		t.Errorf("Start() after shutdown = %v, want ErrShuttingDown", err)
	}
}

func TestManagerStartRacingShutdown(t *testing.T) {
	clock := newFakeClock()
	rec := &settleRecorder{}
	m := NewManager(testCatalog(t), scoring.Default(), rec.settle, ManagerOptions{
		NewTicker: clock.newTicker,
		Now:       clock.now,
	})

	var (
		wg      sync.WaitGroup
		started atomic.Int64
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Start(3, models.GameWordGuess, models.BucketMedium)
			switch {
			case err == nil:
				started.Add(1)
			case !errors.Is(err, ErrShuttingDown):
				t.Errorf("Start() = %v", err)
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := m.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	// Every session admitted before the shutdown was settled by it.
	if got := int64(rec.count()); got != started.Load() {
		t.Errorf("settled %d sessions, started %d", got, started.Load())
	}
}
