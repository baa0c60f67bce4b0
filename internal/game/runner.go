package game

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wordarcade/internal/models"
)

// SettleFunc turns an ended session into persisted rewards. A Runner calls
// it exactly once.
type SettleFunc func(ctx context.Context, userID int64, summary models.SessionSummary) (*models.SubmitResult, error)

// Ticker is the timer source that drives a Runner
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates a Ticker firing every d
type NewTickerFunc func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop() { r.t.Stop() }

// NewRealTicker wraps time.NewTicker
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// View is what clients see of a hosted session: the engine snapshot plus
// its settlement state. Ended always precedes Settled.
type View struct {
	Snapshot
	Settled     bool                 `json:"settled"`
	Result      *models.SubmitResult `json:"result,omitempty"`
	SettleError string               `json:"settle_error,omitempty"`
}

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdSkip
	cmdPause
	cmdResume
	cmdAbandon
)

type command struct {
	kind   commandKind
	answer Answer
	reply  chan reply
}

type reply struct {
	outcome Outcome
	err     error
}

// Runner hosts one Engine on its own goroutine. Ticks and player commands
// are consumed from a single loop so the engine is never touched
// concurrently.
type Runner struct {
	id     string
	userID int64
	engine *Engine

	interval  time.Duration
	newTicker NewTickerFunc
	now       func() time.Time
	settle    SettleFunc
	logger    *slog.Logger

	commands chan command
	done     chan struct{}

	mu      sync.RWMutex
	view    View
	endedAt time.Time
}

// RunnerOptions configures a Runner. Zero values select real time.
type RunnerOptions struct {
	Interval  time.Duration
	NewTicker NewTickerFunc
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewRunner wraps a started engine. Call Run to begin the loop.
func NewRunner(id string, userID int64, engine *Engine, settle SettleFunc, opts RunnerOptions) *Runner {
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.NewTicker == nil {
		opts.NewTicker = NewRealTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	r := &Runner{
		id:        id,
		userID:    userID,
		engine:    engine,
		interval:  opts.Interval,
		newTicker: opts.NewTicker,
		now:       opts.Now,
		settle:    settle,
		logger:    opts.Logger.With("session_id", id),
		commands:  make(chan command),
		done:      make(chan struct{}),
	}
	r.view = View{Snapshot: engine.Snapshot()}
	return r
}

// ID returns the session id
func (r *Runner) ID() string { return r.id }

// UserID returns the player who owns the session
func (r *Runner) UserID() int64 { return r.userID }

// Done is closed once the session has ended and been settled
func (r *Runner) Done() <-chan struct{} { return r.done }

// View returns the latest published state
func (r *Runner) View() View {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view
}

// EndedAt returns when the session finished, or the zero time
func (r *Runner) EndedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.endedAt
}

// Submit sends an answer to the session
func (r *Runner) Submit(ctx context.Context, a Answer) (Outcome, error) {
	return r.send(ctx, command{kind: cmdSubmit, answer: a})
}

// Skip skips the active prompt
func (r *Runner) Skip(ctx context.Context) (Outcome, error) {
	return r.send(ctx, command{kind: cmdSkip})
}

// Pause suspends the session clock
func (r *Runner) Pause(ctx context.Context) (Outcome, error) {
	return r.send(ctx, command{kind: cmdPause})
}

// Resume restarts the session clock
func (r *Runner) Resume(ctx context.Context) (Outcome, error) {
	return r.send(ctx, command{kind: cmdResume})
}

// Abandon ends the session early
func (r *Runner) Abandon(ctx context.Context) (Outcome, error) {
	return r.send(ctx, command{kind: cmdAbandon})
}

func (r *Runner) send(ctx context.Context, cmd command) (Outcome, error) {
	cmd.reply = make(chan reply, 1)
	select {
	case r.commands <- cmd:
	case <-r.done:
		return Outcome{Ignored: true, Status: StatusEnded}, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	select {
	case rep := <-cmd.reply:
		return rep.outcome, rep.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Run drives the session until it ends, settles it, then returns. Cancelling
// ctx abandons the session; the settlement still runs.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	last := r.now()
	ticker := r.newTicker(r.interval)
	tickC := ticker.C()
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
		}
	}
	defer stop()

	// catchUp hands the engine the running time since the last tick so
	// commands between ticks see a current clock.
	catchUp := func() {
		if r.engine.Status() != StatusRunning {
			return
		}
		if delta := r.now().Sub(last).Milliseconds(); delta > 0 {
			last = last.Add(time.Duration(delta) * time.Millisecond)
			r.engine.Tick(delta)
		}
	}

	for r.engine.Status() != StatusEnded {
		var (
			pending *command
			rep     reply
		)

		select {
		case <-ctx.Done():
			catchUp()
			r.engine.Abandon()

		case t := <-tickC:
			delta := t.Sub(last).Milliseconds()
			if delta > 0 {
				last = last.Add(time.Duration(delta) * time.Millisecond)
				r.engine.Tick(delta)
			}

		case cmd := <-r.commands:
			catchUp()
			switch cmd.kind {
			case cmdSubmit:
				rep.outcome, rep.err = r.engine.SubmitInput(cmd.answer)
			case cmdSkip:
				rep.outcome = r.engine.Skip()
			case cmdPause:
				rep.err = r.engine.Pause()
				if r.engine.Status() == StatusPaused {
					stop()
				}
			case cmdResume:
				wasPaused := r.engine.Status() == StatusPaused
				rep.err = r.engine.Resume()
				if wasPaused && r.engine.Status() == StatusRunning {
					ticker = r.newTicker(r.interval)
					tickC = ticker.C()
					last = r.now()
				}
			case cmdAbandon:
				r.engine.Abandon()
			}
			rep.outcome.Status = r.engine.Status()
			pending = &cmd
		}

		// Publish before replying so a caller always reads its own write.
		r.publish()
		if pending != nil {
			pending.reply <- rep
		}
	}

	stop()
	r.mu.Lock()
	r.endedAt = r.now()
	r.mu.Unlock()

	r.finish(ctx)
}

func (r *Runner) publish() {
	snap := r.engine.Snapshot()
	r.mu.Lock()
	r.view.Snapshot = snap
	r.mu.Unlock()
}

func (r *Runner) finish(ctx context.Context) {
	summary, err := r.engine.Summary()
	if err != nil {
		r.logger.Error("ended session has no summary", "error", err)
		return
	}

	r.logger.Info("session ended",
		"user_id", r.userID,
		"game", summary.Game,
		"bucket", summary.Bucket,
		"score", summary.Score,
		"rounds", summary.RoundsCompleted,
		"reason", r.engine.Snapshot().EndReason)

	var (
		result    *models.SubmitResult
		settleErr error
	)
	if r.settle != nil {
		settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		result, settleErr = r.settle(settleCtx, r.userID, summary)
		cancel()
		if settleErr != nil {
			r.logger.Error("failed to settle session", "error", settleErr)
		}
	}

	r.mu.Lock()
	r.view.Snapshot = r.engine.Snapshot()
	r.view.Settled = settleErr == nil && r.settle != nil
	r.view.Result = result
	if settleErr != nil {
		r.view.SettleError = settleErr.Error()
	}
	r.mu.Unlock()
}
