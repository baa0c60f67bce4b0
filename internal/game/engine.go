// Package game implements the mini-game round engine: a per-session state
// machine driven by ticks and player input, plus the runner and manager that
// host sessions server-side.
package game

import (
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"

	"wordarcade/internal/content"
	"wordarcade/internal/models"
	"wordarcade/internal/scoring"
)

// Config selects what a session plays
type Config struct {
	SessionID string
	Game      models.GameKind
	Bucket    models.Bucket
	// Seed fixes prompt order; sessions with equal seeds see equal prompts.
	Seed uint64
}

// Answer is one player submission. Text carries single-word answers and
// Fields carries conjugation forms keyed by field name.
type Answer struct {
	Text   string            `json:"text"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Outcome reports what an input did to the session
type Outcome struct {
	// Ignored is set when the session was not running and nothing changed.
	Ignored  bool   `json:"ignored"`
	Correct  bool   `json:"correct"`
	Points   int    `json:"points"`
	Perfect  bool   `json:"perfect"`
	LifeLost bool   `json:"life_lost"`
	Status   Status `json:"status"`
}

// Snapshot is a read-only copy of session state
type Snapshot struct {
	SessionID       string          `json:"session_id"`
	Game            models.GameKind `json:"game"`
	Bucket          models.Bucket   `json:"bucket"`
	Status          Status          `json:"status"`
	EndReason       EndReason       `json:"end_reason,omitempty"`
	ElapsedMs       int64           `json:"elapsed_ms"`
	TimeRemainingMs int64           `json:"time_remaining_ms,omitempty"`
	Lives           int             `json:"lives"`
	Score           int             `json:"score"`
	Streak          int             `json:"streak"`
	MaxStreak       int             `json:"max_streak"`
	Combo           string          `json:"combo"`
	RoundsCompleted int             `json:"rounds_completed"`
	Missed          int             `json:"missed"`
	Skipped         int             `json:"skipped"`
	Prompt          *PromptView     `json:"prompt,omitempty"`
}

// Engine drives one session. It has no clock of its own: time only moves
// through Tick, so callers decide what a millisecond is. An Engine is not
// safe for concurrent use; Runner serialises access to it.
type Engine struct {
	catalog *content.Catalog
	rules   scoring.Rules

	cfg    Config
	mode   Mode
	status Status
	reason EndReason

	clockMs         int64
	timeRemainingMs int64
	lives           int
	score           int
	streak          int
	maxStreak       int
	combo           decimal.Decimal
	rounds          int
	missed          int
	skipped         int

	prompt *prompt
	used   map[string]struct{}
	deck   deck
}

// NewEngine creates an idle engine over an immutable content catalog
func NewEngine(catalog *content.Catalog, rules scoring.Rules) *Engine {
	return &Engine{
		catalog: catalog,
		rules:   rules,
		status:  StatusIdle,
		combo:   rules.ComboBase,
		used:    make(map[string]struct{}),
	}
}

// Start moves an idle engine to Running and shows the first prompt
func (e *Engine) Start(cfg Config) error {
	if e.status != StatusIdle {
		return models.ValidationError{Field: "status", Message: "session already started"}
	}
	mode, err := LookupMode(cfg.Game, cfg.Bucket)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.mode = mode
	e.lives = mode.Lives
	e.timeRemainingMs = mode.TotalTimeMs
	e.deck = newDeck(mode, e.catalog, rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)))
	e.status = StatusRunning
	e.spawn()
	return nil
}

// Tick advances session time by deltaMs. Prompts whose deadline passes are
// missed one by one, each replacement spawning at the instant its
// predecessor expired. Ticks outside Running are ignored.
func (e *Engine) Tick(deltaMs int64) Status {
	if e.status != StatusRunning || deltaMs <= 0 {
		return e.status
	}

	remaining := deltaMs
	for remaining > 0 && e.status == StatusRunning {
		step := remaining
		if e.mode.Timed() {
			step = min(step, e.timeRemainingMs)
		}
		expiry := e.prompt.expiresAt()
		if expiry >= 0 {
			step = min(step, expiry-e.clockMs)
		}
		if step < 0 {
			step = 0
		}

		e.clockMs += step
		remaining -= step
		if e.mode.Timed() {
			e.timeRemainingMs -= step
			if e.timeRemainingMs <= 0 {
				e.timeRemainingMs = 0
				e.end(EndTimeUp)
				break
			}
		}

		if expiry >= 0 && e.clockMs >= expiry {
			e.miss()
			continue
		}
		if step == 0 {
			break
		}
	}
	return e.status
}

// SubmitInput checks an answer against the active prompt. Input outside
// Running is ignored. An empty or incomplete answer, or a free-mode word
// already used this session, is rejected with a ValidationError and changes
// nothing.
func (e *Engine) SubmitInput(a Answer) (Outcome, error) {
	if e.status != StatusRunning {
		return Outcome{Ignored: true, Status: e.status}, nil
	}
	if err := e.validate(a); err != nil {
		return Outcome{Status: e.status}, err
	}

	if !e.prompt.matches(e.mode, a, e.catalog) {
		out := Outcome{Status: e.status}
		out.LifeLost = e.fail()
		out.Status = e.status
		return out, nil
	}

	elapsed := e.clockMs - e.prompt.spawnAt
	perfect := e.rules.IsPerfect(elapsed)

	e.streak = e.rules.NextStreak(e.streak, true)
	e.maxStreak = max(e.maxStreak, e.streak)
	e.combo = e.rules.NextCombo(e.streak, true)
	points := e.rules.PointsForCorrectAnswer(e.streak, e.combo, elapsed, perfect)
	e.score += points
	e.rounds++

	key := e.prompt.key
	if e.mode.Match == MatchFree {
		key = normalize(a.Text, false)
	}
	e.used[key] = struct{}{}
	e.spawn()

	return Outcome{Correct: true, Points: points, Perfect: perfect, Status: e.status}, nil
}

// Skip abandons the active prompt. It breaks the streak but costs no life.
func (e *Engine) Skip() Outcome {
	if e.status != StatusRunning {
		return Outcome{Ignored: true, Status: e.status}
	}
	e.resetStreak()
	e.skipped++
	e.spawn()
	return Outcome{Status: e.status}
}

// Pause freezes a running session
func (e *Engine) Pause() error {
	switch e.status {
	case StatusRunning:
		e.status = StatusPaused
	case StatusIdle:
		return models.ValidationError{Field: "status", Message: "session not started"}
	}
	return nil
}

// Resume continues a paused session
func (e *Engine) Resume() error {
	switch e.status {
	case StatusPaused:
		e.status = StatusRunning
	case StatusIdle:
		return models.ValidationError{Field: "status", Message: "session not started"}
	}
	return nil
}

// Abandon ends a running or paused session early. The score so far stands.
func (e *Engine) Abandon() {
	if e.status == StatusRunning || e.status == StatusPaused {
		e.end(EndAbandoned)
	}
}

// Status returns the current lifecycle state
func (e *Engine) Status() Status {
	return e.status
}

// Snapshot returns a copy of the session state
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:       e.cfg.SessionID,
		Game:            e.cfg.Game,
		Bucket:          e.cfg.Bucket,
		Status:          e.status,
		EndReason:       e.reason,
		ElapsedMs:       e.clockMs,
		TimeRemainingMs: e.timeRemainingMs,
		Lives:           e.lives,
		Score:           e.score,
		Streak:          e.streak,
		MaxStreak:       e.maxStreak,
		Combo:           e.combo.String(),
		RoundsCompleted: e.rounds,
		Missed:          e.missed,
		Skipped:         e.skipped,
	}
	if e.prompt != nil && e.status != StatusEnded {
		s.Prompt = e.promptView()
	}
	return s
}

// Summary returns the settlement summary of an ended session
func (e *Engine) Summary() (models.SessionSummary, error) {
	if e.status != StatusEnded {
		return models.SessionSummary{}, models.ValidationError{Field: "status", Message: "session has not ended"}
	}
	return models.SessionSummary{
		SessionID:       e.cfg.SessionID,
		Game:            e.cfg.Game,
		Bucket:          e.cfg.Bucket,
		Score:           e.score,
		RoundsCompleted: e.rounds,
		Missed:          e.missed,
		Skipped:         e.skipped,
		MaxStreak:       e.maxStreak,
		DurationMs:      e.clockMs,
	}, nil
}

func (e *Engine) validate(a Answer) error {
	if e.mode.Match == MatchFields {
		for _, f := range e.mode.Fields {
			if strings.TrimSpace(a.Fields[f]) == "" {
				return models.ValidationError{Field: f, Message: "answer is required"}
			}
		}
		return nil
	}

	text := normalize(a.Text, false)
	if text == "" {
		return models.ValidationError{Field: "text", Message: "answer is required"}
	}
	if e.mode.Match == MatchFree {
		if _, ok := e.used[text]; ok {
			return models.ValidationError{Field: "text", Message: "word already used"}
		}
	}
	return nil
}

// fail applies a wrong answer. The prompt stays active.
func (e *Engine) fail() bool {
	e.resetStreak()
	return e.loseLife()
}

// miss applies an expired prompt and moves on to the next one
func (e *Engine) miss() {
	e.missed++
	e.resetStreak()
	e.loseLife()
	if e.status == StatusRunning {
		e.spawn()
	}
}

func (e *Engine) loseLife() bool {
	if !e.mode.LifeBased() {
		return false
	}
	e.lives--
	if e.lives <= 0 {
		e.lives = 0
		e.end(EndOutOfLives)
	}
	return true
}

func (e *Engine) resetStreak() {
	e.streak = e.rules.NextStreak(e.streak, false)
	e.combo = e.rules.NextCombo(e.streak, false)
}

func (e *Engine) spawn() {
	p, ok := e.deck.next(e.used)
	if !ok {
		e.prompt = nil
		e.end(EndExhausted)
		return
	}
	p.spawnAt = e.clockMs
	p.deadline = e.mode.DeadlineMs
	e.prompt = p
}

func (e *Engine) end(reason EndReason) {
	e.status = StatusEnded
	e.reason = reason
}

func (e *Engine) promptView() *PromptView {
	p := e.prompt
	v := &PromptView{
		Text:       p.text,
		AgeMs:      e.clockMs - p.spawnAt,
		DeadlineMs: p.deadline,
	}
	if e.mode.Match == MatchFields {
		v.Fields = append([]string(nil), e.mode.Fields...)
	}
	if e.mode.Match == MatchFree {
		v.Letter = p.text
	}
	if p.deadline > 0 {
		v.Progress = min(float64(v.AgeMs)/float64(p.deadline), 1)
	}
	return v
}
