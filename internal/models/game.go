package models

// GameKind identifies one of the arcade mini-games
type GameKind string

const (
	GameFallingWords GameKind = "falling_words"
	GameConjugation  GameKind = "conjugation"
	GameWordGuess    GameKind = "word_guess"
)

// Bucket is the difficulty or mode partition under which bests and
// leaderboards are kept separate within a game.
type Bucket string

const (
	BucketEasy   Bucket = "easy"
	BucketMedium Bucket = "medium"
	BucketHard   Bucket = "hard"
	BucketFree   Bucket = "free"
)

// SessionSummary is what a finished session hands to settlement
type SessionSummary struct {
	SessionID       string   `json:"session_id"`
	Game            GameKind `json:"game"`
	Bucket          Bucket   `json:"bucket"`
	Score           int      `json:"score"`
	RoundsCompleted int      `json:"rounds_completed"`
	Missed          int      `json:"missed"`
	Skipped         int      `json:"skipped"`
	MaxStreak       int      `json:"max_streak"`
	DurationMs      int64    `json:"duration_ms"`
}
