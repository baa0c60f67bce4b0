package models

import "time"

// ScoreRecord is a player's personal best within one (game, bucket).
// At most one row exists per (user, game, bucket).
type ScoreRecord struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Game           GameKind  `json:"game"`
	Bucket         Bucket    `json:"bucket"`
	Score          int       `json:"score"`
	WordsCompleted int       `json:"words_completed"`
	DurationMs     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// GlobalBest is the highest stored score in a bucket and who holds it
type GlobalBest struct {
	UserID int64
	Score  int
}

// Wallet holds a player's accumulated progression. Level is always derived
// from XP.
type Wallet struct {
	UserID    int64     `json:"user_id"`
	XP        int64     `json:"xp"`
	Gold      int64     `json:"gold"`
	Level     int       `json:"level"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rewards is what one settled session earns
type Rewards struct {
	XPEarned   int `json:"xp_earned"`
	GoldEarned int `json:"gold_earned"`
}

// Settlement records that a session id has been applied, so a retried
// submission of the same session is answered without re-applying it.
type Settlement struct {
	SessionID       string    `json:"session_id"`
	UserID          int64     `json:"user_id"`
	Game            GameKind  `json:"game"`
	Bucket          Bucket    `json:"bucket"`
	Score           int       `json:"score"`
	XPEarned        int       `json:"xp_earned"`
	GoldEarned      int       `json:"gold_earned"`
	NewPersonalBest bool      `json:"new_personal_best"`
	NewGlobalBest   bool      `json:"new_global_best"`
	SettledAt       time.Time `json:"settled_at"`
}

// SubmitResult is the outcome of settling one session summary
type SubmitResult struct {
	Rewards           Rewards      `json:"rewards"`
	IsNewPersonalBest bool         `json:"is_new_personal_best"`
	IsNewGlobalBest   bool         `json:"is_new_global_best"`
	PersonalBest      *ScoreRecord `json:"personal_best,omitempty"`
	Wallet            *Wallet      `json:"wallet,omitempty"`
	LevelUp           bool         `json:"level_up"`
	Duplicate         bool         `json:"duplicate"`

	// PreviousChampion is the user who held the global best before this
	// submission took it, or zero.
	PreviousChampion int64 `json:"-"`
}

// LeaderboardEntry is a query-time ranking row; it is never stored
type LeaderboardEntry struct {
	Rank        int        `json:"rank"`
	UserID      int64      `json:"user_id"`
	DisplayName string     `json:"display_name"`
	Score       int        `json:"score"`
	CreatedAt   time.Time  `json:"created_at"`
	Cosmetics   []Cosmetic `json:"cosmetics"`
}
