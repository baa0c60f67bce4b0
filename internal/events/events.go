// Package events announces settled sessions to other services.
package events

import (
	"context"
	"time"

	"wordarcade/internal/models"
)

// TypeScoreSettled is the event type carried by every settlement message
const TypeScoreSettled = "score.settled"

// ScoreSettled describes one applied settlement
type ScoreSettled struct {
	Type              string          `json:"type"`
	SessionID         string          `json:"session_id"`
	UserID            int64           `json:"user_id"`
	Game              models.GameKind `json:"game"`
	Bucket            models.Bucket   `json:"bucket"`
	Score             int             `json:"score"`
	XPEarned          int             `json:"xp_earned"`
	GoldEarned        int             `json:"gold_earned"`
	IsNewPersonalBest bool            `json:"is_new_personal_best"`
	IsNewGlobalBest   bool            `json:"is_new_global_best"`
	Level             int             `json:"level"`
	LevelUp           bool            `json:"level_up"`
	SettledAt         time.Time       `json:"settled_at"`
}

// Publisher delivers settlement events. Delivery is best effort; callers log
// failures and carry on.
type Publisher interface {
	PublishSettled(ctx context.Context, ev ScoreSettled) error
	Close() error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishSettled(context.Context, ScoreSettled) error { return nil }

func (Nop) Close() error { return nil }
