package game

import (
	"wordarcade/internal/content"
	"wordarcade/internal/models"
)

// MatchRule decides how an answer is checked against the active prompt
type MatchRule int

const (
	// MatchExact accepts only the prompt's word.
	MatchExact MatchRule = iota
	// MatchFree accepts any dictionary word starting with the prompt letter.
	MatchFree
	// MatchFields requires every conjugation field of the mode.
	MatchFields
	// MatchUnscramble shows a shuffled word and accepts the original.
	MatchUnscramble
)

// Mode is the rule set for one (game, bucket)
type Mode struct {
	Game   models.GameKind
	Bucket models.Bucket

	// TotalTimeMs is the session countdown; zero means untimed.
	TotalTimeMs int64
	// Lives is the starting life count; zero means failures cost nothing.
	Lives int
	// DeadlineMs is how long each prompt stays on screen; zero means forever.
	DeadlineMs int64

	Match         MatchRule
	Fields        []string
	CaseSensitive bool
}

// LifeBased reports whether failures and misses cost lives
func (m Mode) LifeBased() bool {
	return m.Lives > 0
}

// Timed reports whether the session ends when its countdown runs out
func (m Mode) Timed() bool {
	return m.TotalTimeMs > 0
}

type modeKey struct {
	game   models.GameKind
	bucket models.Bucket
}

var modes = map[modeKey]Mode{
	{models.GameFallingWords, models.BucketEasy}:   {Lives: 3, DeadlineMs: 6000, Match: MatchExact},
	{models.GameFallingWords, models.BucketMedium}: {Lives: 3, DeadlineMs: 4500, Match: MatchExact},
	{models.GameFallingWords, models.BucketHard}:   {Lives: 3, DeadlineMs: 3000, Match: MatchExact, CaseSensitive: true},
	{models.GameFallingWords, models.BucketFree}:   {Lives: 3, DeadlineMs: 8000, Match: MatchFree},

	{models.GameConjugation, models.BucketEasy}: {
		TotalTimeMs: 60_000, Match: MatchFields,
		Fields: []string{content.FieldPastSimple},
	},
	{models.GameConjugation, models.BucketMedium}: {
		TotalTimeMs: 60_000, Match: MatchFields,
		Fields: []string{content.FieldPastSimple, content.FieldPastParticiple},
	},
	{models.GameConjugation, models.BucketHard}: {
		TotalTimeMs: 60_000, Match: MatchFields,
		Fields: []string{content.FieldPastSimple, content.FieldPastParticiple, content.FieldTranslation},
	},

	{models.GameWordGuess, models.BucketEasy}:   {Lives: 3, DeadlineMs: 15_000, Match: MatchUnscramble},
	{models.GameWordGuess, models.BucketMedium}: {Lives: 3, DeadlineMs: 12_000, Match: MatchUnscramble},
	{models.GameWordGuess, models.BucketHard}:   {Lives: 3, DeadlineMs: 9_000, Match: MatchUnscramble},
}

// LookupMode returns the rules for a game and bucket, or a ConfigError when
// the pair is not playable.
func LookupMode(game models.GameKind, bucket models.Bucket) (Mode, error) {
	if !KnownGame(game) {
		return Mode{}, models.ConfigError{Field: "game", Value: string(game)}
	}
	m, ok := modes[modeKey{game, bucket}]
	if !ok {
		return Mode{}, models.ConfigError{Field: "bucket", Value: string(bucket)}
	}
	m.Game = game
	m.Bucket = bucket
	m.Fields = append([]string(nil), m.Fields...)
	return m, nil
}

// KnownGame reports whether game is one of the arcade games
func KnownGame(game models.GameKind) bool {
	switch game {
	case models.GameFallingWords, models.GameConjugation, models.GameWordGuess:
		return true
	}
	return false
}

// ValidBucket reports whether (game, bucket) names a playable leaderboard
func ValidBucket(game models.GameKind, bucket models.Bucket) bool {
	_, ok := modes[modeKey{game, bucket}]
	return ok
}
