// Package validation checks client-supplied identifiers and filters display
// names shown on public leaderboards.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"wordarcade/internal/models"
)

var sessionIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

// ValidateSessionID checks a client-supplied session id
func ValidateSessionID(id string) error {
	if id == "" {
		return models.ValidationError{Field: "session_id", Message: "session id is required"}
	}
	if !sessionIDRegex.MatchString(id) {
		return models.ValidationError{Field: "session_id", Message: "session id must be 1-64 letters, digits, '-' or '_'"}
	}
	return nil
}

// ValidateSummary checks the numeric fields of a finished session
func ValidateSummary(s models.SessionSummary) error {
	switch {
	case s.Score < 0:
		return models.ValidationError{Field: "score", Message: "score must not be negative"}
	case s.RoundsCompleted < 0:
		return models.ValidationError{Field: "rounds_completed", Message: "rounds completed must not be negative"}
	case s.Missed < 0 || s.Skipped < 0:
		return models.ValidationError{Field: "missed", Message: "counters must not be negative"}
	case s.MaxStreak < 0:
		return models.ValidationError{Field: "max_streak", Message: "max streak must not be negative"}
	case s.DurationMs < 0:
		return models.ValidationError{Field: "duration_ms", Message: "duration must not be negative"}
	}
	return nil
}

// NameFilter hides display names that contain a listed word
type NameFilter struct {
	words []string
}

// NewNameFilter builds a filter from a word list. Entries may span several
// words ("two words"); matching ignores case and punctuation.
func NewNameFilter(words []string) *NameFilter {
	f := &NameFilter{}
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		norm := normalizeName(w)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		f.words = append(f.words, " "+norm+" ")
	}
	return f
}

// IsProfane reports whether name contains a listed word as a whole word
func (f *NameFilter) IsProfane(name string) bool {
	if f == nil || len(f.words) == 0 {
		return false
	}
	padded := " " + normalizeName(name) + " "
	for _, w := range f.words {
		if strings.Contains(padded, w) {
			return true
		}
	}
	return false
}

// DisplayName returns name, or the anonymous placeholder when it is blank or
// profane.
func (f *NameFilter) DisplayName(userID int64, name string) string {
	if strings.TrimSpace(name) == "" || f.IsProfane(name) {
		return PlaceholderName(userID)
	}
	return name
}

// PlaceholderName is the name shown for players without a usable one
func PlaceholderName(userID int64) string {
	return fmt.Sprintf("Player %d", userID)
}

func normalizeName(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, " ")
}
