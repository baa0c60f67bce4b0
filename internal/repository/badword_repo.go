package repository

import (
	"context"
	"fmt"
	"strings"

	"wordarcade/internal/database"
)

// BadWordRepository reads the display-name profanity list
type BadWordRepository struct {
	q database.DBTX
}

// NewBadWordRepository creates a new bad word repository
func NewBadWordRepository(q database.DBTX) *BadWordRepository {
	return &BadWordRepository{q: q}
}

// List returns every stored word, lowercased
func (r *BadWordRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT word FROM bad_words`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bad words: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("failed to scan bad word: %w", err)
		}
		words = append(words, strings.ToLower(w))
	}
	return words, rows.Err()
}
