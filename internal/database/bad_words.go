package database

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const badWordsURL = "https://raw.githubusercontent.com/LDNOOBW/List-of-Dirty-Naughty-Obscene-and-Otherwise-Bad-Words/refs/heads/master/en"

// SeedBadWords fetches the public bad words list and stores it for the
// leaderboard display-name filter. It is a no-op when the table is populated.
func (db *DB) SeedBadWords(ctx context.Context) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bad_words").Scan(&count); err != nil {
		return fmt.Errorf("failed to check bad words count: %w", err)
	}

	if count > 0 {
		slog.Info("bad words filter already populated", "count", count)
		return nil
	}

	slog.Info("downloading bad words list")

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, badWordsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build bad words request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download bad words list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code from bad words URL: %d", resp.StatusCode)
	}

	added, err := db.ImportBadWords(ctx, resp.Body)
	if err != nil {
		return err
	}

	slog.Info("bad words filter populated", "count", added)
	return nil
}

// ImportBadWords inserts one word per line from r, skipping blanks and words
// already stored, and returns how many rows were added.
func (db *DB) ImportBadWords(ctx context.Context, r io.Reader) (int, error) {
	added := 0

	err := db.WithTx(ctx, func(tx *Tx) error {
		seen, err := loadBadWords(ctx, tx)
		if err != nil {
			return err
		}

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			word := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if word == "" {
				continue
			}
			if _, ok := seen[word]; ok {
				continue
			}
			seen[word] = struct{}{}

			if _, err := tx.ExecContext(ctx, "INSERT INTO bad_words (word) VALUES (?)", word); err != nil {
				return fmt.Errorf("failed to insert bad word: %w", err)
			}
			added++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading bad words: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func loadBadWords(ctx context.Context, q DBTX) (map[string]struct{}, error) {
	rows, err := q.QueryContext(ctx, "SELECT word FROM bad_words")
	if err != nil {
		return nil, fmt.Errorf("failed to load bad words: %w", err)
	}
	defer rows.Close()

	words := make(map[string]struct{})
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words[w] = struct{}{}
	}
	return words, rows.Err()
}
