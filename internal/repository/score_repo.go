package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
)

// ScoreRepository reads and writes personal-best score records. It runs
// against either the pool or an open transaction.
type ScoreRepository struct {
	q database.DBTX
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(q database.DBTX) *ScoreRepository {
	return &ScoreRepository{q: q}
}

const scoreColumns = "id, user_id, game, bucket, score, words_completed, duration_ms, created_at"

func scanScore(row interface{ Scan(...any) error }) (models.ScoreRecord, error) {
	var rec models.ScoreRecord
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Game,
		&rec.Bucket,
		&rec.Score,
		&rec.WordsCompleted,
		&rec.DurationMs,
		&rec.CreatedAt,
	)
	return rec, err
}

// GetBest returns the user's stored best in a bucket, or nil
func (r *ScoreRepository) GetBest(ctx context.Context, userID int64, game models.GameKind, bucket models.Bucket) (*models.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM score_records WHERE user_id = ? AND game = ? AND bucket = ?`
	rec, err := scanScore(r.q.QueryRowContext(ctx, query, userID, game, bucket))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personal best: %w", err)
	}
	return &rec, nil
}

// GetGlobalBest returns the top score in a bucket and its holder, or nil
// when the bucket is empty. Ties go to the earliest record.
func (r *ScoreRepository) GetGlobalBest(ctx context.Context, game models.GameKind, bucket models.Bucket) (*models.GlobalBest, error) {
	query := `
		SELECT user_id, score
		FROM score_records
		WHERE game = ? AND bucket = ?
		ORDER BY score DESC, created_at ASC, user_id ASC
		LIMIT 1
	`
	var best models.GlobalBest
	err := r.q.QueryRowContext(ctx, query, game, bucket).Scan(&best.UserID, &best.Score)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get global best: %w", err)
	}
	return &best, nil
}

// ReplaceBestIfHigher stores rec as the user's best when no best exists or
// rec.Score is strictly higher, in one statement. It reports whether the
// stored best changed.
func (r *ScoreRepository) ReplaceBestIfHigher(ctx context.Context, rec *models.ScoreRecord) (bool, error) {
	res, err := r.q.ExecContext(ctx, r.q.GetDialect().ReplaceBestScoreQuery(),
		rec.UserID, rec.Game, rec.Bucket, rec.Score, rec.WordsCompleted, rec.DurationMs, rec.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to replace personal best: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read replace result: %w", err)
	}
	return n > 0, nil
}

// ListBucket returns every record in a bucket, highest first
func (r *ScoreRepository) ListBucket(ctx context.Context, game models.GameKind, bucket models.Bucket) ([]models.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM score_records WHERE game = ? AND bucket = ? ORDER BY score DESC, created_at ASC`
	return r.list(ctx, query, game, bucket)
}

// ListByUser returns a user's personal bests across all buckets
func (r *ScoreRepository) ListByUser(ctx context.Context, userID int64) ([]models.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM score_records WHERE user_id = ? ORDER BY game, bucket`
	return r.list(ctx, query, userID)
}

// ListAll returns every stored record
func (r *ScoreRepository) ListAll(ctx context.Context) ([]models.ScoreRecord, error) {
	query := `SELECT ` + scoreColumns + ` FROM score_records ORDER BY id`
	return r.list(ctx, query)
}

// Count returns how many records exist for a user in a bucket
func (r *ScoreRepository) Count(ctx context.Context, userID int64, game models.GameKind, bucket models.Bucket) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM score_records WHERE user_id = ? AND game = ? AND bucket = ?`,
		userID, game, bucket).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count score records: %w", err)
	}
	return n, nil
}

func (r *ScoreRepository) list(ctx context.Context, query string, args ...any) ([]models.ScoreRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list score records: %w", err)
	}
	defer rows.Close()

	var records []models.ScoreRecord
	for rows.Next() {
		rec, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
