package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
)

// SettlementRepository records which sessions have been settled
type SettlementRepository struct {
	q database.DBTX
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(q database.DBTX) *SettlementRepository {
	return &SettlementRepository{q: q}
}

const settlementColumns = "session_id, user_id, game, bucket, score, xp_earned, gold_earned, new_personal_best, new_global_best, settled_at"

func scanSettlement(row interface{ Scan(...any) error }) (models.Settlement, error) {
	var s models.Settlement
	err := row.Scan(
		&s.SessionID,
		&s.UserID,
		&s.Game,
		&s.Bucket,
		&s.Score,
		&s.XPEarned,
		&s.GoldEarned,
		&s.NewPersonalBest,
		&s.NewGlobalBest,
		&s.SettledAt,
	)
	return s, err
}

// Get returns the settlement for a session id, or nil
func (r *SettlementRepository) Get(ctx context.Context, sessionID string) (*models.Settlement, error) {
	s, err := scanSettlement(r.q.QueryRowContext(ctx,
		`SELECT `+settlementColumns+` FROM settlements WHERE session_id = ?`, sessionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return &s, nil
}

// Insert records a settlement. A second insert for the same session id
// fails with the backend's unique violation.
func (r *SettlementRepository) Insert(ctx context.Context, s *models.Settlement) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO settlements (`+settlementColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.SessionID, s.UserID, s.Game, s.Bucket, s.Score, s.XPEarned, s.GoldEarned,
		s.NewPersonalBest, s.NewGlobalBest, s.SettledAt)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// ListAll returns every settlement, oldest first
func (r *SettlementRepository) ListAll(ctx context.Context) ([]models.Settlement, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+settlementColumns+` FROM settlements ORDER BY settled_at, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var out []models.Settlement
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByUser returns how many sessions a user has settled
func (r *SettlementRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM settlements WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count settlements: %w", err)
	}
	return n, nil
}
