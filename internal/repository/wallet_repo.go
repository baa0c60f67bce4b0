package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
)

// WalletRepository handles player XP, gold and level
type WalletRepository struct {
	q database.DBTX
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(q database.DBTX) *WalletRepository {
	return &WalletRepository{q: q}
}

// Get returns a user's wallet, or nil if they have never been credited
func (r *WalletRepository) Get(ctx context.Context, userID int64) (*models.Wallet, error) {
	w := &models.Wallet{}
	err := r.q.QueryRowContext(ctx,
		`SELECT user_id, xp, gold, level, updated_at FROM wallets WHERE user_id = ?`, userID,
	).Scan(&w.UserID, &w.XP, &w.Gold, &w.Level, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return w, nil
}

// Add credits xp and gold in a single statement, creating the wallet on
// first use. Concurrent adds never lose an increment.
func (r *WalletRepository) Add(ctx context.Context, userID, xp, gold int64, at time.Time) error {
	if _, err := r.q.ExecContext(ctx, r.q.GetDialect().AddToWalletQuery(), userID, xp, gold, at); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

// SetLevel stores the level derived from the wallet's XP
func (r *WalletRepository) SetLevel(ctx context.Context, userID int64, level int) error {
	if _, err := r.q.ExecContext(ctx, `UPDATE wallets SET level = ? WHERE user_id = ?`, level, userID); err != nil {
		return fmt.Errorf("failed to set level: %w", err)
	}
	return nil
}

// Insert creates a wallet with explicit balances. Used when restoring a
// backup; it fails if the wallet already exists.
func (r *WalletRepository) Insert(ctx context.Context, w *models.Wallet) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO wallets (user_id, xp, gold, level, updated_at) VALUES (?, ?, ?, ?, ?)`,
		w.UserID, w.XP, w.Gold, w.Level, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}
	return nil
}

// ListAll returns every wallet
func (r *WalletRepository) ListAll(ctx context.Context) ([]models.Wallet, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT user_id, xp, gold, level, updated_at FROM wallets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.UserID, &w.XP, &w.Gold, &w.Level, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}
