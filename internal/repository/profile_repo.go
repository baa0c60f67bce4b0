package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
)

// ProfileRepository reads player accounts and their equipped cosmetics.
// Accounts are owned by the account service; the arcade only writes them
// when restoring a backup.
type ProfileRepository struct {
	q database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(q database.DBTX) *ProfileRepository {
	return &ProfileRepository{q: q}
}

// GetUser retrieves a user by ID, or nil if there is none
func (r *ProfileRepository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, display_name, email, created_at
		FROM users
		WHERE id = ?
	`
	user := &models.User{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.DisplayName,
		&user.Email,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UserExists reports whether a user id is known
func (r *ProfileRepository) UserExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return n > 0, nil
}

// GetProfiles returns display names and equipped cosmetics for the given
// users. Unknown ids are absent from the result.
func (r *ProfileRepository) GetProfiles(ctx context.Context, ids []int64) (map[int64]models.Profile, error) {
	profiles := make(map[int64]models.Profile, len(ids))
	if len(ids) == 0 {
		return profiles, nil
	}

	in, args := inClause(ids)

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, display_name, email FROM users WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.UserID, &p.DisplayName, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	cosRows, err := r.q.QueryContext(ctx, `
		SELECT ec.user_id, c.id, c.kind, c.name, ec.slot
		FROM equipped_cosmetics ec
		JOIN cosmetics c ON c.id = ec.cosmetic_id
		WHERE ec.user_id IN (`+in+`)
		ORDER BY ec.user_id, ec.slot
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load cosmetics: %w", err)
	}
	defer cosRows.Close()

	for cosRows.Next() {
		var (
			userID int64
			c      models.Cosmetic
		)
		if err := cosRows.Scan(&userID, &c.ID, &c.Kind, &c.Name, &c.Slot); err != nil {
			return nil, fmt.Errorf("failed to scan cosmetic: %w", err)
		}
		p, ok := profiles[userID]
		if !ok {
			continue
		}
		p.Cosmetics = append(p.Cosmetics, c)
		profiles[userID] = p
	}
	return profiles, cosRows.Err()
}

// ListUsers returns every user account
func (r *ProfileRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id, username, display_name, email, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// InsertUser creates a user with an explicit id
func (r *ProfileRepository) InsertUser(ctx context.Context, u *models.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, display_name, email, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.Email, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func inClause(ids []int64) (string, []any) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	return strings.Join(placeholders, ", "), args
}
