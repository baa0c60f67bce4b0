package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"wordarcade/internal/database"
	"wordarcade/internal/models"
	"wordarcade/internal/repository"
	"wordarcade/internal/rewards"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the complete arcade export
type BackupData struct {
	Version      string               `json:"version"`
	ExportedAt   time.Time            `json:"exported_at"`
	DatabaseType string               `json:"database_type"`
	Users        []UserBackup         `json:"users"`
	Scores       []models.ScoreRecord `json:"score_records"`
	Wallets      []models.Wallet      `json:"wallets"`
	Settlements  []models.Settlement  `json:"settlements"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// ImportStats counts the rows an import wrote
type ImportStats struct {
	Users       int
	Scores      int
	Wallets     int
	Settlements int
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db     *database.DB
	logger *slog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, logger *slog.Logger) *BackupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BackupService{db: db, logger: logger}
}

// Export writes a complete backup of the arcade data to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	s.logger.Info("database exported", "path", outputPath)
	return nil
}

// ExportToWriter writes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("export complete",
		"users", len(backup.Users),
		"scores", len(backup.Scores),
		"wallets", len(backup.Wallets),
		"settlements", len(backup.Settlements))
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	users, err := repository.NewProfileRepository(s.db).ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			CreatedAt:   u.CreatedAt,
		})
	}

	if backup.Scores, err = repository.NewScoreRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export score records: %w", err)
	}
	if backup.Wallets, err = repository.NewWalletRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export wallets: %w", err)
	}
	if backup.Settlements, err = repository.NewSettlementRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export settlements: %w", err)
	}
	return backup, nil
}

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) (ImportStats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader merges a backup into the database in one transaction.
// Existing users, wallets and settlements are kept; score records only
// replace lower stored bests.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader) (ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return ImportStats{}, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup", "version", backup.Version, "exported_at", backup.ExportedAt)

	var stats ImportStats
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		var err error
		if stats.Users, err = importUsers(ctx, tx, backup.Users); err != nil {
			return fmt.Errorf("failed to import users: %w", err)
		}
		if stats.Scores, err = importScores(ctx, tx, backup.Scores); err != nil {
			return fmt.Errorf("failed to import score records: %w", err)
		}
		if stats.Wallets, err = importWallets(ctx, tx, backup.Wallets); err != nil {
			return fmt.Errorf("failed to import wallets: %w", err)
		}
		if stats.Settlements, err = importSettlements(ctx, tx, backup.Settlements); err != nil {
			return fmt.Errorf("failed to import settlements: %w", err)
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	s.logger.Info("import complete",
		"users", stats.Users,
		"scores", stats.Scores,
		"wallets", stats.Wallets,
		"settlements", stats.Settlements)
	return stats, nil
}

// Clear deletes all arcade progress. Users are left in place.
func (s *BackupService) Clear(ctx context.Context) error {
	// Delete in reverse order of dependencies
	tables := []string{"settlements", "wallets", "score_records"}

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			s.logger.Info("cleared table", "table", table)
		}
		return nil
	})
}

func importUsers(ctx context.Context, tx *database.Tx, users []UserBackup) (int, error) {
	repo := repository.NewProfileRepository(tx)
	added := 0
	for _, u := range users {
		exists, err := repo.UserExists(ctx, u.ID)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		err = repo.InsertUser(ctx, &models.User{
			ID:          u.ID,
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Email:       u.Email,
			CreatedAt:   u.CreatedAt,
		})
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func importScores(ctx context.Context, tx *database.Tx, records []models.ScoreRecord) (int, error) {
	repo := repository.NewScoreRepository(tx)
	saved := 0
	for i := range records {
		ok, err := repo.ReplaceBestIfHigher(ctx, &records[i])
		if err != nil {
			return saved, err
		}
		if ok {
			saved++
		}
	}
	return saved, nil
}

func importWallets(ctx context.Context, tx *database.Tx, wallets []models.Wallet) (int, error) {
	repo := repository.NewWalletRepository(tx)
	added := 0
	for i := range wallets {
		existing, err := repo.Get(ctx, wallets[i].UserID)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		// Level is derived, never trusted from the file.
		wallets[i].Level = rewards.LevelForXP(wallets[i].XP)
		if err := repo.Insert(ctx, &wallets[i]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

func importSettlements(ctx context.Context, tx *database.Tx, settlements []models.Settlement) (int, error) {
	repo := repository.NewSettlementRepository(tx)
	added := 0
	for i := range settlements {
		existing, err := repo.Get(ctx, settlements[i].SessionID)
		if err != nil {
			return added, err
		}
		if existing != nil {
			continue
		}
		if err := repo.Insert(ctx, &settlements[i]); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
