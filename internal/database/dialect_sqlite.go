package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// sqliteDSNParams makes writers wait on each other instead of failing with
// SQLITE_BUSY, and takes the write lock at BEGIN so a settlement transaction
// never upgrades a read lock halfway through.
const sqliteDSNParams = "_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

// SQLiteDialect implements Dialect for SQLite
type SQLiteDialect struct{}

// NewSQLiteDialect creates a new SQLite dialect
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

func (d *SQLiteDialect) DriverName() string {
	return "sqlite3"
}

func (d *SQLiteDialect) DSN(config DialectConfig) string {
	if strings.Contains(config.Path, "?") {
		return config.Path + "&" + sqliteDSNParams
	}
	return config.Path + "?" + sqliteDSNParams
}

func (d *SQLiteDialect) RewriteQuery(query string) string {
	// SQLite uses ? placeholders, no rewrite needed
	return query
}

func (d *SQLiteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}

	return nil
}

func (d *SQLiteDialect) MigrationsSubdir() string {
	return "sqlite"
}

func (d *SQLiteDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *SQLiteDialect) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func (d *SQLiteDialect) ReplaceBestScoreQuery() string {
	return `
		INSERT INTO score_records (user_id, game, bucket, score, words_completed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, game, bucket) DO UPDATE SET
			score = excluded.score,
			words_completed = excluded.words_completed,
			duration_ms = excluded.duration_ms,
			created_at = excluded.created_at
		WHERE score_records.score < excluded.score
	`
}

func (d *SQLiteDialect) AddToWalletQuery() string {
	return `
		INSERT INTO wallets (user_id, xp, gold, level, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			xp = wallets.xp + excluded.xp,
			gold = wallets.gold + excluded.gold,
			updated_at = excluded.updated_at
	`
}
