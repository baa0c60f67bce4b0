package database

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// DSN returns the configured URL with parseTime forced on, since score
// records and settlements are scanned into time.Time.
func (d *MySQLDialect) DSN(config DialectConfig) string {
	cfg, err := mysql.ParseDSN(config.URL)
	if err != nil {
		return config.URL
	}
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

// erDupEntry is MySQL's duplicate-key error number.
const erDupEntry = 1062

func (d *MySQLDialect) IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == erDupEntry
}

// ReplaceBestScoreQuery assigns score last so the IF guards on the other
// columns still see the stored value.
func (d *MySQLDialect) ReplaceBestScoreQuery() string {
	return `
		INSERT INTO score_records (user_id, game, bucket, score, words_completed, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			words_completed = IF(score < VALUES(score), VALUES(words_completed), words_completed),
			duration_ms = IF(score < VALUES(score), VALUES(duration_ms), duration_ms),
			created_at = IF(score < VALUES(score), VALUES(created_at), created_at),
			score = IF(score < VALUES(score), VALUES(score), score)
	`
}

func (d *MySQLDialect) AddToWalletQuery() string {
	return `
		INSERT INTO wallets (user_id, xp, gold, level, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON DUPLICATE KEY UPDATE
			xp = xp + VALUES(xp),
			gold = gold + VALUES(gold),
			updated_at = VALUES(updated_at)
	`
}
