// Package store persists provisioned mailboxes and an audit log of
// acquisition attempts in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// MailAccount is a provisioned disposable mailbox and its credentials.
type MailAccount struct {
	ID         int64
	Address    string
	Password   string
	CreatedAt  time.Time
	LastUsedAt sql.NullTime
}

// Acquisition is one recorded OTP acquisition attempt.
type Acquisition struct {
	ID         string
	Channel    string // "mailbox" or "sms"
	OTP        string
	Succeeded  bool
	ErrorKind  string
	StartedAt  time.Time
	DurationMS int64
}

type Store struct {
	db *sql.DB
}

// Open connects to the SQLite file at path (":memory:" for tests) and
// creates the schema if missing.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS mail_accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	);
	CREATE TABLE IF NOT EXISTS acquisitions (
		id TEXT PRIMARY KEY,
		channel TEXT NOT NULL,
		otp TEXT NOT NULL DEFAULT '',
		succeeded BOOLEAN NOT NULL,
		error_kind TEXT NOT NULL DEFAULT '',
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL
	);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveMailAccount records a freshly provisioned mailbox.
func (s *Store) SaveMailAccount(address, password string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO mail_accounts (address, password) VALUES (?, ?)`,
		address, password)
	if err != nil {
		return 0, fmt.Errorf("save mail account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("save mail account id: %w", err)
	}
	return id, nil
}

// TouchMailAccount marks an account as used now.
func (s *Store) TouchMailAccount(address string) error {
	_, err := s.db.Exec(
		`UPDATE mail_accounts SET last_used_at = CURRENT_TIMESTAMP WHERE address = ?`,
		address)
	if err != nil {
		return fmt.Errorf("touch mail account: %w", err)
	}
	return nil
}

// LatestMailAccount returns the most recently provisioned mailbox.
func (s *Store) LatestMailAccount() (*MailAccount, error) {
	row := s.db.QueryRow(`
		SELECT id, address, password, created_at, last_used_at
		FROM mail_accounts ORDER BY created_at DESC, id DESC LIMIT 1`)

	var acc MailAccount
	err := row.Scan(&acc.ID, &acc.Address, &acc.Password, &acc.CreatedAt, &acc.LastUsedAt)
	if err != nil {
		return nil, fmt.Errorf("latest mail account: %w", err)
	}
	return &acc, nil
}

// RecordAcquisition appends one attempt to the audit log and returns its id.
func (s *Store) RecordAcquisition(channel, code string, succeeded bool, errorKind string, startedAt time.Time, duration time.Duration) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(`
		INSERT INTO acquisitions (id, channel, otp, succeeded, error_kind, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, channel, code, succeeded, errorKind, startedAt.UTC(), duration.Milliseconds())
	if err != nil {
		return "", fmt.Errorf("record acquisition: %w", err)
	}
	return id, nil
}

// RecentAcquisitions lists the newest attempts, most recent first.
func (s *Store) RecentAcquisitions(limit int) ([]Acquisition, error) {
	rows, err := s.db.Query(`
		SELECT id, channel, otp, succeeded, error_kind, started_at, duration_ms
		FROM acquisitions ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list acquisitions: %w", err)
	}
	defer rows.Close()

	var out []Acquisition
	for rows.Next() {
		var a Acquisition
		if err := rows.Scan(&a.ID, &a.Channel, &a.OTP, &a.Succeeded, &a.ErrorKind, &a.StartedAt, &a.DurationMS); err != nil {
			return nil, fmt.Errorf("scan acquisition: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountAcquisitions reports totals for the stats view.
func (s *Store) CountAcquisitions() (total, succeeded int, err error) {
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(succeeded), 0) FROM acquisitions`).Scan(&total, &succeeded)
	if err != nil {
		return 0, 0, fmt.Errorf("count acquisitions: %w", err)
	}
	return total, succeeded, nil
}
