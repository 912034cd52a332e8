package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore keeps every record in one table keyed by partition name.
type sqliteStore struct {
	conn *sql.DB
}

func openSQLite(path string) (*sqliteStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &sqliteStore{conn: conn}
	if err := s.runMigrations(); err != nil {
		conn.Close()
		return nil, err
	}

	return s, nil
}

func (s *sqliteStore) runMigrations() error {
	migrations := []string{
		createProbeResultsTable,
		createProbeResultsIndex,
	}

	for _, migration := range migrations {
		if _, err := s.conn.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Append inserts all records in a single transaction.
func (s *sqliteStore) Append(records []Record) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrWrite, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(insertProbeResult)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %w", ErrWrite, err)
	}
	defer stmt.Close()

	for _, r := range records {
		var elapsed sql.NullFloat64
		if r.Elapsed != nil {
			elapsed = sql.NullFloat64{Float64: r.Elapsed.Seconds(), Valid: true}
		}

		if _, err := stmt.Exec(r.RunID, r.Partition(), r.Website, r.timestamp(), string(r.Status), elapsed, r.Error); err != nil {
			return fmt.Errorf("%w: failed to insert result for %s: %w", ErrWrite, r.Website, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit results: %w", ErrWrite, err)
	}

	return nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

const (
	createProbeResultsTable = `
		CREATE TABLE IF NOT EXISTS probe_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			partition_name TEXT NOT NULL,
			website TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			status TEXT NOT NULL,
			elapsed_seconds REAL,
			error_message TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`

	createProbeResultsIndex = `
		CREATE INDEX IF NOT EXISTS idx_probe_results_partition
		ON probe_results(partition_name, id)
	`

	insertProbeResult = `
		INSERT INTO probe_results (run_id, partition_name, website, timestamp, status, elapsed_seconds, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
)
