package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB persists solve records across runs. Big integers are stored as
// decimal text; SQLite integers would silently truncate real moduli.
type DB struct {
	db *sql.DB
}

func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createSolves := `
	CREATE TABLE IF NOT EXISTS solves (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		p TEXT NOT NULL,
		q TEXT NOT NULL,
		e TEXT NOT NULL,
		m TEXT NOT NULL,
		n TEXT NOT NULL,
		totient TEXT NOT NULL,
		d TEXT NOT NULL,
		ciphertext TEXT NOT NULL,
		decrypted TEXT NOT NULL,
		ok BOOLEAN NOT NULL
	);`

	if _, err := db.Exec(createSolves); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create solves table: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) SaveSolve(record *SolveRecord) error {
	_, err := d.db.Exec(
		`INSERT INTO solves (id, created_at, p, q, e, m, n, totient, d, ciphertext, decrypted, ok)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CreatedAt,
		record.P, record.Q, record.E, record.M,
		record.N, record.Totient, record.D,
		record.Ciphertext, record.Decrypted, record.OK,
	)
	if err != nil {
		return fmt.Errorf("failed to save solve %s: %w", record.ID, err)
	}
	return nil
}

func (d *DB) GetSolve(id string) (*SolveRecord, error) {
	record := &SolveRecord{}
	err := d.db.QueryRow(
		`SELECT id, created_at, p, q, e, m, n, totient, d, ciphertext, decrypted, ok
		 FROM solves WHERE id = ?`, id,
	).Scan(
		&record.ID, &record.CreatedAt,
		&record.P, &record.Q, &record.E, &record.M,
		&record.N, &record.Totient, &record.D,
		&record.Ciphertext, &record.Decrypted, &record.OK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load solve %s: %w", id, err)
	}
	return record, nil
}

// ListSolves returns up to limit records, newest first; limit <= 0
// means no limit.
func (d *DB) ListSolves(limit int) ([]*SolveRecord, error) {
	query := `SELECT id, created_at, p, q, e, m, n, totient, d, ciphertext, decrypted, ok
	          FROM solves ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list solves: %w", err)
	}
	defer rows.Close()

	var records []*SolveRecord
	for rows.Next() {
		record := &SolveRecord{}
		if err := rows.Scan(
			&record.ID, &record.CreatedAt,
			&record.P, &record.Q, &record.E, &record.M,
			&record.N, &record.Totient, &record.D,
			&record.Ciphertext, &record.Decrypted, &record.OK,
		); err != nil {
			return nil, fmt.Errorf("failed to scan solve row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (d *DB) Close() error {
	return d.db.Close()
}
