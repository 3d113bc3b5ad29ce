package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"churnpredict/predict"
)

const schema = `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        customer_id TEXT NOT NULL DEFAULT '',
        label INTEGER NOT NULL,
        probability REAL NOT NULL,
        result TEXT NOT NULL,
        model_type TEXT NOT NULL,
        input TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    CREATE INDEX IF NOT EXISTS idx_predictions_customer_id ON predictions(customer_id);
    `

// Store persists prediction history in SQLite.
type Store struct {
	database *sql.DB
}

// Open opens (creating if needed) the SQLite database and its tables.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{database: database}, nil
}

func (s *Store) Close() error {
	return s.database.Close()
}

// SavePrediction stores one result together with the customer input it was made for.
func (s *Store) SavePrediction(ctx context.Context, result predict.Result) error {
	input, err := json.Marshal(result.Input)
	if err != nil {
		return err
	}
	_, err = s.database.ExecContext(ctx, `
        INSERT INTO predictions (customer_id, label, probability, result, model_type, input, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.CustomerID, result.Label, result.Probability, result.Text, result.ModelType, string(input), result.CreatedAt.UTC())
	return err
}

// RecentPredictions returns up to limit results, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]predict.Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.database.QueryContext(ctx, `
        SELECT customer_id, label, probability, result, model_type, input, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]predict.Result, 0)
	for rows.Next() {
		var r predict.Result
		var input string
		var createdAt time.Time
		if err := rows.Scan(&r.CustomerID, &r.Label, &r.Probability, &r.Text, &r.ModelType, &input, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(input), &r.Input); err != nil {
			return nil, fmt.Errorf("decode stored input: %w", err)
		}
		r.CreatedAt = createdAt
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountByLabel returns how many stored predictions carry each label.
func (s *Store) CountByLabel(ctx context.Context) (map[int]int64, error) {
	rows, err := s.database.QueryContext(ctx, `SELECT label, COUNT(*) FROM predictions GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var label int
		var count int64
		if err := rows.Scan(&label, &count); err != nil {
			return nil, err
		}
		counts[label] = count
	}
	return counts, rows.Err()
}
