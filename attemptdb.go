package lingotutor

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// AttemptDB stores submitted quiz results. Generated questions themselves are
// never persisted; only the outcome of answering them is.
type AttemptDB struct {
	db *sql.DB
}

// QuizAttempt is one submitted quiz result.
type QuizAttempt struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Kind       string    `json:"kind"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	CreatedAt  time.Time `json:"created_at"`
}

// OpenAttemptDB opens the attempt database at path.
func OpenAttemptDB(dbPath string) (*AttemptDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection keeps sqlite happy and makes :memory: databases
	// behave in tests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &AttemptDB{db: db}, nil
}

// Close closes the database connection.
func (a *AttemptDB) Close() error {
	return a.db.Close()
}

// CreateTables creates the necessary tables if they don't exist.
func (a *AttemptDB) CreateTables() error {
	query := `CREATE TABLE IF NOT EXISTS quiz_attempts (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		kind TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		created_at DATETIME NOT NULL
	)`
	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create quiz_attempts: %w", err)
	}
	return nil
}

// RecordAttempt inserts a quiz result, assigning an ID and timestamp when missing.
func (a *AttemptDB) RecordAttempt(attempt *QuizAttempt) error {
	if attempt.Total <= 0 || attempt.Score < 0 || attempt.Score > attempt.Total {
		return fmt.Errorf("invalid attempt result %d/%d", attempt.Score, attempt.Total)
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	_, err := a.db.Exec(
		"INSERT INTO quiz_attempts (id, collection, kind, score, total, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		attempt.ID, attempt.Collection, attempt.Kind, attempt.Score, attempt.Total, attempt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// AttemptsForCollection returns the most recent attempts for a collection,
// newest first. limit <= 0 returns all of them.
func (a *AttemptDB) AttemptsForCollection(collection string, limit int) ([]QuizAttempt, error) {
	query := "SELECT id, collection, kind, score, total, created_at FROM quiz_attempts WHERE collection = ? ORDER BY created_at DESC"
	args := []interface{}{collection}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []QuizAttempt
	for rows.Next() {
		var at QuizAttempt
		if err := rows.Scan(&at.ID, &at.Collection, &at.Kind, &at.Score, &at.Total, &at.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		attempts = append(attempts, at)
	}
	return attempts, rows.Err()
}

// Level derives a 1-5 proficiency level for a collection from the average
// score ratio of the last ten attempts. No attempts means level 1.
func (a *AttemptDB) Level(collection string) (int, error) {
	attempts, err := a.AttemptsForCollection(collection, 10)
	if err != nil {
		return 0, err
	}
	if len(attempts) == 0 {
		return 1, nil
	}

	var sum float64
	for _, at := range attempts {
		sum += float64(at.Score) / float64(at.Total)
	}
	avg := sum / float64(len(attempts))

	switch {
	case avg >= 0.9:
		return 5, nil
	case avg >= 0.75:
		return 4, nil
	case avg >= 0.6:
		return 3, nil
	case avg >= 0.4:
		return 2, nil
	default:
		return 1, nil
	}
}
