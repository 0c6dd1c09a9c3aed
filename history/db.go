package history

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"github.com/iwanhae/rating-tourniquet/types"
)

// SQLiteStore keeps results in an in-memory SQLite database and sums them
// per hour in SQL. Nothing is written to disk.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: gets its own database.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init() error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hour INTEGER NOT NULL CHECK (hour BETWEEN 0 AND 23),
		rating_delta INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create results table: %w", err)
	}
	log.Println("sqlite result store initialized")
	return nil
}

func (s *SQLiteStore) Append(r types.GameResult) error {
	_, err := s.db.Exec(`INSERT INTO results(hour, rating_delta) VALUES(?, ?)`, r.Hour, r.RatingDelta)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Totals() ([24]int, error) {
	var totals [24]int
	rows, err := s.db.Query(`SELECT hour, SUM(rating_delta) FROM results GROUP BY hour`)
	if err != nil {
		return totals, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour, sum int
		if err := rows.Scan(&hour, &sum); err != nil {
			return totals, fmt.Errorf("scan totals: %w", err)
		}
		totals[hour] = sum
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("iterate totals: %w", err)
	}
	return totals, nil
}

func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
