package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pricehawk/internal/models"
)

// DefaultLimit is how many comparisons a session retains.
const DefaultLimit = 20

// Entry is one committed comparison: the result plus a locally assigned id
// and a timestamp captured at commit time. Entries are never mutated and
// leave the store only through eviction.
type Entry struct {
	ID         int64                   `json:"id"`
	RecordedAt string                  `json:"timestamp"`
	Result     models.ComparisonResult `json:"result"`
}

const schema = `
CREATE TABLE IF NOT EXISTS comparisons (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	recorded_at TEXT NOT NULL,
	winner      TEXT NOT NULL DEFAULT '',
	result_json TEXT NOT NULL
);
`

// Store keeps a bounded, newest-first history of comparison outcomes in an
// in-memory SQLite database. The database lives and dies with the session
// that owns the store; nothing survives process termination.
type Store struct {
	db    *sql.DB
	limit int
}

func NewStore(limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// Each new connection to :memory: gets its own empty database, so the
	// pool must stay at a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &Store{db: db, limit: limit}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record commits a comparison outcome at the front of the history and
// silently evicts the oldest entries beyond the capacity. The caller is
// not told when eviction happens.
func (s *Store) Record(result *models.ComparisonResult) (*Entry, error) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}

	recordedAt := time.Now().Format("1/2/2006, 3:04:05 PM")

	res, err := s.db.Exec(
		`INSERT INTO comparisons (recorded_at, winner, result_json) VALUES (?, ?, ?)`,
		recordedAt, result.Winner, string(resultJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading entry id: %w", err)
	}

	_, err = s.db.Exec(
		`DELETE FROM comparisons
		 WHERE id NOT IN (SELECT id FROM comparisons ORDER BY id DESC LIMIT ?)`,
		s.limit,
	)
	if err != nil {
		return nil, fmt.Errorf("evicting old entries: %w", err)
	}

	return &Entry{ID: id, RecordedAt: recordedAt, Result: *result}, nil
}

// All returns every retained entry, newest first.
func (s *Store) All() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, recorded_at, result_json FROM comparisons ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var resultJSON string
		if err := rows.Scan(&entry.ID, &entry.RecordedAt, &resultJSON); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
			return nil, fmt.Errorf("unmarshaling entry %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM comparisons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// CountWhere reports how many retained entries satisfy the predicate.
func (s *Store) CountWhere(pred func(Entry) bool) (int, error) {
	entries, err := s.All()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if pred(entry) {
			count++
		}
	}
	return count, nil
}
