package records

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

var collectionName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SQLiteStore keeps one collection in its own table. Rows are ordered by an
// autoincrement sequence and hold the record as JSON.
type SQLiteStore[T any] struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (or creates) the database file shared by all collections.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLiteStore[T any](db *sql.DB, collection string) (*SQLiteStore[T], error) {
	if !collectionName.MatchString(collection) {
		return nil, fmt.Errorf("invalid collection name %q", collection)
	}
	_, err := db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		seq  INTEGER PRIMARY KEY AUTOINCREMENT,
		body TEXT NOT NULL
	)`, collection))
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", collection, err)
	}
	return &SQLiteStore[T]{db: db, table: collection}, nil
}

func (s *SQLiteStore[T]) Append(rec T) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(fmt.Sprintf(`INSERT INTO %s (body) VALUES (?)`, s.table), string(body))
	return err
}

func (s *SQLiteStore[T]) All() ([]T, error) {
	rows, err := s.db.Query(fmt.Sprintf(`SELECT seq, body FROM %s ORDER BY seq`, s.table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []T{}
	for rows.Next() {
		var (
			seq  int64
			body string
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return nil, err
		}
		var rec T
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.table, seq, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLiteStore[T]) Find(match func(T) bool) (T, bool, error) {
	return find(s.All, match)
}
