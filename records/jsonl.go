package records

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONLStore appends one JSON document per line.
// It NEVER rewrites the file, only appends.
type JSONLStore[T any] struct {
	path string
}

func NewJSONLStore[T any](path string) *JSONLStore[T] {
	return &JSONLStore[T]{path: path}
}

func (s *JSONLStore[T]) Append(rec T) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	// Open file with append mode - creates if doesn't exist, never overwrites
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	// Write JSON + newline
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// All decodes every line. Blank lines are skipped.
func (s *JSONLStore[T]) All() ([]T, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, err
	}
	defer f.Close()

	recs := []T{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", s.path, line, err)
		}
		recs = append(recs, rec)
	}
	return recs, sc.Err()
}

func (s *JSONLStore[T]) Find(match func(T) bool) (T, bool, error) {
	return find(s.All, match)
}
