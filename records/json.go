package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore keeps records as a pretty-printed JSON array. Every append
// loads the whole file and rewrites it.
type JSONStore[T any] struct {
	path string
}

func NewJSONStore[T any](path string) *JSONStore[T] {
	return &JSONStore[T]{path: path}
}

// All returns every record in append order. A missing file is an empty log.
func (s *JSONStore[T]) All() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	recs := []T{}
	if len(data) == 0 {
		return recs, nil
	}
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return recs, nil
}

func (s *JSONStore[T]) Append(rec T) error {
	recs, err := s.All()
	if err != nil {
		return err
	}
	recs = append(recs, rec)

	data, err := json.MarshalIndent(recs, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *JSONStore[T]) Find(match func(T) bool) (T, bool, error) {
	return find(s.All, match)
}
