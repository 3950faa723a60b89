package storage

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
)

// ListBuckets returns the bucket names, sorted. A missing buckets root has
// no buckets.
func (s *Storage) ListBuckets() ([]string, error) {
	entries, err := os.ReadDir(s.layout.Buckets)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// CreateBucket makes the directory for a new bucket.
func (s *Storage) CreateBucket(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyBucketName
	}
	if err := validName(name); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBucketName, name)
	}

	// Ensure the buckets root exists
	if err := os.MkdirAll(s.layout.Buckets, 0755); err != nil {
		return err
	}

	path := s.BucketPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrBucketExists, name)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.Mkdir(path, 0755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %q", ErrBucketExists, name)
		}
		return err
	}
	log.Infof("Bucket '%s' created", name)
	return nil
}

// DeleteBucket removes a bucket and everything in it. Callers confirm with
// the user before calling.
func (s *Storage) DeleteBucket(name string) error {
	buckets, err := s.ListBuckets()
	if err != nil {
		return err
	}
	if len(buckets) == 0 {
		return ErrNoBuckets
	}
	if !slices.Contains(buckets, name) {
		return fmt.Errorf("%w: %q", ErrUnknownBucket, name)
	}

	// RemoveAll handles non-empty buckets
	if err := os.RemoveAll(s.BucketPath(name)); err != nil {
		return fmt.Errorf("bucket '%s' cannot be deleted: %w", name, err)
	}
	log.Infof("Bucket '%s' deleted", name)
	return nil
}

// BucketExists reports whether name is an existing bucket.
func (s *Storage) BucketExists(name string) bool {
	if validName(name) != nil {
		return false
	}
	info, err := os.Stat(s.BucketPath(name))
	return err == nil && info.IsDir()
}
