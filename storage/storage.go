// Package storage implements the directory-backed uploads area and buckets.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JoeSaf/StorageBuckets/records"
)

var (
	ErrEmptyBucketName   = errors.New("bucket name cannot be empty")
	ErrInvalidBucketName = errors.New("invalid bucket name")
	ErrBucketExists      = errors.New("bucket already exists")
	ErrNoBuckets         = errors.New("no buckets available")
	ErrUnknownBucket     = errors.New("bucket does not exist")
	ErrInvalidName       = errors.New("invalid name")
	ErrFileNotFound      = errors.New("file not found")
	ErrSameFile          = errors.New("source is already the stored file")
	ErrDuplicateTarget   = errors.New("another selected file has the same name")
)

// ItemError is the failure of one item inside a batch operation.
type ItemError struct {
	Name string
	Err  error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Layout holds the root paths. Uploads and Buckets are absolute or relative
// to the working directory; Root is what stored locations are reported
// relative to.
type Layout struct {
	Root    string
	Uploads string
	Buckets string
}

// Area tells which part of the layout a Ref points into.
type Area int

const (
	AreaUploads Area = iota
	AreaBucket
)

func (a Area) String() string {
	if a == AreaBucket {
		return "bucket"
	}
	return "uploads"
}

// Ref addresses a stored file by explicit location.
type Ref struct {
	Area   Area
	Bucket string
	Name   string
}

func UploadsRef(name string) Ref {
	return Ref{Area: AreaUploads, Name: name}
}

func BucketRef(bucket, name string) Ref {
	return Ref{Area: AreaBucket, Bucket: bucket, Name: name}
}

func (r Ref) String() string {
	if r.Area == AreaBucket {
		return r.Bucket + "/" + r.Name
	}
	return r.Name
}

// Storage performs every filesystem operation against a Layout and writes
// the upload log through an explicit store handle.
type Storage struct {
	layout  Layout
	uploads records.Store[records.UploadRecord]
	now     func() time.Time
}

func New(layout Layout, uploadLog records.Store[records.UploadRecord]) *Storage {
	return &Storage{
		layout:  layout,
		uploads: uploadLog,
		now:     time.Now,
	}
}

func (s *Storage) Layout() Layout {
	return s.layout
}

// BucketPath returns the directory of a bucket without checking it exists.
func (s *Storage) BucketPath(name string) string {
	return filepath.Join(s.layout.Buckets, name)
}

// Rel reports path relative to the layout root, slash separated. Paths
// outside the root are returned cleaned but otherwise unchanged.
func (s *Storage) Rel(path string) string {
	rel, err := filepath.Rel(s.layout.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

// History returns the upload log in append order.
func (s *Storage) History() ([]records.UploadRecord, error) {
	return s.uploads.All()
}

// Resolve finds the file a ref addresses. Bucket refs look in the bucket
// first and fall back to the uploads root; uploads refs only look in the
// uploads root.
func (s *Storage) Resolve(ref Ref) (string, error) {
	if err := validName(ref.Name); err != nil {
		return "", &ItemError{Name: ref.Name, Err: err}
	}

	var candidates []string
	if ref.Area == AreaBucket {
		if err := validName(ref.Bucket); err != nil {
			return "", &ItemError{Name: ref.String(), Err: err}
		}
		candidates = append(candidates, filepath.Join(s.BucketPath(ref.Bucket), ref.Name))
	}
	candidates = append(candidates, filepath.Join(s.layout.Uploads, ref.Name))

	for _, p := range candidates {
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
	}
	return "", &ItemError{Name: ref.String(), Err: ErrFileNotFound}
}

// validName rejects anything that would escape its parent directory.
func validName(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidName
	}
	if strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return ErrInvalidName
	}
	return nil
}
