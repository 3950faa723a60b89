package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
	"github.com/otiai10/copy"

	"github.com/JoeSaf/StorageBuckets/records"
)

// Source is a file to upload. Name is the stored file name; when empty the
// base name of Path is used.
type Source struct {
	Path string
	Name string
}

// SourcesFromPaths wraps plain paths, keeping their base names.
func SourcesFromPaths(paths []string) []Source {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, Source{Path: p})
	}
	return sources
}

func (s Source) name() string {
	if s.Name != "" {
		return s.Name
	}
	return filepath.Base(s.Path)
}

// UploadRequest describes one batch upload. An empty Bucket targets the
// uploads root.
type UploadRequest struct {
	Sources []Source
	Bucket  string

	// OnItem, if set, is called after each source with its outcome.
	OnItem func(name string, err error)
}

// UploadReport lists what a batch upload did.
type UploadReport struct {
	Destination string
	Uploaded    []records.UploadRecord
	Failed      []*ItemError
}

// Upload copies every source into the destination directory and appends one
// upload record per copied file. A failing source is logged and reported
// but does not stop the remaining ones; nothing is rolled back.
func (s *Storage) Upload(req UploadRequest) (*UploadReport, error) {
	dest := s.layout.Uploads
	if req.Bucket != "" {
		if err := validName(req.Bucket); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBucketName, req.Bucket)
		}
		dest = s.BucketPath(req.Bucket)
	}

	// Create the destination directory if it doesn't exist
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	report := &UploadReport{Destination: s.Rel(dest)}
	for _, src := range req.Sources {
		name := src.name()
		rec, err := s.uploadOne(src.Path, name, dest)
		if err != nil {
			log.Warnf("Failed to upload %s: %v", name, err)
			report.Failed = append(report.Failed, &ItemError{Name: name, Err: err})
		} else {
			log.Infof("Uploaded %s to %s", name, report.Destination)
			report.Uploaded = append(report.Uploaded, rec)
		}
		if req.OnItem != nil {
			req.OnItem(name, err)
		}
	}
	return report, nil
}

func (s *Storage) uploadOne(srcPath, name, dest string) (records.UploadRecord, error) {
	if err := validName(name); err != nil {
		return records.UploadRecord{}, err
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return records.UploadRecord{}, err
	}
	if !info.Mode().IsRegular() {
		return records.UploadRecord{}, fmt.Errorf("%s is not a regular file", srcPath)
	}

	// copy.Copy truncates the target before reading the source
	target := filepath.Join(dest, name)
	if targetInfo, err := os.Stat(target); err == nil && os.SameFile(info, targetInfo) {
		return records.UploadRecord{}, ErrSameFile
	}

	// Copy file to the chosen location, replacing any previous upload
	if err := copy.Copy(srcPath, target); err != nil {
		return records.UploadRecord{}, err
	}

	rec := records.NewUploadRecord(name, s.Rel(dest), s.now())
	if err := s.uploads.Append(rec); err != nil {
		return records.UploadRecord{}, fmt.Errorf("copied but not recorded: %w", err)
	}
	return rec, nil
}
