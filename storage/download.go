package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2/log"
	"github.com/otiai10/copy"
)

// DownloadRequest copies stored files out to Dest/Folder.
type DownloadRequest struct {
	Refs   []Ref
	Dest   string
	Folder string

	OnItem func(name string, err error)
}

// DownloadReport lists the written files and the refs that failed.
type DownloadReport struct {
	Directory string
	Copied    []string
	Failed    []*ItemError
}

// Download resolves each ref and copies the first match into the download
// folder. Failures are collected per item; the batch always runs to the
// end. A ref whose file name was already written by this batch fails with
// ErrDuplicateTarget instead of overwriting it.
func (s *Storage) Download(req DownloadRequest) (*DownloadReport, error) {
	if req.Dest == "" {
		return nil, fmt.Errorf("no download destination given")
	}
	dir := req.Dest
	if req.Folder != "" {
		dir = filepath.Join(req.Dest, req.Folder)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	report := &DownloadReport{Directory: dir}
	written := make(map[string]Ref)
	for _, ref := range req.Refs {
		target, err := s.downloadOne(ref, dir, written)
		if err != nil {
			log.Warnf("Failed to download %s: %v", ref, err)
			var ie *ItemError
			if !errors.As(err, &ie) {
				ie = &ItemError{Name: ref.String(), Err: err}
			}
			report.Failed = append(report.Failed, ie)
		} else {
			log.Infof("Downloaded %s to %s", ref, target)
			report.Copied = append(report.Copied, target)
		}
		if req.OnItem != nil {
			req.OnItem(ref.String(), err)
		}
	}
	return report, nil
}

func (s *Storage) downloadOne(ref Ref, dir string, written map[string]Ref) (string, error) {
	src, err := s.Resolve(ref)
	if err != nil {
		return "", err
	}
	target := filepath.Join(dir, ref.Name)
	if prev, ok := written[target]; ok {
		return "", &ItemError{Name: ref.String(), Err: fmt.Errorf("%w: %s", ErrDuplicateTarget, prev)}
	}
	if err := copy.Copy(src, target); err != nil {
		return "", err
	}
	written[target] = ref
	return target, nil
}
