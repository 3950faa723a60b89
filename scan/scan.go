package scan

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Match reports whether term is a case-insensitive substring of name. The
// empty term matches everything.
func Match(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// Build rebuilds the storage tree from scratch: an Uploads node with the
// regular files of uploadsDir and a Buckets node with one node per bucket
// directory holding that bucket's files. Nothing is cached between calls.
//
// With a non-empty filter a file or bucket is kept only if its name
// matches; buckets that don't match are still scanned and kept when one of
// their files matches. The two area nodes are always present.
func Build(uploadsDir, bucketsDir, filter string) (*FileData, error) {
	root := newRootFileData()
	filter = strings.TrimSpace(filter)

	uploads := newFileData(root, UploadsID, "Uploads", KindUploads, uploadsDir, 0)
	buckets := newFileData(root, BucketsID, "Buckets", KindBuckets, bucketsDir, 0)
	root.Children = []*FileData{uploads, buckets}

	files, err := scanFiles(uploads, uploadsDir, filter)
	if err != nil {
		return nil, err
	}
	uploads.Children = files

	entries, err := readDir(bucketsDir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		dir := filepath.Join(bucketsDir, name)
		bucket := newFileData(buckets, BucketsID+"/"+name, name, KindBucket, dir, 0)

		children, err := scanFiles(bucket, dir, filter)
		if err != nil {
			return nil, err
		}
		bucket.Children = children

		// Non-matching parents are still traversed so matching descendants can appear
		if Match(name, filter) || len(children) > 0 {
			buckets.Children = append(buckets.Children, bucket)
		}
	}

	return root, nil
}

// scanFiles lists the regular files of dir that match filter.
func scanFiles(parent *FileData, dir, filter string) ([]*FileData, error) {
	entries, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	children := []*FileData{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !Match(entry.Name(), filter) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between listing and stat
			continue
		}
		name := entry.Name()
		children = append(children, newFileData(parent, parent.ID+"/"+name, name, KindFile, filepath.Join(dir, name), info.Size()))
	}
	return children, nil
}

// readDir lists dir without hidden entries, sorted by case-insensitive name.
// A missing directory is empty.
func readDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	visible := entries[:0]
	for _, entry := range entries {
		// Skip hidden files/folders
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		visible = append(visible, entry)
	}
	sort.Slice(visible, func(i, j int) bool {
		return strings.ToLower(visible[i].Name()) < strings.ToLower(visible[j].Name())
	})
	return visible, nil
}
