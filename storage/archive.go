package storage

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArchiveBucket writes a bucket as a zip archive to w. An empty name
// archives the uploads root; its subdirectories (the QR images among them)
// are left out.
func (s *Storage) ArchiveBucket(w io.Writer, name string) (err error) {
	root := s.layout.Uploads
	if name != "" {
		if !s.BucketExists(name) {
			return fmt.Errorf("%w: %q", ErrUnknownBucket, name)
		}
		root = s.BucketPath(name)
	}

	zipWriter := zip.NewWriter(w)
	defer func() {
		if closeErr := zipWriter.Close(); err == nil {
			err = closeErr
		}
	}()

	// Walk the directory and add files to zip
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		// Skip hidden files
		if strings.HasPrefix(info.Name(), ".") || (name == "" && info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}

		// Use forward slashes in zip paths
		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		writer, err := zipWriter.CreateHeader(header)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
}

// ArchiveName is the file name offered for ArchiveBucket output.
func ArchiveName(bucket string) string {
	if bucket == "" {
		return "uploads.zip"
	}
	return bucket + ".zip"
}
