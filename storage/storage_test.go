package storage

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeSaf/StorageBuckets/records"
)

func newTestStorage(t *testing.T) (*Storage, *records.JSONStore[records.UploadRecord]) {
	t.Helper()
	root := t.TempDir()
	log := records.NewJSONStore[records.UploadRecord](filepath.Join(root, "upload_log.json"))
	s := New(Layout{
		Root:    root,
		Uploads: filepath.Join(root, "upload"),
		Buckets: filepath.Join(root, "buckets"),
	}, log)
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local) }
	return s, log
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestUploadWithoutBucket(t *testing.T) {
	s, log := newTestStorage(t)
	src := t.TempDir()
	paths := []string{
		writeFile(t, filepath.Join(src, "a.txt"), "alpha"),
		writeFile(t, filepath.Join(src, "b.txt"), "beta"),
		writeFile(t, filepath.Join(src, "c.txt"), "gamma"),
	}

	report, err := s.Upload(UploadRequest{Sources: SourcesFromPaths(paths)})
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	assert.Len(t, report.Uploaded, 3)
	assert.Equal(t, "upload", report.Destination)

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		assert.FileExists(t, filepath.Join(s.layout.Uploads, name))
	}

	recs, err := log.All()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		assert.Equal(t, name, recs[i].FileName)
		assert.Equal(t, "upload", recs[i].Destination)
		assert.Equal(t, "2024-05-06 07:08:09", recs[i].UploadTime)
	}
}

func TestUploadIntoBucketCreatesDirectory(t *testing.T) {
	s, _ := newTestStorage(t)
	src := writeFile(t, filepath.Join(t.TempDir(), "report.pdf"), "pdf")

	report, err := s.Upload(UploadRequest{Sources: SourcesFromPaths([]string{src}), Bucket: "docs"})
	require.NoError(t, err)
	require.Len(t, report.Uploaded, 1)
	assert.Equal(t, "buckets/docs", report.Uploaded[0].Destination)

	data, err := os.ReadFile(filepath.Join(s.layout.Buckets, "docs", "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))
}

func TestUploadFailureDoesNotAbortBatch(t *testing.T) {
	s, log := newTestStorage(t)
	src := t.TempDir()
	good := writeFile(t, filepath.Join(src, "good.txt"), "ok")

	var seen []string
	report, err := s.Upload(UploadRequest{
		Sources: SourcesFromPaths([]string{filepath.Join(src, "missing.txt"), good}),
		OnItem:  func(name string, _ error) { seen = append(seen, name) },
	})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, "missing.txt", report.Failed[0].Name)
	require.Len(t, report.Uploaded, 1)
	assert.Equal(t, []string{"missing.txt", "good.txt"}, seen)

	recs, err := log.All()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestReuploadOverwritesAndDuplicatesRecord(t *testing.T) {
	s, log := newTestStorage(t)
	src := filepath.Join(t.TempDir(), "a.txt")

	writeFile(t, src, "first")
	_, err := s.Upload(UploadRequest{Sources: SourcesFromPaths([]string{src})})
	require.NoError(t, err)
	writeFile(t, src, "second")
	_, err = s.Upload(UploadRequest{Sources: SourcesFromPaths([]string{src})})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.layout.Uploads, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	recs, err := log.All()
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestUploadRenamedSource(t *testing.T) {
	s, _ := newTestStorage(t)
	staged := writeFile(t, filepath.Join(t.TempDir(), "3f2a9c"), "data")

	report, err := s.Upload(UploadRequest{Sources: []Source{{Path: staged, Name: "notes.md"}}})
	require.NoError(t, err)
	require.Len(t, report.Uploaded, 1)
	assert.Equal(t, "notes.md", report.Uploaded[0].FileName)
	assert.FileExists(t, filepath.Join(s.layout.Uploads, "notes.md"))
}

func TestCreateBucket(t *testing.T) {
	s, _ := newTestStorage(t)

	require.NoError(t, s.CreateBucket("X"))
	assert.DirExists(t, filepath.Join(s.layout.Buckets, "X"))

	writeFile(t, filepath.Join(s.layout.Buckets, "X", "keep.txt"), "keep")
	err := s.CreateBucket("X")
	assert.ErrorIs(t, err, ErrBucketExists)
	assert.FileExists(t, filepath.Join(s.layout.Buckets, "X", "keep.txt"))

	assert.ErrorIs(t, s.CreateBucket("   "), ErrEmptyBucketName)
	assert.ErrorIs(t, s.CreateBucket("../escape"), ErrInvalidBucketName)
	assert.ErrorIs(t, s.CreateBucket(".."), ErrInvalidBucketName)

	buckets, err := s.ListBuckets()
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, buckets)
}

func TestDeleteBucket(t *testing.T) {
	s, _ := newTestStorage(t)

	assert.ErrorIs(t, s.DeleteBucket("docs"), ErrNoBuckets)

	require.NoError(t, s.CreateBucket("docs"))
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", "a.txt"), "a")
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", "nested", "b.txt"), "b")

	assert.ErrorIs(t, s.DeleteBucket("photos"), ErrUnknownBucket)
	assert.DirExists(t, filepath.Join(s.layout.Buckets, "docs"))

	require.NoError(t, s.DeleteBucket("docs"))
	assert.NoDirExists(t, filepath.Join(s.layout.Buckets, "docs"))
}

func TestListBucketsIgnoresFiles(t *testing.T) {
	s, _ := newTestStorage(t)

	buckets, err := s.ListBuckets()
	require.NoError(t, err)
	assert.Empty(t, buckets)

	require.NoError(t, s.CreateBucket("b"))
	require.NoError(t, s.CreateBucket("a"))
	writeFile(t, filepath.Join(s.layout.Buckets, "stray.txt"), "")

	buckets, err = s.ListBuckets()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, buckets)
}

func TestDownloadPrefersBucketCopy(t *testing.T) {
	s, _ := newTestStorage(t)
	writeFile(t, filepath.Join(s.layout.Uploads, "same.txt"), "from uploads")
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", "same.txt"), "from bucket")

	dest := t.TempDir()
	report, err := s.Download(DownloadRequest{
		Refs:   []Ref{BucketRef("docs", "same.txt")},
		Dest:   dest,
		Folder: "downloads",
	})
	require.NoError(t, err)
	assert.Empty(t, report.Failed)

	data, err := os.ReadFile(filepath.Join(dest, "downloads", "same.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from bucket", string(data))
}

func TestDownloadFallsBackToUploads(t *testing.T) {
	s, _ := newTestStorage(t)
	writeFile(t, filepath.Join(s.layout.Uploads, "only.txt"), "uploads copy")
	require.NoError(t, s.CreateBucket("docs"))

	dest := t.TempDir()
	report, err := s.Download(DownloadRequest{
		Refs:   []Ref{BucketRef("docs", "only.txt"), UploadsRef("missing.txt")},
		Dest:   dest,
		Folder: "downloads",
	})
	require.NoError(t, err)
	assert.Len(t, report.Copied, 1)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0], ErrFileNotFound)

	data, err := os.ReadFile(filepath.Join(dest, "downloads", "only.txt"))
	require.NoError(t, err)
	assert.Equal(t, "uploads copy", string(data))
}

func TestResolveUploadsRefIgnoresBuckets(t *testing.T) {
	s, _ := newTestStorage(t)
	writeFile(t, filepath.Join(s.layout.Buckets, "Uploads", "a.txt"), "bucket named Uploads")

	_, err := s.Resolve(UploadsRef("a.txt"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	path, err := s.Resolve(BucketRef("Uploads", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "buckets/Uploads/a.txt", s.Rel(path))

	_, err = s.Resolve(UploadsRef("../upload_log.json"))
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestArchiveBucket(t *testing.T) {
	s, _ := newTestStorage(t)
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", "a.txt"), "a")
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", ".hidden"), "h")
	writeFile(t, filepath.Join(s.layout.Buckets, "docs", "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(s.layout.Uploads, "u.txt"), "u")
	writeFile(t, filepath.Join(s.layout.Uploads, "qr_codes", "qr_code_123456.png"), "png")

	names := func(bucket string) []string {
		var buf bytes.Buffer
		require.NoError(t, s.ArchiveBucket(&buf, bucket))
		zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
		require.NoError(t, err)
		var out []string
		for _, f := range zr.File {
			out = append(out, f.Name)
		}
		sort.Strings(out)
		return out
	}

	assert.Equal(t, []string{"a.txt", "sub/", "sub/b.txt"}, names("docs"))
	assert.Equal(t, []string{"u.txt"}, names(""))

	assert.ErrorIs(t, s.ArchiveBucket(&bytes.Buffer{}, "nope"), ErrUnknownBucket)
	assert.Equal(t, "docs.zip", ArchiveName("docs"))
}

func TestUploadOfStoredFileKeepsContent(t *testing.T) {
	s, log := newTestStorage(t)
	stored := writeFile(t, filepath.Join(s.layout.Uploads, "a.txt"), "precious")

	report, err := s.Upload(UploadRequest{Sources: SourcesFromPaths([]string{stored})})
	require.NoError(t, err)
	assert.Empty(t, report.Uploaded)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0], ErrSameFile)

	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(data))

	recs, err := log.All()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDownloadSameNameFromTwoBuckets(t *testing.T) {
	s, _ := newTestStorage(t)
	writeFile(t, filepath.Join(s.layout.Buckets, "a", "x.txt"), "from a")
	writeFile(t, filepath.Join(s.layout.Buckets, "b", "x.txt"), "from b")

	dest := t.TempDir()
	report, err := s.Download(DownloadRequest{
		Refs:   []Ref{BucketRef("a", "x.txt"), BucketRef("b", "x.txt")},
		Dest:   dest,
		Folder: "downloads",
	})
	require.NoError(t, err)
	assert.Len(t, report.Copied, 1)
	require.Len(t, report.Failed, 1)
	assert.ErrorIs(t, report.Failed[0], ErrDuplicateTarget)
	assert.Equal(t, "b/x.txt", report.Failed[0].Name)

	data, err := os.ReadFile(filepath.Join(dest, "downloads", "x.txt"))
	require.NoError(t, err)
	assert.Equal(t, "from a", string(data))
}
