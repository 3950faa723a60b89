package qr

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeSaf/StorageBuckets/records"
)

func newTestService(t *testing.T) (*Service, *records.JSONStore[records.QRRecord]) {
	t.Helper()
	dir := t.TempDir()
	store := records.NewJSONStore[records.QRRecord](filepath.Join(dir, "upload_records.json"))
	s := NewService(filepath.Join(dir, "upload", "qr_codes"), store, 0)
	s.rand = rand.New(rand.NewSource(1))
	return s, store
}

func TestCodeIsReusedForSamePath(t *testing.T) {
	s, store := newTestService(t)

	first, err := s.Code("upload/report.pdf")
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.GreaterOrEqual(t, first.ID, minID)
	assert.LessOrEqual(t, first.ID, maxID)
	assert.FileExists(t, first.File)
	assert.Equal(t, DefaultSize, first.Image.Bounds().Dx())
	assert.Equal(t, DefaultSize, first.Image.Bounds().Dy())

	second, err := s.Code("upload/report.pdf")
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.File, second.File)

	a, err := first.PNG()
	require.NoError(t, err)
	b, err := second.PNG()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	recs, err := store.All()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestCodeDistinctPathsGetDistinctRecords(t *testing.T) {
	s, store := newTestService(t)

	_, err := s.Code("upload/a.txt")
	require.NoError(t, err)
	_, err = s.Code("buckets/docs/a.txt")
	require.NoError(t, err)

	recs, err := store.All()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "upload/a.txt", recs[0].FilePath)
	assert.Equal(t, "buckets/docs/a.txt", recs[1].FilePath)
}

func TestCodeRegeneratesMissingImage(t *testing.T) {
	s, store := newTestService(t)

	first, err := s.Code("upload/a.txt")
	require.NoError(t, err)
	require.NoError(t, os.Remove(first.File))

	again, err := s.Code("upload/a.txt")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.False(t, again.Reused)
	assert.FileExists(t, again.File)

	recs, err := store.All()
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestCodeRejectsEmptyPayload(t *testing.T) {
	s, _ := newTestService(t)
	_, err := s.Code("")
	assert.Error(t, err)
}

func TestPrintTerminal(t *testing.T) {
	var buf bytes.Buffer
	PrintTerminal(&buf, "upload/a.txt")
	assert.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "\n")
}

func TestLookupNeverWrites(t *testing.T) {
	s, store := newTestService(t)

	_, err := s.Lookup("upload/a.txt")
	assert.ErrorIs(t, err, ErrNotStored)
	assert.NoDirExists(t, s.dir)
	recs, err := store.All()
	require.NoError(t, err)
	assert.Empty(t, recs)

	saved, err := s.Code("upload/a.txt")
	require.NoError(t, err)

	found, err := s.Lookup("upload/a.txt")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, found.ID)
	assert.True(t, found.Reused)

	require.NoError(t, os.Remove(saved.File))
	_, err = s.Lookup("upload/a.txt")
	assert.ErrorIs(t, err, ErrNotStored)
	assert.NoFileExists(t, saved.File)
}
