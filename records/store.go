package records

import (
	"errors"
	"time"
)

// UploadTimeLayout is the format of UploadRecord.UploadTime.
const UploadTimeLayout = "2006-01-02 15:04:05"

// UploadRecord is one entry of the upload log. Entries are appended and
// never updated; re-uploading a name produces a second entry.
type UploadRecord struct {
	FileName    string `json:"file_name"`
	Destination string `json:"destination"`
	UploadTime  string `json:"upload_time"`
}

// NewUploadRecord stamps a record with t formatted as UploadTimeLayout.
func NewUploadRecord(fileName, destination string, t time.Time) UploadRecord {
	return UploadRecord{
		FileName:    fileName,
		Destination: destination,
		UploadTime:  t.Format(UploadTimeLayout),
	}
}

// QRRecord maps a payload (a file location) to the id of its saved QR image.
type QRRecord struct {
	ID       int    `json:"id"`
	FilePath string `json:"file_path"`
}

// Activity is a single mutating operation written to the activity journal
type Activity struct {
	Timestamp string   `json:"timestamp"`
	Action    string   `json:"action"`           // upload, create-bucket, delete-bucket, download
	Sources   []string `json:"sources"`          // affected names
	Dest      string   `json:"dest,omitempty"`   // destination, if any
	Errors    []string `json:"errors,omitempty"` // per item failures
}

// Store is an ordered, append-only sequence of records.
//
// Implementations differ only in the storage medium; callers never see
// which one they hold.
type Store[T any] interface {
	All() ([]T, error)
	Append(rec T) error
	Find(match func(T) bool) (T, bool, error)
}

var ErrUnknownBackend = errors.New("unknown record backend")

// find is the linear scan shared by every backend.
func find[T any](all func() ([]T, error), match func(T) bool) (T, bool, error) {
	var zero T
	recs, err := all()
	if err != nil {
		return zero, false, err
	}
	for _, r := range recs {
		if match(r) {
			return r, true, nil
		}
	}
	return zero, false, nil
}
