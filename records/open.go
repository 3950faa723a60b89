package records

import (
	"fmt"
	"io"
)

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Options locates the side files for each backend.
type Options struct {
	Backend     string
	UploadLog   string // json backend
	QRRecords   string // json backend
	Database    string // bolt and sqlite backends
	ActivityLog string
}

// Set bundles the stores the application needs.
type Set struct {
	Uploads  Store[UploadRecord]
	QR       Store[QRRecord]
	Activity Store[Activity]

	closer io.Closer
}

// Open builds the stores for opts.Backend. The activity journal is always
// a JSON lines file.
func Open(opts Options) (*Set, error) {
	set := &Set{Activity: NewJSONLStore[Activity](opts.ActivityLog)}

	switch opts.Backend {
	case "", BackendJSON:
		set.Uploads = NewJSONStore[UploadRecord](opts.UploadLog)
		set.QR = NewJSONStore[QRRecord](opts.QRRecords)

	case BackendBolt:
		db, err := OpenBolt(opts.Database)
		if err != nil {
			return nil, err
		}
		uploads, err := NewBoltStore[UploadRecord](db, "upload_log")
		if err != nil {
			db.Close()
			return nil, err
		}
		qr, err := NewBoltStore[QRRecord](db, "qr_records")
		if err != nil {
			db.Close()
			return nil, err
		}
		set.Uploads, set.QR, set.closer = uploads, qr, db

	case BackendSQLite:
		db, err := OpenSQLite(opts.Database)
		if err != nil {
			return nil, err
		}
		uploads, err := NewSQLiteStore[UploadRecord](db, "upload_log")
		if err != nil {
			db.Close()
			return nil, err
		}
		qr, err := NewSQLiteStore[QRRecord](db, "qr_records")
		if err != nil {
			db.Close()
			return nil, err
		}
		set.Uploads, set.QR, set.closer = uploads, qr, db

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}

	return set, nil
}

// Close releases the database of the bolt and sqlite backends.
func (s *Set) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
