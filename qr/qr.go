// Package qr generates QR codes for stored file locations and reuses the
// image saved for a location on later requests.
package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/mdp/qrterminal/v3"
	"github.com/nfnt/resize"
	"rsc.io/qr"

	"github.com/JoeSaf/StorageBuckets/records"
)

const (
	// DefaultSize is the edge length of returned images, in pixels.
	DefaultSize = 150

	moduleScale = 10
	minID       = 100000
	maxID       = 999999
)

// Code is a QR image ready for display.
type Code struct {
	ID      int
	Payload string
	File    string      // saved full-size PNG
	Image   image.Image // resized for display
	Reused  bool
}

// PNG encodes the display image.
func (c *Code) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.Image); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Service looks payloads up in the QR record store and generates codes on a
// miss. Lookup is an exact string match; records are never evicted or
// invalidated.
type Service struct {
	dir     string
	records records.Store[records.QRRecord]
	size    uint
	rand    *rand.Rand
}

func NewService(dir string, store records.Store[records.QRRecord], size int) *Service {
	if size <= 0 {
		size = DefaultSize
	}
	return &Service{
		dir:     dir,
		records: store,
		size:    uint(size),
		rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ImagePath is where the full-size image for id is kept.
func (s *Service) ImagePath(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("qr_code_%d.png", id))
}

// ErrNotStored is returned by Lookup for a payload without a saved image.
var ErrNotStored = errors.New("no stored QR code")

// Lookup returns the saved QR image for payload without writing anything.
func (s *Service) Lookup(payload string) (*Code, error) {
	rec, found, err := s.find(payload)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotStored
	}
	path := s.ImagePath(rec.ID)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrNotStored
	}
	img, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return &Code{ID: rec.ID, Payload: payload, File: path, Image: img, Reused: true}, nil
}

func (s *Service) find(payload string) (records.QRRecord, bool, error) {
	rec, found, err := s.records.Find(func(r records.QRRecord) bool {
		return r.FilePath == payload
	})
	if err != nil {
		return rec, false, fmt.Errorf("failed to read QR records: %w", err)
	}
	return rec, found, nil
}

// Code returns the QR image for payload. A recorded payload whose image is
// still on disk is loaded as is. A recorded payload whose image went missing
// is regenerated under the same id. Anything else gets a new random id, a new
// image and a new record.
func (s *Service) Code(payload string) (*Code, error) {
	if payload == "" {
		return nil, errors.New("empty QR payload")
	}

	rec, found, err := s.find(payload)
	if err != nil {
		return nil, err
	}

	if found {
		path := s.ImagePath(rec.ID)
		if _, err := os.Stat(path); err == nil {
			log.Debugf("QR code already exists at: %s", path)
			img, err := s.load(path)
			if err != nil {
				return nil, err
			}
			return &Code{ID: rec.ID, Payload: payload, File: path, Image: img, Reused: true}, nil
		}
		log.Warnf("QR image for %s is missing, regenerating %s", payload, path)
		return s.generate(rec.ID, payload)
	}

	id := minID + s.rand.Intn(maxID-minID+1)
	code, err := s.generate(id, payload)
	if err != nil {
		return nil, err
	}
	if err := s.records.Append(records.QRRecord{ID: id, FilePath: payload}); err != nil {
		return nil, fmt.Errorf("failed to save QR record: %w", err)
	}
	log.Infof("Generated QR code %d for %s", id, payload)
	return code, nil
}

func (s *Service) generate(id int, payload string) (*Code, error) {
	c, err := qr.Encode(payload, qr.M)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	c.Scale = moduleScale

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, err
	}
	path := s.ImagePath(id)
	if err := os.WriteFile(path, c.PNG(), 0644); err != nil {
		return nil, fmt.Errorf("failed to save QR image: %w", err)
	}

	img, err := s.load(path)
	if err != nil {
		return nil, err
	}
	return &Code{ID: id, Payload: payload, File: path, Image: img}, nil
}

// load decodes a saved image and scales it to the display size.
func (s *Service) load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return resize.Resize(s.size, s.size, img, resize.Lanczos3), nil
}

// PrintTerminal writes payload as a QR code made of text blocks.
func PrintTerminal(w io.Writer, payload string) {
	qrterminal.GenerateWithConfig(payload, qrterminal.Config{
		Level:     qrterminal.M,
		Writer:    w,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}
