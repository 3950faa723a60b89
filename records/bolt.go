package records

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltStore keeps one collection in a bbolt bucket. Keys are the bucket's
// sequence number, big-endian, so cursor order is append order.
type BoltStore[T any] struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens (or creates) the database file shared by all collections.
func OpenBolt(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}
	return db, nil
}

func NewBoltStore[T any](db *bolt.DB, collection string) (*BoltStore[T], error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(collection))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket %q: %w", collection, err)
	}
	return &BoltStore[T]{db: db, bucket: []byte(collection)}, nil
}

func (s *BoltStore[T]) Append(rec T) error {
	data, err := serialize(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), data)
	})
}

func (s *BoltStore[T]) All() ([]T, error) {
	recs := []T{}
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).ForEach(func(k, v []byte) error {
			var rec T
			if err := deserialize(v, &rec); err != nil {
				return fmt.Errorf("record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *BoltStore[T]) Find(match func(T) bool) (T, bool, error) {
	return find(s.All, match)
}

func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

// serialize encodes a record using gob
func serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserialize decodes a record from gob
func deserialize(data []byte, v any) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	return dec.Decode(v)
}
