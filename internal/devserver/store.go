package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store persists records as JSON in one bucket per resource.
type Store struct {
	db *bolt.DB
}

// stored is the on-disk envelope of a record. Seq preserves insertion order.
type stored struct {
	Seq  uint64          `json:"seq"`
	Data json.RawMessage `json:"data"`
}

// entry is a decoded record with its insertion sequence.
type entry[T any] struct {
	Seq   uint64
	Value T
}

var errNoRecord = errors.New("no such record")

// OpenStore opens (or creates) the database at path and its buckets.
func OpenStore(path string, buckets ...string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Count returns the number of records in bucket.
func (s *Store) Count(bucket string) (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// === Generic helpers ===

func bucketFor(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, fmt.Errorf("bucket %q does not exist", name)
	}
	return b, nil
}

func decode[T any](raw []byte) (entry[T], error) {
	var rec stored
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entry[T]{}, err
	}
	var v T
	if err := json.Unmarshal(rec.Data, &v); err != nil {
		return entry[T]{}, err
	}
	return entry[T]{Seq: rec.Seq, Value: v}, nil
}

func encode[T any](seq uint64, v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(stored{Seq: seq, Data: data})
}

// loadAll returns every record in bucket, in key order.
func loadAll[T any](s *Store, bucket string) ([]entry[T], error) {
	var out []entry[T]
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(k, v []byte) error {
			e, err := decode[T](v)
			if err != nil {
				return fmt.Errorf("corrupt record %s/%s: %w", bucket, k, err)
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

// get returns one record, or errNoRecord.
func get[T any](s *Store, bucket, id string) (T, error) {
	var v T
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		raw := b.Get([]byte(id))
		if raw == nil {
			return errNoRecord
		}
		e, err := decode[T](raw)
		if err != nil {
			return err
		}
		v = e.Value
		return nil
	})
	return v, err
}

// insert stores v under id with the next insertion sequence.
func insert[T any](s *Store, bucket, id string, v T) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		raw, err := encode(seq, v)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), raw)
	})
}

// modify replaces record id with fn's result inside one transaction.
func modify[T any](s *Store, bucket, id string, fn func(T) (T, error)) (T, error) {
	var out T
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		raw := b.Get([]byte(id))
		if raw == nil {
			return errNoRecord
		}
		cur, err := decode[T](raw)
		if err != nil {
			return err
		}
		next, err := fn(cur.Value)
		if err != nil {
			return err
		}
		updated, err := encode(cur.Seq, next)
		if err != nil {
			return err
		}
		out = next
		return b.Put([]byte(id), updated)
	})
	return out, err
}

// remove deletes record id, or returns errNoRecord.
func remove(s *Store, bucket, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := bucketFor(tx, bucket)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return errNoRecord
		}
		return b.Delete([]byte(id))
	})
}
