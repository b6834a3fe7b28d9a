package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltFileName is the database file created inside the cache directory.
const BoltFileName = "holidate.db"

var bucketHolidays = []byte("holidays")

// BoltBackend stores all entries in a single BoltDB file.
// Bucket "holidays" maps CC:YYYY to the JSON-encoded CacheEntry.
type BoltBackend struct {
	db   *bolt.DB
	path string
}

// NewBoltBackend opens (or creates) the database inside dir.
func NewBoltBackend(dir string) (*BoltBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, BoltFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketHolidays)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltBackend{db: db, path: dbPath}, nil
}

// Close releases the database file lock.
func (b *BoltBackend) Close() error {
	return b.db.Close()
}

// Path returns the database path with the key as a fragment.
func (b *BoltBackend) Path(key Key) string {
	return b.path + "#" + key.String()
}

// Read returns the cached entry for key or nil if absent.
// An undecodable value is deleted and reported as unreadable.
func (b *BoltBackend) Read(key Key) (*CacheEntry, error) {
	var data []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketHolidays)
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key.String())); v != nil {
			// Values are only valid for the life of the transaction
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, unreadable(key, err)
	}
	if data == nil {
		return nil, nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		b.delete(key)
		return nil, unreadable(key, err)
	}
	if entry.Key() != key {
		b.delete(key)
		return nil, unreadable(key, fmt.Errorf("value holds entry for %s", entry.Key()))
	}
	return &entry, nil
}

// Write persists the entry in a single transaction.
func (b *BoltBackend) Write(entry *CacheEntry) error {
	key := entry.Key()

	stored := entry.clone()
	stored.Country = key.Country

	data, err := json.Marshal(stored)
	if err != nil {
		return writeFailed(key, err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketHolidays)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key.String()), data)
	})
	if err != nil {
		return writeFailed(key, err)
	}
	return nil
}

// Keys lists every stored key.
func (b *BoltBackend) Keys() ([]Key, error) {
	keys := make([]Key, 0)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketHolidays)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			key, err := ParseKey(string(k))
			if err != nil {
				return nil // skip foreign keys
			}
			keys = append(keys, key)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortKeys(keys)
	return keys, nil
}

// Clear drops and recreates the holidays bucket.
func (b *BoltBackend) Clear() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketHolidays) != nil {
			if err := tx.DeleteBucket(bucketHolidays); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketHolidays)
		return err
	})
}

func (b *BoltBackend) delete(key Key) {
	b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketHolidays)
		if bucket != nil {
			bucket.Delete([]byte(key.String()))
		}
		return nil
	})
}
