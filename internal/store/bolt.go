package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketState = []byte("state")

// BoltStorage stores the state document in a BoltDB file
type BoltStorage struct {
	db *bolt.DB
}

// NewBoltStorage opens (or creates) the BoltDB file at path
func NewBoltStorage(path string) (*BoltStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketState); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketState, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStorage{db: db}, nil
}

// Load returns the stored document, or nil if none was saved
func (s *BoltStorage) Load() ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(StateKey))
		if v != nil {
			// bolt values are only valid inside the transaction
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

// Save replaces the stored document
func (s *BoltStorage) Save(data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketState).Put([]byte(StateKey), data); err != nil {
			return fmt.Errorf("failed to store state: %w", err)
		}
		return nil
	})
}

// Close closes the database
func (s *BoltStorage) Close() error {
	return s.db.Close()
}
