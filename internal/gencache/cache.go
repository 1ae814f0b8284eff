// Package gencache remembers the content hash of every template `trs gen`
// compiled so unchanged sources can be skipped.
package gencache

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketSources = "sources"

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("gencache: cache is closed")

// Cache is a bbolt database mapping output paths to content hashes.
type Cache struct {
	db *bolt.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("gencache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSources))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("gencache: initialize: %w", err)
	}
	return &Cache{db: db}, nil
}

// Hash digests every part in order. Each part is length-prefixed so
// ("ab", "c") and ("a", "bc") differ.
func Hash(parts ...[]byte) []byte {
	h := sha256.New()
	for _, part := range parts {
		fmt.Fprintf(h, "%d:", len(part))
		h.Write(part)
	}
	return h.Sum(nil)
}

// Fresh reports whether key was last stored with hash.
func (c *Cache) Fresh(key string, hash []byte) (bool, error) {
	if c == nil || c.db == nil {
		return false, ErrClosed
	}
	fresh := false
	err := c.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSources))
		fresh = bytes.Equal(b.Get([]byte(key)), hash)
		return nil
	})
	return fresh, err
}

// Store records hash for key.
func (c *Cache) Store(key string, hash []byte) error {
	if c == nil || c.db == nil {
		return ErrClosed
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSources))
		return b.Put([]byte(key), hash)
	})
}

// Forget drops key so the next run regenerates it.
func (c *Cache) Forget(key string) error {
	if c == nil || c.db == nil {
		return ErrClosed
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketSources))
		return b.Delete([]byte(key))
	})
}

// Keys lists the cached keys in byte order.
func (c *Cache) Keys() ([]string, error) {
	if c == nil || c.db == nil {
		return nil, ErrClosed
	}
	var keys []string
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketSources)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// Close releases the database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}
