package ingestion

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// Cache stores fetched dataset bodies in BadgerDB, zstd-compressed.
type Cache struct {
	db      *badger.DB
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenCache opens a cache at dir. An empty dir keeps the cache in memory.
// Entries expire after ttl; zero means they never expire.
func OpenCache(dir string, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	return &Cache{db: db, ttl: ttl, encoder: encoder, decoder: decoder}, nil
}

// Get returns the cached body for key. The bool is false on a miss or expiry.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var compressed []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	data, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores data under key.
func (c *Cache) Put(key string, data []byte) error {
	compressed := c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), compressed)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Close releases the cache.
func (c *Cache) Close() error {
	c.decoder.Close()
	if err := c.encoder.Close(); err != nil {
		c.db.Close()
		return err
	}
	return c.db.Close()
}
