// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

package embedding

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/bookgraph/bookgraph/internal/logging"
)

// CacheConfig configures the persistent embedding cache.
type CacheConfig struct {
	// Path is the Badger directory. Empty means in-memory.
	Path string

	// TTL bounds how long a cached vector is kept. Zero means no expiry.
	TTL time.Duration
}

// Cache wraps a Provider with a Badger-backed vector cache keyed by text
// hash. Embedding the same query twice hits the local store instead of
// the network, which matters because semantic search embeds every user
// query.
type Cache struct {
	inner Provider
	db    *badger.DB
	ttl   time.Duration
}

// NewCache opens the cache store and wraps the given provider.
func NewCache(inner Provider, cfg CacheConfig) (*Cache, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	return &Cache{inner: inner, db: db, ttl: cfg.TTL}, nil
}

func cacheKey(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	return sum[:]
}

// Embed implements Provider. Cache failures fall through to the inner
// provider; a broken cache must not break search.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)

	if vec, err := c.get(key); err == nil {
		return vec, nil
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		logging.Warn().Err(err).Msg("embedding cache read failed")
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.put(key, vec); err != nil {
		logging.Warn().Err(err).Msg("embedding cache write failed")
	}
	return vec, nil
}

// EmbedBatch implements Provider. Only fully uncached batches go to the
// inner provider in one call; mixed batches embed per text.
func (c *Cache) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []int
	for i, t := range texts {
		vec, err := c.get(cacheKey(t))
		if err != nil {
			missing = append(missing, i)
			continue
		}
		out[i] = vec
	}
	if len(missing) == 0 {
		return out, nil
	}

	if len(missing) == len(texts) {
		vecs, err := c.inner.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}
		for i, t := range texts {
			if err := c.put(cacheKey(t), vecs[i]); err != nil {
				logging.Warn().Err(err).Msg("embedding cache write failed")
			}
		}
		return vecs, nil
	}

	for _, i := range missing {
		vec, err := c.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (c *Cache) get(key []byte) ([]float32, error) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &vec)
		})
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *Cache) put(key []byte, vec []float32) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, raw)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Close releases the underlying cache store.
func (c *Cache) Close() error {
	return c.db.Close()
}

var _ Provider = (*Cache)(nil)
