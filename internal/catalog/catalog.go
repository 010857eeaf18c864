// Package catalog is the read side of the post store.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/example/blog-publisher/internal/frontmatter"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/models"
	"github.com/example/blog-publisher/internal/store"
	"github.com/example/blog-publisher/internal/validation"
)

const (
	keyAll        = "catalog:all"
	keyPostPrefix = "catalog:post:"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrInvalidRecord = errors.New("invalid post record")
)

// Source lists and reads raw records.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, slug string) ([]byte, error)
}

// Cache is an optional JSON cache in front of the source.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any) error
	Del(ctx context.Context, keys ...string) error
}

type Catalog struct {
	src   Source
	cache Cache
	log   logger.Logger

	// gen counts invalidations. A load only fills the cache when no
	// invalidation happened since it started.
	mu  sync.RWMutex
	gen uint64
}

type Option func(*Catalog)

// WithCache enables read-through caching.
func WithCache(c Cache) Option {
	return func(cat *Catalog) { cat.cache = c }
}

func New(src Source, log logger.Logger, opts ...Option) *Catalog {
	c := &Catalog{src: src, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListAll loads every record, newest first. One malformed record fails the
// whole load.
func (c *Catalog) ListAll(ctx context.Context) ([]models.PostMeta, error) {
	var cached []models.PostMeta
	if c.cacheGet(ctx, keyAll, &cached) {
		return cached, nil
	}
	gen := c.generation()

	slugs, err := c.src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	type dated struct {
		meta models.PostMeta
		at   time.Time
	}
	entries := make([]dated, 0, len(slugs))
	for _, s := range slugs {
		post, err := c.load(ctx, s)
		if err != nil {
			return nil, err
		}
		at, _ := validation.ParseDate(post.Date)
		entries = append(entries, dated{meta: post.PostMeta, at: at})
	}

	slices.SortStableFunc(entries, func(a, b dated) int {
		return b.at.Compare(a.at)
	})

	metas := make([]models.PostMeta, len(entries))
	for i, e := range entries {
		metas[i] = e.meta
	}

	c.cacheSet(ctx, gen, keyAll, metas)
	return metas, nil
}

// GetBySlug loads one record.
func (c *Catalog) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	key := keyPostPrefix + slug
	var cached models.Post
	if c.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}
	gen := c.generation()

	post, err := c.load(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.cacheSet(ctx, gen, key, post)
	return post, nil
}

// Invalidate drops the cached listing and, when given, the cached record for slug.
func (c *Catalog) Invalidate(ctx context.Context, slug string) {
	if c.cache == nil {
		return
	}
	keys := []string{keyAll}
	if slug != "" {
		keys = append(keys, keyPostPrefix+slug)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if err := c.cache.Del(ctx, keys...); err != nil {
		c.log.Warn("Catalog cache invalidation failed", logger.Strings("keys", keys), logger.Error(err))
	}
}

func (c *Catalog) load(ctx context.Context, slug string) (*models.Post, error) {
	data, err := c.src.Read(ctx, slug)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPostNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("read post %s: %w", slug, err)
	}

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, slug, err)
	}
	post, err := validation.Parse(doc.Merge())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRecord, slug, err)
	}

	post.Slug = slug
	post.ReadingTime, post.WordCount = ReadingTime(post.Content)
	return &post, nil
}

func (c *Catalog) cacheGet(ctx context.Context, key string, dest any) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.GetJSON(ctx, key, dest)
	if err != nil {
		c.log.Warn("Catalog cache read failed", logger.String("key", key), logger.Error(err))
		return false
	}
	return found
}

func (c *Catalog) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// cacheSet stores value unless the catalog was invalidated after gen was read.
func (c *Catalog) cacheSet(ctx context.Context, gen uint64, key string, value any) {
	if c.cache == nil {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.gen != gen {
		c.log.Debug("Catalog cache fill skipped, invalidated during load", logger.String("key", key))
		return
	}
	if err := c.cache.SetJSON(ctx, key, value); err != nil {
		c.log.Warn("Catalog cache write failed", logger.String("key", key), logger.Error(err))
	}
}
