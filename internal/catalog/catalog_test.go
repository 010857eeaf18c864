package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blog-publisher/internal/cache"
	"github.com/example/blog-publisher/internal/catalog"
	"github.com/example/blog-publisher/internal/frontmatter"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/models"
	"github.com/example/blog-publisher/internal/store"
)

func seed(t *testing.T, s *store.FileStore, slug, date string, tags []string, body string) {
	t.Helper()
	record := frontmatter.Format(models.Post{
		PostMeta: models.PostMeta{Title: "Post " + slug, Description: "About " + slug, Date: date, Tags: tags},
		Content:  body,
	})
	_, err := s.Write(context.Background(), slug, record)
	require.NoError(t, err)
}

func slugsOf(metas []models.PostMeta) []string {
	out := make([]string, len(metas))
	for i, m := range metas {
		out[i] = m.Slug
	}
	return out
}

func TestListAll_NewestFirst(t *testing.T) {
	s := store.New(t.TempDir(), ".mdx")
	seed(t, s, "january", "2024-01-01", nil, "one")
	seed(t, s, "march", "2024-03-01", []string{"go"}, "three")
	seed(t, s, "february", "2024-02-01", nil, "two")

	metas, err := catalog.New(s, logger.NewNop()).ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"march", "february", "january"}, slugsOf(metas))
	assert.Equal(t, "Post march", metas[0].Title)
	assert.Equal(t, []string{"go"}, metas[0].Tags)
	assert.Equal(t, []string{}, metas[1].Tags)
	assert.Equal(t, "1 min read", metas[0].ReadingTime)
}

func TestListAll_TiesKeepFileNameOrder(t *testing.T) {
	s := store.New(t.TempDir(), ".mdx")
	seed(t, s, "c", "2024-01-01", nil, "x")
	seed(t, s, "a", "2024-01-01", nil, "x")
	seed(t, s, "b", "2024-01-01T00:00:00Z", nil, "x")
	seed(t, s, "newer", "2024-01-01T12:00:00Z", nil, "x")

	metas, err := catalog.New(s, logger.NewNop()).ListAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"newer", "a", "b", "c"}, slugsOf(metas))
}

func TestListAll_EmptyStore(t *testing.T) {
	s := store.New(filepath.Join(t.TempDir(), "missing"), ".mdx")

	metas, err := catalog.New(s, logger.NewNop()).ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, metas)
}

func TestListAll_MalformedRecordFailsLoad(t *testing.T) {
	dir := t.TempDir()
	s := store.New(dir, ".mdx")
	seed(t, s, "good", "2024-01-01", nil, "fine")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.mdx"),
		[]byte("---\ntitle: \"Broken\"\ndate: \"someday\"\n---\n\nbody"), 0o644))

	_, err := catalog.New(s, logger.NewNop()).ListAll(context.Background())
	require.ErrorIs(t, err, catalog.ErrInvalidRecord)
	assert.Contains(t, err.Error(), "broken")
}

func TestGetBySlug(t *testing.T) {
	s := store.New(t.TempDir(), ".mdx")
	body := strings.Repeat("word ", 450)
	seed(t, s, "long-read", "2024-05-05", []string{"essay"}, body)

	cat := catalog.New(s, logger.NewNop())
	post, err := cat.GetBySlug(context.Background(), "long-read")
	require.NoError(t, err)

	assert.Equal(t, "long-read", post.Slug)
	assert.Equal(t, body, post.Content)
	assert.Equal(t, 450, post.WordCount)
	assert.Equal(t, "3 min read", post.ReadingTime)

	_, err = cat.GetBySlug(context.Background(), "nope")
	require.ErrorIs(t, err, catalog.ErrPostNotFound)
}

func TestCatalog_ReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	s := store.New(t.TempDir(), ".mdx")
	seed(t, s, "first", "2024-01-01", nil, "x")

	cat := catalog.New(s, logger.NewNop(), catalog.WithCache(rc))
	ctx := context.Background()

	metas, err := cat.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, metas, 1)
	assert.True(t, mr.Exists("catalog:all"))

	seed(t, s, "second", "2024-02-01", nil, "y")
	metas, err = cat.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, metas, 1, "served from cache")

	_, err = cat.GetBySlug(ctx, "first")
	require.NoError(t, err)
	assert.True(t, mr.Exists("catalog:post:first"))

	cat.Invalidate(ctx, "first")
	assert.False(t, mr.Exists("catalog:all"))
	assert.False(t, mr.Exists("catalog:post:first"))

	metas, err = cat.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, slugsOf(metas))
}

// racingSource runs onList after listing, as if a post were created while the
// catalog was loading.
type racingSource struct {
	*store.FileStore
	onList func()
}

func (r *racingSource) List(ctx context.Context) ([]string, error) {
	slugs, err := r.FileStore.List(ctx)
	if r.onList != nil {
		r.onList()
		r.onList = nil
	}
	return slugs, err
}

func TestCatalog_InvalidationDuringLoadSkipsCacheFill(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	s := store.New(t.TempDir(), ".mdx")
	seed(t, s, "first", "2024-01-01", nil, "x")

	src := &racingSource{FileStore: s}
	cat := catalog.New(src, logger.NewNop(), catalog.WithCache(rc))
	ctx := context.Background()
	src.onList = func() {
		seed(t, s, "second", "2024-02-01", nil, "y")
		cat.Invalidate(ctx, "second")
	}

	metas, err := cat.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, slugsOf(metas))
	assert.False(t, mr.Exists("catalog:all"), "stale listing must not be cached")

	metas, err = cat.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, slugsOf(metas))
	assert.True(t, mr.Exists("catalog:all"))
}

func TestCatalog_CacheOutageFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), time.Minute)
	s := store.New(t.TempDir(), ".mdx")
	seed(t, s, "only", "2024-01-01", nil, "x")
	mr.Close()

	cat := catalog.New(s, logger.NewNop(), catalog.WithCache(rc))
	metas, err := cat.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, metas, 1)
	cat.Invalidate(context.Background(), "")
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		body  string
		text  string
		words int
	}{
		{body: "", text: "0 min read", words: 0},
		{body: "one", text: "1 min read", words: 1},
		{body: strings.Repeat("w ", 200), text: "1 min read", words: 200},
		{body: strings.Repeat("w ", 201), text: "1 min read", words: 201},
		{body: strings.Repeat("w ", 202), text: "2 min read", words: 202},
		{body: strings.Repeat("w\n\t", 402), text: "3 min read", words: 402},
	}
	for _, tt := range tests {
		text, words := catalog.ReadingTime(tt.body)
		assert.Equal(t, tt.text, text)
		assert.Equal(t, tt.words, words)
	}
}
