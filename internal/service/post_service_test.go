package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/blog-publisher/internal/catalog"
	"github.com/example/blog-publisher/internal/config"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/mirror"
	"github.com/example/blog-publisher/internal/models"
	"github.com/example/blog-publisher/internal/service"
	"github.com/example/blog-publisher/internal/store"
	"github.com/example/blog-publisher/internal/validation"
)

type mirrorCall struct {
	slug, content, title string
}

type fakeMirror struct {
	mu     sync.Mutex
	calls  []mirrorCall
	result mirror.Result
}

func (f *fakeMirror) Commit(_ context.Context, slug, content, title string) mirror.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mirrorCall{slug: slug, content: content, title: title})
	res := f.result
	res.Path = "posts/" + slug + ".mdx"
	return res
}

type fakeAudit struct {
	entries []*models.ActivityLog
	err     error
}

func (f *fakeAudit) LogActivity(_ context.Context, e *models.ActivityLog) error {
	f.entries = append(f.entries, e)
	return f.err
}

type fakeInvalidator struct{ slugs []string }

func (f *fakeInvalidator) Invalidate(_ context.Context, slug string) { f.slugs = append(f.slugs, slug) }

type fakeRecorder struct {
	ingests []string
	mirrors []string
}

func (f *fakeRecorder) RecordIngest(result string, _ time.Duration) { f.ingests = append(f.ingests, result) }
func (f *fakeRecorder) RecordMirror(outcome string)                 { f.mirrors = append(f.mirrors, outcome) }

func input(title string) map[string]any {
	return map[string]any{
		"title":       title,
		"description": "A description",
		"date":        "2024-01-15",
		"tags":        []any{"go"},
		"content":     "# Heading\n\nBody.",
	}
}

func TestCreatePost_StoresThenMirrors(t *testing.T) {
	dir := t.TempDir()
	fm := &fakeMirror{result: mirror.Result{Outcome: mirror.OutcomeCommitted, CommitSHA: "abc123"}}
	audit := &fakeAudit{}
	inv := &fakeInvalidator{}
	rec := &fakeRecorder{}
	svc := service.NewPostService(store.New(dir, ".mdx"), fm, logger.NewNop(),
		service.WithActivityLog(audit), service.WithCatalog(inv), service.WithMetrics(rec))

	res, err := svc.CreatePost(context.Background(), input("  My First Post!! "))
	require.NoError(t, err)

	wantPath := filepath.Join(dir, "my-first-post.mdx")
	assert.Equal(t, "my-first-post", res.Post.Slug)
	assert.Equal(t, wantPath, res.Path)
	assert.Equal(t, "Blog post saved successfully at "+wantPath, res.Message)
	assert.Equal(t, service.MirrorStatus{
		Outcome:   "committed",
		Committed: true,
		Path:      "posts/my-first-post.mdx",
		CommitSHA: "abc123",
	}, res.Mirror)

	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	require.Len(t, fm.calls, 1)
	assert.Equal(t, mirrorCall{slug: "my-first-post", content: string(data), title: "  My First Post!! "}, fm.calls[0])

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.ActionPostCreated, audit.entries[0].Action)
	assert.Equal(t, "committed", audit.entries[0].MirrorOutcome)
	assert.Equal(t, "abc123", audit.entries[0].CommitSHA)
	assert.Equal(t, []string{"my-first-post"}, inv.slugs)
	assert.Equal(t, []string{"created"}, rec.ingests)
	assert.Equal(t, []string{"committed"}, rec.mirrors)
}

func TestCreatePost_DuplicateSkipsMirror(t *testing.T) {
	fm := &fakeMirror{result: mirror.Result{Outcome: mirror.OutcomeCommitted}}
	rec := &fakeRecorder{}
	svc := service.NewPostService(store.New(t.TempDir(), ".mdx"), fm, logger.NewNop(), service.WithMetrics(rec))

	_, err := svc.CreatePost(context.Background(), input("Same Title"))
	require.NoError(t, err)

	_, err = svc.CreatePost(context.Background(), input("same   title"))
	require.ErrorIs(t, err, store.ErrSlugExists)
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "same-title", conflict.Slug)

	assert.Len(t, fm.calls, 1)
	assert.Equal(t, []string{"created", "conflict"}, rec.ingests)
}

func TestCreatePost_ValidationFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	fm := &fakeMirror{}
	svc := service.NewPostService(store.New(dir, ".mdx"), fm, logger.NewNop())

	in := input("")
	in["date"] = "not-a-date"
	_, err := svc.CreatePost(context.Background(), in)

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{validation.MsgTitleRequired, validation.MsgDateInvalid}, vErr.Errors)
	assert.Empty(t, fm.calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreatePost_TitleWithoutSlugCharacters(t *testing.T) {
	fm := &fakeMirror{}
	svc := service.NewPostService(store.New(t.TempDir(), ".mdx"), fm, logger.NewNop())

	_, err := svc.CreatePost(context.Background(), input("!!! ??? ---"))

	var vErr *validation.Error
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{validation.MsgTitleNoSlug}, vErr.Errors)
	assert.Empty(t, fm.calls)
}

func TestCreatePost_StorageFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "posts")
	require.NoError(t, os.WriteFile(blocker, []byte("file"), 0o600))
	fm := &fakeMirror{}
	svc := service.NewPostService(store.New(blocker, ".mdx"), fm, logger.NewNop())

	_, err := svc.CreatePost(context.Background(), input("Doomed"))
	require.ErrorIs(t, err, store.ErrStorage)
	assert.False(t, errors.Is(err, store.ErrSlugExists))
	assert.Empty(t, fm.calls)
}

func TestCreatePost_UnconfiguredMirrorStillSucceeds(t *testing.T) {
	m, err := mirror.New(config.MirrorConfig{PathPrefix: "posts"}, ".mdx", logger.NewNop())
	require.NoError(t, err)
	audit := &fakeAudit{err: errors.New("db down")}
	svc := service.NewPostService(store.New(t.TempDir(), ".mdx"), m, logger.NewNop(), service.WithActivityLog(audit))

	res, err := svc.CreatePost(context.Background(), input("Offline"))
	require.NoError(t, err)

	assert.Equal(t, "skipped", res.Mirror.Outcome)
	assert.False(t, res.Mirror.Committed)
	assert.Contains(t, res.Mirror.Reason, "mirror not configured")
	assert.Len(t, audit.entries, 1)
}

func TestCreatePost_DistinctPostsAreListed(t *testing.T) {
	st := store.New(t.TempDir(), ".mdx")
	cat := catalog.New(st, logger.NewNop())
	svc := service.NewPostService(st, &fakeMirror{result: mirror.Result{Outcome: mirror.OutcomeFailed, Reason: "boom"}},
		logger.NewNop(), service.WithCatalog(cat))

	older := input("Older")
	older["date"] = "2024-01-01"
	newer := input("Newer")
	newer["date"] = "2024-06-01"
	newer["tags"] = nil

	_, err := svc.CreatePost(context.Background(), older)
	require.NoError(t, err)
	res, err := svc.CreatePost(context.Background(), newer)
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Mirror.Outcome)
	assert.Equal(t, "boom", res.Mirror.Reason)

	metas, err := cat.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 2)
	assert.Equal(t, "newer", metas[0].Slug)
	assert.Equal(t, []string{}, metas[0].Tags)
	assert.Equal(t, "older", metas[1].Slug)
	assert.Equal(t, []string{"go"}, metas[1].Tags)
}
