package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/blog-publisher/internal/frontmatter"
	"github.com/example/blog-publisher/internal/logger"
	"github.com/example/blog-publisher/internal/mirror"
	"github.com/example/blog-publisher/internal/models"
	"github.com/example/blog-publisher/internal/slug"
	"github.com/example/blog-publisher/internal/store"
	"github.com/example/blog-publisher/internal/validation"
)

const tracerName = "blog-publisher/service"

// Ingest results, as recorded in metrics.
const (
	resultCreated  = "created"
	resultInvalid  = "invalid"
	resultConflict = "conflict"
	resultError    = "error"
)

// PostStore creates records. It must reject existing slugs with store.ErrSlugExists.
type PostStore interface {
	Write(ctx context.Context, slug, content string) (*store.WriteResult, error)
}

type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *models.ActivityLog) error
}

// CatalogInvalidator drops cached catalog reads after a write.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, slug string)
}

type Recorder interface {
	RecordIngest(result string, elapsed time.Duration)
	RecordMirror(outcome string)
}

// ConflictError reports that a post with the same slug is already stored.
// It matches store.ErrSlugExists under errors.Is.
type ConflictError struct {
	Slug string
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("post with slug %q already exists", e.Slug)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// MirrorStatus is the advisory report on the remote copy.
type MirrorStatus struct {
	Outcome   string `json:"outcome"`
	Committed bool   `json:"committed"`
	Reason    string `json:"reason,omitempty"`
	Path      string `json:"path,omitempty"`
	CommitSHA string `json:"commitSha,omitempty"`
}

// CreateResult describes a post that was stored locally.
type CreateResult struct {
	Post    models.Post
	Path    string
	Message string
	Mirror  MirrorStatus
}

type PostService struct {
	store   PostStore
	mirror  mirror.Mirror
	audit   ActivityLogger
	catalog CatalogInvalidator
	metrics Recorder
	log     logger.Logger
	tracer  trace.Tracer
}

type Option func(*PostService)

func WithActivityLog(a ActivityLogger) Option { return func(s *PostService) { s.audit = a } }

func WithCatalog(c CatalogInvalidator) Option { return func(s *PostService) { s.catalog = c } }

func WithMetrics(r Recorder) Option { return func(s *PostService) { s.metrics = r } }

func NewPostService(st PostStore, m mirror.Mirror, log logger.Logger, opts ...Option) *PostService {
	s := &PostService{
		store:  st,
		mirror: m,
		log:    log,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePost validates input, stores it under its derived slug and then
// mirrors it. Only validation and local storage failures are returned; the
// mirror outcome is reported in the result.
func (s *PostService) CreatePost(ctx context.Context, input any) (*CreateResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "post.create")
	defer span.End()
	log := logger.FromContext(ctx, s.log)

	post, err := validation.Parse(input)
	if err != nil {
		s.fail(span, resultInvalid, start, err)
		return nil, err
	}

	post.Slug = slug.Derive(post.Title)
	if !slug.Valid(post.Slug) {
		err := &validation.Error{Errors: []string{validation.MsgTitleNoSlug}}
		s.fail(span, resultInvalid, start, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("post.slug", post.Slug))
	log = log.With(logger.String("slug", post.Slug))

	record := frontmatter.Format(post)
	written, err := s.store.Write(ctx, post.Slug, record)
	if err != nil {
		if errors.Is(err, store.ErrSlugExists) {
			log.Info("Post rejected, slug exists")
			s.fail(span, resultConflict, start, err)
			return nil, &ConflictError{Slug: post.Slug, Err: err}
		}
		log.Error("Failed to store post", logger.Error(err))
		s.fail(span, resultError, start, err)
		return nil, fmt.Errorf("save post %s: %w", post.Slug, err)
	}

	// The record is committed locally; a client disconnect must not abort the mirror.
	detached := context.WithoutCancel(ctx)
	mres := s.mirror.Commit(detached, post.Slug, record, post.Title)
	span.SetAttributes(attribute.String("mirror.outcome", string(mres.Outcome)))

	s.afterCreate(detached, log, &post, mres)
	s.record(resultCreated, start)
	log.Info("Post created",
		logger.String("path", written.Path),
		logger.String("mirror_outcome", string(mres.Outcome)),
	)

	return &CreateResult{
		Post:    post,
		Path:    written.Path,
		Message: "Blog post saved successfully at " + written.Path,
		Mirror: MirrorStatus{
			Outcome:   string(mres.Outcome),
			Committed: mres.Success(),
			Reason:    mres.Reason,
			Path:      mres.Path,
			CommitSHA: mres.CommitSHA,
		},
	}, nil
}

// afterCreate runs the best-effort side effects of a successful write.
func (s *PostService) afterCreate(ctx context.Context, log logger.Logger, post *models.Post, mres mirror.Result) {
	if s.metrics != nil {
		s.metrics.RecordMirror(string(mres.Outcome))
	}
	if s.catalog != nil {
		s.catalog.Invalidate(ctx, post.Slug)
	}
	if s.audit == nil {
		return
	}

	entry := &models.ActivityLog{
		Action:        models.ActionPostCreated,
		Slug:          post.Slug,
		Title:         post.Title,
		Tags:          pq.StringArray(post.Tags),
		MirrorOutcome: string(mres.Outcome),
		MirrorReason:  mres.Reason,
		CommitSHA:     mres.CommitSHA,
	}
	if err := s.audit.LogActivity(ctx, entry); err != nil {
		log.Warn("Failed to write activity log", logger.Error(err))
	}
}

func (s *PostService) fail(span trace.Span, result string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, result)
	s.record(result, start)
}

func (s *PostService) record(result string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RecordIngest(result, time.Since(start))
	}
}
