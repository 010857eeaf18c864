// Package mirror copies post records to a GitHub repository. The copy is
// advisory: every call reports an outcome and none returns an error.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/example/blog-publisher/internal/config"
	"github.com/example/blog-publisher/internal/logger"
)

// Outcome classifies a mirror attempt.
type Outcome string

const (
	OutcomeCommitted Outcome = "committed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Result reports what happened to the remote copy.
type Result struct {
	Outcome   Outcome
	Reason    string
	Path      string
	CommitSHA string
	// Updated is true when an existing remote file was replaced.
	Updated bool
}

// Success reports whether the remote copy was committed.
func (r Result) Success() bool { return r.Outcome == OutcomeCommitted }

// Mirror is the contract the ingestion service depends on.
type Mirror interface {
	Commit(ctx context.Context, slug, content, title string) Result
}

// Option customizes a GitHubMirror.
type Option func(*GitHubMirror)

// WithHTTPClient sets the transport used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(m *GitHubMirror) { m.httpClient = c }
}

// WithStateChange observes circuit breaker transitions.
func WithStateChange(fn func(from, to State)) Option {
	return func(m *GitHubMirror) { m.onStateChange = fn }
}

// GitHubMirror writes records through the repository contents API.
type GitHubMirror struct {
	client     *github.Client
	httpClient *http.Client
	breaker    *Breaker
	log        logger.Logger

	owner          string
	repo           string
	branch         string
	prefix         string
	ext            string
	committerName  string
	committerEmail string
	timeout        time.Duration
	skipReason     string
	onStateChange  func(from, to State)
}

// New builds a mirror from cfg. Records are named <slug><ext> under cfg.PathPrefix.
// Missing credentials yield a mirror whose commits are skipped.
func New(cfg config.MirrorConfig, ext string, log logger.Logger, opts ...Option) (*GitHubMirror, error) {
	m := &GitHubMirror{
		log:            log,
		owner:          cfg.Owner,
		repo:           cfg.Repo,
		branch:         cfg.Branch,
		prefix:         strings.Trim(cfg.PathPrefix, "/"),
		ext:            ext,
		committerName:  cfg.CommitterName,
		committerEmail: cfg.CommitterEmail,
		timeout:        cfg.Timeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	if !cfg.Configured() {
		m.skipReason = "mirror not configured: missing " + strings.Join(missingSettings(cfg), ", ")
		return m, nil
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("mirror timeout must be positive, got %s", cfg.Timeout)
	}

	client := github.NewClient(m.httpClient).WithAuthToken(cfg.Token)
	if cfg.APIURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.APIURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse mirror api url: %w", err)
		}
		client.BaseURL = base
	}
	m.client = client
	m.breaker = NewBreaker(BreakerConfig{
		FailureThreshold: cfg.FailureThreshold,
		OpenTimeout:      cfg.OpenTimeout,
		OnStateChange:    m.stateChanged,
		IsFailure:        func(err error) bool { return !isVersionConflict(err) },
	})
	return m, nil
}

func missingSettings(cfg config.MirrorConfig) []string {
	var missing []string
	if cfg.Token == "" {
		missing = append(missing, "token")
	}
	if cfg.Owner == "" {
		missing = append(missing, "owner")
	}
	if cfg.Repo == "" {
		missing = append(missing, "repo")
	}
	return missing
}

func (m *GitHubMirror) stateChanged(from, to State) {
	m.log.Warn("Mirror circuit breaker changed state",
		logger.String("from", from.String()),
		logger.String("to", to.String()),
	)
	if m.onStateChange != nil {
		m.onStateChange(from, to)
	}
}

// Configured reports whether commits reach GitHub.
func (m *GitHubMirror) Configured() bool { return m.client != nil }

// Path returns the repository path of slug's record.
func (m *GitHubMirror) Path(slug string) string {
	return path.Join(m.prefix, slug+m.ext)
}

// Commit creates or updates the remote copy of a record. The fetch and the
// write share one deadline.
func (m *GitHubMirror) Commit(ctx context.Context, slug, content, title string) Result {
	filePath := m.Path(slug)
	log := logger.FromContext(ctx, m.log).With(logger.String("slug", slug), logger.String("path", filePath))

	if m.client == nil {
		log.Info("Mirror skipped", logger.String("reason", m.skipReason))
		return Result{Outcome: OutcomeSkipped, Reason: m.skipReason, Path: filePath}
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var res Result
	err := m.breaker.Execute(ctx, func(ctx context.Context) error {
		var commitErr error
		res, commitErr = m.commit(ctx, filePath, content, title)
		return commitErr
	})
	if err != nil {
		reason := m.describe(err)
		log.Warn("Mirror commit failed", logger.String("reason", reason), logger.Error(err))
		return Result{Outcome: OutcomeFailed, Reason: reason, Path: filePath}
	}

	log.Info("Mirror commit succeeded",
		logger.String("commit_sha", res.CommitSHA),
		logger.Bool("updated", res.Updated),
	)
	return res
}

func (m *GitHubMirror) commit(ctx context.Context, filePath, content, title string) (Result, error) {
	sha, err := m.currentSHA(ctx, filePath)
	if err != nil {
		return Result{}, err
	}

	opts := &github.RepositoryContentFileOptions{
		Content: []byte(content),
		Branch:  github.String(m.branch),
		Committer: &github.CommitAuthor{
			Name:  github.String(m.committerName),
			Email: github.String(m.committerEmail),
		},
	}

	var out *github.RepositoryContentResponse
	if sha == "" {
		opts.Message = github.String("Add post: " + title)
		out, _, err = m.client.Repositories.CreateFile(ctx, m.owner, m.repo, filePath, opts)
	} else {
		opts.Message = github.String("Update post: " + title)
		opts.SHA = github.String(sha)
		out, _, err = m.client.Repositories.UpdateFile(ctx, m.owner, m.repo, filePath, opts)
	}
	if err != nil {
		return Result{}, fmt.Errorf("write %s: %w", filePath, err)
	}

	return Result{
		Outcome:   OutcomeCommitted,
		Path:      filePath,
		CommitSHA: out.Commit.GetSHA(),
		Updated:   sha != "",
	}, nil
}

// currentSHA returns the blob SHA of the existing remote file, or "" when absent.
func (m *GitHubMirror) currentSHA(ctx context.Context, filePath string) (string, error) {
	file, _, resp, err := m.client.Repositories.GetContents(ctx, m.owner, m.repo, filePath,
		&github.RepositoryContentGetOptions{Ref: m.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("fetch %s: %w", filePath, err)
	}
	if file == nil {
		return "", fmt.Errorf("fetch %s: path is a directory", filePath)
	}
	return file.GetSHA(), nil
}

// isVersionConflict reports a rejected SHA precondition. GitHub answered, so
// the breaker does not count it.
func isVersionConflict(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	code := ghErr.Response.StatusCode
	return code == http.StatusConflict || code == http.StatusUnprocessableEntity
}

func (m *GitHubMirror) describe(err error) string {
	var ghErr *github.ErrorResponse
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return ErrCircuitOpen.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("timed out after %s", m.timeout)
	case errors.As(err, &ghErr) && ghErr.Response != nil:
		switch ghErr.Response.StatusCode {
		case http.StatusConflict, http.StatusUnprocessableEntity:
			return fmt.Sprintf("version conflict (%d): %s", ghErr.Response.StatusCode, ghErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Sprintf("not authorized (%d): %s", ghErr.Response.StatusCode, ghErr.Message)
		default:
			return fmt.Sprintf("github returned %d: %s", ghErr.Response.StatusCode, ghErr.Message)
		}
	default:
		return err.Error()
	}
}
