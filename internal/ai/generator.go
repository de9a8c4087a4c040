// Package ai produces short book summaries and topical tags, preferring an external
// text-generation service and degrading to a deterministic keyword generator.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// DefaultTimeout bounds a single call to the external service.
const DefaultTimeout = 5 * time.Second

var (
	// ErrInvalidInput is returned when title or author is blank.
	ErrInvalidInput = errors.New("missing title/author")
	// ErrRateLimited is returned by a Completer that refuses to call out.
	ErrRateLimited = errors.New("summary service rate limited")
)

// Result is the generated summary. Note is only set when the fallback produced it.
type Result struct {
	Summary string   `json:"ai_summary"`
	Tags    []string `json:"ai_tags"`
	Source  Source   `json:"source"`
	Note    string   `json:"note,omitempty"`
}

// Completer sends a prompt to a text-generation service and returns the raw completion.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderError is a failure reported by the external service.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("summary service returned %d: %s", e.StatusCode, e.Message)
}

// ServiceError wraps an external failure that is not recovered by the fallback.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

type Generator struct {
	completer Completer
	cache     Cache
	timeout   time.Duration
	logger    *slog.Logger
}

type Option func(*Generator)

// WithCache stores successful primary results.
func WithCache(c Cache) Option {
	return func(g *Generator) { g.cache = c }
}

func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator builds a Generator. A nil completer means no credential is configured
// and every request is served by Fallback.
func NewGenerator(completer Completer, opts ...Option) *Generator {
	g := &Generator{
		completer: completer,
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a summary for the title/author pair. For valid input the only
// error is *ServiceError; degraded service conditions yield the fallback result.
func (g *Generator) Generate(ctx context.Context, title, author string) (Result, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title == "" || author == "" {
		return Result{}, ErrInvalidInput
	}

	if g.completer == nil {
		return Fallback(title, author), nil
	}

	key := CacheKey(title, author)
	if g.cache != nil {
		if cached, ok := g.cache.Get(ctx, key); ok {
			return cached, nil
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	content, err := g.completer.Complete(callCtx, BuildPrompt(title, author))
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	cancel()

	if err != nil {
		if timedOut || isDegraded(err) {
			g.logger.Warn("summary_service_degraded", "title", title, "error", err)
			return Fallback(title, author), nil
		}
		g.logger.Error("summary_service_failed", "title", title, "error", err)
		return Result{}, &ServiceError{Err: err}
	}

	parsed, err := ParseSummary(content)
	if err != nil {
		g.logger.Warn("summary_parse_failed", "title", title, "error", err)
		return Fallback(title, author), nil
	}

	res := Result{
		Summary: parsed.Summary,
		Tags:    parsed.Tags,
		Source:  SourcePrimary,
	}
	if g.cache != nil {
		g.cache.Set(ctx, key, res)
	}
	return res, nil
}

// isDegraded recognizes quota, billing and rate-limit failures.
func isDegraded(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := err.Error()
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.StatusCode == 429 {
			return true
		}
		msg = pe.Message
	}
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "quota") || strings.Contains(msg, "billing")
}

// BuildPrompt renders the fixed librarian instruction for a title/author pair.
func BuildPrompt(title, author string) string {
	return fmt.Sprintf(`
You are a librarian assistant.
Given a book title and author, generate:
1) a 1-2 sentence summary (fictional if unknown)
2) 3-6 short tags

Return STRICT JSON only with keys:
ai_summary (string), ai_tags (array of strings)

Title: %s
Author: %s
`, title, author)
}
