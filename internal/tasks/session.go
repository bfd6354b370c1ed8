package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

// Resolver turns a search query into a video ID.
//
// An empty ID with a nil error means nothing was found. Any error is treated as transient.
type Resolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// Session is a long-lived resolver owned by exactly one pool slot.
type Session interface {
	Resolver

	// Identify sets the fingerprint used by the next Resolve call.
	Identify(id Identity)

	// Close releases the session. Called once when the pool is torn down.
	Close() error
}

// SessionFactory opens the session for a pool slot.
type SessionFactory func(ctx context.Context, slot int) (Session, error)

// ResolutionCache stores query → video ID mappings across runs.
type ResolutionCache interface {
	Lookup(query string) (string, bool)
	Store(query, videoID string) error
}

// RunRecorder persists a summary of every finished run.
type RunRecorder interface {
	RecordRun(rec *models.RunRecord) error
}

// CachedSession answers from a [ResolutionCache] before asking the wrapped session.
//
// Cache failures are logged and never fail the lookup.
type CachedSession struct {
	Session
	cache  ResolutionCache
	logger *log.Logger
}

// NewCachedSession wraps s with cache.
func NewCachedSession(s Session, cache ResolutionCache, logger *log.Logger) *CachedSession {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &CachedSession{Session: s, cache: cache, logger: logger}
}

func (c *CachedSession) Resolve(ctx context.Context, query string) (string, error) {
	if id, ok := c.cache.Lookup(query); ok {
		c.logger.Debug("cache hit", "query", query, "video_id", id)
		return id, nil
	}

	id, err := c.Session.Resolve(ctx, query)
	if err != nil || id == "" {
		return id, err
	}

	if err := c.cache.Store(query, id); err != nil {
		c.logger.Warn("failed to cache resolution", "query", query, "error", err)
	}
	return id, nil
}

// CachedFactory decorates every session opened by f with cache.
func CachedFactory(f SessionFactory, cache ResolutionCache, logger *log.Logger) SessionFactory {
	return func(ctx context.Context, slot int) (Session, error) {
		s, err := f(ctx, slot)
		if err != nil {
			return nil, err
		}
		return NewCachedSession(s, cache, logger), nil
	}
}
