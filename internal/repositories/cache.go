package repositories

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

// ResolutionCacheAdapter implements tasks.ResolutionCache using ResolutionRepository.
//
// Queries are normalized before lookup so spacing and case differences share an entry.
// Lookup failures read as misses; they are logged, never returned.
type ResolutionCacheAdapter struct {
	repo     *ResolutionRepository
	strategy string
	logger   *log.Logger
}

// NewResolutionCacheAdapter creates a new ResolutionCacheAdapter tagging new entries with strategy
func NewResolutionCacheAdapter(repo *ResolutionRepository, strategy string, logger *log.Logger) *ResolutionCacheAdapter {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &ResolutionCacheAdapter{repo: repo, strategy: strategy, logger: logger}
}

// Lookup returns the cached video ID for query and records the hit.
func (a *ResolutionCacheAdapter) Lookup(query string) (string, bool) {
	key := shared.NormalizeQuery(query)
	res, err := a.repo.GetByQueryKey(key)
	if err != nil {
		if !errors.Is(err, shared.ErrRecordNotFound) {
			a.logger.Warn("cache lookup failed", "query", key, "error", err)
		}
		return "", false
	}

	if err := a.repo.Touch(key); err != nil {
		a.logger.Debug("failed to record cache hit", "query", key, "error", err)
	}
	return res.VideoID(), true
}

// Store caches videoID for query, replacing any earlier entry.
func (a *ResolutionCacheAdapter) Store(query, videoID string) error {
	res := models.NewResolution(shared.NormalizeQuery(query), query, videoID, a.strategy)
	return a.repo.Upsert(res)
}
