// package services implements video search backends used to resolve songs to YouTube video IDs
//
// YouTube search page (scrape), YouTube Music (via proxy)
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
)

// Resolution strategies
const (
	StrategyScrape = "scrape"
	StrategyProxy  = "proxy"
)

// Service defines a video search backend.
type Service interface {
	// SearchVideo returns the best match for query.
	// Returns an error wrapping [shared.ErrNotFound] when nothing matches.
	SearchVideo(ctx context.Context, query string) (*Video, error)

	// Name returns the name of the service (e.g., "YouTube", "YouTube Music")
	Name() string
}

// Video represents a search result from any backend
type Video struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // Duration in seconds
}

// resolve adapts [Service.SearchVideo] to the resolver contract: not found is an empty ID, not an error.
func resolve(ctx context.Context, svc Service, query string) (string, error) {
	v, err := svc.SearchVideo(ctx, query)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return v.ID, nil
}

// NewSessionFactory returns the [tasks.SessionFactory] for the configured strategy.
//
// A nil client uses [http.DefaultClient].
func NewSessionFactory(cfg shared.ResolverConfig, client *http.Client, logger *log.Logger) (tasks.SessionFactory, error) {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	switch cfg.Strategy {
	case StrategyScrape, "":
		return func(ctx context.Context, slot int) (tasks.Session, error) {
			return NewScrapeSession(cfg.BaseURL, client, nil, shared.WithLogger(logger, "slot", slot)), nil
		}, nil
	case StrategyProxy:
		return func(ctx context.Context, slot int) (tasks.Session, error) {
			svc := NewYouTubeService(cfg.ProxyURL)
			if client != nil {
				svc.httpClient = client
			}
			if cfg.ProxyAuthFile != "" {
				if err := svc.Authenticate(ctx, map[string]string{"auth_file": cfg.ProxyAuthFile}); err != nil {
					return nil, err
				}
			}
			if err := svc.Health(ctx); err != nil {
				return nil, err
			}
			return NewProxySession(svc), nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", shared.ErrInvalidConfig, cfg.Strategy)
	}
}
