// YouTube search page [Service] implementation
//
// Fetches https://www.youtube.com/results for each query and reads the first video from the page.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
)

const defaultScrapeBaseURL string = "https://www.youtube.com"

// ScrapeSession resolves queries against the public search results page.
//
// A session belongs to a single pool slot and is not safe for concurrent use.
type ScrapeSession struct {
	api        *APIService
	identity   tasks.Identity
	extractors []Extractor
	logger     *log.Logger
	closed     bool
}

var (
	_ Service       = (*ScrapeSession)(nil)
	_ tasks.Session = (*ScrapeSession)(nil)
)

// NewScrapeSession creates a session for baseURL, defaulting to https://www.youtube.com and [DefaultExtractors].
func NewScrapeSession(baseURL string, client *http.Client, extractors []Extractor, logger *log.Logger) *ScrapeSession {
	if baseURL == "" {
		baseURL = defaultScrapeBaseURL
	}
	if len(extractors) == 0 {
		extractors = DefaultExtractors()
	}
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	return &ScrapeSession{
		api:        NewAPIService(strings.TrimRight(baseURL, "/"), client),
		identity:   tasks.Identity{UserAgent: tasks.DefaultUserAgents[0], Viewport: tasks.DefaultViewport},
		extractors: extractors,
		logger:     logger,
	}
}

func (s *ScrapeSession) Name() string { return "YouTube" }

// Identify sets the user agent and viewport hints sent with the next request.
func (s *ScrapeSession) Identify(id tasks.Identity) {
	s.identity = id
}

func (s *ScrapeSession) headers() http.Header {
	h := http.Header{}
	h.Set("User-Agent", s.identity.UserAgent)
	h.Set("Accept", "text/html,application/xhtml+xml")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	if s.identity.Viewport.Width > 0 {
		h.Set("Viewport-Width", strconv.Itoa(s.identity.Viewport.Width))
		h.Set("Sec-CH-Viewport-Height", strconv.Itoa(s.identity.Viewport.Height))
	}
	return h
}

// SearchVideo loads the results page for query and returns the first video any extractor finds.
//
// Rate limiting (429) and server errors wrap [shared.ErrServiceUnavailable].
func (s *ScrapeSession) SearchVideo(ctx context.Context, query string) (*Video, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: session closed", shared.ErrServiceUnavailable)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrNotFound)
	}

	resp, err := s.api.Get(ctx, "/results?search_query="+url.QueryEscape(query), s.headers())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: search page returned status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	case !resp.OK():
		return nil, fmt.Errorf("%w: search page returned status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	for _, ex := range s.extractors {
		if id := ex.Extract(resp.Body); id != "" {
			s.logger.Debug("extracted video", "query", query, "extractor", ex.Name(), "video_id", id)
			return &Video{ID: id}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrNotFound, query)
}

// Resolve implements [tasks.Resolver].
func (s *ScrapeSession) Resolve(ctx context.Context, query string) (string, error) {
	return resolve(ctx, s, query)
}

// Close marks the session unusable.
func (s *ScrapeSession) Close() error {
	s.closed = true
	return nil
}
