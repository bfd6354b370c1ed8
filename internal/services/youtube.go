// YouTube Music [Service] implementation
//
// Communicates with the FastAPI proxy server (music/) running on port 8080.
// The proxy wraps ytmusicapi Python library for YouTube Music operations.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
)

const defaultYTBaseURL string = "http://localhost:8080"

// YouTubeArtist represents an artist in YouTube Music responses.
type YouTubeArtist struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

type youtubeAlbum struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// YouTubeTrack represents a search result in YouTube Music responses.
type YouTubeTrack struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	Artists     []YouTubeArtist `json:"artists"`
	Album       *youtubeAlbum   `json:"album"`
	Duration    string          `json:"duration"`
	DurationSec int             `json:"duration_seconds"` // Duration in seconds
	ResultType  string          `json:"resultType"`
}

func (t YouTubeTrack) video() Video {
	v := Video{
		ID:       t.VideoID,
		Title:    t.Title,
		Duration: t.DurationSec,
	}
	if len(t.Artists) > 0 {
		v.Artist = t.Artists[0].Name
	}
	if t.Album != nil {
		v.Album = t.Album.Name
	}
	return v
}

// YouTubeService implements the Service interface for YouTube Music via proxy.
type YouTubeService struct {
	baseURL    string
	authFile   string
	userAgent  string
	httpClient *http.Client
}

var _ Service = (*YouTubeService)(nil)

// NewYouTubeService creates a new YouTube Music service instance.
func NewYouTubeService(baseURL string) *YouTubeService {
	if baseURL == "" {
		baseURL = defaultYTBaseURL
	}

	return &YouTubeService{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube Music"
}

// Authenticate stores the authentication file path for subsequent requests.
//
// Expects credentials["auth_file"] to contain the path to browser.json or oauth.json.
// Search works without it; the proxy falls back to unauthenticated requests.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	authFile, ok := credentials["auth_file"]
	if !ok || authFile == "" {
		return fmt.Errorf("%w: missing auth_file in credentials", shared.ErrMissingArgument)
	}

	y.authFile = authFile
	return nil
}

func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	apiURL := y.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if y.authFile != "" {
		req.Header.Set("X-Auth-File", y.authFile)
	}
	if y.userAgent != "" {
		req.Header.Set("User-Agent", y.userAgent)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %w", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sentinel := shared.ErrAPIRequest
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			sentinel = shared.ErrServiceUnavailable
		}

		var errResp struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Detail != "" {
			return fmt.Errorf("%w: youtube music API error (status %d): %s", sentinel, resp.StatusCode, errResp.Detail)
		}
		return fmt.Errorf("%w: youtube music API error: status %d", sentinel, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Health checks that the proxy is reachable.
//
// Calls GET /health on the proxy.
func (y *YouTubeService) Health(ctx context.Context) error {
	if err := y.doRequest(ctx, http.MethodGet, "/health", nil); err != nil {
		return fmt.Errorf("%w: proxy at %s: %w", shared.ErrServiceUnavailable, y.baseURL, err)
	}
	return nil
}

// SearchVideos returns every song result for query in the order the proxy ranks them.
//
// Calls GET /api/search?q={query}&filter=songs on the proxy.
func (y *YouTubeService) SearchVideos(ctx context.Context, query string) ([]Video, error) {
	endpoint := fmt.Sprintf("/api/search?q=%s&filter=songs", url.QueryEscape(query))

	var results []YouTubeTrack
	if err := y.doRequest(ctx, http.MethodGet, endpoint, &results); err != nil {
		return nil, err
	}

	videos := make([]Video, 0, len(results))
	for _, r := range results {
		if r.VideoID == "" {
			continue
		}
		videos = append(videos, r.video())
	}
	return videos, nil
}

// SearchVideo returns the top song result for query.
func (y *YouTubeService) SearchVideo(ctx context.Context, query string) (*Video, error) {
	videos, err := y.SearchVideos(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		return nil, fmt.Errorf("%w: no results found for %q", shared.ErrNotFound, query)
	}
	return &videos[0], nil
}

// ProxySession adapts a [YouTubeService] to [tasks.Session].
type ProxySession struct {
	svc *YouTubeService
}

var _ tasks.Session = (*ProxySession)(nil)

// NewProxySession wraps svc. The session owns svc and changes its user agent.
func NewProxySession(svc *YouTubeService) *ProxySession {
	return &ProxySession{svc: svc}
}

// Identify forwards the user agent to the proxy; the viewport has no meaning there.
func (p *ProxySession) Identify(id tasks.Identity) {
	p.svc.userAgent = id.UserAgent
}

func (p *ProxySession) Resolve(ctx context.Context, query string) (string, error) {
	return resolve(ctx, p.svc, query)
}

func (p *ProxySession) Close() error { return nil }
