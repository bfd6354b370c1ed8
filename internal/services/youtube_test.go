package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/ytid/internal/shared"
	"github.com/desertthunder/ytid/internal/tasks"
)

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		t.Run("creates service with default URL", func(t *testing.T) {
			if svc := NewYouTubeService(""); svc == nil {
				t.Fatal("expected service to be created")
			} else if svc.baseURL != defaultYTBaseURL {
				t.Errorf("expected baseURL to be %s, got %s", defaultYTBaseURL, svc.baseURL)
			}
		})

		t.Run("creates service with custom URL", func(t *testing.T) {
			customURL := "http://localhost:9000"
			if svc := NewYouTubeService(customURL); svc.baseURL != customURL {
				t.Errorf("expected baseURL to be %s, got %s", customURL, svc.baseURL)
			}
		})
	})

	t.Run("Name", func(t *testing.T) {
		if svc := NewYouTubeService(""); svc.Name() != "YouTube Music" {
			t.Errorf("expected name to be 'YouTube Music', got %s", svc.Name())
		}
	})

	t.Run("Authenticate", func(t *testing.T) {
		svc := NewYouTubeService("")
		ctx := context.Background()

		t.Run("authenticates with auth_file", func(t *testing.T) {
			credentials := map[string]string{"auth_file": "/path/to/browser.json"}
			if err := svc.Authenticate(ctx, credentials); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if svc.authFile != credentials["auth_file"] {
				t.Errorf("expected authFile to be %s, got %s", credentials["auth_file"], svc.authFile)
			}
		})

		t.Run("fails without auth_file", func(t *testing.T) {
			err := svc.Authenticate(ctx, map[string]string{})
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Fatalf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("SearchVideos", func(t *testing.T) {
		mockResults := []map[string]any{
			{
				"videoId":          "dQw4w9WgXcQ",
				"title":            "Never Gonna Give You Up",
				"artists":          []map[string]string{{"name": "Rick Astley", "id": "UC1"}},
				"album":            map[string]string{"name": "Whenever You Need Somebody", "id": "MP1"},
				"duration_seconds": 213,
				"resultType":       "song",
			},
			{"title": "no id"},
			{"videoId": "BBBBBBBBBBB", "title": "Second"},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/search" {
				t.Errorf("expected path /api/search, got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("q"); got != "never gonna rick astley" {
				t.Errorf("expected query to be forwarded, got %q", got)
			}
			if got := r.URL.Query().Get("filter"); got != "songs" {
				t.Errorf("expected filter=songs, got %q", got)
			}
			if r.Header.Get("X-Auth-File") != "/path/to/auth.json" {
				t.Errorf("expected X-Auth-File header")
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(mockResults)
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL)
		svc.authFile = "/path/to/auth.json"

		videos, err := svc.SearchVideos(context.Background(), "never gonna rick astley")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(videos) != 2 {
			t.Fatalf("expected 2 videos with IDs, got %d", len(videos))
		}

		first := videos[0]
		if first.ID != "dQw4w9WgXcQ" || first.Artist != "Rick Astley" || first.Album != "Whenever You Need Somebody" {
			t.Errorf("unexpected first video: %+v", first)
		}
		if first.Duration != 213 {
			t.Errorf("expected duration 213, got %d", first.Duration)
		}

		video, err := svc.SearchVideo(context.Background(), "never gonna rick astley")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if video.ID != "dQw4w9WgXcQ" {
			t.Errorf("expected top result, got %s", video.ID)
		}
	})

	t.Run("No Results from SearchVideo", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("[]"))
		}))
		defer server.Close()

		_, err := NewYouTubeService(server.URL).SearchVideo(context.Background(), "nothing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Health", func(t *testing.T) {
		t.Run("reachable", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					t.Errorf("expected path /health, got %s", r.URL.Path)
				}
				w.Write([]byte(`{"status":"ok"}`))
			}))
			defer server.Close()

			if err := NewYouTubeService(server.URL).Health(context.Background()); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("down", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer server.Close()

			err := NewYouTubeService(server.URL).Health(context.Background())
			if !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})
	})

	t.Run("Error Handling", func(t *testing.T) {
		tests := []struct {
			name   string
			status int
			body   string
			want   error
			detail string
		}{
			{name: "handles 401 unauthorized", status: http.StatusUnauthorized, body: `{"detail":"Not authenticated"}`, want: shared.ErrAPIRequest, detail: "Not authenticated"},
			{name: "handles 404 not found", status: http.StatusNotFound, want: shared.ErrAPIRequest, detail: "status 404"},
			{name: "handles 429 rate limit", status: http.StatusTooManyRequests, want: shared.ErrServiceUnavailable, detail: "status 429"},
			{name: "handles 500 internal error", status: http.StatusInternalServerError, want: shared.ErrServiceUnavailable, detail: "status 500"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tt.status)
					if tt.body != "" {
						w.Write([]byte(tt.body))
					}
				}))
				defer server.Close()

				_, err := NewYouTubeService(server.URL).SearchVideo(context.Background(), "q")
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				if !strings.Contains(err.Error(), tt.detail) {
					t.Errorf("expected error to mention %q, got %v", tt.detail, err)
				}
			})
		}
	})
}

func TestProxySession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "agent/2.0" {
			t.Errorf("expected identity user agent, got %q", got)
		}
		switch r.URL.Query().Get("q") {
		case "found":
			w.Write([]byte(`[{"videoId":"dQw4w9WgXcQ"}]`))
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	session := NewProxySession(NewYouTubeService(server.URL))
	session.Identify(tasks.Identity{UserAgent: "agent/2.0"})

	t.Run("found", func(t *testing.T) {
		id, err := session.Resolve(context.Background(), "found")
		if err != nil || id != "dQw4w9WgXcQ" {
			t.Errorf("expected dQw4w9WgXcQ, got %q (%v)", id, err)
		}
	})

	t.Run("not found is an empty id", func(t *testing.T) {
		id, err := session.Resolve(context.Background(), "missing")
		if err != nil || id != "" {
			t.Errorf("expected empty id and nil error, got %q (%v)", id, err)
		}
	})

	t.Run("server errors are returned", func(t *testing.T) {
		if _, err := session.Resolve(context.Background(), "broken"); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("close", func(t *testing.T) {
		if err := session.Close(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
