package services

import (
	"bytes"
	"encoding/json"
	"regexp"
)

var (
	videoIDPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	initialDataPattern = regexp.MustCompile(`(?s)ytInitialData\s*=\s*(\{.*?\});\s*</script>`)
	videoIDJSONPattern = regexp.MustCompile(`"videoId"\s*:\s*"([A-Za-z0-9_-]{11})"`)
	watchLinkPattern   = regexp.MustCompile(`/watch\?v=([A-Za-z0-9_-]{11})`)
)

// Extractor pulls the first video ID out of a search results page.
//
// Extract returns an empty string when the page holds nothing it recognizes.
type Extractor interface {
	Name() string
	Extract(body []byte) string
}

// DefaultExtractors is the order a [ScrapeSession] tries when none are given.
func DefaultExtractors() []Extractor {
	return []Extractor{InitialDataExtractor{}, VideoIDExtractor{}, WatchLinkExtractor{}}
}

// ValidVideoID reports whether id has the shape of a YouTube video ID.
func ValidVideoID(id string) bool {
	return videoIDPattern.MatchString(id)
}

// InitialDataExtractor reads the first videoRenderer in the embedded ytInitialData document.
type InitialDataExtractor struct{}

func (InitialDataExtractor) Name() string { return "initial_data" }

func (InitialDataExtractor) Extract(body []byte) string {
	m := initialDataPattern.FindSubmatch(body)
	if m == nil {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(m[1]))
	for {
		tok, err := dec.Token()
		if err != nil {
			return ""
		}
		if key, ok := tok.(string); !ok || key != "videoRenderer" {
			continue
		}

		var renderer struct {
			VideoID string `json:"videoId"`
		}
		if err := dec.Decode(&renderer); err != nil {
			return ""
		}
		if ValidVideoID(renderer.VideoID) {
			return renderer.VideoID
		}
	}
}

// VideoIDExtractor matches the first "videoId":"…" pair anywhere in the page.
type VideoIDExtractor struct{}

func (VideoIDExtractor) Name() string { return "video_id" }

func (VideoIDExtractor) Extract(body []byte) string {
	if m := videoIDJSONPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}

// WatchLinkExtractor matches the first /watch?v= link.
type WatchLinkExtractor struct{}

func (WatchLinkExtractor) Name() string { return "watch_link" }

func (WatchLinkExtractor) Extract(body []byte) string {
	if m := watchLinkPattern.FindSubmatch(body); m != nil {
		return string(m[1])
	}
	return ""
}
