package tasks

import "math/rand/v2"

// DefaultViewport is applied to every session before each attempt.
var DefaultViewport = Viewport{Width: 1280, Height: 800}

// DefaultUserAgents is the rotation pool used when none is configured.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Viewport is the screen size a session reports to the remote side.
type Viewport struct {
	Width  int
	Height int
}

// Identity is the client fingerprint a session presents for one attempt.
type Identity struct {
	UserAgent string
	Viewport  Viewport
}

// IdentityRotator hands out a random user agent with a fixed viewport.
type IdentityRotator struct {
	agents   []string
	viewport Viewport
}

// NewIdentityRotator falls back to [DefaultUserAgents] and [DefaultViewport] for empty inputs.
func NewIdentityRotator(agents []string, viewport Viewport) *IdentityRotator {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = DefaultViewport
	}
	return &IdentityRotator{agents: append([]string(nil), agents...), viewport: viewport}
}

// Next picks an identity for the next attempt.
func (r *IdentityRotator) Next() Identity {
	return Identity{
		UserAgent: r.agents[rand.IntN(len(r.agents))],
		Viewport:  r.viewport,
	}
}
