package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/ytid/internal/models"
	"github.com/stretchr/testify/require"
)

// mockSession records every call and answers through resolveFn.
type mockSession struct {
	mu         sync.Mutex
	slot       int
	resolveFn  func(ctx context.Context, query string) (string, error)
	queries    []string
	identities []Identity
	closed     int
	closeErr   error
}

func (m *mockSession) Resolve(ctx context.Context, query string) (string, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	fn := m.resolveFn
	m.mu.Unlock()
	if fn == nil {
		return "", nil
	}
	return fn(ctx, query)
}

func (m *mockSession) Identify(id Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identities = append(m.identities, id)
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return m.closeErr
}

func (m *mockSession) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// mockFactory hands out mockSessions sharing one resolve function.
type mockFactory struct {
	mu        sync.Mutex
	resolveFn func(ctx context.Context, query string) (string, error)
	failAt    int // slot index whose open fails; -1 disables
	sessions  []*mockSession
}

func newMockFactory(fn func(ctx context.Context, query string) (string, error)) *mockFactory {
	return &mockFactory{resolveFn: fn, failAt: -1}
}

func (f *mockFactory) Open(ctx context.Context, slot int) (Session, error) {
	if slot == f.failAt {
		return nil, errors.New("browser crashed")
	}
	s := &mockSession{slot: slot, resolveFn: f.resolveFn}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *mockFactory) Sessions() []*mockSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*mockSession(nil), f.sessions...)
}

func (f *mockFactory) Calls() int {
	total := 0
	for _, s := range f.Sessions() {
		total += len(s.Queries())
	}
	return total
}

// mockRecorder keeps every run record it receives.
type mockRecorder struct {
	mu      sync.Mutex
	records []*models.RunRecord
	err     error
}

func (r *mockRecorder) RecordRun(rec *models.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return r.err
}

// mockCache is an in-memory ResolutionCache.
type mockCache struct {
	mu       sync.Mutex
	entries  map[string]string
	storeErr error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]string{}}
}

func (c *mockCache) Lookup(query string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[query]
	return id, ok
}

func (c *mockCache) Store(query, videoID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.storeErr != nil {
		return c.storeErr
	}
	c.entries[query] = videoID
	return nil
}

func writeInput(t *testing.T, content string) (input, output string) {
	t.Helper()
	dir := t.TempDir()
	input = filepath.Join(dir, "songs.json")
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	return input, filepath.Join(dir, "songs.resolved.json")
}

func testOptions(input, output string) Options {
	return Options{
		InputPath:  input,
		OutputPath: output,
		PoolSize:   2,
		MaxRetries: 3,
		Strategy:   "mock",
	}
}
