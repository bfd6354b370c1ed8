package models

import (
	"fmt"
	"time"
)

// Resolution is a cached mapping from a normalized query to a video ID.
type Resolution struct {
	id        string
	queryKey  string
	query     string
	videoID   string
	strategy  string
	hits      int
	createdAt time.Time
	updatedAt time.Time
}

var _ Model = (*Resolution)(nil)

// NewResolution creates a Resolution stamped with the current time. The ID is assigned on Create.
func NewResolution(queryKey, query, videoID, strategy string) *Resolution {
	now := time.Now().UTC()
	return &Resolution{
		queryKey:  queryKey,
		query:     query,
		videoID:   videoID,
		strategy:  strategy,
		createdAt: now,
		updatedAt: now,
	}
}

// HydrateResolution rebuilds a Resolution from stored columns.
func HydrateResolution(id, queryKey, query, videoID, strategy string, hits int, createdAt, updatedAt time.Time) *Resolution {
	return &Resolution{
		id:        id,
		queryKey:  queryKey,
		query:     query,
		videoID:   videoID,
		strategy:  strategy,
		hits:      hits,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *Resolution) ID() string           { return r.id }
func (r *Resolution) QueryKey() string     { return r.queryKey }
func (r *Resolution) Query() string        { return r.query }
func (r *Resolution) VideoID() string      { return r.videoID }
func (r *Resolution) Strategy() string     { return r.strategy }
func (r *Resolution) Hits() int            { return r.hits }
func (r *Resolution) CreatedAt() time.Time { return r.createdAt }
func (r *Resolution) UpdatedAt() time.Time { return r.updatedAt }

func (r *Resolution) SetID(id string)          { r.id = id }
func (r *Resolution) SetVideoID(id string)     { r.videoID = id }
func (r *Resolution) SetUpdatedAt(t time.Time) { r.updatedAt = t }
func (r *Resolution) IncrementHits()           { r.hits++ }

// Validate checks required fields.
func (r *Resolution) Validate() error {
	if r.queryKey == "" {
		return fmt.Errorf("query key is required")
	}
	if r.videoID == "" {
		return fmt.Errorf("video ID is required")
	}
	return nil
}
