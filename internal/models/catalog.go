package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Song is one catalog entry to resolve.
//
// YoutubeID is empty until resolution succeeds; Failed is set only after retries are exhausted.
type Song struct {
	Title     string
	Artist    string
	Year      json.RawMessage // number or string, kept verbatim
	Album     string
	Tags      []string
	YoutubeID string
	Failed    bool

	extra map[string]json.RawMessage
}

// Catalog is the on-disk document: {"songs": [...]}.
type Catalog struct {
	Songs []Song

	extra map[string]json.RawMessage
}

var songKeys = []string{"title", "artist", "year", "album", "tag", "youtubeId", "failed"}

// Query returns the search text for the song.
func (s *Song) Query() string {
	return strings.TrimSpace(strings.Join(strings.Fields(s.Title+" "+s.Artist), " "))
}

// Resolved reports whether the song already carries a video ID.
func (s *Song) Resolved() bool {
	return s.YoutubeID != ""
}

// Label renders "artist - title" for progress output.
func (s *Song) Label() string {
	return fmt.Sprintf("%s - %s", s.Artist, s.Title)
}

// MarkResolved records a successful resolution and clears any earlier failure marker.
func (s *Song) MarkResolved(id string) {
	s.YoutubeID = id
	s.Failed = false
}

// MarkFailed records that every attempt for the song was exhausted.
func (s *Song) MarkFailed() {
	s.YoutubeID = ""
	s.Failed = true
}

// UnmarshalJSON decodes known keys into fields and keeps the rest for re-encoding.
func (s *Song) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Song{}
	for key, value := range raw {
		var err error
		switch key {
		case "title":
			err = json.Unmarshal(value, &s.Title)
		case "artist":
			err = json.Unmarshal(value, &s.Artist)
		case "year":
			if !isNull(value) {
				s.Year = append(json.RawMessage(nil), value...)
			}
		case "album":
			err = json.Unmarshal(value, &s.Album)
		case "tag":
			err = json.Unmarshal(value, &s.Tags)
		case "youtubeId":
			err = json.Unmarshal(value, &s.YoutubeID)
		case "failed":
			err = json.Unmarshal(value, &s.Failed)
		default:
			if s.extra == nil {
				s.extra = make(map[string]json.RawMessage)
			}
			s.extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("song field %q: %w", key, err)
		}
	}
	return nil
}

// MarshalJSON writes known keys in a fixed order followed by preserved keys sorted by name.
// Optional keys are omitted when empty so untouched songs round-trip unchanged.
func (s Song) MarshalJSON() ([]byte, error) {
	w := newObjectWriter()
	w.field("title", s.Title)
	w.field("artist", s.Artist)
	if len(s.Year) > 0 {
		w.raw("year", s.Year)
	}
	if s.Album != "" {
		w.field("album", s.Album)
	}
	if s.Tags != nil {
		w.field("tag", s.Tags)
	}
	if s.YoutubeID != "" {
		w.field("youtubeId", s.YoutubeID)
	}
	if s.Failed {
		w.field("failed", true)
	}
	w.extras(s.extra, songKeys)
	return w.close()
}

// Extra returns a preserved unknown key, if present.
func (s *Song) Extra(key string) (json.RawMessage, bool) {
	v, ok := s.extra[key]
	return v, ok
}

// UnmarshalJSON decodes the songs array and keeps any other top-level keys.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Catalog{}
	for key, value := range raw {
		if key == "songs" {
			if err := json.Unmarshal(value, &c.Songs); err != nil {
				return fmt.Errorf("songs: %w", err)
			}
			continue
		}
		if c.extra == nil {
			c.extra = make(map[string]json.RawMessage)
		}
		c.extra[key] = value
	}
	return nil
}

// MarshalJSON writes the songs array first, then preserved keys sorted by name.
func (c Catalog) MarshalJSON() ([]byte, error) {
	songs := c.Songs
	if songs == nil {
		songs = []Song{}
	}
	w := newObjectWriter()
	w.field("songs", songs)
	w.extras(c.extra, []string{"songs"})
	return w.close()
}

// Clone returns a deep copy safe to encode while the original keeps changing.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{Songs: make([]Song, len(c.Songs)), extra: c.extra}
	for i, s := range c.Songs {
		if s.Tags != nil {
			s.Tags = append([]string(nil), s.Tags...)
		}
		out.Songs[i] = s
	}
	return out
}

// Counts tallies terminal states across the catalog.
func (c *Catalog) Counts() (resolved, failed, pending int) {
	for i := range c.Songs {
		switch {
		case c.Songs[i].Resolved():
			resolved++
		case c.Songs[i].Failed:
			failed++
		default:
			pending++
		}
	}
	return resolved, failed, pending
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// objectWriter builds a JSON object with a caller-controlled key order.
type objectWriter struct {
	buf   bytes.Buffer
	first bool
	err   error
}

func newObjectWriter() *objectWriter {
	w := &objectWriter{first: true}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) key(k string) {
	if !w.first {
		w.buf.WriteByte(',')
	}
	w.first = false
	kb, _ := json.Marshal(k)
	w.buf.Write(kb)
	w.buf.WriteByte(':')
}

func (w *objectWriter) field(k string, v any) {
	if w.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("field %q: %w", k, err)
		return
	}
	w.key(k)
	w.buf.Write(data)
}

func (w *objectWriter) raw(k string, v json.RawMessage) {
	w.key(k)
	w.buf.Write(v)
}

func (w *objectWriter) extras(extra map[string]json.RawMessage, reserved []string) {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !contains(reserved, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, extra[k])
	}
}

func (w *objectWriter) close() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
