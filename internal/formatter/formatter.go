// package formatter reads and writes song catalogs and exports reports of unresolved songs (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

// Report formats
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// ReportEntry is one song that still has no video ID.
type ReportEntry struct {
	Position int // 1-based position in the catalog
	Title    string
	Artist   string
	Album    string
	Status   string // "failed" or "pending"
}

// Unresolved lists every song without a video ID in catalog order.
func Unresolved(c *models.Catalog) []ReportEntry {
	entries := []ReportEntry{}
	for i := range c.Songs {
		song := &c.Songs[i]
		if song.Resolved() {
			continue
		}
		status := "pending"
		if song.Failed {
			status = "failed"
		}
		entries = append(entries, ReportEntry{
			Position: i + 1,
			Title:    song.Title,
			Artist:   song.Artist,
			Album:    song.Album,
			Status:   status,
		})
	}
	return entries
}

// ExportToCSV renders unresolved songs with columns: Position, Title, Artist, Album, Status
func ExportToCSV(c *models.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artist", "Album", "Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range Unresolved(c) {
		record := []string{strconv.Itoa(e.Position), e.Title, e.Artist, e.Album, e.Status}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown renders a titled summary followed by a numbered list of unresolved songs
func ExportToMarkdown(c *models.Catalog, title string) ([]byte, error) {
	var buf bytes.Buffer
	if title == "" {
		title = "Unresolved songs"
	}

	resolved, failed, pending := c.Counts()
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n", len(c.Songs)))
	buf.WriteString(fmt.Sprintf("**Resolved**: %d\n", resolved))
	buf.WriteString(fmt.Sprintf("**Failed**: %d\n", failed))
	buf.WriteString(fmt.Sprintf("**Pending**: %d\n\n", pending))

	entries := Unresolved(c)
	if len(entries) == 0 {
		buf.WriteString("Every song has a video ID.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("## Songs\n\n")
	for _, e := range entries {
		albumPart := ""
		if e.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", e.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", e.Position, e.Artist, e.Title, albumPart, e.Status))
	}
	return buf.Bytes(), nil
}

// ExportToText renders one "artist - title" line per unresolved song
func ExportToText(c *models.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	entries := Unresolved(c)

	buf.WriteString(fmt.Sprintf("Unresolved: %d of %d\n\n", len(entries), len(c.Songs)))
	for _, e := range entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", e.Position, e.Artist, e.Title))
	}
	return buf.Bytes(), nil
}

// Export renders the report in the named format.
func Export(c *models.Catalog, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ExportToCSV(c)
	case FormatMarkdown, "md":
		return ExportToMarkdown(c, "")
	case FormatText, "text":
		return ExportToText(c)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q (want csv, markdown or txt)", shared.ErrInvalidArgument, format)
	}
}

// WriteReport exports the report for c to path.
//
// Defaults to unresolved.{ext} when path is empty and returns the path written.
func WriteReport(c *models.Catalog, format, path string) (string, error) {
	data, err := Export(c, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "unresolved." + extension(format)
	}
	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}
	return path, nil
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatMarkdown, "md":
		return "md"
	case FormatCSV:
		return "csv"
	default:
		return "txt"
	}
}
