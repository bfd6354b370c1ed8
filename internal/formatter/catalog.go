package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/ytid/internal/models"
	"github.com/desertthunder/ytid/internal/shared"
)

// ReadCatalog loads a catalog document from path.
//
// A missing or unreadable file wraps [shared.ErrMissingInput]; malformed JSON wraps [shared.ErrInvalidInput].
func ReadCatalog(path string) (*models.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no catalog path given", shared.ErrMissingInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", shared.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrMissingInput, err)
	}

	var c models.Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrInvalidInput, path, err)
	}
	return &c, nil
}

// WriteCatalog writes c to path as indented JSON, replacing any previous file atomically.
func WriteCatalog(path string, c *models.Catalog) error {
	data, err := shared.MarshalJSON(c, true)
	if err != nil {
		return fmt.Errorf("%w: failed to encode catalog: %w", shared.ErrPersistence, err)
	}
	if err := WriteFileAtomic(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPersistence, err)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file next to path and renames it into place,
// so readers only ever see the old or the new content.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(name, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
