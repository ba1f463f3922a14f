// Package corpus persists the scraped document set between runs and computes
// the delta that drives incremental indexing.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"sermonbot/models"
)

// Entry is one document as stored in the snapshot file. The map key is the
// document title, so the entry carries the rest.
type Entry struct {
	Content  string `json:"content"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// Snapshot is the persisted corpus, keyed by document title.
type Snapshot map[string]Entry

// FromDocuments converts a crawl result into a snapshot.
func FromDocuments(docs map[string]models.Document) Snapshot {
	snap := make(Snapshot, len(docs))
	for key, doc := range docs {
		snap[key] = Entry{
			Content:  doc.CleanedText,
			URL:      doc.CanonicalURL,
			Category: doc.Category,
		}
	}
	return snap
}

// Load reads a snapshot file. A missing file is a first run and yields an
// empty snapshot, not an error.
func Load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	if snap == nil {
		snap = Snapshot{}
	}
	return snap, nil
}

// Save writes the snapshot atomically: a temp file in the same directory is
// renamed over the target, so a crash mid-write never corrupts the previous
// snapshot.
func Save(path string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot %s: %w", path, err)
	}
	return nil
}
