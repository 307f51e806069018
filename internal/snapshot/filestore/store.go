// Package filestore persists snapshots as one JSON document per id.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"warden/internal/logging"
	"warden/internal/snapshot"
)

// Store writes snapshots under a base directory, one <id>.json per record.
// Writes go through a single in-process lock and land atomically via a temp
// file and rename. There is no cross-process lock; two concurrent processes
// can still race on creation order.
type Store struct {
	mu      sync.Mutex
	baseDir string
	logger  logging.Logger
}

// New returns a store rooted at baseDir, creating it if needed. A leading
// "~/" is expanded against the user's home directory.
func New(baseDir string) *Store {
	if strings.HasPrefix(baseDir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			baseDir = filepath.Join(home, baseDir[2:])
		}
	}
	_ = os.MkdirAll(baseDir, 0755)
	return &Store{
		baseDir: baseDir,
		logger:  logging.NewComponentLogger("SnapshotFileStore"),
	}
}

// Save persists snap durably. Saving an id that already exists fails;
// snapshots are never updated in place.
func (s *Store) Save(snap *snapshot.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return fmt.Errorf("snapshot has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(snap.ID)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("snapshot already exists: %s", snap.ID)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.baseDir, ".snap-*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot for id, or snapshot.ErrNotFound.
func (s *Store) Load(id string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, id)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", id, err)
	}
	var snap snapshot.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &snap, nil
}

// LoadAll reads every snapshot record. Corrupt records are skipped with a
// warning rather than failing the enumeration.
func (s *Store) LoadAll() ([]*snapshot.Snapshot, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var snaps []*snapshot.Snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		snap, err := s.Load(id)
		if err != nil {
			s.logger.Warn("Skipping unreadable snapshot record %s: %v", entry.Name(), err)
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// Delete removes the record for id, reporting false when absent.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) path(id string) string {
	// Snapshot ids are generated internally, but reject separators anyway
	// so a malformed id cannot escape the base directory.
	safe := strings.ReplaceAll(id, string(os.PathSeparator), "_")
	return filepath.Join(s.baseDir, safe+".json")
}
