// Package store provides the on-disk snapshot of normalized switches
// and the API response cache used by the FortiGate and NetBox clients.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vlansync/vlansync/pkg/model"
	"github.com/vlansync/vlansync/pkg/util"
)

const snapshotSuffix = "_switch.json"

// SnapshotStore persists one JSON file per switch under a data
// directory. Only full-sync mode uses it; single-switch checks bypass
// the store entirely.
type SnapshotStore struct {
	dir string
}

// NewSnapshotStore creates a store rooted at dir.
func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Clear removes all snapshot files. Idempotent: a missing directory or
// an already-empty store is not an error.
func (s *SnapshotStore) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading snapshot dir %s: %w", s.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("clearing snapshot %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Save persists one normalized switch keyed by its device name. The
// write goes through a temp file and rename so a failure never leaves a
// partially written snapshot behind.
func (s *SnapshotStore) Save(sw *model.Switch) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(sw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot for %s: %w", sw.Name, err)
	}

	final := filepath.Join(s.dir, sw.Name+snapshotSuffix)
	tmp, err := os.CreateTemp(s.dir, sw.Name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot for %s: %w", sw.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot for %s: %w", sw.Name, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing snapshot for %s: %w", sw.Name, err)
	}

	util.Debugf("saved snapshot %s", final)
	return nil
}

// LoadAll reads every persisted switch, sorted by device name so the
// validation and report order is deterministic.
func (s *SnapshotStore) LoadAll() ([]*model.Switch, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot dir %s: %w", s.dir, err)
	}

	var switches []*model.Switch
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotSuffix) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
		}
		sw := &model.Switch{}
		if err := json.Unmarshal(data, sw); err != nil {
			return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
		}
		switches = append(switches, sw)
	}

	sort.Slice(switches, func(i, j int) bool { return switches[i].Name < switches[j].Name })
	return switches, nil
}
