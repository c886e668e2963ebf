package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bytedance/sonic"

	"tasknest/internal/model"
)

// ErrCorruptSnapshot marks durable state that cannot be trusted to rebuild
// the store. Serving requests with an unknown counter risks reissuing ids,
// so the entrypoint must refuse to start on it rather than reset to empty.
var ErrCorruptSnapshot = errors.New("corrupt store snapshot")

// Entry is one flattened (key, record) pair of the durable form.
type Entry struct {
	Key  string     `json:"key"`
	Task model.Task `json:"task"`
}

// Snapshot is the flat durable form of a Store: every entry plus the id
// counter.
type Snapshot struct {
	NextID  int     `json:"nextId"`
	Entries []Entry `json:"entries"`
}

// Snapshot flattens the live state. Entries are key-sorted so identical
// state always serializes identically.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.records))
	for k, t := range s.records {
		t.Comments = append([]string(nil), t.Comments...)
		entries = append(entries, Entry{Key: k, Task: t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return Snapshot{NextID: s.nextID, Entries: entries}
}

// FromSnapshot rebuilds a store behaviorally identical to the one the
// snapshot was taken from: same keys, same records, same counter. Any
// inconsistency comes back wrapped in ErrCorruptSnapshot.
func FromSnapshot(snap Snapshot) (*Store, error) {
	if snap.NextID < 1 {
		return nil, fmt.Errorf("%w: missing or invalid next id %d", ErrCorruptSnapshot, snap.NextID)
	}

	st := New()
	st.nextID = snap.NextID
	for _, e := range snap.Entries {
		owner, id, err := DecodeKey(e.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if owner != e.Task.Owner || id != e.Task.ID {
			return nil, fmt.Errorf("%w: key %q does not match record owner=%q id=%d",
				ErrCorruptSnapshot, e.Key, e.Task.Owner, e.Task.ID)
		}
		if id >= snap.NextID {
			return nil, fmt.Errorf("%w: id %d not below next id %d", ErrCorruptSnapshot, id, snap.NextID)
		}
		if _, dup := st.records[e.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrCorruptSnapshot, e.Key)
		}
		st.records[e.Key] = e.Task
		st.indexLocked(owner, id)
	}
	return st, nil
}

// Load reads the snapshot file at path and rebuilds the store. A missing
// file is a first boot and yields an empty store; an unreadable file is
// reported as corruption.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, err
	}

	var snap Snapshot
	if err := sonic.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return FromSnapshot(snap)
}

// Save writes the snapshot file, creating its directory if needed.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := sonic.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
