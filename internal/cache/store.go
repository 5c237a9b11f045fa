package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when payload format changes
const diskSchemaVersion uint16 = 1

// ErrStale marks a cache file written by another schema or for another state.
var ErrStale = errors.New("stale cache payload")

// Store persists clean-file entries per rule-set state.
// Entries map a file path to the xxh3 hash of its clean content.
type Store interface {
	Load(state uint64) (map[string]uint64, error)
	Save(state uint64, entries map[string]uint64) error
}

// payload is the on-disk msgpack document.
type payload struct {
	Schema  uint16
	State   uint64
	Entries map[string]uint64
}

// DiskStore keeps one msgpack file per state under dir.
// Thread-safe for concurrent access.
type DiskStore struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns $XDG_CACHE_HOME/surgelint/lint, falling back to
// ~/.cache when XDG_CACHE_HOME is unset.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "surgelint", "lint"), nil
}

// OpenDiskStore creates dir if needed. An empty dir selects DefaultDir.
func OpenDiskStore(dir string) (*DiskStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) pathFor(state uint64) string {
	return filepath.Join(s.dir, strconv.FormatUint(state, 16)+".mp")
}

// Load reads the entries stored for state. A missing file yields an empty map.
func (s *DiskStore) Load(state uint64) (map[string]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(state))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]uint64{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Name(), err)
	}
	if p.Schema != diskSchemaVersion || p.State != state {
		return nil, fmt.Errorf("%s: schema %d state %x: %w", f.Name(), p.Schema, p.State, ErrStale)
	}
	if p.Entries == nil {
		p.Entries = map[string]uint64{}
	}
	return p.Entries, nil
}

// Save replaces the entries stored for state.
func (s *DiskStore) Save(state uint64, entries map[string]uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.pathFor(state)
	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	enc := msgpack.NewEncoder(f)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&payload{Schema: diskSchemaVersion, State: state, Entries: entries}); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// Атомарная замена
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	saved map[uint64]map[string]uint64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saved: make(map[uint64]map[string]uint64)}
}

// Load returns a copy of the entries for state.
func (s *MemoryStore) Load(state uint64) (map[string]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyEntries(s.saved[state]), nil
}

// Save stores a copy of entries.
func (s *MemoryStore) Save(state uint64, entries map[string]uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[state] = copyEntries(entries)
	return nil
}

func copyEntries(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
