// Package cache remembers which files were clean under a given rule set so
// later runs can skip them.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pterm/pterm"
	"github.com/zeebo/xxh3"

	"surgelint/internal/logging"
)

// Gateway is the cache contract the lint driver consumes.
// Implementations must be safe for concurrent use.
type Gateway interface {
	// IsFileSame reports whether content of path was clean in a previous run
	// under the same rule set.
	IsFileSame(path, content string) bool
	// UpdateFile marks content of path as clean. Must not block.
	UpdateFile(path, content string)
	// WaitCompletion flushes pending updates to durable storage.
	WaitCompletion(ctx context.Context) error
}

// Fingerprint hashes the rule-set state strings.
func Fingerprint(state []string) uint64 {
	return xxh3.HashString(strings.Join(state, "\n"))
}

// ContentHash hashes file content.
func ContentHash(content string) uint64 {
	return xxh3.HashString(content)
}

type update struct {
	path string
	hash uint64
}

// Incremental is a Gateway backed by a Store. Updates are applied by a
// background writer goroutine and persisted on WaitCompletion.
type Incremental struct {
	store  Store
	state  uint64
	logger *pterm.Logger

	// all holds every loaded entry; prev only those for the run's files.
	all  map[string]uint64
	prev map[string]uint64

	mu      sync.Mutex
	closed  bool
	updates chan update
	done    chan struct{}
	written map[string]uint64

	once    sync.Once
	saveErr error
}

// Option configures Incremental.
type Option func(*Incremental)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(l *pterm.Logger) Option {
	return func(c *Incremental) { c.logger = l }
}

// New loads prior entries for state and starts the writer goroutine.
// Entries of files outside files are not consulted but survive the save.
func New(store Store, state []string, files []string, opts ...Option) *Incremental {
	c := &Incremental{
		store:   store,
		state:   Fingerprint(state),
		updates: make(chan update, 64),
		done:    make(chan struct{}),
		written: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)

	all, err := store.Load(c.state)
	if err != nil {
		msg := "failed to load lint cache"
		if errors.Is(err, ErrStale) {
			msg = "discarding stale lint cache"
		}
		c.logger.Debug(msg, c.logger.Args("error", err))
		all = map[string]uint64{}
	}
	c.all = all
	c.prev = make(map[string]uint64, len(files))
	for _, f := range files {
		if h, ok := all[f]; ok {
			c.prev[f] = h
		}
	}
	c.logger.Debug("lint cache loaded", c.logger.Args("state", c.state, "entries", len(all), "relevant", len(c.prev)))

	go c.writer()
	return c
}

func (c *Incremental) writer() {
	defer close(c.done)
	for u := range c.updates {
		c.written[u.path] = u.hash
	}
}

// IsFileSame implements Gateway.
func (c *Incremental) IsFileSame(path, content string) bool {
	h, ok := c.prev[path]
	return ok && h == ContentHash(content)
}

// UpdateFile implements Gateway. Updates after WaitCompletion are dropped.
func (c *Incremental) UpdateFile(path, content string) {
	h := ContentHash(content)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.updates <- update{path: path, hash: h}
}

// WaitCompletion implements Gateway. Only the first call persists.
func (c *Incremental) WaitCompletion(ctx context.Context) error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.updates)
		c.mu.Unlock()

		select {
		case <-c.done:
		case <-ctx.Done():
			c.saveErr = ctx.Err()
			return
		}

		if len(c.written) == 0 {
			return
		}
		merged := make(map[string]uint64, len(c.all)+len(c.written))
		for k, v := range c.all {
			merged[k] = v
		}
		for k, v := range c.written {
			merged[k] = v
		}
		c.saveErr = c.store.Save(c.state, merged)
		c.logger.Debug("lint cache saved", c.logger.Args("state", c.state, "updated", len(c.written)))
	})
	return c.saveErr
}

type disabled struct{}

func (disabled) IsFileSame(string, string) bool       { return false }
func (disabled) UpdateFile(string, string)            {}
func (disabled) WaitCompletion(context.Context) error { return nil }

// Disabled never reports a file as clean and ignores updates.
var Disabled Gateway = disabled{}
