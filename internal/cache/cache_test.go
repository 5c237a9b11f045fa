package cache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var rulesV1 = []string{"eol-last", "no-trailing-spaces"}

func TestCleanFileSkippedInNextRun(t *testing.T) {
	store := NewMemoryStore()
	files := []string{"a.sg", "b.sg"}

	first := New(store, rulesV1, files)
	assert.False(t, first.IsFileSame("a.sg", "let a = 1;\n"))
	first.UpdateFile("a.sg", "let a = 1;\n")
	require.NoError(t, first.WaitCompletion(context.Background()))

	second := New(store, rulesV1, files)
	assert.True(t, second.IsFileSame("a.sg", "let a = 1;\n"))
	assert.False(t, second.IsFileSame("a.sg", "let a = 2;\n"), "changed content must be re-linted")
	assert.False(t, second.IsFileSame("b.sg", "let b = 1;\n"), "never-clean file must be linted")
}

func TestRuleChangeInvalidatesEveryFile(t *testing.T) {
	store := NewMemoryStore()
	files := []string{"a.sg", "b.sg"}

	c := New(store, rulesV1, files)
	c.UpdateFile("a.sg", "a")
	c.UpdateFile("b.sg", "b")
	require.NoError(t, c.WaitCompletion(context.Background()))

	changed := New(store, []string{"eol-last", "no-extra-semicolons"}, files)
	assert.False(t, changed.IsFileSame("a.sg", "a"))
	assert.False(t, changed.IsFileSame("b.sg", "b"))

	withSurface := New(store, append(append([]string{}, rulesV1...), "explicit-surface"), files)
	assert.False(t, withSurface.IsFileSame("a.sg", "a"))
}

func TestEntriesOutsideRunArePreserved(t *testing.T) {
	store := NewMemoryStore()

	c := New(store, rulesV1, []string{"a.sg", "b.sg"})
	c.UpdateFile("a.sg", "a")
	require.NoError(t, c.WaitCompletion(context.Background()))

	onlyB := New(store, rulesV1, []string{"b.sg"})
	assert.False(t, onlyB.IsFileSame("a.sg", "a"), "file outside the run must not be consulted")
	onlyB.UpdateFile("b.sg", "b")
	require.NoError(t, onlyB.WaitCompletion(context.Background()))

	both := New(store, rulesV1, []string{"a.sg", "b.sg"})
	assert.True(t, both.IsFileSame("a.sg", "a"))
	assert.True(t, both.IsFileSame("b.sg", "b"))
}

func TestConcurrentUpdates(t *testing.T) {
	store := NewMemoryStore()
	files := make([]string, 200)
	for i := range files {
		files[i] = filepath.Join("src", string(rune('a'+i%26)), "f"+string(rune('0'+i%10))+".sg")
	}

	c := New(store, rulesV1, files)
	var wg sync.WaitGroup
	for _, f := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			c.UpdateFile(path, path)
		}(f)
	}
	wg.Wait()
	require.NoError(t, c.WaitCompletion(context.Background()))

	next := New(store, rulesV1, files)
	for _, f := range files {
		assert.True(t, next.IsFileSame(f, f), f)
	}
}

func TestWaitCompletionIsIdempotentAndLateUpdatesDropped(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, rulesV1, []string{"a.sg"})
	require.NoError(t, c.WaitCompletion(context.Background()))
	require.NoError(t, c.WaitCompletion(context.Background()))

	assert.NotPanics(t, func() { c.UpdateFile("a.sg", "a") })

	next := New(store, rulesV1, []string{"a.sg"})
	assert.False(t, next.IsFileSame("a.sg", "a"))
}

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenDiskStore(dir)
	require.NoError(t, err)

	c := New(store, rulesV1, []string{"a.sg"})
	c.UpdateFile("a.sg", "clean")
	require.NoError(t, c.WaitCompletion(context.Background()))

	reopened, err := OpenDiskStore(dir)
	require.NoError(t, err)
	next := New(reopened, rulesV1, []string{"a.sg"})
	assert.True(t, next.IsFileSame("a.sg", "clean"))

	matches, err := filepath.Glob(filepath.Join(dir, "tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not be left behind")
}

func TestDiskStoreCorruptFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenDiskStore(dir)
	require.NoError(t, err)

	state := Fingerprint(rulesV1)
	require.NoError(t, os.WriteFile(store.pathFor(state), []byte("not msgpack"), 0o644))

	_, err = store.Load(state)
	require.Error(t, err)

	c := New(store, rulesV1, []string{"a.sg"})
	assert.False(t, c.IsFileSame("a.sg", "clean"))
	c.UpdateFile("a.sg", "clean")
	require.NoError(t, c.WaitCompletion(context.Background()))

	entries, err := store.Load(state)
	require.NoError(t, err)
	assert.Equal(t, ContentHash("clean"), entries["a.sg"])
}

func TestDiskStoreSchemaMismatchIsStale(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenDiskStore(dir)
	require.NoError(t, err)

	state := Fingerprint(rulesV1)
	data, err := msgpack.Marshal(&payload{Schema: diskSchemaVersion + 1, State: state, Entries: map[string]uint64{"a.sg": 1}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.pathFor(state), data, 0o644))

	_, err = store.Load(state)
	assert.ErrorIs(t, err, ErrStale)
}

func TestDefaultDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "surgelint", "lint"), dir)
}

func TestDisabledGateway(t *testing.T) {
	Disabled.UpdateFile("a.sg", "a")
	assert.False(t, Disabled.IsFileSame("a.sg", "a"))
	assert.NoError(t, Disabled.WaitCompletion(context.Background()))
}
