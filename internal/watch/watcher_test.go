package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
}

type memTarget struct {
	mu   sync.Mutex
	text string
	sets int
}

func (m *memTarget) Value() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func (m *memTarget) SetValue(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.sets++
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewWatcherMissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.tex"), &memTarget{})
	assert.Error(t, err)
}

func TestSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.tex")
	writeFile(t, path, "\\section{A}")

	target := &memTarget{}
	w, err := NewWatcher(path, target)
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, w.Sync())
	assert.Equal(t, "\\section{A}", target.Value())

	require.NoError(t, w.Sync())
	assert.Equal(t, 1, target.sets, "unchanged contents are not pushed again")
}

func TestWatchSyncsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	writeFile(t, path, "initial")

	target := &memTarget{}
	w, err := NewWatcher(path, target)
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	writeFile(t, filepath.Join(dir, "other.tex"), "ignored")
	writeFile(t, path, "edited externally")

	require.Eventually(t, func() bool { return target.Value() == "edited externally" }, 3*time.Second, 10*time.Millisecond)
}

func TestWatchFollowsRenames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	writeFile(t, path, "initial")

	target := &memTarget{}
	w, err := NewWatcher(path, target)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Stop()

	tmp := filepath.Join(dir, ".main.tex.swp")
	writeFile(t, tmp, "saved by rename")
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return target.Value() == "saved by rename" }, 3*time.Second, 10*time.Millisecond)
}

func TestCompileOnSaveCoalesces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	writeFile(t, path, "v0")

	target := &memTarget{}
	var compiles atomic.Int32
	var mu sync.Mutex
	results := map[string]int{}

	w, err := NewWatcher(path, target,
		WithCompileOnSave(func(context.Context) { compiles.Add(1) }, 500*time.Millisecond),
		WithObserver(func(r string) {
			mu.Lock()
			defer mu.Unlock()
			results[r]++
		}),
	)
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for _, v := range []string{"v1", "v2", "v3", "v4", "v5"} {
		writeFile(t, path, v)
		time.Sleep(30 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return target.Value() == "v5" }, 3*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return compiles.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)

	// Let any trailing compile run.
	time.Sleep(800 * time.Millisecond)
	require.NoError(t, w.Stop())

	got := compiles.Load()
	assert.LessOrEqual(t, got, int32(2), "a burst compiles at most once now and once after the interval")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int(got), results[ResultCompiled])
	assert.Positive(t, results[ResultSynced])
}

func TestStopCancelsTrailingCompile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.tex")
	writeFile(t, path, "v0")

	target := &memTarget{}
	var compiles atomic.Int32
	w, err := NewWatcher(path, target, WithCompileOnSave(func(context.Context) { compiles.Add(1) }, time.Hour))
	require.NoError(t, err)
	require.NoError(t, w.Sync())

	w.Start(context.Background())

	writeFile(t, path, "v1")
	require.Eventually(t, func() bool { return compiles.Load() == 1 }, 3*time.Second, 10*time.Millisecond)

	writeFile(t, path, "v2")
	require.Eventually(t, func() bool { return target.Value() == "v2" }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.Equal(t, int32(1), compiles.Load())
}
