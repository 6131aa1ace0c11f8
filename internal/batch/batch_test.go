package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/roomfit/internal/export"
	"github.com/piwi3910/roomfit/internal/model"
	"github.com/piwi3910/roomfit/internal/project"
)

const kitchenJSON = `{
  "boundary": [[0, 0], [4000, 0], [4000, 3000], [0, 3000]],
  "door": [[1500, 0], [2300, 0]],
  "isOpenInward": true,
  "algoToPlace": {
    "shelf1": [500, 300],
    "fridge1": [800, 700],
    "overShelf1": [600, 300],
    "iceMaker1": [400, 400]
  }
}`

const tooBigJSON = `{
  "boundary": [[0, 0], [4000, 0], [4000, 3000], [0, 3000]],
  "door": [],
  "isOpenInward": false,
  "algoToPlace": {
    "shelfHuge": [9000, 300]
  }
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestRunner(formats ...string) *Runner {
	return NewRunner(model.DefaultSettings(), "", formats)
}

// ─── ScenarioFiles Tests ───────────────────────────────────

func TestScenarioFiles_FiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", kitchenJSON)
	writeFile(t, dir, "a.JSON", kitchenJSON)
	writeFile(t, dir, "a.result.json", "{}")
	writeFile(t, dir, ".hidden.json", kitchenJSON)
	writeFile(t, dir, "notes.txt", "x")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	files, err := ScenarioFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSON"), filepath.Join(dir, "b.json")}, files)
}

func TestScenarioFiles_MissingDir(t *testing.T) {
	_, err := ScenarioFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// ─── Runner Tests ──────────────────────────────────────────

func TestRunDir_MixedOutcomes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kitchen.json", kitchenJSON)
	writeFile(t, dir, "toobig.json", tooBigJSON)
	writeFile(t, dir, "broken.json", "{")

	report, err := newTestRunner(export.FormatGeoJSON).RunDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.RunID, 8)
	require.Len(t, report.Files, 3)
	assert.Equal(t, 1, report.Feasible)
	assert.Equal(t, 1, report.Infeasible)
	assert.Equal(t, 1, report.Failed)

	// Files run in name order: broken, kitchen, toobig.
	broken, kitchen, tooBig := report.Files[0], report.Files[1], report.Files[2]

	assert.NotEmpty(t, broken.Error)
	assert.Empty(t, broken.Output)

	assert.True(t, kitchen.Feasible)
	assert.Equal(t, 4, kitchen.Placed)
	assert.Equal(t, 4, kitchen.Total)
	assert.FileExists(t, filepath.Join(dir, "kitchen.result.json"))
	assert.Equal(t, []string{filepath.Join(dir, "kitchen.geojson")}, kitchen.Renders)
	assert.FileExists(t, filepath.Join(dir, "kitchen.geojson"))

	assert.False(t, tooBig.Feasible)
	assert.Equal(t, "cannot place item: shelfHuge", tooBig.Message)
	assert.FileExists(t, filepath.Join(dir, "toobig.result.json"))
	assert.Empty(t, tooBig.Renders)
	assert.NoFileExists(t, filepath.Join(dir, "toobig.geojson"))
}

func TestRunDir_SecondPassSkipsResults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kitchen.json", kitchenJSON)
	r := newTestRunner()

	_, err := r.RunDir(context.Background(), dir)
	require.NoError(t, err)
	report, err := r.RunDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.Files, 1)
	assert.Equal(t, 0, report.Failed)
}

func TestRunDir_OutputDir(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(t.TempDir(), "results")
	path := writeFile(t, dir, "kitchen.json", kitchenJSON)

	r := NewRunner(model.DefaultSettings(), out, nil)
	report, err := r.RunDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)

	want := project.ResultPath(path, out)
	assert.Equal(t, want, report.Files[0].Output)

	result, err := project.LoadResult(want)
	require.NoError(t, err)
	assert.True(t, result.Feasible)
	assert.Len(t, result.Placements, 4)
}

func TestRunDir_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "kitchen.json", kitchenJSON)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestRunner().RunDir(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Files)
}

func TestRunDir_HugeRoomFailsAlone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", kitchenJSON)
	writeFile(t, dir, "huge.json", `{"boundary": [[0,0],[1e8,0],[1e8,1e8],[0,1e8]], "algoToPlace": {"shelf1": [500, 300]}}`)

	report, err := newTestRunner().RunDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	assert.True(t, report.Files[0].Feasible)
	assert.Empty(t, report.Files[0].Error)
	assert.Contains(t, report.Files[1].Error, "room too large")
	assert.NoFileExists(t, filepath.Join(dir, "huge.result.json"))
}

func TestRunFile_RenderFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "kitchen.json", kitchenJSON)

	fr := newTestRunner("bogus").RunFile(context.Background(), path)
	assert.Contains(t, fr.Error, "rendering bogus")
	assert.True(t, fr.Feasible)
}

// ─── Debouncer Tests ───────────────────────────────────────

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls, last atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Trigger(func() {
			calls.Add(1)
			last.Store(n)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(5), last.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

// ─── FileWatcher Tests ─────────────────────────────────────

func TestShouldProcessEvent(t *testing.T) {
	fw := &FileWatcher{config: DefaultWatcherConfig("/rooms")}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"write scenario", fsnotify.Event{Name: "/rooms/a.json", Op: fsnotify.Write}, true},
		{"create scenario", fsnotify.Event{Name: "/rooms/a.json", Op: fsnotify.Create}, true},
		{"chmod", fsnotify.Event{Name: "/rooms/a.json", Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: "/rooms/a.json", Op: fsnotify.Remove}, false},
		{"result file", fsnotify.Event{Name: "/rooms/a.result.json", Op: fsnotify.Write}, false},
		{"render", fsnotify.Event{Name: "/rooms/a.geojson", Op: fsnotify.Write}, false},
		{"hidden", fsnotify.Event{Name: "/rooms/.a.json", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fw.shouldProcessEvent(tt.event))
		})
	}
}

func TestFileWatcher_ReportsChangedScenarios(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultWatcherConfig(dir)
	cfg.DebounceInterval = 50 * time.Millisecond

	fw, err := NewFileWatcher(cfg, nil)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- fw.Watch(ctx, func(paths []string) error {
			mu.Lock()
			seen = append(seen, paths...)
			mu.Unlock()
			return nil
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	path := writeFile(t, dir, "kitchen.json", kitchenJSON)
	writeFile(t, dir, "kitchen.result.json", "{}")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, fw.Stop())
	require.NoError(t, <-errCh)

	mu.Lock()
	defer mu.Unlock()
	for _, p := range seen {
		assert.Equal(t, path, p)
	}
}

func TestFileWatcher_StopWithoutWatch(t *testing.T) {
	fw, err := NewFileWatcher(DefaultWatcherConfig(t.TempDir()), nil)
	require.NoError(t, err)
	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop())
}

func TestRunnerWatch_ResolvesNewScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "first.json", kitchenJSON)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- newTestRunner().Watch(ctx, dir) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "first.result.json"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "second.json", tooBigJSON)

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "second.result.json"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)

	result, err := project.LoadResult(filepath.Join(dir, "second.result.json"))
	require.NoError(t, err)
	assert.False(t, result.Feasible)
}
