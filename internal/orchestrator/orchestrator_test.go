package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couponprobe/internal/domain"
	"couponprobe/internal/sink"
)

// fakeExecutor scripts probe outcomes per candidate without a browser.
type fakeExecutor struct {
	succeed map[string]string // candidate -> payload
	fail    map[string]bool
	delay   time.Duration

	url    string
	closed *atomic.Int64
}

func (f *fakeExecutor) Open(ctx context.Context) error { return nil }

func (f *fakeExecutor) Navigate(ctx context.Context, url string) error {
	f.url = url
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	cand := candidateFromURL(url)
	if f.fail[cand] {
		return errors.New("net::ERR_TIMED_OUT")
	}
	return nil
}

func (f *fakeExecutor) DetectSuccess(ctx context.Context) (bool, error) {
	_, ok := f.succeed[candidateFromURL(f.url)]
	return ok, nil
}

func (f *fakeExecutor) ExtractPayload(ctx context.Context) (string, error) {
	return f.succeed[candidateFromURL(f.url)], nil
}

func (f *fakeExecutor) CaptureArtifact(ctx context.Context, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

func (f *fakeExecutor) Close() {
	if f.closed != nil {
		f.closed.Add(1)
	}
}

func candidateFromURL(url string) string {
	i := strings.LastIndexByte(url, '=')
	if i < 0 {
		return url
	}
	return url[i+1:]
}

// scriptedEnum hands out a fixed candidate list, then a terminal error.
type scriptedEnum struct {
	mu    sync.Mutex
	cands []string
	drawn int
	done  error
}

func (e *scriptedEnum) Next() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.drawn >= len(e.cands) {
		return "", e.done
	}
	c := e.cands[e.drawn]
	e.drawn++
	return c, nil
}

func (e *scriptedEnum) drawnCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawn
}

func candidates(n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n && i < 1000; i++ {
		out = append(out, fmt.Sprintf("%03d", i))
	}
	return out
}

func testRecorder(t *testing.T) (*sink.Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	rec, err := sink.OpenRecorder(dir, sink.DefaultPaths())
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	return rec, dir
}

func newTestOrchestrator(cfg Config, enum domain.Enumerator, rec domain.RunRecorder, fe func() *fakeExecutor) *Orchestrator {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = "https://shop.example/redeem?cpn=%s"
	}
	return New(cfg, enum, func() domain.ProbeExecutor { return fe() }, rec)
}

func TestRun_TestedEqualsDrawn(t *testing.T) {
	enum := &scriptedEnum{cands: candidates(50), done: domain.ErrExhausted}
	rec, dir := testRecorder(t)
	var closed atomic.Int64

	o := newTestOrchestrator(Config{Workers: 4}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{closed: &closed}
	})

	snap, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(50), snap.Tested)
	assert.Equal(t, 50, enum.drawnCount())
	assert.Equal(t, int64(50), closed.Load(), "every executor must be closed")

	b, err := os.ReadFile(filepath.Join(dir, "tested_coupons.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	assert.Len(t, lines, 50)
}

func TestRun_SuccessPersistedBeforeReport(t *testing.T) {
	enum := &scriptedEnum{cands: candidates(10), done: domain.ErrExhausted}
	rec, dir := testRecorder(t)

	o := newTestOrchestrator(Config{Workers: 2, Screenshots: true}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{succeed: map[string]string{"003": "SAVE100NOW"}}
	})

	snap, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(10), snap.Tested)
	assert.Equal(t, int64(1), snap.Successes)
	assert.Equal(t, []string{"003"}, o.Counters().Successes())

	b, err := os.ReadFile(filepath.Join(dir, "successful_coupons.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "Test: 003 | Displayed: SAVE100NOW")

	_, err = os.Stat(filepath.Join(dir, "shots", "003.png"))
	assert.NoError(t, err, "success screenshot missing")
}

func TestRun_ExecutorFailureIsNonFatal(t *testing.T) {
	enum := &scriptedEnum{cands: candidates(20), done: domain.ErrExhausted}
	rec, _ := testRecorder(t)

	o := newTestOrchestrator(Config{Workers: 3}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{fail: map[string]bool{"001": true, "007": true}}
	})

	snap, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(20), snap.Tested, "failed probes still count as tested")
	assert.Equal(t, int64(2), snap.Errors)
	assert.Equal(t, int64(0), snap.Successes)
}

func TestRun_GenerationExhaustedEndsRun(t *testing.T) {
	enum := &scriptedEnum{cands: candidates(7), done: domain.ErrGenerationExhausted}
	rec, _ := testRecorder(t)

	o := newTestOrchestrator(Config{Workers: 2}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{}
	})

	snap, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), snap.Tested)
}

func TestRun_CancellationDrainsInFlight(t *testing.T) {
	enum := &scriptedEnum{cands: candidates(500), done: domain.ErrExhausted}
	rec, dir := testRecorder(t)

	o := newTestOrchestrator(Config{Workers: 4, DrainTimeout: 10 * time.Second}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{delay: 50 * time.Millisecond}
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	snap, err := o.Run(ctx)
	require.NoError(t, err)

	// No new batch after cancellation, but every dispatched probe completes
	// and is counted.
	assert.Equal(t, int64(enum.drawnCount()), snap.Tested)
	assert.Less(t, snap.Tested, int64(500))
	assert.Greater(t, snap.Tested, int64(0))

	b, err := os.ReadFile(filepath.Join(dir, "run.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status": "stopped"`)
}

func TestRun_ThroughputBackoff(t *testing.T) {
	const target = 100.0
	enum := &scriptedEnum{cands: candidates(40), done: domain.ErrExhausted}
	rec, _ := testRecorder(t)

	o := newTestOrchestrator(Config{Workers: 2, Rate: target}, enum, rec, func() *fakeExecutor {
		return &fakeExecutor{} // instant probes would otherwise run unbounded
	})

	start := time.Now()
	snap, err := o.Run(context.Background())
	require.NoError(t, err)
	elapsed := time.Since(start)

	require.Equal(t, int64(40), snap.Tested)

	// The last batch is not followed by a pause, so allow one batch of slack.
	minElapsed := time.Duration(float64(40-4) / target * float64(time.Second))
	assert.GreaterOrEqual(t, elapsed, minElapsed, "backoff did not hold throughput near target")
	assert.Less(t, elapsed, 5*time.Second)
}

func TestPauseFor(t *testing.T) {
	// 100 tested in 1s against a target of 50/s: the work should have taken
	// 2s, so pause the missing second.
	assert.Equal(t, time.Second, pauseFor(100, time.Second, 50))

	assert.Zero(t, pauseFor(10, time.Second, 50), "under target needs no pause")
	assert.Zero(t, pauseFor(50, time.Second, 50), "on target needs no pause")
	assert.Zero(t, pauseFor(100, time.Second, 0), "no target, no pause")
	assert.Zero(t, pauseFor(0, time.Second, 50))
}
