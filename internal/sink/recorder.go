package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"couponprobe/internal/domain"
)

// Paths names the files a Recorder writes under its data directory.
type Paths struct {
	TestedFile  string // rewritten at end of run
	SuccessFile string // append-only
	MetaFile    string // atomic JSON rewrite
	ShotsDir    string // success screenshots
}

func DefaultPaths() Paths {
	return Paths{
		TestedFile:  "tested_coupons.txt",
		SuccessFile: "successful_coupons.txt",
		MetaFile:    "run.json",
		ShotsDir:    "shots",
	}
}

// Recorder is the durable result sink for one run. The success log is
// appended synchronously as successes occur; the tested log is rewritten in
// full at finalization; run metadata is rewritten atomically.
type Recorder struct {
	dataDir string
	paths   Paths

	successes *lineWriter

	now func() time.Time // test seam
}

func OpenRecorder(dataDir string, paths Paths) (*Recorder, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	w, err := newLineWriter(filepath.Join(dataDir, paths.SuccessFile))
	if err != nil {
		return nil, fmt.Errorf("open success log: %w", err)
	}

	return &Recorder{
		dataDir:   dataDir,
		paths:     paths,
		successes: w,
		now:       time.Now,
	}, nil
}

// WriteSuccess appends one success record. The line lands on disk before the
// caller reports the probe as successful, so a crash cannot lose a hit that
// was already counted.
func (r *Recorder) WriteSuccess(candidate, payload string) error {
	if payload == "" {
		payload = "Not extracted"
	}
	line := fmt.Sprintf("%s | Test: %s | Displayed: %s",
		r.now().Format("2006-01-02 15:04:05"), candidate, payload)
	return r.successes.WriteLine(line)
}

// WriteTested rewrites the tested-candidates log from the session counters.
func (r *Recorder) WriteTested(candidates []string) error {
	return writeLinesAtomic(filepath.Join(r.dataDir, r.paths.TestedFile), candidates)
}

func (r *Recorder) WriteMeta(meta domain.RunMeta) error {
	return writeJSONAtomic(filepath.Join(r.dataDir, r.paths.MetaFile), meta)
}

// ArtifactPath is the deterministic screenshot location for a candidate.
func (r *Recorder) ArtifactPath(candidate string) string {
	return filepath.Join(r.dataDir, r.paths.ShotsDir, candidate+".png")
}

func (r *Recorder) Close() error {
	return r.successes.Close()
}
