package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"couponprobe/internal/domain"
	"couponprobe/internal/logging"
)

// Config carries the orchestrator's run parameters.
type Config struct {
	Workers       int
	Rate          float64 // target probes/second, 0 = unlimited
	BatchCap      int     // upper bound on batch size; batch = min(2*Workers, BatchCap)
	StrictRate    bool    // gate every probe through a hard limiter as well
	URLTemplate   string  // must contain one %s, substituted with the candidate
	SettleDelay   time.Duration
	DrainTimeout  time.Duration // bounded wait for in-flight probes after cancellation
	ProgressEvery int           // log a counters snapshot every N completions
	Screenshots   bool
	Meta          domain.RunMeta
}

// Orchestrator pulls candidates from the enumerator in batches, dispatches
// them to a fixed worker pool, aggregates results, and persists outcomes. The
// enumerator is advanced only by the orchestrator's control loop, never by
// workers; candidates from batch k are all submitted before batch k+1 is
// drawn.
type Orchestrator struct {
	cfg      Config
	enum     domain.Enumerator
	factory  domain.ExecutorFactory
	rec      domain.RunRecorder
	counters *SessionCounters
	limiter  *rate.Limiter
	log      *slog.Logger
}

func New(cfg Config, enum domain.Enumerator, factory domain.ExecutorFactory, rec domain.RunRecorder) *Orchestrator {
	cfg.Workers = sanitizeWorkers(cfg.Workers)
	if cfg.BatchCap <= 0 {
		cfg.BatchCap = 2 * cfg.Workers
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 30 * time.Second
	}

	o := &Orchestrator{
		cfg:      cfg,
		enum:     enum,
		factory:  factory,
		rec:      rec,
		counters: &SessionCounters{},
		log:      logging.New("orchestrator"),
	}
	if cfg.StrictRate && cfg.Rate > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	return o
}

// Counters exposes the live session counters for progress reporting.
func (o *Orchestrator) Counters() *SessionCounters { return o.counters }

// Run executes the probe loop until the enumerator is exhausted or ctx is
// canceled. A single probe failure never aborts the run. The returned
// snapshot reflects the finalized counters.
func (o *Orchestrator) Run(ctx context.Context) (domain.CountersSnapshot, error) {
	batchSize := minInt(2*o.cfg.Workers, o.cfg.BatchCap)
	if batchSize < 1 {
		batchSize = 1
	}

	// Results are buffered to the batch size so workers can always hand off
	// a finished probe even when the control loop has stopped draining.
	jobs := make(chan string, batchSize)
	results := make(chan domain.ProbeResult, batchSize)

	var g errgroup.Group
	for i := 0; i < o.cfg.Workers; i++ {
		g.Go(func() error {
			o.workerLoop(ctx, jobs, results)
			return nil
		})
	}

	meta := o.cfg.Meta
	meta.Status = domain.RunStatusRunning
	meta.StartedAt = time.Now().UTC().Format(time.RFC3339)
	if err := o.rec.WriteMeta(meta); err != nil {
		o.log.Warn("write run meta failed", "err", err)
	}

	start := time.Now()
	completions := 0
	canceled := false

	for {
		if ctx.Err() != nil {
			canceled = true
			break
		}

		batch, more := o.drawBatch(batchSize)
		if len(batch) == 0 {
			break
		}

		// The jobs buffer holds a full batch and the previous batch has been
		// fully consumed, so these sends never block.
		for _, cand := range batch {
			jobs <- cand
		}

		canceled = !o.collectBatch(ctx, results, len(batch), &completions)
		if canceled || !more {
			break
		}

		snap := o.counters.Snapshot()
		if pause := pauseFor(snap.Tested, time.Since(start), o.cfg.Rate); pause > 0 {
			o.log.Debug("throughput above target, backing off", "pause", pause)
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				canceled = true
			}
		}
		if canceled {
			break
		}
	}

	close(jobs)
	o.waitWorkers(&g)

	return o.finalize(meta, start, canceled), nil
}

// drawBatch pulls up to n candidates, stopping early when the enumerator
// reports it is done. The second return is false when no more batches should
// be drawn.
func (o *Orchestrator) drawBatch(n int) ([]string, bool) {
	batch := make([]string, 0, n)
	for len(batch) < n {
		cand, err := o.enum.Next()
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExhausted):
				o.log.Info("candidate space exhausted")
			case errors.Is(err, domain.ErrGenerationExhausted):
				o.log.Warn("generator hit retry ceiling; treating as end of work")
			default:
				o.log.Error("enumerator failed", "err", err)
			}
			return batch, false
		}
		batch = append(batch, cand)
	}
	return batch, true
}

// collectBatch drains exactly pending results. On cancellation it keeps
// draining for at most DrainTimeout so dispatched probes can land, then gives
// up on whatever is still in flight. Returns false when the run was canceled.
func (o *Orchestrator) collectBatch(ctx context.Context, results <-chan domain.ProbeResult, pending int, completions *int) bool {
	for pending > 0 {
		select {
		case res := <-results:
			pending--
			o.record(res, completions)

		case <-ctx.Done():
			deadline := time.NewTimer(o.cfg.DrainTimeout)
			defer deadline.Stop()
			for pending > 0 {
				select {
				case res := <-results:
					pending--
					o.record(res, completions)
				case <-deadline.C:
					o.log.Warn("abandoning in-flight probes after drain timeout", "pending", pending)
					return false
				}
			}
			return false
		}
	}
	return true
}

func (o *Orchestrator) record(res domain.ProbeResult, completions *int) {
	o.counters.Record(res)
	if res.Error != "" {
		o.log.Debug("probe failed", "candidate", res.Candidate, "err", res.Error)
	}
	if res.Success {
		o.log.Info("success", "candidate", res.Candidate, "payload", res.Payload)
	}

	*completions++
	if o.cfg.ProgressEvery > 0 && *completions%o.cfg.ProgressEvery == 0 {
		snap := o.counters.Snapshot()
		o.log.Info("progress",
			"tested", snap.Tested,
			"successes", snap.Successes,
			"errors", snap.Errors,
			"last", snap.LastTested,
		)
	}
}

func (o *Orchestrator) waitWorkers(g *errgroup.Group) {
	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(o.cfg.DrainTimeout):
		o.log.Warn("workers still busy after drain timeout")
	}
}

func (o *Orchestrator) finalize(meta domain.RunMeta, start time.Time, canceled bool) domain.CountersSnapshot {
	snap := o.counters.Snapshot()

	if err := o.rec.WriteTested(o.counters.Tested()); err != nil {
		o.log.Warn("write tested log failed", "err", err)
	}

	meta.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	meta.Tested = snap.Tested
	meta.Successes = snap.Successes
	meta.Errors = snap.Errors
	if canceled {
		meta.Status = domain.RunStatusStopped
	} else {
		meta.Status = domain.RunStatusCompleted
	}
	if err := o.rec.WriteMeta(meta); err != nil {
		o.log.Warn("write run meta failed", "err", err)
	}

	elapsed := time.Since(start).Seconds()
	achieved := 0.0
	if elapsed > 0 {
		achieved = float64(snap.Tested) / elapsed
	}
	o.log.Info("run finished",
		"status", meta.Status,
		"tested", snap.Tested,
		"successes", snap.Successes,
		"errors", snap.Errors,
		"rate", achieved,
	)
	return snap
}

func sanitizeWorkers(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
