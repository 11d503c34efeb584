package orchestrator

import (
	"context"
	"fmt"
	"time"

	"couponprobe/internal/domain"
)

func (o *Orchestrator) workerLoop(ctx context.Context, jobs <-chan string, results chan<- domain.ProbeResult) {
	for cand := range jobs {
		if o.limiter != nil {
			// Once a candidate is dispatched it is probed even if the run is
			// being canceled, so a limiter error only skips the wait.
			_ = o.limiter.Wait(ctx)
		}
		results <- o.probeOne(cand)
	}
}

// probeOne runs the full probe sequence for one candidate on a fresh
// executor. The executor is closed on every path. Probes deliberately do not
// inherit the run context: a dispatched probe is allowed to finish after
// cancellation, bounded by the orchestrator's drain timeout and the
// executor's own timeouts.
func (o *Orchestrator) probeOne(cand string) (res domain.ProbeResult) {
	t0 := time.Now()
	res = domain.ProbeResult{Candidate: cand}
	defer func() {
		res.DurationMs = time.Since(t0).Milliseconds()
		res.At = time.Now().UTC().Format(time.RFC3339Nano)
	}()

	ctx := context.Background()
	url := fmt.Sprintf(o.cfg.URLTemplate, cand)

	exec := o.factory()
	defer exec.Close()

	if err := exec.Open(ctx); err != nil {
		res.Error = "open: " + err.Error()
		return res
	}
	if err := exec.Navigate(ctx, url); err != nil {
		res.Error = "navigate: " + err.Error()
		return res
	}

	if o.cfg.SettleDelay > 0 {
		time.Sleep(o.cfg.SettleDelay)
	}

	ok, err := exec.DetectSuccess(ctx)
	if err != nil {
		res.Error = "detect: " + err.Error()
		return res
	}
	if !ok {
		return res
	}

	// Success path: extract and persist before the result is reported, so a
	// crash after this point cannot lose the hit.
	if payload, perr := exec.ExtractPayload(ctx); perr == nil {
		res.Payload = payload
	} else {
		o.log.Debug("payload extraction failed", "candidate", cand, "err", perr)
	}

	if o.cfg.Screenshots {
		path := o.rec.ArtifactPath(cand)
		if aerr := exec.CaptureArtifact(ctx, path); aerr == nil {
			res.Artifact = path
		} else {
			o.log.Warn("artifact capture failed", "candidate", cand, "err", aerr)
		}
	}

	if werr := o.rec.WriteSuccess(cand, res.Payload); werr != nil {
		o.log.Error("success log write failed", "candidate", cand, "err", werr)
	}

	res.Success = true
	return res
}
