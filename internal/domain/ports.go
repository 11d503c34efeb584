package domain

import "context"

// Enumerator produces the sequence of candidates to probe. Next returns
// ErrExhausted (odometer) or ErrGenerationExhausted (randomized) once no more
// candidates can be produced; both are terminal for the calling run.
type Enumerator interface {
	Next() (string, error)
}

// ProbeExecutor performs one real probe of one candidate. Instances are never
// shared between workers and are not assumed safe for concurrent use. Close
// must be idempotent and safe on a never-opened instance. Retries and backoff
// belong to the implementation, not to callers.
type ProbeExecutor interface {
	Open(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	DetectSuccess(ctx context.Context) (bool, error)
	ExtractPayload(ctx context.Context) (string, error)
	CaptureArtifact(ctx context.Context, path string) error
	Close()
}

// ExecutorFactory builds a fresh ProbeExecutor for one probe.
type ExecutorFactory func() ProbeExecutor

// RunRecorder persists the durable outputs of a run: the append-only success
// log, the end-of-run tested-candidates rewrite, and run metadata.
type RunRecorder interface {
	WriteSuccess(candidate, payload string) error
	WriteTested(candidates []string) error
	WriteMeta(meta RunMeta) error
	ArtifactPath(candidate string) string
	Close() error
}
