package generate

import (
	"errors"
	"log/slog"
	"math/rand/v2"

	"couponprobe/internal/domain"
	"couponprobe/internal/logging"
	"couponprobe/internal/pattern"
)

// maxAttempts bounds the retry loop when every freshly drawn candidate turns
// out to be visited already. Exceeding it is a probabilistic end-of-work
// signal, not proof of exhaustion.
const maxAttempts = 10000

// Random draws candidates without replacement across one or more patterns.
// Each call picks a pattern uniformly, samples every variable slot uniformly
// from its alphabet, and retries on a visited-set hit. A fresh candidate is
// durably appended to the visited store before it is returned, so a crash
// between append and probe cannot produce a duplicate on the next run.
//
// Only the run's enumerator writes to the visited store; the orchestrator and
// sinks never add to it.
type Random struct {
	patterns []*pattern.Pattern
	visited  *VisitedStore
	log      *slog.Logger
}

var ErrNoPatterns = errors.New("no patterns to generate from")

func NewRandom(patterns []*pattern.Pattern, visited *VisitedStore) (*Random, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	return &Random{
		patterns: patterns,
		visited:  visited,
		log:      logging.New("generate"),
	}, nil
}

func (g *Random) Next() (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		p := g.patterns[rand.IntN(len(g.patterns))]
		cand := sample(p)

		added, err := g.visited.AddIfAbsent(cand)
		if err != nil {
			// Non-fatal: the candidate is still usable, but a restart may
			// probe it again.
			g.log.Warn("visited store write failed", "candidate", cand, "err", err)
		}
		if !added {
			continue
		}
		return cand, nil
	}
	return "", domain.ErrGenerationExhausted
}

func sample(p *pattern.Pattern) string {
	b := []byte(p.Template())
	for _, i := range p.VariableSlots() {
		alpha := p.Slots()[i].Kind.Alphabet()
		b[i] = alpha[rand.IntN(len(alpha))]
	}
	return string(b)
}
