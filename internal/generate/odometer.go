package generate

import (
	"log/slog"
	"strings"

	"couponprobe/internal/domain"
	"couponprobe/internal/logging"
	"couponprobe/internal/pattern"
)

// Odometer enumerates the full candidate space of one pattern
// deterministically. The variable slots form a mixed-radix counter in
// template order: each starts at the first character of its alphabet, and
// after every emission the right-most slot is incremented, wrapping (9→0,
// z→a) with a carry into the slot to its left. A carry out of the left-most
// variable slot makes the enumerator permanently exhausted, which happens
// after exactly Pattern.Combinations() emissions against a fresh store.
//
// The counter never repeats a candidate by construction, but the visited
// store is still consulted for cross-run bookkeeping: candidates already in
// it are stepped over, and each emitted candidate is durably appended before
// it is returned, so an interrupted run resumes where it stopped instead of
// probing the whole prefix again.
type Odometer struct {
	pat       *pattern.Pattern
	visited   *VisitedStore
	log       *slog.Logger
	cur       []byte
	exhausted bool
}

func NewOdometer(p *pattern.Pattern, visited *VisitedStore) *Odometer {
	cur := []byte(p.Template())
	for _, i := range p.VariableSlots() {
		cur[i] = p.Slots()[i].Kind.Alphabet()[0]
	}
	return &Odometer{
		pat:     p,
		visited: visited,
		log:     logging.New("generate"),
		cur:     cur,
	}
}

func (o *Odometer) Next() (string, error) {
	for !o.exhausted {
		out := string(o.cur)
		o.increment()

		added, err := o.visited.AddIfAbsent(out)
		if err != nil {
			// Non-fatal: the candidate is still usable, but a restart may
			// probe it again.
			o.log.Warn("visited store write failed", "candidate", out, "err", err)
		}
		if !added {
			continue
		}
		return out, nil
	}
	return "", domain.ErrExhausted
}

func (o *Odometer) increment() {
	varSlots := o.pat.VariableSlots()
	for i := len(varSlots) - 1; i >= 0; i-- {
		idx := varSlots[i]
		alpha := o.pat.Slots()[idx].Kind.Alphabet()
		pos := strings.IndexByte(alpha, o.cur[idx])
		if pos+1 < len(alpha) {
			o.cur[idx] = alpha[pos+1]
			return
		}
		// wrap and carry left
		o.cur[idx] = alpha[0]
	}
	o.exhausted = true
}
