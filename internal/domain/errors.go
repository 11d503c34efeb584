package domain

import "errors"

// ErrExhausted is the odometer's terminal condition: every combination of the
// pattern has been emitted. It is the expected end of the space, not a failure.
var ErrExhausted = errors.New("candidate space exhausted")

// ErrGenerationExhausted means the randomized enumerator could not find a
// fresh candidate within its retry ceiling. It is probabilistic: collisions
// can cluster long before the space is truly exhausted, so it must never be
// read as proof that no untested candidate remains.
var ErrGenerationExhausted = errors.New("could not generate unvisited candidate within retry limit")
