package orchestrator

import "time"

// pauseFor computes the pause to insert before the next batch when the run is
// ahead of its target throughput. With target probes/second, tested probes
// should have taken tested/target seconds; the pause is the time by which the
// run is ahead of that schedule. This is proportional backoff, not a token
// bucket: it prevents runaway overshoot, it does not guarantee the target is
// reached.
func pauseFor(tested int64, elapsed time.Duration, target float64) time.Duration {
	if target <= 0 || tested <= 0 || elapsed <= 0 {
		return 0
	}

	achieved := float64(tested) / elapsed.Seconds()
	if achieved <= target {
		return 0
	}

	ahead := float64(tested)/target - elapsed.Seconds()
	if ahead <= 0 {
		return 0
	}
	return time.Duration(ahead * float64(time.Second))
}
