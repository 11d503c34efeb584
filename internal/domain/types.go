package domain

// ProbeResult is the outcome of one end-to-end probe of one candidate.
type ProbeResult struct {
	Candidate  string `json:"candidate"`
	Success    bool   `json:"success"`
	Payload    string `json:"payload,omitempty"`  // extracted code, empty when not extracted
	Artifact   string `json:"artifact,omitempty"` // screenshot path, empty when none taken
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
	At         string `json:"at"`
}

// CountersSnapshot is a point-in-time copy of the session counters,
// safe to read outside the aggregator.
type CountersSnapshot struct {
	Tested     int64  `json:"tested"`
	Successes  int64  `json:"successes"`
	Errors     int64  `json:"errors"`
	LastTested string `json:"lastTested,omitempty"`
}

// RunMeta describes one orchestrator run. It is rewritten atomically during
// the run and finalized at shutdown.
type RunMeta struct {
	ID                string    `json:"id"`
	StartedAt         string    `json:"startedAt"`
	FinishedAt        string    `json:"finishedAt,omitempty"`
	Patterns          []string  `json:"patterns"`
	Strategy          string    `json:"strategy"`
	Workers           int       `json:"workers"`
	Rate              float64   `json:"rate"`
	TotalCombinations string    `json:"totalCombinations,omitempty"`
	Tested            int64     `json:"tested"`
	Successes         int64     `json:"successes"`
	Errors            int64     `json:"errors"`
	Status            RunStatus `json:"status,omitempty"`
}
