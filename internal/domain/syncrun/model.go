package syncrun

import "time"

type RunStatus string

const (
	StatusIdle      RunStatus = "idle"
	StatusScheduled RunStatus = "scheduled"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// Progress carries the per-step counters of one run.
type Progress struct {
	ConferencesTotal     int `json:"conferences_total"`
	ConferencesProcessed int `json:"conferences_processed"`
	MatchupsFinalized    int `json:"matchups_finalized"`
	RecordsUpdated       int `json:"records_updated"`
}

// Run is one audit entry of the synchronization pipeline. Rows are created
// at run start, finalized at run end, and never mutated afterwards.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     RunStatus `json:"status"`
	Progress   Progress  `json:"progress"`
	Errors     []string  `json:"errors,omitempty"`
	Outcome    Outcome   `json:"outcome,omitempty"`
	Manual     bool      `json:"manual"`
}

// Classify maps a finished run to its outcome: clean, partially failed, or
// failed outright (errors and nothing processed).
func Classify(matchupsProcessed int, errorCount int) Outcome {
	switch {
	case errorCount == 0:
		return OutcomeSuccess
	case matchupsProcessed > 0:
		return OutcomePartial
	default:
		return OutcomeFailed
	}
}
