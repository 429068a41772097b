package models

import "time"

// JobKind identifies one of the scheduler's batch jobs.
type JobKind string

const (
	JobDailyNews    JobKind = "daily_news"
	JobWeeklySync   JobKind = "weekly_sync"
	JobWeeklyRerate JobKind = "weekly_rerate"
)

// JobStatus is the lifecycle state of a triggered batch run.
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	// JobFailed marks a run abandoned before the sweep, such as when the
	// country list cannot be loaded. Per-country failures do not fail a run;
	// they are tallied on a completed one.
	JobFailed JobStatus = "failed"
)

// JobTally is the per-batch success/error count. One country's failure is
// counted here, never propagated.
type JobTally struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// JobRun is the observable state of one batch sweep, whether cron-fired or
// triggered on demand. Triggers return immediately; callers poll the run.
type JobRun struct {
	ID          string     `json:"id"`
	Kind        JobKind    `json:"kind"`
	Status      JobStatus  `json:"status"`
	Tally       JobTally   `json:"tally"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
