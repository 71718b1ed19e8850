package scheduler

import (
	"context"
	"time"
)

// Job is background work the scheduler runs on a cron schedule, such as
// keeping the NASDAQ credential warm.
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a six-field cron expression (seconds first) or a
	// descriptor: "0 */20 * * * *", "@every 25m".
	Schedule() string
}

// JobResult is the outcome of one run, retries included.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobStats summarizes a job's recorded runs for the status endpoint.
type JobStats struct {
	JobName      string     `json:"job_name"`
	Schedule     string     `json:"schedule"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	NextRun      *time.Time `json:"next_run,omitempty"`
}

// maxHistory is how many results are kept per job
const maxHistory = 100

// history holds the latest runs of one job, oldest first.
// Guarded by the scheduler's mutex.
type history []JobResult

func (h *history) add(r JobResult) {
	*h = append(*h, r)
	if len(*h) > maxHistory {
		*h = (*h)[len(*h)-maxHistory:]
	}
}

// stats counts outcomes and picks out the latest success and failure.
// LastError is set only while the latest run is a failure.
func (h history) stats(name, schedule string) JobStats {
	st := JobStats{JobName: name, Schedule: schedule, TotalRuns: len(h)}
	for i := range h {
		r := &h[i]
		if r.Success {
			st.SuccessCount++
			st.LastSuccess = &r.StartTime
		} else {
			st.FailureCount++
			st.LastFailure = &r.StartTime
		}
	}
	if len(h) > 0 {
		last := &h[len(h)-1]
		st.LastRun = &last.StartTime
		st.LastError = last.Error
		st.SuccessRate = float64(st.SuccessCount) / float64(len(h))
	}
	return st
}
