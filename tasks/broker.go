package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"report-approval-api/config"
)

// Job type names understood by the worker registry.
const (
	JobSendEmail         = "send_email"
	JobGenerateReport    = "generate_report"
	JobBulkNotification  = "bulk_notification"
	JobCleanupOldData    = "cleanup_old_data"
	JobGenerateAnalytics = "generate_analytics"
)

// Job states as observed through GetStatus.
const (
	StatePending  = "PENDING"
	StateProgress = "PROGRESS"
	StateSuccess  = "SUCCESS"
	StateFailure  = "FAILURE"
)

// Status is the externally observable state of a job. GetStatus always
// returns a well-formed Status, never an error: an unknown id reports
// PENDING.
type Status struct {
	State    string         `json:"state"`
	Progress map[string]any `json:"progress,omitempty"`
	Result   map[string]any `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Broker is the job-runner capability handed to the request tier: enqueue a
// job, read its status. Implementations: RedisBroker (out-of-process
// workers) and MemoryBroker (in-process pool, tests and dev).
type Broker interface {
	Enqueue(ctx context.Context, jobType string, args map[string]any) (string, error)
	GetStatus(ctx context.Context, jobID string) Status
}

// ProgressFunc reports an intermediate progress payload for a running job.
type ProgressFunc func(meta map[string]any)

// Handler executes one job type. The returned map is the terminal result.
type Handler func(ctx context.Context, args map[string]any, progress ProgressFunc) (map[string]any, error)

// Registry maps job type names to their handlers.
type Registry map[string]Handler

// job is the envelope serialized onto the queue.
type job struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Args       map[string]any `json:"args"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

type outcome struct {
	result map[string]any
	err    error
}

// execute runs a handler under the configured soft and hard time limits.
// Crossing the soft limit cancels the job context so the handler can wrap up
// gracefully; crossing the hard limit abandons the job and records it as
// failed even if its goroutine has not returned.
func execute(parent context.Context, jobID, jobType string, h Handler, args map[string]any, progress ProgressFunc) (map[string]any, error) {
	settings := config.Settings()

	ctx, cancel := context.WithTimeout(parent, settings.JobTimeLimit)
	defer cancel()

	soft := time.AfterFunc(settings.JobSoftTimeLimit, func() {
		log.Printf("job %s (%s) exceeded soft time limit of %s", jobID, jobType, settings.JobSoftTimeLimit)
		cancel()
	})
	defer soft.Stop()

	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("job panicked: %v", r)}
			}
		}()
		result, err := h(ctx, args, progress)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case o := <-ch:
		return o.result, o.err
	case <-time.After(settings.JobTimeLimit):
		return nil, fmt.Errorf("job %s (%s) exceeded hard time limit of %s", jobID, jobType, settings.JobTimeLimit)
	}
}

func runHandler(ctx context.Context, registry Registry, j job, progress ProgressFunc) (map[string]any, error) {
	h, ok := registry[j.Type]
	if !ok {
		return nil, fmt.Errorf("unknown job type %q", j.Type)
	}
	return execute(ctx, j.ID, j.Type, h, j.Args, progress)
}
