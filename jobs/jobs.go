// Package jobs defines the Jobs adapter contract (spec §4.8): enqueueing
// background work, registering handlers, and scheduling delayed/cron
// tasks. The core ships only the contract and a no-op default; a
// concrete driver is an external collaborator (spec §1 Non-goals).
package jobs

import "time"

// ScheduleOptions configures a scheduled job (spec §4.8).
type ScheduleOptions struct {
	DelayMs  int64
	Cron     string
	Timezone string
	Attempts int
	Backoff  time.Duration
}

// Handler processes one job invocation's input payload.
type Handler func(input any) error

// Jobs is consumed by user procedures/handlers through the per-request
// context scope block.
type Jobs interface {
	// Enqueue schedules task for immediate background execution on
	// queueName, returning an opaque job id.
	Enqueue(queueName, task string, input any, options *ScheduleOptions) (jobID string, err error)

	// OnJob registers handler to run for task on queueName.
	OnJob(queueName, task string, handler Handler)

	// Schedule enqueues task to run later, per options.DelayMs or
	// options.Cron.
	Schedule(queueName, task string, input any, options ScheduleOptions) (jobID string, err error)
}
