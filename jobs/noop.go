package jobs

import "github.com/igniter-hq/igniter-go/apperror"

type noopJobs struct{}

var _ Jobs = (*noopJobs)(nil)

// NewNoop returns a Jobs implementation that reports JOBS_NOT_CONFIGURED
// on Enqueue/Schedule (spec §4.8's stated default-absent behavior).
// OnJob is a harmless no-op registration since nothing ever dispatches to it.
func NewNoop() Jobs { return &noopJobs{} }

func (j *noopJobs) Enqueue(queueName, task string, input any, options *ScheduleOptions) (string, error) {
	return "", apperror.JobsNotConfigured()
}

func (j *noopJobs) OnJob(queueName, task string, handler Handler) {}

func (j *noopJobs) Schedule(queueName, task string, input any, options ScheduleOptions) (string, error) {
	return "", apperror.JobsNotConfigured()
}
