package domain

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// JobStatuses returns the allowed job states.
func JobStatuses() []string {
	return []string{string(JobPending), string(JobRunning), string(JobCompleted), string(JobFailed), string(JobCancelled)}
}

// TaskStatus is the lifecycle state of a Task. Tasks cannot be cancelled on
// their own; cancelling a job is expressed on the job.
type TaskStatus string

const (
	TaskPending   TaskStatus = "PENDING"
	TaskRunning   TaskStatus = "RUNNING"
	TaskCompleted TaskStatus = "COMPLETED"
	TaskFailed    TaskStatus = "FAILED"
)

// TaskStatuses returns the allowed task states.
func TaskStatuses() []string {
	return []string{string(TaskPending), string(TaskRunning), string(TaskCompleted), string(TaskFailed)}
}
