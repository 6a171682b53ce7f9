package domain

import "encoding/json"

// Job is the unit of work attached to a phase. Its tasks are derived from the
// task rows that reference it.
type Job struct {
	id          string
	phaseID     string
	Name        string
	Description *string
	Status      JobStatus
	taskIDs     []string
	createdAt   string
}

// JobCandidate is an unvalidated job record. An empty Status means PENDING.
type JobCandidate struct {
	ID          string
	PhaseID     string
	Name        string
	Description *string
	Status      JobStatus
	TaskIDs     []string
	CreatedAt   string
}

// NewJob validates c and returns the job it describes.
func NewJob(c JobCandidate) (Job, error) {
	if c.Status == "" {
		c.Status = JobPending
	}
	ck := newChecker(KindJob)
	ck.id("id", c.ID)
	ck.id("phaseId", c.PhaseID)
	ck.text("name", c.Name)
	ck.optionalText("description", c.Description)
	ck.enum("status", string(c.Status), JobStatuses())
	ck.ids("taskIds", c.TaskIDs)
	if err := ck.err(); err != nil {
		return Job{}, err
	}
	return Job{
		id:          c.ID,
		phaseID:     c.PhaseID,
		Name:        c.Name,
		Description: cloneString(c.Description),
		Status:      c.Status,
		taskIDs:     cloneIDs(c.TaskIDs),
		createdAt:   c.CreatedAt,
	}, nil
}

func (j Job) ID() string        { return j.id }
func (j Job) PhaseID() string   { return j.phaseID }
func (j Job) TaskIDs() []string { return cloneIDs(j.taskIDs) }
func (j Job) CreatedAt() string { return j.createdAt }

func (j Job) Candidate() JobCandidate {
	return JobCandidate{
		ID:          j.id,
		PhaseID:     j.phaseID,
		Name:        j.Name,
		Description: cloneString(j.Description),
		Status:      j.Status,
		TaskIDs:     cloneIDs(j.taskIDs),
		CreatedAt:   j.createdAt,
	}
}

func (j Job) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string    `json:"id"`
		PhaseID     string    `json:"phaseId"`
		Name        string    `json:"name"`
		Description *string   `json:"description,omitempty"`
		Status      JobStatus `json:"status"`
		TaskIDs     []string  `json:"taskIds"`
		CreatedAt   string    `json:"createdAt,omitempty"`
	}{j.id, j.phaseID, j.Name, j.Description, j.Status, cloneIDs(j.taskIDs), j.createdAt})
}

// Task is a single step of a job, optionally assigned to an agent and checked
// by a validator.
type Task struct {
	id          string
	jobID       string
	agentID     *string
	validatorID *string
	Name        string
	Description *string
	Status      TaskStatus
	createdAt   string
}

// TaskCandidate is an unvalidated task record. An empty Status means PENDING.
type TaskCandidate struct {
	ID          string
	JobID       string
	AgentID     *string
	ValidatorID *string
	Name        string
	Description *string
	Status      TaskStatus
	CreatedAt   string
}

// NewTask validates c and returns the task it describes.
func NewTask(c TaskCandidate) (Task, error) {
	if c.Status == "" {
		c.Status = TaskPending
	}
	ck := newChecker(KindTask)
	ck.id("id", c.ID)
	ck.id("jobId", c.JobID)
	ck.optionalID("agentId", c.AgentID)
	ck.optionalID("validatorId", c.ValidatorID)
	ck.text("name", c.Name)
	ck.optionalText("description", c.Description)
	ck.enum("status", string(c.Status), TaskStatuses())
	if err := ck.err(); err != nil {
		return Task{}, err
	}
	return Task{
		id:          c.ID,
		jobID:       c.JobID,
		agentID:     cloneString(c.AgentID),
		validatorID: cloneString(c.ValidatorID),
		Name:        c.Name,
		Description: cloneString(c.Description),
		Status:      c.Status,
		createdAt:   c.CreatedAt,
	}, nil
}

func (t Task) ID() string           { return t.id }
func (t Task) JobID() string        { return t.jobID }
func (t Task) AgentID() *string     { return cloneString(t.agentID) }
func (t Task) ValidatorID() *string { return cloneString(t.validatorID) }
func (t Task) CreatedAt() string    { return t.createdAt }

func (t Task) Candidate() TaskCandidate {
	return TaskCandidate{
		ID:          t.id,
		JobID:       t.jobID,
		AgentID:     cloneString(t.agentID),
		ValidatorID: cloneString(t.validatorID),
		Name:        t.Name,
		Description: cloneString(t.Description),
		Status:      t.Status,
		CreatedAt:   t.createdAt,
	}
}

func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string     `json:"id"`
		JobID       string     `json:"jobId"`
		AgentID     *string    `json:"agentId,omitempty"`
		ValidatorID *string    `json:"validatorId,omitempty"`
		Name        string     `json:"name"`
		Description *string    `json:"description,omitempty"`
		Status      TaskStatus `json:"status"`
		CreatedAt   string     `json:"createdAt,omitempty"`
	}{t.id, t.jobID, t.agentID, t.validatorID, t.Name, t.Description, t.Status, t.createdAt})
}
