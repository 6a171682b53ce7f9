package repo

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/relations"
)

type JobCreate struct {
	ID          string           `json:"id,omitempty"`
	PhaseID     string           `json:"phaseId,omitempty"`
	Name        string           `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      domain.JobStatus `json:"status,omitempty"`
}

type JobUpdate struct {
	PhaseID     patch.Field[string]           `json:"phaseId,omitzero"`
	Name        patch.Field[string]           `json:"name,omitzero"`
	Description patch.Field[string]           `json:"description,omitzero"`
	Status      patch.Field[domain.JobStatus] `json:"status,omitzero"`
}

var jobTable = table[domain.JobCandidate, domain.Job]{
	kind:    domain.KindJob,
	columns: "id,phase_id,name,description,status,created_at",
	scan: func(r rowScanner) (domain.JobCandidate, error) {
		var c domain.JobCandidate
		var desc sql.NullString
		err := r.Scan(&c.ID, &c.PhaseID, &c.Name, &desc, &c.Status, &c.CreatedAt)
		c.Description = ptr(desc)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.JobCandidate) error {
		var err error
		c.TaskIDs, err = childIDs(ctx, q, relations.JobTasks, c.ID)
		return err
	},
	build: domain.NewJob,
}

type JobGateway struct {
	s *Store
}

func NewJobGateway(s *Store) *JobGateway { return &JobGateway{s: s} }

// Create adds the job of a phase. A phase holds at most one job.
func (g *JobGateway) Create(ctx context.Context, in JobCreate) (domain.Job, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindJob, opCreate, id, func(tx *sql.Tx) (domain.Job, error) {
		c := domain.JobCandidate{ID: id, PhaseID: in.PhaseID, Name: in.Name, Description: in.Description, Status: in.Status}
		if _, err := domain.NewJob(c); err != nil {
			return domain.Job{}, err
		}
		p := patch.Patch{
			{Column: "id", Value: id},
			{Column: "phase_id", Value: in.PhaseID},
			{Column: "name", Value: in.Name},
		}
		if in.Description != nil {
			p = append(p, patch.Assignment{Column: "description", Value: *in.Description})
		}
		if in.Status != "" {
			p = append(p, patch.Assignment{Column: "status", Value: string(in.Status)})
		}
		return jobTable.insert(ctx, g.s, tx, p)
	})
}

func (g *JobGateway) Get(ctx context.Context, id string) (domain.Job, error) {
	return within(ctx, g.s, domain.KindJob, opGet, id, func(tx *sql.Tx) (domain.Job, error) {
		return jobTable.get(ctx, tx, id)
	})
}

// GetByPhase returns the job of phaseID.
func (g *JobGateway) GetByPhase(ctx context.Context, phaseID string) (domain.Job, error) {
	return within(ctx, g.s, domain.KindJob, opGet, phaseID, func(tx *sql.Tx) (domain.Job, error) {
		if err := requireScope(ctx, tx, domain.KindPhase, phaseID); err != nil {
			return domain.Job{}, err
		}
		jobs, err := jobTable.list(ctx, tx, "phase_id=?", phaseID)
		if err != nil {
			return domain.Job{}, err
		}
		if len(jobs) == 0 {
			return domain.Job{}, &NotFoundError{Kind: domain.KindJob, ID: phaseID, Ref: relations.PhaseJob.Ref()}
		}
		return jobs[0], nil
	})
}

func (g *JobGateway) List(ctx context.Context) ([]domain.Job, error) {
	return within(ctx, g.s, domain.KindJob, opList, "", func(tx *sql.Tx) ([]domain.Job, error) {
		return jobTable.list(ctx, tx, "")
	})
}

func (g *JobGateway) Update(ctx context.Context, id string, in JobUpdate) (domain.Job, error) {
	return within(ctx, g.s, domain.KindJob, opUpdate, id, func(tx *sql.Tx) (domain.Job, error) {
		if err := requireStatus(domain.KindJob, in.Status, domain.JobStatuses()); err != nil {
			return domain.Job{}, err
		}
		return jobTable.update(ctx, g.s, tx, id, func(c *domain.JobCandidate, r *patch.Reducer) {
			patch.Reduce(r, "phase_id", in.PhaseID, &c.PhaseID)
			patch.Reduce(r, "name", in.Name, &c.Name)
			patch.ReduceOptional(r, "description", in.Description, &c.Description)
			patch.Reduce(r, "status", in.Status, &c.Status)
		})
	})
}

// Delete removes the job and its tasks.
func (g *JobGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindJob, id)
}

type TaskCreate struct {
	ID          string            `json:"id,omitempty"`
	JobID       string            `json:"jobId,omitempty"`
	AgentID     *string           `json:"agentId,omitempty"`
	ValidatorID *string           `json:"validatorId,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      domain.TaskStatus `json:"status,omitempty"`
}

type TaskUpdate struct {
	JobID       patch.Field[string]            `json:"jobId,omitzero"`
	AgentID     patch.Field[string]            `json:"agentId,omitzero"`
	ValidatorID patch.Field[string]            `json:"validatorId,omitzero"`
	Name        patch.Field[string]            `json:"name,omitzero"`
	Description patch.Field[string]            `json:"description,omitzero"`
	Status      patch.Field[domain.TaskStatus] `json:"status,omitzero"`
}

// TaskCount is the number of tasks of one job in one status.
type TaskCount struct {
	JobID  string            `json:"jobId"`
	Status domain.TaskStatus `json:"status"`
	Count  int               `json:"count"`
}

// TaskCountFilter narrows CountByJob. Zero fields match everything.
type TaskCountFilter struct {
	JobID  string
	Status domain.TaskStatus
}

var taskTable = table[domain.TaskCandidate, domain.Task]{
	kind:    domain.KindTask,
	columns: "id,job_id,agent_id,validator_id,name,description,status,created_at",
	scan: func(r rowScanner) (domain.TaskCandidate, error) {
		var c domain.TaskCandidate
		var agent, validator, desc sql.NullString
		err := r.Scan(&c.ID, &c.JobID, &agent, &validator, &c.Name, &desc, &c.Status, &c.CreatedAt)
		c.AgentID = ptr(agent)
		c.ValidatorID = ptr(validator)
		c.Description = ptr(desc)
		return c, err
	},
	build: domain.NewTask,
}

type TaskGateway struct {
	s *Store
}

func NewTaskGateway(s *Store) *TaskGateway { return &TaskGateway{s: s} }

// Create adds a task to an existing job. Agent and validator are optional but
// must exist when given.
func (g *TaskGateway) Create(ctx context.Context, in TaskCreate) (domain.Task, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindTask, opCreate, id, func(tx *sql.Tx) (domain.Task, error) {
		c := domain.TaskCandidate{
			ID:          id,
			JobID:       in.JobID,
			AgentID:     in.AgentID,
			ValidatorID: in.ValidatorID,
			Name:        in.Name,
			Description: in.Description,
			Status:      in.Status,
		}
		if _, err := domain.NewTask(c); err != nil {
			return domain.Task{}, err
		}
		p := patch.Patch{
			{Column: "id", Value: id},
			{Column: "job_id", Value: in.JobID},
			{Column: "name", Value: in.Name},
		}
		if in.AgentID != nil {
			p = append(p, patch.Assignment{Column: "agent_id", Value: *in.AgentID})
		}
		if in.ValidatorID != nil {
			p = append(p, patch.Assignment{Column: "validator_id", Value: *in.ValidatorID})
		}
		if in.Description != nil {
			p = append(p, patch.Assignment{Column: "description", Value: *in.Description})
		}
		if in.Status != "" {
			p = append(p, patch.Assignment{Column: "status", Value: string(in.Status)})
		}
		return taskTable.insert(ctx, g.s, tx, p)
	})
}

func (g *TaskGateway) Get(ctx context.Context, id string) (domain.Task, error) {
	return within(ctx, g.s, domain.KindTask, opGet, id, func(tx *sql.Tx) (domain.Task, error) {
		return taskTable.get(ctx, tx, id)
	})
}

func (g *TaskGateway) List(ctx context.Context) ([]domain.Task, error) {
	return within(ctx, g.s, domain.KindTask, opList, "", func(tx *sql.Tx) ([]domain.Task, error) {
		return taskTable.list(ctx, tx, "")
	})
}

// ListByJob returns the tasks of jobID in creation order.
func (g *TaskGateway) ListByJob(ctx context.Context, jobID string) ([]domain.Task, error) {
	return within(ctx, g.s, domain.KindTask, opList, jobID, func(tx *sql.Tx) ([]domain.Task, error) {
		if err := requireScope(ctx, tx, domain.KindJob, jobID); err != nil {
			return nil, err
		}
		return taskTable.list(ctx, tx, "job_id=?", jobID)
	})
}

// ListByAgent returns the tasks assigned to agentID.
func (g *TaskGateway) ListByAgent(ctx context.Context, agentID string) ([]domain.Task, error) {
	return within(ctx, g.s, domain.KindTask, opList, agentID, func(tx *sql.Tx) ([]domain.Task, error) {
		if err := requireScope(ctx, tx, domain.KindAgent, agentID); err != nil {
			return nil, err
		}
		return taskTable.list(ctx, tx, "agent_id=?", agentID)
	})
}

// CountByJob counts tasks grouped by job and status, ordered by job then
// status. Jobs without tasks do not appear.
func (g *TaskGateway) CountByJob(ctx context.Context, f TaskCountFilter) ([]TaskCount, error) {
	return within(ctx, g.s, domain.KindTask, opCount, f.JobID, func(tx *sql.Tx) ([]TaskCount, error) {
		if f.Status != "" && !slices.Contains(domain.TaskStatuses(), string(f.Status)) {
			return nil, statusError(domain.KindTask, domain.TaskStatuses())
		}
		var (
			where []string
			args  []any
		)
		if f.JobID != "" {
			if err := requireScope(ctx, tx, domain.KindJob, f.JobID); err != nil {
				return nil, err
			}
			where = append(where, "job_id=?")
			args = append(args, f.JobID)
		}
		if f.Status != "" {
			where = append(where, "status=?")
			args = append(args, string(f.Status))
		}
		query := `SELECT job_id,status,COUNT(*) FROM tasks`
		if len(where) > 0 {
			query += " WHERE " + strings.Join(where, " AND ")
		}
		query += " GROUP BY job_id,status ORDER BY job_id,status"
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		counts := []TaskCount{}
		for rows.Next() {
			var c TaskCount
			if err := rows.Scan(&c.JobID, &c.Status, &c.Count); err != nil {
				return nil, err
			}
			counts = append(counts, c)
		}
		return counts, rows.Err()
	})
}

func (g *TaskGateway) Update(ctx context.Context, id string, in TaskUpdate) (domain.Task, error) {
	return within(ctx, g.s, domain.KindTask, opUpdate, id, func(tx *sql.Tx) (domain.Task, error) {
		if err := requireStatus(domain.KindTask, in.Status, domain.TaskStatuses()); err != nil {
			return domain.Task{}, err
		}
		return taskTable.update(ctx, g.s, tx, id, func(c *domain.TaskCandidate, r *patch.Reducer) {
			patch.Reduce(r, "job_id", in.JobID, &c.JobID)
			patch.ReduceOptional(r, "agent_id", in.AgentID, &c.AgentID)
			patch.ReduceOptional(r, "validator_id", in.ValidatorID, &c.ValidatorID)
			patch.Reduce(r, "name", in.Name, &c.Name)
			patch.ReduceOptional(r, "description", in.Description, &c.Description)
			patch.Reduce(r, "status", in.Status, &c.Status)
		})
	})
}

func (g *TaskGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindTask, id)
}

// requireStatus rejects an update that clears the status or sets it empty.
// Only creation defaults an empty status to PENDING; other unknown values
// are left to the entity constructor.
func requireStatus[T ~string](kind domain.Kind, in patch.Field[T], allowed []string) error {
	if !in.IsSet() {
		return nil
	}
	if v, _ := in.Get(); in.IsNull() || v == "" {
		return statusError(kind, allowed)
	}
	return nil
}

func statusError(kind domain.Kind, allowed []string) error {
	return &domain.ValidationError{Kind: kind, Fields: []domain.FieldError{
		{Field: "status", Reason: "must be one of " + strings.Join(allowed, ", ")},
	}}
}
