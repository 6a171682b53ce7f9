package domain

import "encoding/json"

// Project is the root of the planning hierarchy. It owns at most one Plan.
type Project struct {
	id          string
	Name        string
	Description *string
	planID      *string
	createdAt   string
}

// ProjectCandidate is an unvalidated project record.
type ProjectCandidate struct {
	ID          string
	Name        string
	Description *string
	PlanID      *string
	CreatedAt   string
}

// NewProject validates c and returns the project it describes.
func NewProject(c ProjectCandidate) (Project, error) {
	ck := newChecker(KindProject)
	ck.id("id", c.ID)
	ck.text("name", c.Name)
	ck.optionalText("description", c.Description)
	ck.optionalID("planId", c.PlanID)
	if err := ck.err(); err != nil {
		return Project{}, err
	}
	return Project{
		id:          c.ID,
		Name:        c.Name,
		Description: cloneString(c.Description),
		planID:      cloneString(c.PlanID),
		createdAt:   c.CreatedAt,
	}, nil
}

func (p Project) ID() string        { return p.id }
func (p Project) PlanID() *string   { return cloneString(p.planID) }
func (p Project) CreatedAt() string { return p.createdAt }

// Candidate returns p as a candidate, the starting point for an update.
func (p Project) Candidate() ProjectCandidate {
	return ProjectCandidate{
		ID:          p.id,
		Name:        p.Name,
		Description: cloneString(p.Description),
		PlanID:      cloneString(p.planID),
		CreatedAt:   p.createdAt,
	}
}

func (p Project) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
		PlanID      *string `json:"planId,omitempty"`
		CreatedAt   string  `json:"createdAt,omitempty"`
	}{p.id, p.Name, p.Description, p.planID, p.createdAt})
}

// Plan belongs to exactly one project and groups its phases.
type Plan struct {
	id          string
	projectID   string
	Description string
	phaseIDs    []string
	createdAt   string
}

// PlanCandidate is an unvalidated plan record.
type PlanCandidate struct {
	ID          string
	ProjectID   string
	Description string
	PhaseIDs    []string
	CreatedAt   string
}

// NewPlan validates c and returns the plan it describes.
func NewPlan(c PlanCandidate) (Plan, error) {
	ck := newChecker(KindPlan)
	ck.id("id", c.ID)
	ck.id("projectId", c.ProjectID)
	ck.text("description", c.Description)
	ck.ids("phaseIds", c.PhaseIDs)
	if err := ck.err(); err != nil {
		return Plan{}, err
	}
	return Plan{
		id:          c.ID,
		projectID:   c.ProjectID,
		Description: c.Description,
		phaseIDs:    cloneIDs(c.PhaseIDs),
		createdAt:   c.CreatedAt,
	}, nil
}

func (p Plan) ID() string         { return p.id }
func (p Plan) ProjectID() string  { return p.projectID }
func (p Plan) PhaseIDs() []string { return cloneIDs(p.phaseIDs) }
func (p Plan) CreatedAt() string  { return p.createdAt }

func (p Plan) Candidate() PlanCandidate {
	return PlanCandidate{
		ID:          p.id,
		ProjectID:   p.projectID,
		Description: p.Description,
		PhaseIDs:    cloneIDs(p.phaseIDs),
		CreatedAt:   p.createdAt,
	}
}

func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string   `json:"id"`
		ProjectID   string   `json:"projectId"`
		Description string   `json:"description"`
		PhaseIDs    []string `json:"phaseIds"`
		CreatedAt   string   `json:"createdAt,omitempty"`
	}{p.id, p.projectID, p.Description, cloneIDs(p.phaseIDs), p.createdAt})
}

// Phase is one stage of a plan. It owns a job, a team and the actions that
// lead out of it.
type Phase struct {
	id                string
	planID            string
	Name              string
	jobID             *string
	teamID            *string
	actionIDs         []string
	incomingActionIDs []string
	createdAt         string
}

// PhaseCandidate is an unvalidated phase record.
type PhaseCandidate struct {
	ID                string
	PlanID            string
	Name              string
	JobID             *string
	TeamID            *string
	ActionIDs         []string
	IncomingActionIDs []string
	CreatedAt         string
}

// NewPhase validates c and returns the phase it describes.
func NewPhase(c PhaseCandidate) (Phase, error) {
	ck := newChecker(KindPhase)
	ck.id("id", c.ID)
	ck.id("planId", c.PlanID)
	ck.text("name", c.Name)
	ck.optionalID("jobId", c.JobID)
	ck.optionalID("teamId", c.TeamID)
	ck.ids("actionIds", c.ActionIDs)
	ck.ids("incomingActionIds", c.IncomingActionIDs)
	if err := ck.err(); err != nil {
		return Phase{}, err
	}
	return Phase{
		id:                c.ID,
		planID:            c.PlanID,
		Name:              c.Name,
		jobID:             cloneString(c.JobID),
		teamID:            cloneString(c.TeamID),
		actionIDs:         cloneIDs(c.ActionIDs),
		incomingActionIDs: cloneIDs(c.IncomingActionIDs),
		createdAt:         c.CreatedAt,
	}, nil
}

func (p Phase) ID() string                  { return p.id }
func (p Phase) PlanID() string              { return p.planID }
func (p Phase) JobID() *string              { return cloneString(p.jobID) }
func (p Phase) TeamID() *string             { return cloneString(p.teamID) }
func (p Phase) ActionIDs() []string         { return cloneIDs(p.actionIDs) }
func (p Phase) IncomingActionIDs() []string { return cloneIDs(p.incomingActionIDs) }
func (p Phase) CreatedAt() string           { return p.createdAt }

func (p Phase) Candidate() PhaseCandidate {
	return PhaseCandidate{
		ID:                p.id,
		PlanID:            p.planID,
		Name:              p.Name,
		JobID:             cloneString(p.jobID),
		TeamID:            cloneString(p.teamID),
		ActionIDs:         cloneIDs(p.actionIDs),
		IncomingActionIDs: cloneIDs(p.incomingActionIDs),
		CreatedAt:         p.createdAt,
	}
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID                string   `json:"id"`
		PlanID            string   `json:"planId"`
		Name              string   `json:"name"`
		JobID             *string  `json:"jobId,omitempty"`
		TeamID            *string  `json:"teamId,omitempty"`
		ActionIDs         []string `json:"actionIds"`
		IncomingActionIDs []string `json:"incomingActionIds"`
		CreatedAt         string   `json:"createdAt,omitempty"`
	}{p.id, p.planID, p.Name, p.jobID, p.teamID, cloneIDs(p.actionIDs), cloneIDs(p.incomingActionIDs), p.createdAt})
}
