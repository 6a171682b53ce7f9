package domain

import "encoding/json"

// Validator is a completion-check template. Tasks and actions point at it to
// describe how their completion is verified against a resource.
type Validator struct {
	id        string
	Template  string
	Resource  string
	taskIDs   []string
	actionIDs []string
	createdAt string
}

// ValidatorCandidate is an unvalidated validator record.
type ValidatorCandidate struct {
	ID        string
	Template  string
	Resource  string
	TaskIDs   []string
	ActionIDs []string
	CreatedAt string
}

// NewValidator validates c and returns the validator it describes.
func NewValidator(c ValidatorCandidate) (Validator, error) {
	ck := newChecker(KindValidator)
	ck.id("id", c.ID)
	ck.text("template", c.Template)
	ck.text("resource", c.Resource)
	ck.ids("taskIds", c.TaskIDs)
	ck.ids("actionIds", c.ActionIDs)
	if err := ck.err(); err != nil {
		return Validator{}, err
	}
	return Validator{
		id:        c.ID,
		Template:  c.Template,
		Resource:  c.Resource,
		taskIDs:   cloneIDs(c.TaskIDs),
		actionIDs: cloneIDs(c.ActionIDs),
		createdAt: c.CreatedAt,
	}, nil
}

func (v Validator) ID() string          { return v.id }
func (v Validator) TaskIDs() []string   { return cloneIDs(v.taskIDs) }
func (v Validator) ActionIDs() []string { return cloneIDs(v.actionIDs) }
func (v Validator) CreatedAt() string   { return v.createdAt }

func (v Validator) Candidate() ValidatorCandidate {
	return ValidatorCandidate{
		ID:        v.id,
		Template:  v.Template,
		Resource:  v.Resource,
		TaskIDs:   cloneIDs(v.taskIDs),
		ActionIDs: cloneIDs(v.actionIDs),
		CreatedAt: v.createdAt,
	}
}

func (v Validator) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string   `json:"id"`
		Template  string   `json:"template"`
		Resource  string   `json:"resource"`
		TaskIDs   []string `json:"taskIds"`
		ActionIDs []string `json:"actionIds"`
		CreatedAt string   `json:"createdAt,omitempty"`
	}{v.id, v.Template, v.Resource, cloneIDs(v.taskIDs), cloneIDs(v.actionIDs), v.createdAt})
}

// Action is a transition from its source phase to a target phase, gated by a
// validator.
type Action struct {
	id            string
	phaseID       string
	targetPhaseID string
	validatorID   string
	Name          string
	createdAt     string
}

// ActionCandidate is an unvalidated action record.
type ActionCandidate struct {
	ID            string
	PhaseID       string
	TargetPhaseID string
	ValidatorID   string
	Name          string
	CreatedAt     string
}

// NewAction validates c and returns the action it describes.
func NewAction(c ActionCandidate) (Action, error) {
	ck := newChecker(KindAction)
	ck.id("id", c.ID)
	ck.id("phaseId", c.PhaseID)
	ck.id("targetPhaseId", c.TargetPhaseID)
	ck.id("validatorId", c.ValidatorID)
	ck.text("name", c.Name)
	if err := ck.err(); err != nil {
		return Action{}, err
	}
	return Action{
		id:            c.ID,
		phaseID:       c.PhaseID,
		targetPhaseID: c.TargetPhaseID,
		validatorID:   c.ValidatorID,
		Name:          c.Name,
		createdAt:     c.CreatedAt,
	}, nil
}

func (a Action) ID() string            { return a.id }
func (a Action) PhaseID() string       { return a.phaseID }
func (a Action) TargetPhaseID() string { return a.targetPhaseID }
func (a Action) ValidatorID() string   { return a.validatorID }
func (a Action) CreatedAt() string     { return a.createdAt }

func (a Action) Candidate() ActionCandidate {
	return ActionCandidate{
		ID:            a.id,
		PhaseID:       a.phaseID,
		TargetPhaseID: a.targetPhaseID,
		ValidatorID:   a.validatorID,
		Name:          a.Name,
		CreatedAt:     a.createdAt,
	}
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            string `json:"id"`
		PhaseID       string `json:"phaseId"`
		TargetPhaseID string `json:"targetPhaseId"`
		ValidatorID   string `json:"validatorId"`
		Name          string `json:"name"`
		CreatedAt     string `json:"createdAt,omitempty"`
	}{a.id, a.phaseID, a.targetPhaseID, a.validatorID, a.Name, a.createdAt})
}
