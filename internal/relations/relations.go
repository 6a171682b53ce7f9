// Package relations declares every parent→child link between entity kinds:
// which column carries the link, how many children a parent may have, and
// what deleting the parent does to them. Gateways read this table instead of
// hard-coding per-table behaviour.
package relations

import (
	"fmt"

	"planforge/internal/domain"
)

// Cardinality is the number of children a parent may own.
type Cardinality int

const (
	Many Cardinality = iota
	One
)

func (c Cardinality) String() string {
	if c == One {
		return "1:1"
	}
	return "1:N"
}

// DeletePolicy is what happens to children when their parent is deleted.
type DeletePolicy int

const (
	// Cascade deletes the children (and, recursively, theirs).
	Cascade DeletePolicy = iota
	// Restrict refuses to delete a parent that still has children.
	Restrict
	// Nullify clears the optional reference on the children.
	Nullify
)

func (p DeletePolicy) String() string {
	switch p {
	case Cascade:
		return "cascade"
	case Restrict:
		return "restrict"
	case Nullify:
		return "nullify"
	default:
		return fmt.Sprintf("DeletePolicy(%d)", int(p))
	}
}

// Relation is one parent→child link.
type Relation struct {
	Parent      domain.Kind
	Child       domain.Kind
	Field       string // child field naming the parent, e.g. "jobId"
	Column      string // child column holding the parent id
	Collection  string // derived field on the parent, e.g. "taskIds"
	Optional    bool
	Cardinality Cardinality
	OnDelete    DeletePolicy
}

func (r Relation) String() string {
	return fmt.Sprintf("%s.%s -> %s (%s, %s)", r.Child, r.Field, r.Parent, r.Cardinality, r.OnDelete)
}

// Ref names the referencing field the way error messages do: "task.jobId".
func (r Relation) Ref() string {
	return string(r.Child) + "." + r.Field
}

var (
	ProjectPlan          = Relation{Parent: domain.KindProject, Child: domain.KindPlan, Field: "projectId", Column: "project_id", Collection: "planId", Cardinality: One, OnDelete: Cascade}
	PlanPhases           = Relation{Parent: domain.KindPlan, Child: domain.KindPhase, Field: "planId", Column: "plan_id", Collection: "phaseIds", Cardinality: Many, OnDelete: Cascade}
	PhaseJob             = Relation{Parent: domain.KindPhase, Child: domain.KindJob, Field: "phaseId", Column: "phase_id", Collection: "jobId", Cardinality: One, OnDelete: Cascade}
	PhaseTeam            = Relation{Parent: domain.KindPhase, Child: domain.KindTeam, Field: "phaseId", Column: "phase_id", Collection: "teamId", Cardinality: One, OnDelete: Cascade}
	PhaseActions         = Relation{Parent: domain.KindPhase, Child: domain.KindAction, Field: "phaseId", Column: "phase_id", Collection: "actionIds", Cardinality: Many, OnDelete: Cascade}
	PhaseIncomingActions = Relation{Parent: domain.KindPhase, Child: domain.KindAction, Field: "targetPhaseId", Column: "target_phase_id", Collection: "incomingActionIds", Cardinality: Many, OnDelete: Cascade}
	JobTasks             = Relation{Parent: domain.KindJob, Child: domain.KindTask, Field: "jobId", Column: "job_id", Collection: "taskIds", Cardinality: Many, OnDelete: Cascade}
	TeamAgents           = Relation{Parent: domain.KindTeam, Child: domain.KindAgent, Field: "teamId", Column: "team_id", Collection: "agentIds", Cardinality: Many, OnDelete: Cascade}
	RoleAgents           = Relation{Parent: domain.KindRole, Child: domain.KindAgent, Field: "roleId", Column: "role_id", Collection: "agentIds", Cardinality: Many, OnDelete: Restrict}
	AgentTasks           = Relation{Parent: domain.KindAgent, Child: domain.KindTask, Field: "agentId", Column: "agent_id", Collection: "taskIds", Optional: true, Cardinality: Many, OnDelete: Nullify}
	ValidatorTasks       = Relation{Parent: domain.KindValidator, Child: domain.KindTask, Field: "validatorId", Column: "validator_id", Collection: "taskIds", Optional: true, Cardinality: Many, OnDelete: Nullify}
	ValidatorActions     = Relation{Parent: domain.KindValidator, Child: domain.KindAction, Field: "validatorId", Column: "validator_id", Collection: "actionIds", Cardinality: Many, OnDelete: Restrict}
)

var all = []Relation{
	ProjectPlan,
	PlanPhases,
	PhaseJob,
	PhaseTeam,
	PhaseActions,
	PhaseIncomingActions,
	JobTasks,
	TeamAgents,
	RoleAgents,
	AgentTasks,
	ValidatorTasks,
	ValidatorActions,
}

var tables = map[domain.Kind]string{
	domain.KindProject:   "projects",
	domain.KindPlan:      "plans",
	domain.KindPhase:     "phases",
	domain.KindJob:       "jobs",
	domain.KindTeam:      "teams",
	domain.KindRole:      "roles",
	domain.KindAgent:     "agents",
	domain.KindValidator: "validators",
	domain.KindTask:      "tasks",
	domain.KindAction:    "actions",
}

// All returns every declared relation.
func All() []Relation {
	return append([]Relation(nil), all...)
}

// Children returns the relations in which kind is the parent.
func Children(kind domain.Kind) []Relation {
	var out []Relation
	for _, r := range all {
		if r.Parent == kind {
			out = append(out, r)
		}
	}
	return out
}

// Parents returns the relations in which kind is the child.
func Parents(kind domain.Kind) []Relation {
	var out []Relation
	for _, r := range all {
		if r.Child == kind {
			out = append(out, r)
		}
	}
	return out
}

// Table returns the table storing kind.
func Table(kind domain.Kind) string {
	return tables[kind]
}

// Validate checks the model is internally consistent: every kind has a table,
// Nullify is only declared on optional links and derived collections are
// unique per parent.
func Validate() error {
	for _, k := range domain.Kinds() {
		if tables[k] == "" {
			return fmt.Errorf("kind %s has no table", k)
		}
	}
	seen := map[string]bool{}
	for _, r := range all {
		if r.OnDelete == Nullify && !r.Optional {
			return fmt.Errorf("relation %s: nullify requires an optional reference", r)
		}
		if r.Optional && r.OnDelete == Cascade {
			return fmt.Errorf("relation %s: optional references must not cascade", r)
		}
		key := string(r.Parent) + "." + r.Collection
		if seen[key] {
			return fmt.Errorf("relation %s: duplicate collection %s", r, key)
		}
		seen[key] = true
	}
	return nil
}
