package repo

import (
	"context"
	"database/sql"

	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/relations"
)

type ProjectCreate struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectUpdate struct {
	Name        patch.Field[string] `json:"name,omitzero"`
	Description patch.Field[string] `json:"description,omitzero"`
}

var projectTable = table[domain.ProjectCandidate, domain.Project]{
	kind:    domain.KindProject,
	columns: "id,name,description,created_at",
	scan: func(r rowScanner) (domain.ProjectCandidate, error) {
		var c domain.ProjectCandidate
		var desc sql.NullString
		err := r.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt)
		c.Description = ptr(desc)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.ProjectCandidate) error {
		var err error
		c.PlanID, err = childID(ctx, q, relations.ProjectPlan, c.ID)
		return err
	},
	build: domain.NewProject,
}

type ProjectGateway struct {
	s *Store
}

func NewProjectGateway(s *Store) *ProjectGateway { return &ProjectGateway{s: s} }

func (g *ProjectGateway) Create(ctx context.Context, in ProjectCreate) (domain.Project, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindProject, opCreate, id, func(tx *sql.Tx) (domain.Project, error) {
		if _, err := domain.NewProject(domain.ProjectCandidate{ID: id, Name: in.Name, Description: in.Description}); err != nil {
			return domain.Project{}, err
		}
		p := patch.Patch{{Column: "id", Value: id}, {Column: "name", Value: in.Name}}
		if in.Description != nil {
			p = append(p, patch.Assignment{Column: "description", Value: *in.Description})
		}
		return projectTable.insert(ctx, g.s, tx, p)
	})
}

func (g *ProjectGateway) Get(ctx context.Context, id string) (domain.Project, error) {
	return within(ctx, g.s, domain.KindProject, opGet, id, func(tx *sql.Tx) (domain.Project, error) {
		return projectTable.get(ctx, tx, id)
	})
}

func (g *ProjectGateway) List(ctx context.Context) ([]domain.Project, error) {
	return within(ctx, g.s, domain.KindProject, opList, "", func(tx *sql.Tx) ([]domain.Project, error) {
		return projectTable.list(ctx, tx, "")
	})
}

func (g *ProjectGateway) Update(ctx context.Context, id string, in ProjectUpdate) (domain.Project, error) {
	return within(ctx, g.s, domain.KindProject, opUpdate, id, func(tx *sql.Tx) (domain.Project, error) {
		return projectTable.update(ctx, g.s, tx, id, func(c *domain.ProjectCandidate, r *patch.Reducer) {
			patch.Reduce(r, "name", in.Name, &c.Name)
			patch.ReduceOptional(r, "description", in.Description, &c.Description)
		})
	})
}

// Delete removes the project together with its plan and everything below it.
func (g *ProjectGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindProject, id)
}

type PlanCreate struct {
	ID          string `json:"id,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	Description string `json:"description,omitempty"`
}

type PlanUpdate struct {
	ProjectID   patch.Field[string] `json:"projectId,omitzero"`
	Description patch.Field[string] `json:"description,omitzero"`
}

var planTable = table[domain.PlanCandidate, domain.Plan]{
	kind:    domain.KindPlan,
	columns: "id,project_id,description,created_at",
	scan: func(r rowScanner) (domain.PlanCandidate, error) {
		var c domain.PlanCandidate
		err := r.Scan(&c.ID, &c.ProjectID, &c.Description, &c.CreatedAt)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.PlanCandidate) error {
		var err error
		c.PhaseIDs, err = childIDs(ctx, q, relations.PlanPhases, c.ID)
		return err
	},
	build: domain.NewPlan,
}

type PlanGateway struct {
	s *Store
}

func NewPlanGateway(s *Store) *PlanGateway { return &PlanGateway{s: s} }

// Create adds the plan of a project. A project holds at most one plan.
func (g *PlanGateway) Create(ctx context.Context, in PlanCreate) (domain.Plan, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindPlan, opCreate, id, func(tx *sql.Tx) (domain.Plan, error) {
		if _, err := domain.NewPlan(domain.PlanCandidate{ID: id, ProjectID: in.ProjectID, Description: in.Description}); err != nil {
			return domain.Plan{}, err
		}
		return planTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "project_id", Value: in.ProjectID},
			{Column: "description", Value: in.Description},
		})
	})
}

func (g *PlanGateway) Get(ctx context.Context, id string) (domain.Plan, error) {
	return within(ctx, g.s, domain.KindPlan, opGet, id, func(tx *sql.Tx) (domain.Plan, error) {
		return planTable.get(ctx, tx, id)
	})
}

// GetByProject returns the plan of projectID.
func (g *PlanGateway) GetByProject(ctx context.Context, projectID string) (domain.Plan, error) {
	return within(ctx, g.s, domain.KindPlan, opGet, projectID, func(tx *sql.Tx) (domain.Plan, error) {
		if err := requireScope(ctx, tx, domain.KindProject, projectID); err != nil {
			return domain.Plan{}, err
		}
		plans, err := planTable.list(ctx, tx, "project_id=?", projectID)
		if err != nil {
			return domain.Plan{}, err
		}
		if len(plans) == 0 {
			return domain.Plan{}, &NotFoundError{Kind: domain.KindPlan, ID: projectID, Ref: relations.ProjectPlan.Ref()}
		}
		return plans[0], nil
	})
}

func (g *PlanGateway) List(ctx context.Context) ([]domain.Plan, error) {
	return within(ctx, g.s, domain.KindPlan, opList, "", func(tx *sql.Tx) ([]domain.Plan, error) {
		return planTable.list(ctx, tx, "")
	})
}

func (g *PlanGateway) Update(ctx context.Context, id string, in PlanUpdate) (domain.Plan, error) {
	return within(ctx, g.s, domain.KindPlan, opUpdate, id, func(tx *sql.Tx) (domain.Plan, error) {
		return planTable.update(ctx, g.s, tx, id, func(c *domain.PlanCandidate, r *patch.Reducer) {
			patch.Reduce(r, "project_id", in.ProjectID, &c.ProjectID)
			patch.Reduce(r, "description", in.Description, &c.Description)
		})
	})
}

func (g *PlanGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindPlan, id)
}

type PhaseCreate struct {
	ID     string `json:"id,omitempty"`
	PlanID string `json:"planId,omitempty"`
	Name   string `json:"name,omitempty"`
}

type PhaseUpdate struct {
	PlanID patch.Field[string] `json:"planId,omitzero"`
	Name   patch.Field[string] `json:"name,omitzero"`
}

var phaseTable = table[domain.PhaseCandidate, domain.Phase]{
	kind:    domain.KindPhase,
	columns: "id,plan_id,name,created_at",
	scan: func(r rowScanner) (domain.PhaseCandidate, error) {
		var c domain.PhaseCandidate
		err := r.Scan(&c.ID, &c.PlanID, &c.Name, &c.CreatedAt)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.PhaseCandidate) error {
		var err error
		if c.JobID, err = childID(ctx, q, relations.PhaseJob, c.ID); err != nil {
			return err
		}
		if c.TeamID, err = childID(ctx, q, relations.PhaseTeam, c.ID); err != nil {
			return err
		}
		if c.ActionIDs, err = childIDs(ctx, q, relations.PhaseActions, c.ID); err != nil {
			return err
		}
		c.IncomingActionIDs, err = childIDs(ctx, q, relations.PhaseIncomingActions, c.ID)
		return err
	},
	build: domain.NewPhase,
}

type PhaseGateway struct {
	s *Store
}

func NewPhaseGateway(s *Store) *PhaseGateway { return &PhaseGateway{s: s} }

func (g *PhaseGateway) Create(ctx context.Context, in PhaseCreate) (domain.Phase, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindPhase, opCreate, id, func(tx *sql.Tx) (domain.Phase, error) {
		if _, err := domain.NewPhase(domain.PhaseCandidate{ID: id, PlanID: in.PlanID, Name: in.Name}); err != nil {
			return domain.Phase{}, err
		}
		return phaseTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "plan_id", Value: in.PlanID},
			{Column: "name", Value: in.Name},
		})
	})
}

func (g *PhaseGateway) Get(ctx context.Context, id string) (domain.Phase, error) {
	return within(ctx, g.s, domain.KindPhase, opGet, id, func(tx *sql.Tx) (domain.Phase, error) {
		return phaseTable.get(ctx, tx, id)
	})
}

func (g *PhaseGateway) List(ctx context.Context) ([]domain.Phase, error) {
	return within(ctx, g.s, domain.KindPhase, opList, "", func(tx *sql.Tx) ([]domain.Phase, error) {
		return phaseTable.list(ctx, tx, "")
	})
}

// ListByPlan returns the phases of planID in creation order.
func (g *PhaseGateway) ListByPlan(ctx context.Context, planID string) ([]domain.Phase, error) {
	return within(ctx, g.s, domain.KindPhase, opList, planID, func(tx *sql.Tx) ([]domain.Phase, error) {
		if err := requireScope(ctx, tx, domain.KindPlan, planID); err != nil {
			return nil, err
		}
		return phaseTable.list(ctx, tx, "plan_id=?", planID)
	})
}

func (g *PhaseGateway) Update(ctx context.Context, id string, in PhaseUpdate) (domain.Phase, error) {
	return within(ctx, g.s, domain.KindPhase, opUpdate, id, func(tx *sql.Tx) (domain.Phase, error) {
		return phaseTable.update(ctx, g.s, tx, id, func(c *domain.PhaseCandidate, r *patch.Reducer) {
			patch.Reduce(r, "plan_id", in.PlanID, &c.PlanID)
			patch.Reduce(r, "name", in.Name, &c.Name)
		})
	})
}

// Delete removes the phase with its job, team and every action leaving or
// entering it.
func (g *PhaseGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindPhase, id)
}
