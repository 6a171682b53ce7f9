package repo

import (
	"context"
	"database/sql"

	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/relations"
)

type ValidatorCreate struct {
	ID       string `json:"id,omitempty"`
	Template string `json:"template,omitempty"`
	Resource string `json:"resource,omitempty"`
}

type ValidatorUpdate struct {
	Template patch.Field[string] `json:"template,omitzero"`
	Resource patch.Field[string] `json:"resource,omitzero"`
}

var validatorTable = table[domain.ValidatorCandidate, domain.Validator]{
	kind:    domain.KindValidator,
	columns: "id,template,resource,created_at",
	scan: func(r rowScanner) (domain.ValidatorCandidate, error) {
		var c domain.ValidatorCandidate
		err := r.Scan(&c.ID, &c.Template, &c.Resource, &c.CreatedAt)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.ValidatorCandidate) error {
		var err error
		if c.TaskIDs, err = childIDs(ctx, q, relations.ValidatorTasks, c.ID); err != nil {
			return err
		}
		c.ActionIDs, err = childIDs(ctx, q, relations.ValidatorActions, c.ID)
		return err
	},
	build: domain.NewValidator,
}

type ValidatorGateway struct {
	s *Store
}

func NewValidatorGateway(s *Store) *ValidatorGateway { return &ValidatorGateway{s: s} }

func (g *ValidatorGateway) Create(ctx context.Context, in ValidatorCreate) (domain.Validator, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindValidator, opCreate, id, func(tx *sql.Tx) (domain.Validator, error) {
		if _, err := domain.NewValidator(domain.ValidatorCandidate{ID: id, Template: in.Template, Resource: in.Resource}); err != nil {
			return domain.Validator{}, err
		}
		return validatorTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "template", Value: in.Template},
			{Column: "resource", Value: in.Resource},
		})
	})
}

func (g *ValidatorGateway) Get(ctx context.Context, id string) (domain.Validator, error) {
	return within(ctx, g.s, domain.KindValidator, opGet, id, func(tx *sql.Tx) (domain.Validator, error) {
		return validatorTable.get(ctx, tx, id)
	})
}

func (g *ValidatorGateway) List(ctx context.Context) ([]domain.Validator, error) {
	return within(ctx, g.s, domain.KindValidator, opList, "", func(tx *sql.Tx) ([]domain.Validator, error) {
		return validatorTable.list(ctx, tx, "")
	})
}

func (g *ValidatorGateway) Update(ctx context.Context, id string, in ValidatorUpdate) (domain.Validator, error) {
	return within(ctx, g.s, domain.KindValidator, opUpdate, id, func(tx *sql.Tx) (domain.Validator, error) {
		return validatorTable.update(ctx, g.s, tx, id, func(c *domain.ValidatorCandidate, r *patch.Reducer) {
			patch.Reduce(r, "template", in.Template, &c.Template)
			patch.Reduce(r, "resource", in.Resource, &c.Resource)
		})
	})
}

// Delete removes the validator. Tasks it checked lose their validator; it
// cannot be deleted while an action still depends on it.
func (g *ValidatorGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindValidator, id)
}

type ActionCreate struct {
	ID            string `json:"id,omitempty"`
	PhaseID       string `json:"phaseId,omitempty"`
	TargetPhaseID string `json:"targetPhaseId,omitempty"`
	ValidatorID   string `json:"validatorId,omitempty"`
	Name          string `json:"name,omitempty"`
}

type ActionUpdate struct {
	PhaseID       patch.Field[string] `json:"phaseId,omitzero"`
	TargetPhaseID patch.Field[string] `json:"targetPhaseId,omitzero"`
	ValidatorID   patch.Field[string] `json:"validatorId,omitzero"`
	Name          patch.Field[string] `json:"name,omitzero"`
}

var actionTable = table[domain.ActionCandidate, domain.Action]{
	kind:    domain.KindAction,
	columns: "id,phase_id,target_phase_id,validator_id,name,created_at",
	scan: func(r rowScanner) (domain.ActionCandidate, error) {
		var c domain.ActionCandidate
		err := r.Scan(&c.ID, &c.PhaseID, &c.TargetPhaseID, &c.ValidatorID, &c.Name, &c.CreatedAt)
		return c, err
	},
	build: domain.NewAction,
}

type ActionGateway struct {
	s *Store
}

func NewActionGateway(s *Store) *ActionGateway { return &ActionGateway{s: s} }

// Create adds a transition from one phase to another, gated by a validator.
func (g *ActionGateway) Create(ctx context.Context, in ActionCreate) (domain.Action, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindAction, opCreate, id, func(tx *sql.Tx) (domain.Action, error) {
		c := domain.ActionCandidate{ID: id, PhaseID: in.PhaseID, TargetPhaseID: in.TargetPhaseID, ValidatorID: in.ValidatorID, Name: in.Name}
		if _, err := domain.NewAction(c); err != nil {
			return domain.Action{}, err
		}
		return actionTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "phase_id", Value: in.PhaseID},
			{Column: "target_phase_id", Value: in.TargetPhaseID},
			{Column: "validator_id", Value: in.ValidatorID},
			{Column: "name", Value: in.Name},
		})
	})
}

func (g *ActionGateway) Get(ctx context.Context, id string) (domain.Action, error) {
	return within(ctx, g.s, domain.KindAction, opGet, id, func(tx *sql.Tx) (domain.Action, error) {
		return actionTable.get(ctx, tx, id)
	})
}

func (g *ActionGateway) List(ctx context.Context) ([]domain.Action, error) {
	return within(ctx, g.s, domain.KindAction, opList, "", func(tx *sql.Tx) ([]domain.Action, error) {
		return actionTable.list(ctx, tx, "")
	})
}

// ListByPhase returns the actions available from phaseID.
func (g *ActionGateway) ListByPhase(ctx context.Context, phaseID string) ([]domain.Action, error) {
	return within(ctx, g.s, domain.KindAction, opList, phaseID, func(tx *sql.Tx) ([]domain.Action, error) {
		if err := requireScope(ctx, tx, domain.KindPhase, phaseID); err != nil {
			return nil, err
		}
		return actionTable.list(ctx, tx, "phase_id=?", phaseID)
	})
}

// ListByTarget returns the actions leading into phaseID.
func (g *ActionGateway) ListByTarget(ctx context.Context, phaseID string) ([]domain.Action, error) {
	return within(ctx, g.s, domain.KindAction, opList, phaseID, func(tx *sql.Tx) ([]domain.Action, error) {
		if err := requireScope(ctx, tx, domain.KindPhase, phaseID); err != nil {
			return nil, err
		}
		return actionTable.list(ctx, tx, "target_phase_id=?", phaseID)
	})
}

func (g *ActionGateway) Update(ctx context.Context, id string, in ActionUpdate) (domain.Action, error) {
	return within(ctx, g.s, domain.KindAction, opUpdate, id, func(tx *sql.Tx) (domain.Action, error) {
		return actionTable.update(ctx, g.s, tx, id, func(c *domain.ActionCandidate, r *patch.Reducer) {
			patch.Reduce(r, "phase_id", in.PhaseID, &c.PhaseID)
			patch.Reduce(r, "target_phase_id", in.TargetPhaseID, &c.TargetPhaseID)
			patch.Reduce(r, "validator_id", in.ValidatorID, &c.ValidatorID)
			patch.Reduce(r, "name", in.Name, &c.Name)
		})
	})
}

func (g *ActionGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindAction, id)
}
