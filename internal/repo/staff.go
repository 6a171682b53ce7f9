package repo

import (
	"context"
	"database/sql"

	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/relations"
)

type TeamCreate struct {
	ID      string `json:"id,omitempty"`
	PhaseID string `json:"phaseId,omitempty"`
	Name    string `json:"name,omitempty"`
}

type TeamUpdate struct {
	PhaseID patch.Field[string] `json:"phaseId,omitzero"`
	Name    patch.Field[string] `json:"name,omitzero"`
}

var teamTable = table[domain.TeamCandidate, domain.Team]{
	kind:    domain.KindTeam,
	columns: "id,phase_id,name,created_at",
	scan: func(r rowScanner) (domain.TeamCandidate, error) {
		var c domain.TeamCandidate
		err := r.Scan(&c.ID, &c.PhaseID, &c.Name, &c.CreatedAt)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.TeamCandidate) error {
		var err error
		c.AgentIDs, err = childIDs(ctx, q, relations.TeamAgents, c.ID)
		return err
	},
	build: domain.NewTeam,
}

type TeamGateway struct {
	s *Store
}

func NewTeamGateway(s *Store) *TeamGateway { return &TeamGateway{s: s} }

// Create adds the team of a phase. A phase holds at most one team.
func (g *TeamGateway) Create(ctx context.Context, in TeamCreate) (domain.Team, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindTeam, opCreate, id, func(tx *sql.Tx) (domain.Team, error) {
		if _, err := domain.NewTeam(domain.TeamCandidate{ID: id, PhaseID: in.PhaseID, Name: in.Name}); err != nil {
			return domain.Team{}, err
		}
		return teamTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "phase_id", Value: in.PhaseID},
			{Column: "name", Value: in.Name},
		})
	})
}

func (g *TeamGateway) Get(ctx context.Context, id string) (domain.Team, error) {
	return within(ctx, g.s, domain.KindTeam, opGet, id, func(tx *sql.Tx) (domain.Team, error) {
		return teamTable.get(ctx, tx, id)
	})
}

// GetByPhase returns the team of phaseID.
func (g *TeamGateway) GetByPhase(ctx context.Context, phaseID string) (domain.Team, error) {
	return within(ctx, g.s, domain.KindTeam, opGet, phaseID, func(tx *sql.Tx) (domain.Team, error) {
		if err := requireScope(ctx, tx, domain.KindPhase, phaseID); err != nil {
			return domain.Team{}, err
		}
		teams, err := teamTable.list(ctx, tx, "phase_id=?", phaseID)
		if err != nil {
			return domain.Team{}, err
		}
		if len(teams) == 0 {
			return domain.Team{}, &NotFoundError{Kind: domain.KindTeam, ID: phaseID, Ref: relations.PhaseTeam.Ref()}
		}
		return teams[0], nil
	})
}

func (g *TeamGateway) List(ctx context.Context) ([]domain.Team, error) {
	return within(ctx, g.s, domain.KindTeam, opList, "", func(tx *sql.Tx) ([]domain.Team, error) {
		return teamTable.list(ctx, tx, "")
	})
}

func (g *TeamGateway) Update(ctx context.Context, id string, in TeamUpdate) (domain.Team, error) {
	return within(ctx, g.s, domain.KindTeam, opUpdate, id, func(tx *sql.Tx) (domain.Team, error) {
		return teamTable.update(ctx, g.s, tx, id, func(c *domain.TeamCandidate, r *patch.Reducer) {
			patch.Reduce(r, "phase_id", in.PhaseID, &c.PhaseID)
			patch.Reduce(r, "name", in.Name, &c.Name)
		})
	})
}

// Delete removes the team and its agents. Tasks assigned to those agents
// become unassigned.
func (g *TeamGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindTeam, id)
}

type RoleCreate struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type RoleUpdate struct {
	Name        patch.Field[string] `json:"name,omitzero"`
	Description patch.Field[string] `json:"description,omitzero"`
}

var roleTable = table[domain.RoleCandidate, domain.Role]{
	kind:    domain.KindRole,
	columns: "id,name,description,created_at",
	scan: func(r rowScanner) (domain.RoleCandidate, error) {
		var c domain.RoleCandidate
		var desc sql.NullString
		err := r.Scan(&c.ID, &c.Name, &desc, &c.CreatedAt)
		c.Description = ptr(desc)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.RoleCandidate) error {
		var err error
		c.AgentIDs, err = childIDs(ctx, q, relations.RoleAgents, c.ID)
		return err
	},
	build: domain.NewRole,
}

type RoleGateway struct {
	s *Store
}

func NewRoleGateway(s *Store) *RoleGateway { return &RoleGateway{s: s} }

// Create adds a role. Names are unique across roles; a duplicate fails with a
// PersistenceError wrapping a ConstraintError.
func (g *RoleGateway) Create(ctx context.Context, in RoleCreate) (domain.Role, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindRole, opCreate, id, func(tx *sql.Tx) (domain.Role, error) {
		if _, err := domain.NewRole(domain.RoleCandidate{ID: id, Name: in.Name, Description: in.Description}); err != nil {
			return domain.Role{}, err
		}
		p := patch.Patch{{Column: "id", Value: id}, {Column: "name", Value: in.Name}}
		if in.Description != nil {
			p = append(p, patch.Assignment{Column: "description", Value: *in.Description})
		}
		return roleTable.insert(ctx, g.s, tx, p)
	})
}

func (g *RoleGateway) Get(ctx context.Context, id string) (domain.Role, error) {
	return within(ctx, g.s, domain.KindRole, opGet, id, func(tx *sql.Tx) (domain.Role, error) {
		return roleTable.get(ctx, tx, id)
	})
}

func (g *RoleGateway) List(ctx context.Context) ([]domain.Role, error) {
	return within(ctx, g.s, domain.KindRole, opList, "", func(tx *sql.Tx) ([]domain.Role, error) {
		return roleTable.list(ctx, tx, "")
	})
}

func (g *RoleGateway) Update(ctx context.Context, id string, in RoleUpdate) (domain.Role, error) {
	return within(ctx, g.s, domain.KindRole, opUpdate, id, func(tx *sql.Tx) (domain.Role, error) {
		return roleTable.update(ctx, g.s, tx, id, func(c *domain.RoleCandidate, r *patch.Reducer) {
			patch.Reduce(r, "name", in.Name, &c.Name)
			patch.ReduceOptional(r, "description", in.Description, &c.Description)
		})
	})
}

// Delete removes the role. It fails while any agent still plays it.
func (g *RoleGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindRole, id)
}

type AgentCreate struct {
	ID     string `json:"id,omitempty"`
	TeamID string `json:"teamId,omitempty"`
	RoleID string `json:"roleId,omitempty"`
	Name   string `json:"name,omitempty"`
}

type AgentUpdate struct {
	TeamID patch.Field[string] `json:"teamId,omitzero"`
	RoleID patch.Field[string] `json:"roleId,omitzero"`
	Name   patch.Field[string] `json:"name,omitzero"`
}

var agentTable = table[domain.AgentCandidate, domain.Agent]{
	kind:    domain.KindAgent,
	columns: "id,team_id,role_id,name,created_at",
	scan: func(r rowScanner) (domain.AgentCandidate, error) {
		var c domain.AgentCandidate
		err := r.Scan(&c.ID, &c.TeamID, &c.RoleID, &c.Name, &c.CreatedAt)
		return c, err
	},
	derive: func(ctx context.Context, q queryer, c *domain.AgentCandidate) error {
		var err error
		c.TaskIDs, err = childIDs(ctx, q, relations.AgentTasks, c.ID)
		return err
	},
	build: domain.NewAgent,
}

type AgentGateway struct {
	s *Store
}

func NewAgentGateway(s *Store) *AgentGateway { return &AgentGateway{s: s} }

func (g *AgentGateway) Create(ctx context.Context, in AgentCreate) (domain.Agent, error) {
	id := g.s.assignID(in.ID)
	return within(ctx, g.s, domain.KindAgent, opCreate, id, func(tx *sql.Tx) (domain.Agent, error) {
		if _, err := domain.NewAgent(domain.AgentCandidate{ID: id, TeamID: in.TeamID, RoleID: in.RoleID, Name: in.Name}); err != nil {
			return domain.Agent{}, err
		}
		return agentTable.insert(ctx, g.s, tx, patch.Patch{
			{Column: "id", Value: id},
			{Column: "team_id", Value: in.TeamID},
			{Column: "role_id", Value: in.RoleID},
			{Column: "name", Value: in.Name},
		})
	})
}

func (g *AgentGateway) Get(ctx context.Context, id string) (domain.Agent, error) {
	return within(ctx, g.s, domain.KindAgent, opGet, id, func(tx *sql.Tx) (domain.Agent, error) {
		return agentTable.get(ctx, tx, id)
	})
}

func (g *AgentGateway) List(ctx context.Context) ([]domain.Agent, error) {
	return within(ctx, g.s, domain.KindAgent, opList, "", func(tx *sql.Tx) ([]domain.Agent, error) {
		return agentTable.list(ctx, tx, "")
	})
}

// ListByTeam returns the members of teamID.
func (g *AgentGateway) ListByTeam(ctx context.Context, teamID string) ([]domain.Agent, error) {
	return within(ctx, g.s, domain.KindAgent, opList, teamID, func(tx *sql.Tx) ([]domain.Agent, error) {
		if err := requireScope(ctx, tx, domain.KindTeam, teamID); err != nil {
			return nil, err
		}
		return agentTable.list(ctx, tx, "team_id=?", teamID)
	})
}

// ListByRole returns the agents playing roleID across all teams.
func (g *AgentGateway) ListByRole(ctx context.Context, roleID string) ([]domain.Agent, error) {
	return within(ctx, g.s, domain.KindAgent, opList, roleID, func(tx *sql.Tx) ([]domain.Agent, error) {
		if err := requireScope(ctx, tx, domain.KindRole, roleID); err != nil {
			return nil, err
		}
		return agentTable.list(ctx, tx, "role_id=?", roleID)
	})
}

func (g *AgentGateway) Update(ctx context.Context, id string, in AgentUpdate) (domain.Agent, error) {
	return within(ctx, g.s, domain.KindAgent, opUpdate, id, func(tx *sql.Tx) (domain.Agent, error) {
		return agentTable.update(ctx, g.s, tx, id, func(c *domain.AgentCandidate, r *patch.Reducer) {
			patch.Reduce(r, "team_id", in.TeamID, &c.TeamID)
			patch.Reduce(r, "role_id", in.RoleID, &c.RoleID)
			patch.Reduce(r, "name", in.Name, &c.Name)
		})
	})
}

// Delete removes the agent and unassigns its tasks.
func (g *AgentGateway) Delete(ctx context.Context, id string) (bool, error) {
	return g.s.remove(ctx, domain.KindAgent, id)
}
