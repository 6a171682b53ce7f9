package domain

import "encoding/json"

// Team is the group of agents staffing a phase.
type Team struct {
	id        string
	phaseID   string
	Name      string
	agentIDs  []string
	createdAt string
}

// TeamCandidate is an unvalidated team record.
type TeamCandidate struct {
	ID        string
	PhaseID   string
	Name      string
	AgentIDs  []string
	CreatedAt string
}

// NewTeam validates c and returns the team it describes.
func NewTeam(c TeamCandidate) (Team, error) {
	ck := newChecker(KindTeam)
	ck.id("id", c.ID)
	ck.id("phaseId", c.PhaseID)
	ck.text("name", c.Name)
	ck.ids("agentIds", c.AgentIDs)
	if err := ck.err(); err != nil {
		return Team{}, err
	}
	return Team{
		id:        c.ID,
		phaseID:   c.PhaseID,
		Name:      c.Name,
		agentIDs:  cloneIDs(c.AgentIDs),
		createdAt: c.CreatedAt,
	}, nil
}

func (t Team) ID() string         { return t.id }
func (t Team) PhaseID() string    { return t.phaseID }
func (t Team) AgentIDs() []string { return cloneIDs(t.agentIDs) }
func (t Team) CreatedAt() string  { return t.createdAt }

func (t Team) Candidate() TeamCandidate {
	return TeamCandidate{
		ID:        t.id,
		PhaseID:   t.phaseID,
		Name:      t.Name,
		AgentIDs:  cloneIDs(t.agentIDs),
		CreatedAt: t.createdAt,
	}
}

func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string   `json:"id"`
		PhaseID   string   `json:"phaseId"`
		Name      string   `json:"name"`
		AgentIDs  []string `json:"agentIds"`
		CreatedAt string   `json:"createdAt,omitempty"`
	}{t.id, t.phaseID, t.Name, cloneIDs(t.agentIDs), t.createdAt})
}

// Role is a named capability shared across teams. Role names are unique.
type Role struct {
	id          string
	Name        string
	Description *string
	agentIDs    []string
	createdAt   string
}

// RoleCandidate is an unvalidated role record.
type RoleCandidate struct {
	ID          string
	Name        string
	Description *string
	AgentIDs    []string
	CreatedAt   string
}

// NewRole validates c and returns the role it describes.
func NewRole(c RoleCandidate) (Role, error) {
	ck := newChecker(KindRole)
	ck.id("id", c.ID)
	ck.text("name", c.Name)
	ck.optionalText("description", c.Description)
	ck.ids("agentIds", c.AgentIDs)
	if err := ck.err(); err != nil {
		return Role{}, err
	}
	return Role{
		id:          c.ID,
		Name:        c.Name,
		Description: cloneString(c.Description),
		agentIDs:    cloneIDs(c.AgentIDs),
		createdAt:   c.CreatedAt,
	}, nil
}

func (r Role) ID() string         { return r.id }
func (r Role) AgentIDs() []string { return cloneIDs(r.agentIDs) }
func (r Role) CreatedAt() string  { return r.createdAt }

func (r Role) Candidate() RoleCandidate {
	return RoleCandidate{
		ID:          r.id,
		Name:        r.Name,
		Description: cloneString(r.Description),
		AgentIDs:    cloneIDs(r.agentIDs),
		CreatedAt:   r.createdAt,
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Description *string  `json:"description,omitempty"`
		AgentIDs    []string `json:"agentIds"`
		CreatedAt   string   `json:"createdAt,omitempty"`
	}{r.id, r.Name, r.Description, cloneIDs(r.agentIDs), r.createdAt})
}

// Agent is a team member playing one role.
type Agent struct {
	id        string
	teamID    string
	roleID    string
	Name      string
	taskIDs   []string
	createdAt string
}

// AgentCandidate is an unvalidated agent record.
type AgentCandidate struct {
	ID        string
	TeamID    string
	RoleID    string
	Name      string
	TaskIDs   []string
	CreatedAt string
}

// NewAgent validates c and returns the agent it describes.
func NewAgent(c AgentCandidate) (Agent, error) {
	ck := newChecker(KindAgent)
	ck.id("id", c.ID)
	ck.id("teamId", c.TeamID)
	ck.id("roleId", c.RoleID)
	ck.text("name", c.Name)
	ck.ids("taskIds", c.TaskIDs)
	if err := ck.err(); err != nil {
		return Agent{}, err
	}
	return Agent{
		id:        c.ID,
		teamID:    c.TeamID,
		roleID:    c.RoleID,
		Name:      c.Name,
		taskIDs:   cloneIDs(c.TaskIDs),
		createdAt: c.CreatedAt,
	}, nil
}

func (a Agent) ID() string        { return a.id }
func (a Agent) TeamID() string    { return a.teamID }
func (a Agent) RoleID() string    { return a.roleID }
func (a Agent) TaskIDs() []string { return cloneIDs(a.taskIDs) }
func (a Agent) CreatedAt() string { return a.createdAt }

func (a Agent) Candidate() AgentCandidate {
	return AgentCandidate{
		ID:        a.id,
		TeamID:    a.teamID,
		RoleID:    a.roleID,
		Name:      a.Name,
		TaskIDs:   cloneIDs(a.taskIDs),
		CreatedAt: a.createdAt,
	}
}

func (a Agent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string   `json:"id"`
		TeamID    string   `json:"teamId"`
		RoleID    string   `json:"roleId"`
		Name      string   `json:"name"`
		TaskIDs   []string `json:"taskIds"`
		CreatedAt string   `json:"createdAt,omitempty"`
	}{a.id, a.teamID, a.roleID, a.Name, cloneIDs(a.taskIDs), a.createdAt})
}
