package planforgesdk

// API models as returned in the data field of the response envelope.

type Project struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	PlanID      *string `json:"planId,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

type Plan struct {
	ID          string   `json:"id"`
	ProjectID   string   `json:"projectId"`
	Description string   `json:"description"`
	PhaseIDs    []string `json:"phaseIds"`
	CreatedAt   string   `json:"createdAt"`
}

type Phase struct {
	ID                string   `json:"id"`
	PlanID            string   `json:"planId"`
	Name              string   `json:"name"`
	JobID             *string  `json:"jobId,omitempty"`
	TeamID            *string  `json:"teamId,omitempty"`
	ActionIDs         []string `json:"actionIds"`
	IncomingActionIDs []string `json:"incomingActionIds"`
	CreatedAt         string   `json:"createdAt"`
}

type Job struct {
	ID          string   `json:"id"`
	PhaseID     string   `json:"phaseId"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Status      string   `json:"status"`
	TaskIDs     []string `json:"taskIds"`
	CreatedAt   string   `json:"createdAt"`
}

type Team struct {
	ID        string   `json:"id"`
	PhaseID   string   `json:"phaseId"`
	Name      string   `json:"name"`
	AgentIDs  []string `json:"agentIds"`
	CreatedAt string   `json:"createdAt"`
}

type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	AgentIDs    []string `json:"agentIds"`
	CreatedAt   string   `json:"createdAt"`
}

type Agent struct {
	ID        string   `json:"id"`
	TeamID    string   `json:"teamId"`
	RoleID    string   `json:"roleId"`
	Name      string   `json:"name"`
	TaskIDs   []string `json:"taskIds"`
	CreatedAt string   `json:"createdAt"`
}

type Validator struct {
	ID        string   `json:"id"`
	Template  string   `json:"template"`
	Resource  string   `json:"resource"`
	TaskIDs   []string `json:"taskIds"`
	ActionIDs []string `json:"actionIds"`
	CreatedAt string   `json:"createdAt"`
}

type Task struct {
	ID          string  `json:"id"`
	JobID       string  `json:"jobId"`
	AgentID     *string `json:"agentId,omitempty"`
	ValidatorID *string `json:"validatorId,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
}

type Action struct {
	ID            string `json:"id"`
	PhaseID       string `json:"phaseId"`
	TargetPhaseID string `json:"targetPhaseId"`
	ValidatorID   string `json:"validatorId"`
	Name          string `json:"name"`
	CreatedAt     string `json:"createdAt"`
}

type TaskCount struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Event is an audit log entry.
type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts"`
	Type       string         `json:"type"`
	EntityKind string         `json:"entityKind"`
	EntityID   string         `json:"entityId"`
	Payload    map[string]any `json:"payload"`
}
