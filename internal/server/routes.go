package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"planforge/internal/domain"
	"planforge/internal/repo"
)

// entityRoutes is the CRUD surface of one entity kind. C is the create input,
// U the partial update input.
type entityRoutes[E, C, U any] struct {
	kind   domain.Kind
	path   string
	create func(context.Context, C) (E, error)
	get    func(context.Context, string) (E, error)
	list   func(context.Context) ([]E, error)
	update func(context.Context, string, U) (E, error)
	delete func(context.Context, string) (bool, error)
}

type idPath struct {
	ID string `path:"id"`
}

var writeErrors = []int{
	http.StatusBadRequest,
	http.StatusNotFound,
	http.StatusConflict,
	http.StatusInternalServerError,
}

func registerCRUD[E, C, U any](api huma.API, r entityRoutes[E, C, U]) {
	name := string(r.kind)
	item := r.path + "/{id}"

	huma.Register(api, huma.Operation{
		OperationID:   "create-" + name,
		Method:        http.MethodPost,
		Path:          r.path,
		Summary:       "Create " + name,
		Tags:          []string{name},
		DefaultStatus: http.StatusCreated,
		Errors:        writeErrors,
	}, func(ctx context.Context, in *struct {
		Body C `json:"body"`
	}) (*envelope, error) {
		return respond(r.create(ctx, in.Body))
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-" + name,
		Method:      http.MethodGet,
		Path:        r.path,
		Summary:     "List " + name + " records",
		Tags:        []string{name},
	}, func(ctx context.Context, _ *struct{}) (*envelope, error) {
		return respond(r.list(ctx))
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-" + name,
		Method:      http.MethodGet,
		Path:        item,
		Summary:     "Get " + name,
		Tags:        []string{name},
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, in *idPath) (*envelope, error) {
		return respond(r.get(ctx, in.ID))
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-" + name,
		Method:      http.MethodPatch,
		Path:        item,
		Summary:     "Update " + name,
		Description: "Only fields present in the body change. A JSON null clears an optional field.",
		Tags:        []string{name},
		Errors:      writeErrors,
	}, func(ctx context.Context, in *struct {
		ID   string         `path:"id"`
		Body map[string]any `json:"body" required:"false"`
	}) (*envelope, error) {
		var u U
		if err := decodeBody(ctx, &u); err != nil {
			return nil, err
		}
		return respond(r.update(ctx, in.ID, u))
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-" + name,
		Method:      http.MethodDelete,
		Path:        item,
		Summary:     "Delete " + name,
		Tags:        []string{name},
		Errors:      []int{http.StatusNotFound, http.StatusConflict, http.StatusInternalServerError},
	}, func(ctx context.Context, in *idPath) (*envelope, error) {
		return respond(r.delete(ctx, in.ID))
	})
}

func registerEntities(api huma.API, g repo.Gateways) {
	registerCRUD(api, entityRoutes[domain.Project, repo.ProjectCreate, repo.ProjectUpdate]{
		kind: domain.KindProject, path: "/projects",
		create: g.Projects.Create, get: g.Projects.Get, list: g.Projects.List, update: g.Projects.Update, delete: g.Projects.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Plan, repo.PlanCreate, repo.PlanUpdate]{
		kind: domain.KindPlan, path: "/plans",
		create: g.Plans.Create, get: g.Plans.Get, list: g.Plans.List, update: g.Plans.Update, delete: g.Plans.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Phase, repo.PhaseCreate, repo.PhaseUpdate]{
		kind: domain.KindPhase, path: "/phases",
		create: g.Phases.Create, get: g.Phases.Get, list: g.Phases.List, update: g.Phases.Update, delete: g.Phases.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Job, repo.JobCreate, repo.JobUpdate]{
		kind: domain.KindJob, path: "/jobs",
		create: g.Jobs.Create, get: g.Jobs.Get, list: g.Jobs.List, update: g.Jobs.Update, delete: g.Jobs.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Team, repo.TeamCreate, repo.TeamUpdate]{
		kind: domain.KindTeam, path: "/teams",
		create: g.Teams.Create, get: g.Teams.Get, list: g.Teams.List, update: g.Teams.Update, delete: g.Teams.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Role, repo.RoleCreate, repo.RoleUpdate]{
		kind: domain.KindRole, path: "/roles",
		create: g.Roles.Create, get: g.Roles.Get, list: g.Roles.List, update: g.Roles.Update, delete: g.Roles.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Agent, repo.AgentCreate, repo.AgentUpdate]{
		kind: domain.KindAgent, path: "/agents",
		create: g.Agents.Create, get: g.Agents.Get, list: g.Agents.List, update: g.Agents.Update, delete: g.Agents.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Validator, repo.ValidatorCreate, repo.ValidatorUpdate]{
		kind: domain.KindValidator, path: "/validators",
		create: g.Validators.Create, get: g.Validators.Get, list: g.Validators.List, update: g.Validators.Update, delete: g.Validators.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Task, repo.TaskCreate, repo.TaskUpdate]{
		kind: domain.KindTask, path: "/tasks",
		create: g.Tasks.Create, get: g.Tasks.Get, list: g.Tasks.List, update: g.Tasks.Update, delete: g.Tasks.Delete,
	})
	registerCRUD(api, entityRoutes[domain.Action, repo.ActionCreate, repo.ActionUpdate]{
		kind: domain.KindAction, path: "/actions",
		create: g.Actions.Create, get: g.Actions.Get, list: g.Actions.List, update: g.Actions.Update, delete: g.Actions.Delete,
	})
}

// registerChild exposes a read scoped to one parent record.
func registerChild[T any](api huma.API, opID, path, summary string, fn func(context.Context, string) (T, error)) {
	huma.Register(api, huma.Operation{
		OperationID: opID,
		Method:      http.MethodGet,
		Path:        path,
		Summary:     summary,
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, in *idPath) (*envelope, error) {
		return respond(fn(ctx, in.ID))
	})
}

func registerScoped(api huma.API, g repo.Gateways) {
	registerChild(api, "get-project-plan", "/projects/{id}/plan", "Plan of a project", g.Plans.GetByProject)
	registerChild(api, "list-plan-phases", "/plans/{id}/phases", "Phases of a plan", g.Phases.ListByPlan)
	registerChild(api, "get-phase-job", "/phases/{id}/job", "Job of a phase", g.Jobs.GetByPhase)
	registerChild(api, "get-phase-team", "/phases/{id}/team", "Team of a phase", g.Teams.GetByPhase)
	registerChild(api, "list-phase-actions", "/phases/{id}/actions", "Actions available from a phase", g.Actions.ListByPhase)
	registerChild(api, "list-phase-incoming-actions", "/phases/{id}/incoming-actions", "Actions leading into a phase", g.Actions.ListByTarget)
	registerChild(api, "list-job-tasks", "/jobs/{id}/tasks", "Tasks of a job", g.Tasks.ListByJob)
	registerChild(api, "list-team-agents", "/teams/{id}/agents", "Members of a team", g.Agents.ListByTeam)
	registerChild(api, "list-role-agents", "/roles/{id}/agents", "Agents playing a role", g.Agents.ListByRole)
	registerChild(api, "list-agent-tasks", "/agents/{id}/tasks", "Tasks assigned to an agent", g.Tasks.ListByAgent)

	huma.Register(api, huma.Operation{
		OperationID: "count-tasks",
		Method:      http.MethodGet,
		Path:        "/tasks/counts",
		Summary:     "Task counts by job and status",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, in *struct {
		JobID  string `query:"jobId"`
		Status string `query:"status"`
	}) (*envelope, error) {
		return respond(g.Tasks.CountByJob(ctx, repo.TaskCountFilter{JobID: in.JobID, Status: domain.TaskStatus(in.Status)}))
	})
}

func registerEvents(api huma.API, s *repo.Store) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Audit events, newest first",
	}, func(ctx context.Context, in *struct {
		Kind     string `query:"kind"`
		EntityID string `query:"entityId"`
		Limit    int    `query:"limit" minimum:"0" maximum:"500"`
	}) (*envelope, error) {
		return respond(s.Events(ctx, repo.EventFilter{Kind: domain.Kind(in.Kind), EntityID: in.EntityID, Limit: in.Limit}))
	})
}
