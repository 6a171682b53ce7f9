package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"planforge/internal/app"
	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/repo"
)

type gateway[E, C, U any] interface {
	Create(context.Context, C) (E, error)
	Get(context.Context, string) (E, error)
	List(context.Context) ([]E, error)
	Update(context.Context, string, U) (E, error)
	Delete(context.Context, string) (bool, error)
}

type scopedList[E any] func(repo.Gateways) func(context.Context, string) ([]E, error)

type scopedGet[E any] func(repo.Gateways) func(context.Context, string) (E, error)

// kindCmd describes the command group of one entity kind.
type kindCmd[E, C, U any] struct {
	kind   domain.Kind
	short  string
	gw     func(repo.Gateways) gateway[E, C, U]
	header table.Row
	row    func(E) table.Row
	// create and update register their flags and return a builder that
	// reads them once the command runs.
	create func(*cobra.Command) func() C
	update func(*cobra.Command) func() U
	// listBy and getBy add filter flags to list and get, keyed by flag name.
	listBy map[string]scopedList[E]
	getBy  map[string]scopedGet[E]
}

func (k kindCmd[E, C, U]) command() *cobra.Command {
	name := string(k.kind)
	cmd := &cobra.Command{Use: name, Short: k.short}
	cmd.AddCommand(k.createCmd(), k.getCmd(), k.listCmd(), k.updateCmd(), k.deleteCmd())
	return cmd
}

func (k kindCmd[E, C, U]) print(cmd *cobra.Command, v any, items []E) error {
	rows := make([]table.Row, 0, len(items))
	for _, e := range items {
		rows = append(rows, k.row(e))
	}
	return printTable(cmd.OutOrStdout(), v, k.header, rows)
}

func (k kindCmd[E, C, U]) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create " + string(k.kind),
		Args:  cobra.NoArgs,
	}
	build := k.create(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			e, err := k.gw(a.Gateways).Create(ctx, build())
			if err != nil {
				return err
			}
			return k.print(cmd, e, []E{e})
		})
	}
	return cmd
}

func (k kindCmd[E, C, U]) getCmd() *cobra.Command {
	filters := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show " + string(k.kind),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				get := k.gw(a.Gateways).Get
				key := ""
				if len(args) == 1 {
					key = args[0]
				}
				for flag, val := range filters {
					if *val == "" {
						continue
					}
					if key != "" {
						return fmt.Errorf("give either an id or --%s", flag)
					}
					get, key = k.getBy[flag](a.Gateways), *val
				}
				if key == "" {
					return fmt.Errorf("%s id required", k.kind)
				}
				e, err := get(ctx, key)
				if err != nil {
					return err
				}
				return k.print(cmd, e, []E{e})
			})
		},
	}
	for flag := range k.getBy {
		filters[flag] = cmd.Flags().String(flag, "", "look up by "+flag+" id")
	}
	return cmd
}

func (k kindCmd[E, C, U]) listCmd() *cobra.Command {
	filters := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + string(k.kind) + " records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				list := func(ctx context.Context, _ string) ([]E, error) { return k.gw(a.Gateways).List(ctx) }
				key, used := "", ""
				for flag, val := range filters {
					if *val == "" {
						continue
					}
					if used != "" {
						return fmt.Errorf("--%s and --%s cannot be combined", used, flag)
					}
					list, key, used = k.listBy[flag](a.Gateways), *val, flag
				}
				items, err := list(ctx, key)
				if err != nil {
					return err
				}
				return k.print(cmd, items, items)
			})
		},
	}
	for flag := range k.listBy {
		filters[flag] = cmd.Flags().String(flag, "", "only records of this "+flag)
	}
	return cmd
}

func (k kindCmd[E, C, U]) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update " + string(k.kind) + " fields; unset flags are left unchanged",
		Args:  cobra.ExactArgs(1),
	}
	build := k.update(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			e, err := k.gw(a.Gateways).Update(ctx, args[0], build())
			if err != nil {
				return err
			}
			return k.print(cmd, e, []E{e})
		})
	}
	return cmd
}

func (k kindCmd[E, C, U]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete " + string(k.kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				ok, err := k.gw(a.Gateways).Delete(ctx, args[0])
				if err != nil {
					return err
				}
				out := map[string]any{"id": args[0], "deleted": ok}
				return printTable(cmd.OutOrStdout(), out, table.Row{"ID", "Deleted"}, []table.Row{{args[0], ok}})
			})
		},
	}
}

// patchFlag registers --name, and --clear-name when clearable, and returns
// the patch field they describe. An unset flag leaves the field untouched.
func patchFlag[T ~string](cmd *cobra.Command, name, usage string, clearable bool) func() patch.Field[T] {
	var v string
	var clear bool
	cmd.Flags().StringVar(&v, name, "", usage)
	if clearable {
		cmd.Flags().BoolVar(&clear, "clear-"+name, false, "clear "+name)
		cmd.MarkFlagsMutuallyExclusive(name, "clear-"+name)
	}
	return func() patch.Field[T] {
		switch {
		case clear:
			return patch.Clear[T]()
		case cmd.Flags().Changed(name):
			return patch.Set(T(v))
		}
		return patch.Field[T]{}
	}
}

// optionalFlag registers --name and returns nil unless it was given.
func optionalFlag(cmd *cobra.Command, name, usage string) func() *string {
	v := cmd.Flags().String(name, "", usage)
	return func() *string {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		return v
	}
}

func statusUsage(states []string) string {
	return "status (" + strings.Join(states, "|") + ")"
}

func entityCmds() []*cobra.Command {
	return []*cobra.Command{
		projectCmd(), planCmd(), phaseCmd(), jobCmd(), teamCmd(),
		roleCmd(), agentCmd(), validatorCmd(), taskCmd(), actionCmd(),
	}
}

func projectCmd() *cobra.Command {
	return kindCmd[domain.Project, repo.ProjectCreate, repo.ProjectUpdate]{
		kind:   domain.KindProject,
		short:  "Manage projects",
		gw:     func(g repo.Gateways) gateway[domain.Project, repo.ProjectCreate, repo.ProjectUpdate] { return g.Projects },
		header: table.Row{"ID", "Name", "Description", "Plan"},
		row: func(p domain.Project) table.Row {
			return table.Row{p.ID(), p.Name, deref(p.Description), deref(p.PlanID())}
		},
		create: func(cmd *cobra.Command) func() repo.ProjectCreate {
			var in repo.ProjectCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "project id (generated when empty)")
			cmd.Flags().StringVar(&in.Name, "name", "", "project name")
			desc := optionalFlag(cmd, "description", "description")
			return func() repo.ProjectCreate { in.Description = desc(); return in }
		},
		update: func(cmd *cobra.Command) func() repo.ProjectUpdate {
			name := patchFlag[string](cmd, "name", "project name", false)
			desc := patchFlag[string](cmd, "description", "description", true)
			return func() repo.ProjectUpdate { return repo.ProjectUpdate{Name: name(), Description: desc()} }
		},
	}.command()
}

func planCmd() *cobra.Command {
	return kindCmd[domain.Plan, repo.PlanCreate, repo.PlanUpdate]{
		kind:   domain.KindPlan,
		short:  "Manage plans",
		gw:     func(g repo.Gateways) gateway[domain.Plan, repo.PlanCreate, repo.PlanUpdate] { return g.Plans },
		header: table.Row{"ID", "Project", "Description", "Phases"},
		row: func(p domain.Plan) table.Row {
			return table.Row{p.ID(), p.ProjectID(), p.Description, strings.Join(p.PhaseIDs(), ",")}
		},
		create: func(cmd *cobra.Command) func() repo.PlanCreate {
			var in repo.PlanCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "plan id (generated when empty)")
			cmd.Flags().StringVar(&in.ProjectID, "project", "", "owning project id")
			cmd.Flags().StringVar(&in.Description, "description", "", "description")
			return func() repo.PlanCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.PlanUpdate {
			project := patchFlag[string](cmd, "project", "move to project", false)
			desc := patchFlag[string](cmd, "description", "description", false)
			return func() repo.PlanUpdate { return repo.PlanUpdate{ProjectID: project(), Description: desc()} }
		},
		getBy: map[string]scopedGet[domain.Plan]{
			"project": func(g repo.Gateways) func(context.Context, string) (domain.Plan, error) { return g.Plans.GetByProject },
		},
	}.command()
}

func phaseCmd() *cobra.Command {
	return kindCmd[domain.Phase, repo.PhaseCreate, repo.PhaseUpdate]{
		kind:   domain.KindPhase,
		short:  "Manage phases",
		gw:     func(g repo.Gateways) gateway[domain.Phase, repo.PhaseCreate, repo.PhaseUpdate] { return g.Phases },
		header: table.Row{"ID", "Plan", "Name", "Job", "Team", "Actions"},
		row: func(p domain.Phase) table.Row {
			return table.Row{p.ID(), p.PlanID(), p.Name, deref(p.JobID()), deref(p.TeamID()), strings.Join(p.ActionIDs(), ",")}
		},
		create: func(cmd *cobra.Command) func() repo.PhaseCreate {
			var in repo.PhaseCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "phase id (generated when empty)")
			cmd.Flags().StringVar(&in.PlanID, "plan", "", "owning plan id")
			cmd.Flags().StringVar(&in.Name, "name", "", "phase name")
			return func() repo.PhaseCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.PhaseUpdate {
			plan := patchFlag[string](cmd, "plan", "move to plan", false)
			name := patchFlag[string](cmd, "name", "phase name", false)
			return func() repo.PhaseUpdate { return repo.PhaseUpdate{PlanID: plan(), Name: name()} }
		},
		listBy: map[string]scopedList[domain.Phase]{
			"plan": func(g repo.Gateways) func(context.Context, string) ([]domain.Phase, error) { return g.Phases.ListByPlan },
		},
	}.command()
}

func jobCmd() *cobra.Command {
	return kindCmd[domain.Job, repo.JobCreate, repo.JobUpdate]{
		kind:   domain.KindJob,
		short:  "Manage jobs",
		gw:     func(g repo.Gateways) gateway[domain.Job, repo.JobCreate, repo.JobUpdate] { return g.Jobs },
		header: table.Row{"ID", "Phase", "Name", "Status", "Tasks"},
		row: func(j domain.Job) table.Row {
			return table.Row{j.ID(), j.PhaseID(), j.Name, j.Status, len(j.TaskIDs())}
		},
		create: func(cmd *cobra.Command) func() repo.JobCreate {
			var in repo.JobCreate
			var status string
			cmd.Flags().StringVar(&in.ID, "id", "", "job id (generated when empty)")
			cmd.Flags().StringVar(&in.PhaseID, "phase", "", "owning phase id")
			cmd.Flags().StringVar(&in.Name, "name", "", "job name")
			cmd.Flags().StringVar(&status, "status", "", statusUsage(domain.JobStatuses()))
			desc := optionalFlag(cmd, "description", "description")
			return func() repo.JobCreate {
				in.Description = desc()
				in.Status = domain.JobStatus(status)
				return in
			}
		},
		update: func(cmd *cobra.Command) func() repo.JobUpdate {
			phase := patchFlag[string](cmd, "phase", "move to phase", false)
			name := patchFlag[string](cmd, "name", "job name", false)
			desc := patchFlag[string](cmd, "description", "description", true)
			status := patchFlag[domain.JobStatus](cmd, "status", statusUsage(domain.JobStatuses()), false)
			return func() repo.JobUpdate {
				return repo.JobUpdate{PhaseID: phase(), Name: name(), Description: desc(), Status: status()}
			}
		},
		getBy: map[string]scopedGet[domain.Job]{
			"phase": func(g repo.Gateways) func(context.Context, string) (domain.Job, error) { return g.Jobs.GetByPhase },
		},
	}.command()
}

func teamCmd() *cobra.Command {
	return kindCmd[domain.Team, repo.TeamCreate, repo.TeamUpdate]{
		kind:   domain.KindTeam,
		short:  "Manage teams",
		gw:     func(g repo.Gateways) gateway[domain.Team, repo.TeamCreate, repo.TeamUpdate] { return g.Teams },
		header: table.Row{"ID", "Phase", "Name", "Agents"},
		row: func(t domain.Team) table.Row {
			return table.Row{t.ID(), t.PhaseID(), t.Name, strings.Join(t.AgentIDs(), ",")}
		},
		create: func(cmd *cobra.Command) func() repo.TeamCreate {
			var in repo.TeamCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "team id (generated when empty)")
			cmd.Flags().StringVar(&in.PhaseID, "phase", "", "owning phase id")
			cmd.Flags().StringVar(&in.Name, "name", "", "team name")
			return func() repo.TeamCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.TeamUpdate {
			phase := patchFlag[string](cmd, "phase", "move to phase", false)
			name := patchFlag[string](cmd, "name", "team name", false)
			return func() repo.TeamUpdate { return repo.TeamUpdate{PhaseID: phase(), Name: name()} }
		},
		getBy: map[string]scopedGet[domain.Team]{
			"phase": func(g repo.Gateways) func(context.Context, string) (domain.Team, error) { return g.Teams.GetByPhase },
		},
	}.command()
}

func roleCmd() *cobra.Command {
	return kindCmd[domain.Role, repo.RoleCreate, repo.RoleUpdate]{
		kind:   domain.KindRole,
		short:  "Manage roles",
		gw:     func(g repo.Gateways) gateway[domain.Role, repo.RoleCreate, repo.RoleUpdate] { return g.Roles },
		header: table.Row{"ID", "Name", "Description", "Agents"},
		row: func(r domain.Role) table.Row {
			return table.Row{r.ID(), r.Name, deref(r.Description), strings.Join(r.AgentIDs(), ",")}
		},
		create: func(cmd *cobra.Command) func() repo.RoleCreate {
			var in repo.RoleCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "role id (generated when empty)")
			cmd.Flags().StringVar(&in.Name, "name", "", "role name")
			desc := optionalFlag(cmd, "description", "description")
			return func() repo.RoleCreate { in.Description = desc(); return in }
		},
		update: func(cmd *cobra.Command) func() repo.RoleUpdate {
			name := patchFlag[string](cmd, "name", "role name", false)
			desc := patchFlag[string](cmd, "description", "description", true)
			return func() repo.RoleUpdate { return repo.RoleUpdate{Name: name(), Description: desc()} }
		},
	}.command()
}

func agentCmd() *cobra.Command {
	return kindCmd[domain.Agent, repo.AgentCreate, repo.AgentUpdate]{
		kind:   domain.KindAgent,
		short:  "Manage agents",
		gw:     func(g repo.Gateways) gateway[domain.Agent, repo.AgentCreate, repo.AgentUpdate] { return g.Agents },
		header: table.Row{"ID", "Team", "Role", "Name", "Tasks"},
		row: func(a domain.Agent) table.Row {
			return table.Row{a.ID(), a.TeamID(), a.RoleID(), a.Name, len(a.TaskIDs())}
		},
		create: func(cmd *cobra.Command) func() repo.AgentCreate {
			var in repo.AgentCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "agent id (generated when empty)")
			cmd.Flags().StringVar(&in.TeamID, "team", "", "team id")
			cmd.Flags().StringVar(&in.RoleID, "role", "", "role id")
			cmd.Flags().StringVar(&in.Name, "name", "", "agent name")
			return func() repo.AgentCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.AgentUpdate {
			team := patchFlag[string](cmd, "team", "move to team", false)
			role := patchFlag[string](cmd, "role", "change role", false)
			name := patchFlag[string](cmd, "name", "agent name", false)
			return func() repo.AgentUpdate { return repo.AgentUpdate{TeamID: team(), RoleID: role(), Name: name()} }
		},
		listBy: map[string]scopedList[domain.Agent]{
			"team": func(g repo.Gateways) func(context.Context, string) ([]domain.Agent, error) { return g.Agents.ListByTeam },
			"role": func(g repo.Gateways) func(context.Context, string) ([]domain.Agent, error) { return g.Agents.ListByRole },
		},
	}.command()
}

func validatorCmd() *cobra.Command {
	return kindCmd[domain.Validator, repo.ValidatorCreate, repo.ValidatorUpdate]{
		kind:   domain.KindValidator,
		short:  "Manage validators",
		gw:     func(g repo.Gateways) gateway[domain.Validator, repo.ValidatorCreate, repo.ValidatorUpdate] { return g.Validators },
		header: table.Row{"ID", "Template", "Resource", "Tasks", "Actions"},
		row: func(v domain.Validator) table.Row {
			return table.Row{v.ID(), v.Template, v.Resource, len(v.TaskIDs()), len(v.ActionIDs())}
		},
		create: func(cmd *cobra.Command) func() repo.ValidatorCreate {
			var in repo.ValidatorCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "validator id (generated when empty)")
			cmd.Flags().StringVar(&in.Template, "template", "", "check template")
			cmd.Flags().StringVar(&in.Resource, "resource", "", "resource the check runs against")
			return func() repo.ValidatorCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.ValidatorUpdate {
			tmpl := patchFlag[string](cmd, "template", "check template", false)
			res := patchFlag[string](cmd, "resource", "resource", false)
			return func() repo.ValidatorUpdate { return repo.ValidatorUpdate{Template: tmpl(), Resource: res()} }
		},
	}.command()
}

func taskCmd() *cobra.Command {
	cmd := kindCmd[domain.Task, repo.TaskCreate, repo.TaskUpdate]{
		kind:   domain.KindTask,
		short:  "Manage tasks",
		gw:     func(g repo.Gateways) gateway[domain.Task, repo.TaskCreate, repo.TaskUpdate] { return g.Tasks },
		header: table.Row{"ID", "Job", "Name", "Status", "Agent", "Validator"},
		row: func(t domain.Task) table.Row {
			return table.Row{t.ID(), t.JobID(), t.Name, t.Status, deref(t.AgentID()), deref(t.ValidatorID())}
		},
		create: func(cmd *cobra.Command) func() repo.TaskCreate {
			var in repo.TaskCreate
			var status string
			cmd.Flags().StringVar(&in.ID, "id", "", "task id (generated when empty)")
			cmd.Flags().StringVar(&in.JobID, "job", "", "owning job id")
			cmd.Flags().StringVar(&in.Name, "name", "", "task name")
			cmd.Flags().StringVar(&status, "status", "", statusUsage(domain.TaskStatuses()))
			agent := optionalFlag(cmd, "agent", "assigned agent id")
			validator := optionalFlag(cmd, "validator", "validator id")
			desc := optionalFlag(cmd, "description", "description")
			return func() repo.TaskCreate {
				in.AgentID, in.ValidatorID, in.Description = agent(), validator(), desc()
				in.Status = domain.TaskStatus(status)
				return in
			}
		},
		update: func(cmd *cobra.Command) func() repo.TaskUpdate {
			job := patchFlag[string](cmd, "job", "move to job", false)
			agent := patchFlag[string](cmd, "agent", "assigned agent id", true)
			validator := patchFlag[string](cmd, "validator", "validator id", true)
			name := patchFlag[string](cmd, "name", "task name", false)
			desc := patchFlag[string](cmd, "description", "description", true)
			status := patchFlag[domain.TaskStatus](cmd, "status", statusUsage(domain.TaskStatuses()), false)
			return func() repo.TaskUpdate {
				return repo.TaskUpdate{
					JobID: job(), AgentID: agent(), ValidatorID: validator(),
					Name: name(), Description: desc(), Status: status(),
				}
			}
		},
		listBy: map[string]scopedList[domain.Task]{
			"job":   func(g repo.Gateways) func(context.Context, string) ([]domain.Task, error) { return g.Tasks.ListByJob },
			"agent": func(g repo.Gateways) func(context.Context, string) ([]domain.Task, error) { return g.Tasks.ListByAgent },
		},
	}.command()
	cmd.AddCommand(taskCountsCmd())
	return cmd
}

func actionCmd() *cobra.Command {
	return kindCmd[domain.Action, repo.ActionCreate, repo.ActionUpdate]{
		kind:   domain.KindAction,
		short:  "Manage actions between phases",
		gw:     func(g repo.Gateways) gateway[domain.Action, repo.ActionCreate, repo.ActionUpdate] { return g.Actions },
		header: table.Row{"ID", "Name", "From", "To", "Validator"},
		row: func(a domain.Action) table.Row {
			return table.Row{a.ID(), a.Name, a.PhaseID(), a.TargetPhaseID(), a.ValidatorID()}
		},
		create: func(cmd *cobra.Command) func() repo.ActionCreate {
			var in repo.ActionCreate
			cmd.Flags().StringVar(&in.ID, "id", "", "action id (generated when empty)")
			cmd.Flags().StringVar(&in.PhaseID, "phase", "", "phase the action leaves")
			cmd.Flags().StringVar(&in.TargetPhaseID, "target", "", "phase the action leads to")
			cmd.Flags().StringVar(&in.ValidatorID, "validator", "", "guarding validator id")
			cmd.Flags().StringVar(&in.Name, "name", "", "action name")
			return func() repo.ActionCreate { return in }
		},
		update: func(cmd *cobra.Command) func() repo.ActionUpdate {
			phase := patchFlag[string](cmd, "phase", "phase the action leaves", false)
			target := patchFlag[string](cmd, "target", "phase the action leads to", false)
			validator := patchFlag[string](cmd, "validator", "guarding validator id", false)
			name := patchFlag[string](cmd, "name", "action name", false)
			return func() repo.ActionUpdate {
				return repo.ActionUpdate{PhaseID: phase(), TargetPhaseID: target(), ValidatorID: validator(), Name: name()}
			}
		},
		listBy: map[string]scopedList[domain.Action]{
			"phase":  func(g repo.Gateways) func(context.Context, string) ([]domain.Action, error) { return g.Actions.ListByPhase },
			"target": func(g repo.Gateways) func(context.Context, string) ([]domain.Action, error) { return g.Actions.ListByTarget },
		},
	}.command()
}

func taskCountsCmd() *cobra.Command {
	var f repo.TaskCountFilter
	var status string
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Count tasks by job and status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = domain.TaskStatus(status)
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				counts, err := a.Gateways.Tasks.CountByJob(ctx, f)
				if err != nil {
					return err
				}
				rows := make([]table.Row, 0, len(counts))
				for _, c := range counts {
					rows = append(rows, table.Row{c.JobID, c.Status, c.Count})
				}
				return printTable(cmd.OutOrStdout(), counts, table.Row{"Job", "Status", "Count"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&f.JobID, "job", "", "job id")
	cmd.Flags().StringVar(&status, "status", "", statusUsage(domain.TaskStatuses()))
	return cmd
}
