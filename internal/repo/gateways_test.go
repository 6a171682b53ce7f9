package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/domain"
	"planforge/internal/patch"
	"planforge/internal/repo"
)

func TestCreateThenGetRoundTrips(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	task, err := env.gw.Tasks.Create(ctx, repo.TaskCreate{JobID: "j1", Name: "Review", Description: strPtr("second pair of eyes")})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID())
	assert.Equal(t, domain.TaskPending, task.Status)
	assert.NotEmpty(t, task.CreatedAt())

	got, err := env.gw.Tasks.Get(ctx, task.ID())
	require.NoError(t, err)
	assert.Equal(t, task, got)

	role, err := env.gw.Roles.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", role.Name)
	assert.Equal(t, []string{"a1"}, role.AgentIDs())
}

func TestCreateGeneratesIDsUnlessSupplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	generated, err := env.gw.Validators.Create(ctx, repo.ValidatorCreate{Template: "lint", Resource: "repo"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", generated.ID())

	supplied, err := env.gw.Validators.Create(ctx, repo.ValidatorCreate{ID: "v-lint", Template: "lint", Resource: "repo"})
	require.NoError(t, err)
	assert.Equal(t, "v-lint", supplied.ID())

	_, err = env.gw.Validators.Create(ctx, repo.ValidatorCreate{ID: "v-lint", Template: "lint", Resource: "repo"})
	require.Error(t, err)
	assert.True(t, repo.IsPersistence(err))
	assert.True(t, repo.IsConstraint(err))
}

func TestCreateReportsEveryMissingField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		create func() error
		fields []string
	}{
		{"project", func() error { _, err := env.gw.Projects.Create(ctx, repo.ProjectCreate{}); return err }, []string{"name"}},
		{"plan", func() error { _, err := env.gw.Plans.Create(ctx, repo.PlanCreate{}); return err }, []string{"projectId", "description"}},
		{"phase", func() error { _, err := env.gw.Phases.Create(ctx, repo.PhaseCreate{}); return err }, []string{"planId", "name"}},
		{"job", func() error { _, err := env.gw.Jobs.Create(ctx, repo.JobCreate{}); return err }, []string{"phaseId", "name"}},
		{"team", func() error { _, err := env.gw.Teams.Create(ctx, repo.TeamCreate{}); return err }, []string{"phaseId", "name"}},
		{"role", func() error { _, err := env.gw.Roles.Create(ctx, repo.RoleCreate{}); return err }, []string{"name"}},
		{"agent", func() error { _, err := env.gw.Agents.Create(ctx, repo.AgentCreate{}); return err }, []string{"teamId", "roleId", "name"}},
		{"validator", func() error { _, err := env.gw.Validators.Create(ctx, repo.ValidatorCreate{}); return err }, []string{"template", "resource"}},
		{"task", func() error { _, err := env.gw.Tasks.Create(ctx, repo.TaskCreate{}); return err }, []string{"jobId", "name"}},
		{"action", func() error { _, err := env.gw.Actions.Create(ctx, repo.ActionCreate{}); return err }, []string{"phaseId", "targetPhaseId", "validatorId", "name"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.create()
			require.Error(t, err)
			assert.True(t, repo.IsValidation(err))
			ve, ok := domain.AsValidation(err)
			require.True(t, ok)
			for _, f := range tc.fields {
				assert.True(t, ve.Has(f), "missing %s in %v", f, err)
				assert.Contains(t, err.Error(), f)
			}
		})
	}

	var n int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&n))
	assert.Zero(t, n, "invalid input must not reach the store")
}

func TestTaskWithMissingJobNamesTheReference(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.gw.Tasks.Create(context.Background(), repo.TaskCreate{JobID: "missing-job", Name: "orphan"})
	require.Error(t, err)
	assert.True(t, repo.IsNotFound(err))
	assert.True(t, errors.Is(err, repo.ErrNotFound))

	var nf *repo.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.KindJob, nf.Kind)
	assert.Equal(t, "task.jobId", nf.Ref)
	assert.Contains(t, err.Error(), "job")
	assert.Contains(t, err.Error(), "missing-job")
}

func TestOptionalReferencesMustExist(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	_, err := env.gw.Tasks.Create(context.Background(), repo.TaskCreate{JobID: "j1", AgentID: strPtr("ghost"), Name: "x"})
	var nf *repo.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.KindAgent, nf.Kind)
	assert.Equal(t, "task.agentId", nf.Ref)
}

func TestListIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	tasks, err := env.gw.Tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = env.db.Exec(`INSERT INTO tasks(id,job_id,name,status) VALUES ('bad','j1','broken','DONE')`)
	require.NoError(t, err)

	tasks, err = env.gw.Tasks.List(ctx)
	require.Error(t, err)
	assert.Nil(t, tasks)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("status"))

	// the good row is still readable on its own
	_, err = env.gw.Tasks.Get(ctx, "tk1")
	require.NoError(t, err)
}

func TestListReturnsStoreOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := env.gw.Roles.Create(ctx, repo.RoleCreate{ID: "r-" + name, Name: name})
		require.NoError(t, err)
	}
	roles, err := env.gw.Roles.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, r := range roles {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"r-a", "r-b", "r-c"}, ids)

	empty, err := env.gw.Projects.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateTouchesOnlyPresentFields(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	before, err := env.gw.Tasks.Get(ctx, "tk1")
	require.NoError(t, err)

	after, err := env.gw.Tasks.Update(ctx, "tk1", repo.TaskUpdate{
		Name:   patch.Set("Write lexer"),
		Status: patch.Set(domain.TaskPending), // unchanged value
	})
	require.NoError(t, err)
	assert.Equal(t, "Write lexer", after.Name)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.AgentID(), after.AgentID())
	assert.Equal(t, before.ValidatorID(), after.ValidatorID())
	assert.Equal(t, before.JobID(), after.JobID())
	assert.Equal(t, before.CreatedAt(), after.CreatedAt())

	evts, err := env.store.Events(ctx, repo.EventFilter{Kind: domain.KindTask, EntityID: "tk1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "task.updated", evts[0].Type)
	assert.Equal(t, map[string]any{"name": "Write lexer"}, evts[0].Payload)
}

func TestUpdateWithNothingChangedWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	got, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Implement", got.Name)

	evts, err := env.store.Events(ctx, repo.EventFilter{EntityID: "j1"})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "job.created", evts[0].Type)
}

func TestUpdateRejectsInvalidResultBeforeWriting(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{Name: patch.Set("   "), Status: patch.Set(domain.JobStatus("PAUSED"))})
	require.Error(t, err)
	ve, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.True(t, ve.Has("name"))
	assert.True(t, ve.Has("status"))

	_, err = env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{Name: patch.Clear[string]()})
	assert.True(t, repo.IsValidation(err))

	job, err := env.gw.Jobs.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "Implement", job.Name)
	assert.Equal(t, domain.JobPending, job.Status)
}

func TestUpdateRejectsClearedOrEmptyStatus(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()
	_, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{Status: patch.Set(domain.JobRunning)})
	require.NoError(t, err)
	_, err = env.gw.Tasks.Update(ctx, "tk1", repo.TaskUpdate{Status: patch.Set(domain.TaskRunning)})
	require.NoError(t, err)

	for name, err := range map[string]error{
		"clear job status": func() error {
			_, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{Status: patch.Clear[domain.JobStatus]()})
			return err
		}(),
		"empty job status": func() error {
			_, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{Status: patch.Set(domain.JobStatus(""))})
			return err
		}(),
		"clear task status": func() error {
			_, err := env.gw.Tasks.Update(ctx, "tk1", repo.TaskUpdate{Status: patch.Clear[domain.TaskStatus]()})
			return err
		}(),
		"empty task status": func() error {
			_, err := env.gw.Tasks.Update(ctx, "tk1", repo.TaskUpdate{Status: patch.Set(domain.TaskStatus(""))})
			return err
		}(),
	} {
		ve, ok := domain.AsValidation(err)
		require.True(t, ok, "%s: %v", name, err)
		assert.True(t, ve.Has("status"), name)
		assert.False(t, repo.IsPersistence(err), name)
	}

	job, err := env.gw.Jobs.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, job.Status)

	var stored string
	require.NoError(t, env.db.QueryRow(`SELECT status FROM tasks WHERE id='tk1'`).Scan(&stored))
	assert.Equal(t, "RUNNING", stored)
	counts, err := env.gw.Tasks.CountByJob(ctx, repo.TaskCountFilter{JobID: "j1", Status: domain.TaskRunning})
	require.NoError(t, err)
	assert.Equal(t, []repo.TaskCount{{JobID: "j1", Status: domain.TaskRunning, Count: 1}}, counts)
}

func TestUpdateReparentChecksTarget(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.gw.Tasks.Update(ctx, "tk1", repo.TaskUpdate{JobID: patch.Set("nope")})
	var nf *repo.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "task.jobId", nf.Ref)

	// ph2 has no job yet, so the job can move there; moving it back onto an
	// occupied phase is refused.
	moved, err := env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{PhaseID: patch.Set("ph2")})
	require.NoError(t, err)
	assert.Equal(t, "ph2", moved.PhaseID())

	_, err = env.gw.Jobs.Create(ctx, repo.JobCreate{ID: "j2", PhaseID: "ph1", Name: "Docs"})
	require.NoError(t, err)
	_, err = env.gw.Jobs.Update(ctx, "j1", repo.JobUpdate{PhaseID: patch.Set("ph1")})
	assert.True(t, repo.IsConstraint(err))
}

func TestNotFoundIsSymmetric(t *testing.T) {
	env := newTestEnv(t)
	g := env.gw

	type ops struct {
		get    func(context.Context, string) error
		update func(context.Context, string) error
		delete func(context.Context, string) (bool, error)
	}
	cases := map[domain.Kind]ops{
		domain.KindProject: {
			get:    func(ctx context.Context, id string) error { _, err := g.Projects.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Projects.Update(ctx, id, repo.ProjectUpdate{Name: patch.Set("x")}); return err },
			delete: g.Projects.Delete,
		},
		domain.KindPlan: {
			get:    func(ctx context.Context, id string) error { _, err := g.Plans.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Plans.Update(ctx, id, repo.PlanUpdate{Description: patch.Set("x")}); return err },
			delete: g.Plans.Delete,
		},
		domain.KindPhase: {
			get:    func(ctx context.Context, id string) error { _, err := g.Phases.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Phases.Update(ctx, id, repo.PhaseUpdate{Name: patch.Set("x")}); return err },
			delete: g.Phases.Delete,
		},
		domain.KindJob: {
			get:    func(ctx context.Context, id string) error { _, err := g.Jobs.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Jobs.Update(ctx, id, repo.JobUpdate{Name: patch.Set("x")}); return err },
			delete: g.Jobs.Delete,
		},
		domain.KindTeam: {
			get:    func(ctx context.Context, id string) error { _, err := g.Teams.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Teams.Update(ctx, id, repo.TeamUpdate{Name: patch.Set("x")}); return err },
			delete: g.Teams.Delete,
		},
		domain.KindRole: {
			get:    func(ctx context.Context, id string) error { _, err := g.Roles.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Roles.Update(ctx, id, repo.RoleUpdate{Name: patch.Set("x")}); return err },
			delete: g.Roles.Delete,
		},
		domain.KindAgent: {
			get:    func(ctx context.Context, id string) error { _, err := g.Agents.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Agents.Update(ctx, id, repo.AgentUpdate{Name: patch.Set("x")}); return err },
			delete: g.Agents.Delete,
		},
		domain.KindValidator: {
			get:    func(ctx context.Context, id string) error { _, err := g.Validators.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Validators.Update(ctx, id, repo.ValidatorUpdate{Template: patch.Set("x")}); return err },
			delete: g.Validators.Delete,
		},
		domain.KindTask: {
			get:    func(ctx context.Context, id string) error { _, err := g.Tasks.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Tasks.Update(ctx, id, repo.TaskUpdate{Name: patch.Set("x")}); return err },
			delete: g.Tasks.Delete,
		},
		domain.KindAction: {
			get:    func(ctx context.Context, id string) error { _, err := g.Actions.Get(ctx, id); return err },
			update: func(ctx context.Context, id string) error { _, err := g.Actions.Update(ctx, id, repo.ActionUpdate{Name: patch.Set("x")}); return err },
			delete: g.Actions.Delete,
		},
	}
	require.Len(t, cases, len(domain.Kinds()))

	for kind, c := range cases {
		t.Run(string(kind), func(t *testing.T) {
			ctx := context.Background()
			want := string(kind) + ` "ghost" not found`

			err := c.get(ctx, "ghost")
			assert.True(t, repo.IsNotFound(err))
			assert.EqualError(t, err, want)

			err = c.update(ctx, "ghost")
			assert.True(t, repo.IsNotFound(err))
			assert.EqualError(t, err, want)

			ok, err := c.delete(ctx, "ghost")
			assert.False(t, ok)
			assert.True(t, repo.IsNotFound(err))
			assert.Equal(t, repo.ErrorNotFound, repo.Classify(err))
			assert.EqualError(t, err, want)
		})
	}
}

func TestDeleteTwice(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	ok, err := env.gw.Tasks.Delete(ctx, "tk1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.gw.Tasks.Delete(ctx, "tk1")
	assert.False(t, ok)
	assert.True(t, repo.IsNotFound(err))
}

func TestRoleLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	role, err := env.gw.Roles.Create(ctx, repo.RoleCreate{Name: "Engineer", Description: strPtr("writes code")})
	require.NoError(t, err)
	require.NotNil(t, role.Description)
	assert.Equal(t, "writes code", *role.Description)

	role, err = env.gw.Roles.Update(ctx, role.ID(), repo.RoleUpdate{Description: patch.Clear[string]()})
	require.NoError(t, err)
	assert.Nil(t, role.Description)
	assert.Equal(t, "Engineer", role.Name)

	ok, err := env.gw.Roles.Delete(ctx, role.ID())
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = env.gw.Roles.Get(ctx, role.ID())
	assert.True(t, repo.IsNotFound(err))
}

func TestRoleNamesAreUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.gw.Roles.Create(ctx, repo.RoleCreate{Name: "Engineer"})
	require.NoError(t, err)

	_, err = env.gw.Roles.Create(ctx, repo.RoleCreate{Name: "Engineer"})
	require.Error(t, err)
	assert.True(t, repo.IsPersistence(err))
	assert.True(t, repo.IsConstraint(err))
	var pe *repo.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, domain.KindRole, pe.Kind)
	assert.Equal(t, "create", pe.Op)
}

func TestConcurrentDeleteOfSameID(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	type outcome struct {
		ok  bool
		err error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := env.gw.Actions.Delete(ctx, "ac1")
			results <- outcome{ok, err}
		}()
	}
	wg.Wait()
	close(results)

	var deleted, missing int
	for r := range results {
		switch {
		case r.err == nil && r.ok:
			deleted++
		case repo.IsNotFound(r.err):
			missing++
		default:
			t.Fatalf("unexpected outcome %+v", r)
		}
	}
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 1, missing)
}

func TestDerivedCollections(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	project, err := env.gw.Projects.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, project.PlanID())
	assert.Equal(t, "pl1", *project.PlanID())

	plan, err := env.gw.Plans.Get(ctx, "pl1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ph1", "ph2"}, plan.PhaseIDs())

	ph1, err := env.gw.Phases.Get(ctx, "ph1")
	require.NoError(t, err)
	assert.Equal(t, "j1", *ph1.JobID())
	assert.Equal(t, "t1", *ph1.TeamID())
	assert.Equal(t, []string{"ac1"}, ph1.ActionIDs())
	assert.Empty(t, ph1.IncomingActionIDs())

	ph2, err := env.gw.Phases.Get(ctx, "ph2")
	require.NoError(t, err)
	assert.Nil(t, ph2.JobID())
	assert.Equal(t, []string{"ac1"}, ph2.IncomingActionIDs())

	job, err := env.gw.Jobs.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tk1"}, job.TaskIDs())

	team, err := env.gw.Teams.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, team.AgentIDs())

	agent, err := env.gw.Agents.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tk1"}, agent.TaskIDs())

	v, err := env.gw.Validators.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tk1"}, v.TaskIDs())
	assert.Equal(t, []string{"ac1"}, v.ActionIDs())
}

func TestOneToOneLinks(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.gw.Plans.Create(ctx, repo.PlanCreate{ProjectID: "p1", Description: "second"})
	require.Error(t, err)
	assert.True(t, repo.IsPersistence(err))
	assert.True(t, repo.IsConstraint(err))
	assert.Contains(t, err.Error(), "plan.projectId")

	_, err = env.gw.Teams.Create(ctx, repo.TeamCreate{PhaseID: "ph1", Name: "Backup"})
	assert.True(t, repo.IsConstraint(err))

	_, err = env.gw.Teams.Create(ctx, repo.TeamCreate{ID: "t2", PhaseID: "ph2", Name: "Release crew"})
	require.NoError(t, err)
}

func TestDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	ok, err := env.gw.Phases.Delete(ctx, "ph1")
	require.NoError(t, err)
	assert.True(t, ok)

	for _, get := range []func() error{
		func() error { _, err := env.gw.Jobs.Get(ctx, "j1"); return err },
		func() error { _, err := env.gw.Tasks.Get(ctx, "tk1"); return err },
		func() error { _, err := env.gw.Teams.Get(ctx, "t1"); return err },
		func() error { _, err := env.gw.Agents.Get(ctx, "a1"); return err },
		func() error { _, err := env.gw.Actions.Get(ctx, "ac1"); return err },
	} {
		assert.True(t, repo.IsNotFound(get()))
	}

	role, err := env.gw.Roles.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, role.AgentIDs())

	ph2, err := env.gw.Phases.Get(ctx, "ph2")
	require.NoError(t, err)
	assert.Empty(t, ph2.IncomingActionIDs())

	evts, err := env.store.Events(ctx, repo.EventFilter{Kind: domain.KindAgent, EntityID: "a1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, evts, 1)
	assert.Equal(t, "agent.deleted", evts[0].Type)
	assert.Equal(t, "team:t1", evts[0].Payload["via"])
}

func TestDeleteProjectRemovesWholeTree(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	ok, err := env.gw.Projects.Delete(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	phases, err := env.gw.Phases.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, phases)

	// roles and validators live outside the tree
	_, err = env.gw.Roles.Get(ctx, "r1")
	require.NoError(t, err)
	v, err := env.gw.Validators.Get(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, v.ActionIDs())
}

func TestDeleteRestricted(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	ok, err := env.gw.Roles.Delete(ctx, "r1")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, repo.IsPersistence(err))
	assert.True(t, repo.IsConstraint(err))
	assert.Contains(t, err.Error(), "agent.roleId")

	_, err = env.gw.Roles.Get(ctx, "r1")
	require.NoError(t, err)

	// a validator still gating an action stays, and the task it checks is
	// left untouched by the failed attempt
	_, err = env.gw.Validators.Delete(ctx, "v1")
	assert.True(t, repo.IsConstraint(err))
	task, err := env.gw.Tasks.Get(ctx, "tk1")
	require.NoError(t, err)
	require.NotNil(t, task.ValidatorID())
}

func TestDeleteNullifiesOptionalReferences(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	ok, err := env.gw.Agents.Delete(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, ok)

	task, err := env.gw.Tasks.Get(ctx, "tk1")
	require.NoError(t, err)
	assert.Nil(t, task.AgentID())
	assert.Equal(t, "v1", *task.ValidatorID())

	_, err = env.gw.Actions.Delete(ctx, "ac1")
	require.NoError(t, err)
	_, err = env.gw.Validators.Delete(ctx, "v1")
	require.NoError(t, err)
	task, err = env.gw.Tasks.Get(ctx, "tk1")
	require.NoError(t, err)
	assert.Nil(t, task.ValidatorID())
}

func TestScopedReads(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	plan, err := env.gw.Plans.GetByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "pl1", plan.ID())

	phases, err := env.gw.Phases.ListByPlan(ctx, "pl1")
	require.NoError(t, err)
	assert.Len(t, phases, 2)

	job, err := env.gw.Jobs.GetByPhase(ctx, "ph1")
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID())
	_, err = env.gw.Jobs.GetByPhase(ctx, "ph2")
	assert.True(t, repo.IsNotFound(err))

	team, err := env.gw.Teams.GetByPhase(ctx, "ph1")
	require.NoError(t, err)
	assert.Equal(t, "t1", team.ID())

	agents, err := env.gw.Agents.ListByRole(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, agents, 1)
	agents, err = env.gw.Agents.ListByTeam(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, agents, 1)

	tasks, err := env.gw.Tasks.ListByAgent(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	actions, err := env.gw.Actions.ListByPhase(ctx, "ph1")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "ph2", actions[0].TargetPhaseID())
	actions, err = env.gw.Actions.ListByPhase(ctx, "ph2")
	require.NoError(t, err)
	assert.Empty(t, actions)
	actions, err = env.gw.Actions.ListByTarget(ctx, "ph2")
	require.NoError(t, err)
	assert.Len(t, actions, 1)

	_, err = env.gw.Tasks.ListByJob(ctx, "nope")
	var nf *repo.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, domain.KindJob, nf.Kind)
}

func TestCountByJob(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()
	_, err := env.gw.Tasks.Create(ctx, repo.TaskCreate{JobID: "j1", Name: "b", Status: domain.TaskCompleted})
	require.NoError(t, err)
	_, err = env.gw.Tasks.Create(ctx, repo.TaskCreate{JobID: "j1", Name: "c", Status: domain.TaskCompleted})
	require.NoError(t, err)

	counts, err := env.gw.Tasks.CountByJob(ctx, repo.TaskCountFilter{JobID: "j1"})
	require.NoError(t, err)
	assert.Equal(t, []repo.TaskCount{
		{JobID: "j1", Status: domain.TaskCompleted, Count: 2},
		{JobID: "j1", Status: domain.TaskPending, Count: 1},
	}, counts)

	counts, err = env.gw.Tasks.CountByJob(ctx, repo.TaskCountFilter{Status: domain.TaskRunning})
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = env.gw.Tasks.CountByJob(ctx, repo.TaskCountFilter{Status: "DONE"})
	ve, ok := domain.AsValidation(err)
	require.True(t, ok, "%v", err)
	assert.True(t, ve.Has("status"))
}
