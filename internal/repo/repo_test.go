package repo_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"planforge/internal/db"
	"planforge/internal/migrate"
	"planforge/internal/repo"
)

type testEnv struct {
	db    *sql.DB
	store *repo.Store
	gw    repo.Gateways
}

func newTestEnv(t *testing.T, opts ...repo.Option) testEnv {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, migrate.Migrate(conn))
	n := 0
	opts = append([]repo.Option{
		repo.WithLogger(zaptest.NewLogger(t)),
		repo.WithIDs(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}, opts...)
	store, err := repo.NewStore(conn, opts...)
	require.NoError(t, err)
	return testEnv{db: conn, store: store, gw: repo.NewGateways(store)}
}

func strPtr(s string) *string { return &s }

// seed builds one of everything: project p1 → plan pl1 → phases ph1, ph2;
// job j1 and team t1 on ph1; role r1; agent a1; validator v1; task tk1 on j1
// assigned to a1 and checked by v1; action ac1 from ph1 to ph2.
func (e testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	g := e.gw
	_, err := g.Projects.Create(ctx, repo.ProjectCreate{ID: "p1", Name: "Launch"})
	require.NoError(t, err)
	_, err = g.Plans.Create(ctx, repo.PlanCreate{ID: "pl1", ProjectID: "p1", Description: "Ship it"})
	require.NoError(t, err)
	_, err = g.Phases.Create(ctx, repo.PhaseCreate{ID: "ph1", PlanID: "pl1", Name: "Build"})
	require.NoError(t, err)
	_, err = g.Phases.Create(ctx, repo.PhaseCreate{ID: "ph2", PlanID: "pl1", Name: "Release"})
	require.NoError(t, err)
	_, err = g.Jobs.Create(ctx, repo.JobCreate{ID: "j1", PhaseID: "ph1", Name: "Implement"})
	require.NoError(t, err)
	_, err = g.Teams.Create(ctx, repo.TeamCreate{ID: "t1", PhaseID: "ph1", Name: "Core"})
	require.NoError(t, err)
	_, err = g.Roles.Create(ctx, repo.RoleCreate{ID: "r1", Name: "Engineer"})
	require.NoError(t, err)
	_, err = g.Agents.Create(ctx, repo.AgentCreate{ID: "a1", TeamID: "t1", RoleID: "r1", Name: "Ada"})
	require.NoError(t, err)
	_, err = g.Validators.Create(ctx, repo.ValidatorCreate{ID: "v1", Template: "tests-pass", Resource: "ci"})
	require.NoError(t, err)
	_, err = g.Tasks.Create(ctx, repo.TaskCreate{ID: "tk1", JobID: "j1", AgentID: strPtr("a1"), ValidatorID: strPtr("v1"), Name: "Write parser"})
	require.NoError(t, err)
	_, err = g.Actions.Create(ctx, repo.ActionCreate{ID: "ac1", PhaseID: "ph1", TargetPhaseID: "ph2", ValidatorID: "v1", Name: "promote"})
	require.NoError(t, err)
}
