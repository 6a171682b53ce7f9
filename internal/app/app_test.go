package app_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/app"
	"planforge/internal/migrate"
	"planforge/internal/repo"
)

func TestOpenMigratesAndServes(t *testing.T) {
	ws := t.TempDir()
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	a, err := app.Open(ctx, app.Options{Workspace: ws, Registerer: reg})
	require.NoError(t, err)
	pending, err := migrate.Pending(a.DB)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = a.Gateways.Roles.Create(ctx, repo.RoleCreate{ID: "r1", Name: "Engineer"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// reopening the same workspace keeps the data
	a, err = app.Open(ctx, app.Options{Workspace: ws})
	require.NoError(t, err)
	defer a.Close()
	role, err := a.Gateways.Roles.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Engineer", role.Name)
}
