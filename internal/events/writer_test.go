package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/db"
	"planforge/internal/domain"
	"planforge/internal/events"
	"planforge/internal/migrate"
)

func TestAppendWritesRow(t *testing.T) {
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, migrate.Migrate(conn))

	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	w := events.Writer{Now: func() time.Time { return at }}
	ctx := context.Background()
	require.NoError(t, w.Append(ctx, conn, events.Type(domain.KindTask, "updated"), domain.KindTask, "tk1", events.EventPayload{"name": "x"}))
	require.NoError(t, w.Append(ctx, conn, events.Type(domain.KindTask, "deleted"), domain.KindTask, "tk1", nil))

	rows, err := conn.Query(`SELECT ts,type,entity_kind,entity_id,payload_json FROM events ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var got [][5]string
	for rows.Next() {
		var r [5]string
		require.NoError(t, rows.Scan(&r[0], &r[1], &r[2], &r[3], &r[4]))
		got = append(got, r)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, [][5]string{
		{"2024-05-06T07:08:09Z", "task.updated", "task", "tk1", `{"name":"x"}`},
		{"2024-05-06T07:08:09Z", "task.deleted", "task", "tk1", `{}`},
	}, got)
}
