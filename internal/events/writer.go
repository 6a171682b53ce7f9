package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"planforge/internal/domain"
)

// Event is one audit row.
type Event struct {
	ID         int64          `json:"id"`
	TS         string         `json:"ts" format:"date-time"`
	Type       string         `json:"type"`
	EntityKind domain.Kind    `json:"entityKind"`
	EntityID   string         `json:"entityId"`
	Payload    map[string]any `json:"payload"`
}

type EventPayload map[string]any

// Execer is satisfied by *sql.Tx and *sql.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Writer struct {
	Now func() time.Time
}

// Type builds the event type for a mutation, e.g. "task.updated".
func Type(kind domain.Kind, verb string) string {
	return string(kind) + "." + verb
}

func (w Writer) Append(ctx context.Context, tx Execer, evtType string, kind domain.Kind, entityID string, payload EventPayload) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339Nano)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, string(kind), entityID, string(data))
	return err
}
