package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"planforge/internal/domain"
	"planforge/internal/events"
)

// Gateways bundles one gateway per entity kind over a shared store.
type Gateways struct {
	Projects   *ProjectGateway
	Plans      *PlanGateway
	Phases     *PhaseGateway
	Jobs       *JobGateway
	Teams      *TeamGateway
	Roles      *RoleGateway
	Agents     *AgentGateway
	Validators *ValidatorGateway
	Tasks      *TaskGateway
	Actions    *ActionGateway
}

func NewGateways(s *Store) Gateways {
	return Gateways{
		Projects:   NewProjectGateway(s),
		Plans:      NewPlanGateway(s),
		Phases:     NewPhaseGateway(s),
		Jobs:       NewJobGateway(s),
		Teams:      NewTeamGateway(s),
		Roles:      NewRoleGateway(s),
		Agents:     NewAgentGateway(s),
		Validators: NewValidatorGateway(s),
		Tasks:      NewTaskGateway(s),
		Actions:    NewActionGateway(s),
	}
}

// EventFilter narrows Events. Zero fields match everything; Limit <= 0 means
// 50.
type EventFilter struct {
	Kind     domain.Kind
	EntityID string
	Limit    int
}

const kindEvent domain.Kind = "event"

// Events returns audit events newest first.
func (s *Store) Events(ctx context.Context, f EventFilter) ([]events.Event, error) {
	return within(ctx, s, kindEvent, opList, f.EntityID, func(tx *sql.Tx) ([]events.Event, error) {
		var (
			where []string
			args  []any
		)
		if f.Kind != "" {
			where = append(where, "entity_kind=?")
			args = append(args, string(f.Kind))
		}
		if f.EntityID != "" {
			where = append(where, "entity_id=?")
			args = append(args, f.EntityID)
		}
		limit := f.Limit
		if limit <= 0 {
			limit = 50
		}
		query := `SELECT id,ts,type,entity_kind,entity_id,payload_json FROM events`
		if len(where) > 0 {
			query += " WHERE " + strings.Join(where, " AND ")
		}
		query += " ORDER BY id DESC LIMIT ?"
		args = append(args, limit)
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		out := []events.Event{}
		for rows.Next() {
			var (
				e       events.Event
				payload string
			)
			if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &payload); err != nil {
				return nil, err
			}
			if err := json.Unmarshal([]byte(payload), &e.Payload); err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, rows.Err()
	})
}
