package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"planforge/internal/domain"
	"planforge/internal/events"
	"planforge/internal/patch"
	"planforge/internal/relations"
	"planforge/internal/result"
)

// table describes how one entity kind is read from and written to its table.
// C is the kind's candidate record and E the validated entity.
type table[C any, E interface{ Candidate() C }] struct {
	kind    domain.Kind
	columns string
	scan    func(rowScanner) (C, error)
	derive  func(ctx context.Context, q queryer, c *C) error
	build   func(C) (E, error)
}

func (t table[C, E]) name() string { return relations.Table(t.kind) }

func (t table[C, E]) get(ctx context.Context, q queryer, id string) (E, error) {
	var zero E
	c, err := t.scan(q.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE id=?`, t.columns, t.name()), id))
	if errors.Is(err, sql.ErrNoRows) {
		return zero, &NotFoundError{Kind: t.kind, ID: id}
	}
	if err != nil {
		return zero, err
	}
	return t.finish(ctx, q, c)
}

// list reads every row matching where in store order and validates them all.
// One bad row fails the whole list.
func (t table[C, E]) list(ctx context.Context, q queryer, where string, args ...any) ([]E, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, t.columns, t.name())
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, rowid"
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var candidates []C
	for rows.Next() {
		c, err := t.scan(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	return result.Collect(candidates, func(c C) (E, error) {
		return t.finish(ctx, q, c)
	})
}

func (t table[C, E]) finish(ctx context.Context, q queryer, c C) (E, error) {
	if t.derive != nil {
		if err := t.derive(ctx, q, &c); err != nil {
			var zero E
			return zero, err
		}
	}
	return t.build(c)
}

// insert writes p, which must assign the id column, and re-reads the row.
func (t table[C, E]) insert(ctx context.Context, s *Store, tx *sql.Tx, p patch.Patch) (E, error) {
	var zero E
	v, _ := p.Lookup("id")
	id, _ := v.(string)
	if err := checkRefs(ctx, tx, t.kind, id, p); err != nil {
		return zero, err
	}
	query, args := p.InsertSQL(t.name())
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return zero, err
	}
	if err := s.emit(ctx, tx, t.kind, "created", id, p.Changes()); err != nil {
		return zero, err
	}
	return t.get(ctx, tx, id)
}

// update loads id, lets apply reduce the input onto its candidate and writes
// the resulting patch. The merged candidate is validated before anything is
// written, and an empty patch writes nothing.
func (t table[C, E]) update(ctx context.Context, s *Store, tx *sql.Tx, id string, apply func(c *C, r *patch.Reducer)) (E, error) {
	var zero E
	cur, err := t.get(ctx, tx, id)
	if err != nil {
		return zero, err
	}
	c := cur.Candidate()
	var r patch.Reducer
	apply(&c, &r)
	if _, err := t.build(c); err != nil {
		return zero, err
	}
	p := r.Patch()
	if p.Empty() {
		return cur, nil
	}
	if err := checkRefs(ctx, tx, t.kind, id, p); err != nil {
		return zero, err
	}
	query, args := p.SQL(t.name(), "id", id)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return zero, err
	}
	if err := s.emit(ctx, tx, t.kind, "updated", id, p.Changes()); err != nil {
		return zero, err
	}
	return t.get(ctx, tx, id)
}

// within runs fn in one gateway transaction and returns its value.
func within[T any](ctx context.Context, s *Store, kind domain.Kind, op, id string, fn func(tx *sql.Tx) (T, error)) (T, error) {
	var out T
	err := s.run(ctx, kind, op, id, func(tx *sql.Tx) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func exists(ctx context.Context, q queryer, kind domain.Kind, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE id=?`, relations.Table(kind)), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// requireScope fails with NotFoundError when the record a scoped read hangs
// off does not exist.
func requireScope(ctx context.Context, q queryer, kind domain.Kind, id string) error {
	ok, err := exists(ctx, q, kind, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// checkRefs verifies every parent reference assigned by p names an existing
// record, and that 1:1 parents are not already taken by another record.
func checkRefs(ctx context.Context, q queryer, kind domain.Kind, selfID string, p patch.Patch) error {
	for _, rel := range relations.Parents(kind) {
		v, ok := p.Lookup(rel.Column)
		if !ok || v == nil {
			continue
		}
		parentID, _ := v.(string)
		found, err := exists(ctx, q, rel.Parent, parentID)
		if err != nil {
			return err
		}
		if !found {
			return &NotFoundError{Kind: rel.Parent, ID: parentID, Ref: rel.Ref()}
		}
		if rel.Cardinality != relations.One {
			continue
		}
		var other string
		err = q.QueryRowContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s=? AND id<>? LIMIT 1`, relations.Table(rel.Child), rel.Column), parentID, selfID).Scan(&other)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return err
		default:
			return &ConstraintError{Reason: fmt.Sprintf("%s %q already has %s %q (%s)", rel.Parent, parentID, rel.Child, other, rel.Ref())}
		}
	}
	return nil
}

// childIDs lists the children on rel that point at parentID, in store order.
func childIDs(ctx context.Context, q queryer, rel relations.Relation, parentID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s WHERE %s=? ORDER BY created_at, rowid`, relations.Table(rel.Child), rel.Column), parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// childID is childIDs for a 1:1 relation.
func childID(ctx context.Context, q queryer, rel relations.Relation, parentID string) (*string, error) {
	ids, err := childIDs(ctx, q, rel, parentID)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return &ids[0], nil
}

// remove deletes kind/id and applies the delete policy of every relation in
// which it is the parent.
func (s *Store) remove(ctx context.Context, kind domain.Kind, id string) (bool, error) {
	return within(ctx, s, kind, opDelete, id, func(tx *sql.Tx) (bool, error) {
		if err := requireScope(ctx, tx, kind, id); err != nil {
			return false, err
		}
		if err := s.deleteTree(ctx, tx, kind, id, ""); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (s *Store) deleteTree(ctx context.Context, tx *sql.Tx, kind domain.Kind, id, via string) error {
	for _, rel := range relations.Children(kind) {
		ids, err := childIDs(ctx, tx, rel, id)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			continue
		}
		switch rel.OnDelete {
		case relations.Restrict:
			return &ConstraintError{Reason: fmt.Sprintf("%s %q is still referenced by %d %s record(s) (%s)", kind, id, len(ids), rel.Child, rel.Ref())}
		case relations.Nullify:
			child := relations.Table(rel.Child)
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET %s=NULL WHERE %s=?`, child, rel.Column, rel.Column), id); err != nil {
				return err
			}
			for _, cid := range ids {
				if err := s.emit(ctx, tx, rel.Child, "updated", cid, events.EventPayload{rel.Column: nil}); err != nil {
					return err
				}
			}
		case relations.Cascade:
			for _, cid := range ids {
				if err := s.deleteTree(ctx, tx, rel.Child, cid, string(kind)+":"+id); err != nil {
					return err
				}
			}
		}
	}
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id=?`, relations.Table(kind)), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: kind, ID: id}
	}
	payload := events.EventPayload{}
	if via != "" {
		payload["via"] = via
	}
	return s.emit(ctx, tx, kind, "deleted", id, payload)
}
