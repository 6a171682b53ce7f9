package patch

import (
	"fmt"
	"reflect"
	"strings"
)

// Assignment sets one column. A nil Value stores NULL.
type Assignment struct {
	Column string
	Value  any
}

// Patch is an ordered list of column assignments.
type Patch []Assignment

func (p Patch) Empty() bool { return len(p) == 0 }

// Columns returns the assigned column names in order.
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p))
	for _, a := range p {
		cols = append(cols, a.Column)
	}
	return cols
}

// Changes returns the assignments keyed by column, for audit payloads.
func (p Patch) Changes() map[string]any {
	out := make(map[string]any, len(p))
	for _, a := range p {
		out[a.Column] = a.Value
	}
	return out
}

// SQL renders the patch as an UPDATE against table, keyed on the id column.
func (p Patch) SQL(table, idColumn string, id any) (string, []any) {
	fields := make([]string, 0, len(p))
	args := make([]any, 0, len(p)+1)
	for _, a := range p {
		fields = append(fields, a.Column+"=?")
		args = append(args, a.Value)
	}
	args = append(args, id)
	return fmt.Sprintf(`UPDATE %s SET %s WHERE %s=?`, table, strings.Join(fields, ","), idColumn), args
}

// Reducer accumulates the minimal patch for one update. Each Reduce call
// looks at a single input field: absent fields are skipped entirely, present
// ones are written into the candidate and recorded when they change the value.
type Reducer struct {
	assignments Patch
}

// Reduce applies in to the required field *dst. Clearing a required field
// writes its zero value so the entity constructor can reject it.
func Reduce[T comparable](r *Reducer, column string, in Field[T], dst *T) {
	if !in.IsSet() {
		return
	}
	next, _ := in.Get()
	if *dst == next {
		return
	}
	*dst = next
	r.assignments = append(r.assignments, Assignment{Column: column, Value: columnValue(next, in.IsNull())})
}

// ReduceOptional applies in to the optional field *dst. Clearing sets it to nil.
func ReduceOptional[T comparable](r *Reducer, column string, in Field[T], dst **T) {
	if !in.IsSet() {
		return
	}
	if in.IsNull() {
		if *dst == nil {
			return
		}
		*dst = nil
		r.assignments = append(r.assignments, Assignment{Column: column, Value: nil})
		return
	}
	next, _ := in.Get()
	if *dst != nil && **dst == next {
		return
	}
	v := next
	*dst = &v
	r.assignments = append(r.assignments, Assignment{Column: column, Value: columnValue(next, false)})
}

// Patch returns the assignments collected so far.
func (r *Reducer) Patch() Patch {
	return append(Patch(nil), r.assignments...)
}

// columnValue unwraps named string types so the driver sees a plain string.
func columnValue(v any, null bool) any {
	if null {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String()
	}
	return v
}

// InsertSQL renders the patch as an INSERT into table. Columns left out take
// their schema defaults.
func (p Patch) InsertSQL(table string) (string, []any) {
	marks := make([]string, 0, len(p))
	args := make([]any, 0, len(p))
	for _, a := range p {
		marks = append(marks, "?")
		args = append(args, a.Value)
	}
	return fmt.Sprintf(`INSERT INTO %s(%s) VALUES (%s)`, table, strings.Join(p.Columns(), ","), strings.Join(marks, ",")), args
}

// Lookup returns the value assigned to column, if any.
func (p Patch) Lookup(column string) (any, bool) {
	for _, a := range p {
		if a.Column == column {
			return a.Value, true
		}
	}
	return nil, false
}
