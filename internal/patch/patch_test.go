package patch_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/patch"
)

type status string

type roleUpdate struct {
	Name        patch.Field[string] `json:"name,omitzero"`
	Description patch.Field[string] `json:"description,omitzero"`
	Status      patch.Field[status] `json:"status,omitzero"`
}

func TestFieldStatesFromJSON(t *testing.T) {
	var in roleUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","description":null}`), &in))

	assert.True(t, in.Name.IsSet())
	v, ok := in.Name.Get()
	assert.True(t, ok)
	assert.Equal(t, "X", v)

	assert.True(t, in.Description.IsSet())
	assert.True(t, in.Description.IsNull())
	_, ok = in.Description.Get()
	assert.False(t, ok)

	assert.False(t, in.Status.IsSet())
}

func TestFieldMarshalOmitsAbsent(t *testing.T) {
	data, err := json.Marshal(roleUpdate{Name: patch.Set("X"), Description: patch.Clear[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X","description":null}`, string(data))
}

func TestReduceOnlyTouchesPresentFields(t *testing.T) {
	name, desc, st := "old", "kept", status("PENDING")
	descPtr := &desc
	var r patch.Reducer
	patch.Reduce(&r, "name", patch.Set("new"), &name)
	patch.ReduceOptional(&r, "description", patch.Field[string]{}, &descPtr)
	patch.Reduce(&r, "status", patch.Field[status]{}, &st)

	p := r.Patch()
	assert.Equal(t, []string{"name"}, p.Columns())
	assert.Equal(t, "new", name)
	assert.Equal(t, "kept", *descPtr)
	assert.Equal(t, status("PENDING"), st)
}

func TestReduceDropsNoOps(t *testing.T) {
	name := "same"
	var r patch.Reducer
	patch.Reduce(&r, "name", patch.Set("same"), &name)
	assert.True(t, r.Patch().Empty())
}

func TestReduceOptionalClear(t *testing.T) {
	desc := "writes code"
	descPtr := &desc
	var r patch.Reducer
	patch.ReduceOptional(&r, "description", patch.Clear[string](), &descPtr)
	assert.Nil(t, descPtr)
	p := r.Patch()
	require.Len(t, p, 1)
	assert.Equal(t, "description", p[0].Column)
	assert.Nil(t, p[0].Value)

	// clearing an already absent value is a no-op
	var r2 patch.Reducer
	patch.ReduceOptional(&r2, "description", patch.Clear[string](), &descPtr)
	assert.True(t, r2.Patch().Empty())
}

func TestReduceNamedStringBecomesPlain(t *testing.T) {
	st := status("PENDING")
	var r patch.Reducer
	patch.Reduce(&r, "status", patch.Set(status("RUNNING")), &st)
	p := r.Patch()
	require.Len(t, p, 1)
	assert.IsType(t, "", p[0].Value)
}

func TestPatchSQL(t *testing.T) {
	p := patch.Patch{{Column: "name", Value: "X"}, {Column: "agent_id", Value: nil}}
	query, args := p.SQL("tasks", "id", "tk1")
	assert.Equal(t, `UPDATE tasks SET name=?,agent_id=? WHERE id=?`, query)
	assert.Equal(t, []any{"X", nil, "tk1"}, args)
	assert.Equal(t, map[string]any{"name": "X", "agent_id": nil}, p.Changes())
}

func TestPatchInsertSQL(t *testing.T) {
	p := patch.Patch{{Column: "id", Value: "r1"}, {Column: "name", Value: "Engineer"}}
	query, args := p.InsertSQL("roles")
	assert.Equal(t, `INSERT INTO roles(id,name) VALUES (?,?)`, query)
	assert.Equal(t, []any{"r1", "Engineer"}, args)

	v, ok := p.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, "Engineer", v)
	_, ok = p.Lookup("description")
	assert.False(t, ok)
}
