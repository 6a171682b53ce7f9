package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planforge/internal/domain"
)

func ptr(s string) *string { return &s }

// requiredFieldCase builds a candidate with every required field filled except
// the one named by field.
type requiredFieldCase struct {
	kind   domain.Kind
	fields []string
	build  func(omit string) error
}

func omitIf(omit, field, v string) string {
	if omit == field {
		return ""
	}
	return v
}

func requiredFieldCases() []requiredFieldCase {
	return []requiredFieldCase{
		{domain.KindProject, []string{"id", "name"}, func(o string) error {
			_, err := domain.NewProject(domain.ProjectCandidate{ID: omitIf(o, "id", "p1"), Name: omitIf(o, "name", "Apollo")})
			return err
		}},
		{domain.KindPlan, []string{"id", "projectId", "description"}, func(o string) error {
			_, err := domain.NewPlan(domain.PlanCandidate{ID: omitIf(o, "id", "pl1"), ProjectID: omitIf(o, "projectId", "p1"), Description: omitIf(o, "description", "launch")})
			return err
		}},
		{domain.KindPhase, []string{"id", "planId", "name"}, func(o string) error {
			_, err := domain.NewPhase(domain.PhaseCandidate{ID: omitIf(o, "id", "ph1"), PlanID: omitIf(o, "planId", "pl1"), Name: omitIf(o, "name", "design")})
			return err
		}},
		{domain.KindJob, []string{"id", "phaseId", "name"}, func(o string) error {
			_, err := domain.NewJob(domain.JobCandidate{ID: omitIf(o, "id", "j1"), PhaseID: omitIf(o, "phaseId", "ph1"), Name: omitIf(o, "name", "build")})
			return err
		}},
		{domain.KindTeam, []string{"id", "phaseId", "name"}, func(o string) error {
			_, err := domain.NewTeam(domain.TeamCandidate{ID: omitIf(o, "id", "t1"), PhaseID: omitIf(o, "phaseId", "ph1"), Name: omitIf(o, "name", "core")})
			return err
		}},
		{domain.KindRole, []string{"id", "name"}, func(o string) error {
			_, err := domain.NewRole(domain.RoleCandidate{ID: omitIf(o, "id", "r1"), Name: omitIf(o, "name", "Coder")})
			return err
		}},
		{domain.KindAgent, []string{"id", "teamId", "roleId", "name"}, func(o string) error {
			_, err := domain.NewAgent(domain.AgentCandidate{ID: omitIf(o, "id", "a1"), TeamID: omitIf(o, "teamId", "t1"), RoleID: omitIf(o, "roleId", "r1"), Name: omitIf(o, "name", "ada")})
			return err
		}},
		{domain.KindValidator, []string{"id", "template", "resource"}, func(o string) error {
			_, err := domain.NewValidator(domain.ValidatorCandidate{ID: omitIf(o, "id", "v1"), Template: omitIf(o, "template", "file-exists"), Resource: omitIf(o, "resource", "README.md")})
			return err
		}},
		{domain.KindTask, []string{"id", "jobId", "name"}, func(o string) error {
			_, err := domain.NewTask(domain.TaskCandidate{ID: omitIf(o, "id", "tk1"), JobID: omitIf(o, "jobId", "j1"), Name: omitIf(o, "name", "write docs")})
			return err
		}},
		{domain.KindAction, []string{"id", "phaseId", "targetPhaseId", "validatorId", "name"}, func(o string) error {
			_, err := domain.NewAction(domain.ActionCandidate{
				ID:            omitIf(o, "id", "ac1"),
				PhaseID:       omitIf(o, "phaseId", "ph1"),
				TargetPhaseID: omitIf(o, "targetPhaseId", "ph2"),
				ValidatorID:   omitIf(o, "validatorId", "v1"),
				Name:          omitIf(o, "name", "promote"),
			})
			return err
		}},
	}
}

func TestConstructorsAcceptCompleteCandidates(t *testing.T) {
	for _, tc := range requiredFieldCases() {
		require.NoError(t, tc.build(""), "kind %s", tc.kind)
	}
}

func TestMissingRequiredFieldIsNamed(t *testing.T) {
	for _, tc := range requiredFieldCases() {
		for _, field := range tc.fields {
			t.Run(string(tc.kind)+"/"+field, func(t *testing.T) {
				err := tc.build(field)
				require.Error(t, err)
				ve, ok := domain.AsValidation(err)
				require.True(t, ok, "expected ValidationError, got %T", err)
				assert.Equal(t, tc.kind, ve.Kind)
				assert.True(t, ve.Has(field))
				assert.Contains(t, err.Error(), field)
			})
		}
	}
}

func TestBlankNameFails(t *testing.T) {
	_, err := domain.NewRole(domain.RoleCandidate{ID: "r1", Name: "   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "blank")
}

func TestErrorNamesEveryFailingField(t *testing.T) {
	_, err := domain.NewAgent(domain.AgentCandidate{ID: "a1"})
	require.Error(t, err)
	for _, f := range []string{"teamId", "roleId", "name"} {
		assert.Contains(t, err.Error(), f)
	}
}

func TestMalformedIdentifiers(t *testing.T) {
	_, err := domain.NewTask(domain.TaskCandidate{ID: "tk1", JobID: "has space", Name: "x", AgentID: ptr("")})
	require.Error(t, err)
	ve, _ := domain.AsValidation(err)
	assert.True(t, ve.Has("jobId"))
	assert.True(t, ve.Has("agentId"))
	assert.False(t, ve.Has("validatorId"))
}

func TestStatusDefaultsAndEnumeration(t *testing.T) {
	job, err := domain.NewJob(domain.JobCandidate{ID: "j1", PhaseID: "ph1", Name: "build"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, job.Status)

	_, err = domain.NewJob(domain.JobCandidate{ID: "j1", PhaseID: "ph1", Name: "build", Status: "DONE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")

	_, err = domain.NewJob(domain.JobCandidate{ID: "j1", PhaseID: "ph1", Name: "build", Status: domain.JobCancelled})
	require.NoError(t, err)

	// tasks have no CANCELLED state
	_, err = domain.NewTask(domain.TaskCandidate{ID: "tk1", JobID: "j1", Name: "x", Status: "CANCELLED"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status")
}

func TestOptionalDescriptionMustNotBeEmpty(t *testing.T) {
	_, err := domain.NewProject(domain.ProjectCandidate{ID: "p1", Name: "Apollo", Description: ptr("")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")

	p, err := domain.NewProject(domain.ProjectCandidate{ID: "p1", Name: "Apollo"})
	require.NoError(t, err)
	assert.Nil(t, p.Description)
}

func TestDerivedCollectionsAreCopies(t *testing.T) {
	ids := []string{"tk1", "tk2"}
	job, err := domain.NewJob(domain.JobCandidate{ID: "j1", PhaseID: "ph1", Name: "build", TaskIDs: ids})
	require.NoError(t, err)
	ids[0] = "mutated"
	got := job.TaskIDs()
	assert.Equal(t, []string{"tk1", "tk2"}, got)
	got[1] = "mutated"
	assert.Equal(t, []string{"tk1", "tk2"}, job.TaskIDs())
}

func TestCandidateRoundTrip(t *testing.T) {
	task, err := domain.NewTask(domain.TaskCandidate{
		ID: "tk1", JobID: "j1", AgentID: ptr("a1"), Name: "ship", Status: domain.TaskRunning, CreatedAt: "2024-01-01T00:00:00.000Z",
	})
	require.NoError(t, err)
	again, err := domain.NewTask(task.Candidate())
	require.NoError(t, err)
	assert.Equal(t, task, again)
}

func TestRoleJSON(t *testing.T) {
	role, err := domain.NewRole(domain.RoleCandidate{ID: "r1", Name: "Coder", Description: ptr("writes code")})
	require.NoError(t, err)
	data, err := json.Marshal(role)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"r1","name":"Coder","description":"writes code","agentIds":[]}`, string(data))

	role.Description = nil
	data, err = json.Marshal(role)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "description"))
}

func TestValidID(t *testing.T) {
	assert.True(t, domain.ValidID("0b8e3f0e-5b9c-4d7e-9a43-1f2a3b4c5d6e"))
	assert.True(t, domain.ValidID("proj:alpha.1"))
	assert.False(t, domain.ValidID(""))
	assert.False(t, domain.ValidID("-leading"))
	assert.False(t, domain.ValidID(strings.Repeat("a", 129)))
}
