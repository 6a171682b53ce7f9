package domain

// Kind names an entity kind. It doubles as the audit event prefix and the
// metrics label for gateway operations.
type Kind string

const (
	KindProject   Kind = "project"
	KindPlan      Kind = "plan"
	KindPhase     Kind = "phase"
	KindJob       Kind = "job"
	KindTeam      Kind = "team"
	KindRole      Kind = "role"
	KindAgent     Kind = "agent"
	KindValidator Kind = "validator"
	KindTask      Kind = "task"
	KindAction    Kind = "action"
)

// Kinds lists every entity kind in parent-first order.
func Kinds() []Kind {
	return []Kind{
		KindProject, KindPlan, KindPhase, KindJob, KindTeam,
		KindRole, KindAgent, KindValidator, KindTask, KindAction,
	}
}

func (k Kind) String() string { return string(k) }
