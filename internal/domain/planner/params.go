package planner

import "github.com/phrazzld/studyplan-api/internal/domain"

// Params holds the fixed durations and priorities used when deriving work units.
type Params struct {
	// Durations in minutes for curriculum-derived units.
	StudyMinutes  int
	ReviewMinutes int
	SolveMinutes  int

	// Priorities per curriculum phase. Earlier phases carry larger numbers.
	Priority map[domain.TaskKind]int

	// Description-derived units.
	SessionPriority     int
	WeakSessionPriority int
	ReviewPriority      int
	// ReviewFactor scales a subject's session duration for its review units.
	ReviewFactor float64
	// SessionsPerReview is the number of sessions that earn one review unit.
	SessionsPerReview int
	// DefaultSessionMinutes replaces missing or non-positive session durations.
	DefaultSessionMinutes int

	// MaxTasksPerDay caps count-budget allocation.
	MaxTasksPerDay int
}

// NewDefaultParams returns the standard scheduling parameters.
func NewDefaultParams() *Params {
	return &Params{
		StudyMinutes:  60,
		ReviewMinutes: 45,
		SolveMinutes:  45,
		Priority: map[domain.TaskKind]int{
			domain.TaskKindStudy:  3,
			domain.TaskKindReview: 2,
			domain.TaskKindSolve:  1,
		},

		SessionPriority:       2,
		WeakSessionPriority:   3,
		ReviewPriority:        1,
		ReviewFactor:          0.6,
		SessionsPerReview:     3,
		DefaultSessionMinutes: 60,

		MaxTasksPerDay: 3,
	}
}

// phase orders curriculum kinds: everything studied before anything reviewed,
// everything reviewed before anything solved.
func phase(kind domain.TaskKind) int {
	switch kind {
	case domain.TaskKindStudy:
		return 0
	case domain.TaskKindReview:
		return 1
	case domain.TaskKindSolve:
		return 2
	default:
		return 3
	}
}
