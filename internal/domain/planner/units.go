package planner

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// ErrUnknownSource is returned for a Source implementation the planner does not handle.
var ErrUnknownSource = errors.New("unknown plan source")

// WorkUnit is a schedulable piece of study work that has no date yet.
type WorkUnit struct {
	SubjectID       *uuid.UUID
	SubjectName     string
	Kind            domain.TaskKind
	Title           string
	DurationMinutes int
	Priority        int
}

// GenerateUnits derives the ordered unit queue for src.
func GenerateUnits(src Source, params *Params) ([]WorkUnit, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	switch s := src.(type) {
	case CurriculumSource:
		return UnitsFromCurriculum(s.Index, s.InScope, params), nil
	case *CurriculumSource:
		return UnitsFromCurriculum(s.Index, s.InScope, params), nil
	case DescriptionSource:
		return UnitsFromDescription(s.Subjects, s.ReviewPasses, params), nil
	case *DescriptionSource:
		return UnitsFromDescription(s.Subjects, s.ReviewPasses, params), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownSource, src)
	}
}

// UnitsFromCurriculum emits up to three units per top-level learning objective,
// one for each of its study, review and solve flags that is still false. A later
// phase's prerequisite is either already done or scheduled ahead of it, because
// units are ordered by phase (all study, then all review, then all solve) and then
// by subject name. Objectives of one subject keep their curriculum order.
func UnitsFromCurriculum(
	index domain.CurriculumIndex,
	inScope func(uuid.UUID) bool,
	params *Params,
) []WorkUnit {
	objectives := index.Objectives(inScope)
	units := make([]WorkUnit, 0, len(objectives))

	for _, lo := range objectives {
		subjectID := lo.SubjectID
		name := index.SubjectName(lo.SubjectID)
		add := func(kind domain.TaskKind, minutes int, label string) {
			units = append(units, WorkUnit{
				SubjectID:       &subjectID,
				SubjectName:     name,
				Kind:            kind,
				Title:           fmt.Sprintf("%s: %s", label, lo.Title),
				DurationMinutes: minutes,
				Priority:        params.Priority[kind],
			})
		}

		if !lo.Studied {
			add(domain.TaskKindStudy, params.StudyMinutes, "Study")
		}
		if !lo.Reviewed {
			add(domain.TaskKindReview, params.ReviewMinutes, "Review")
		}
		if !lo.Solved {
			add(domain.TaskKindSolve, params.SolveMinutes, "Solve")
		}
	}

	sort.SliceStable(units, func(i, j int) bool {
		pi, pj := phase(units[i].Kind), phase(units[j].Kind)
		if pi != pj {
			return pi < pj
		}
		return units[i].SubjectName < units[j].SubjectName
	})
	return units
}

// UnitsFromDescription builds one queue per subject and merges them with
// Interleave. When reviewPasses is set, a weak subject gets
// max(1, sessions/SessionsPerReview) extra review units at ReviewFactor of its
// session duration, appended to the end of that subject's own queue.
func UnitsFromDescription(subjects []SubjectSessions, reviewPasses bool, params *Params) []WorkUnit {
	queues := make([][]WorkUnit, 0, len(subjects))

	for _, subject := range subjects {
		if subject.Sessions <= 0 {
			continue
		}

		minutes := subject.DurationMinutes
		if minutes <= 0 {
			minutes = params.DefaultSessionMinutes
		}
		priority := params.SessionPriority
		if subject.Weak {
			priority = params.WeakSessionPriority
		}

		queue := make([]WorkUnit, 0, subject.Sessions+1)
		for i := 1; i <= subject.Sessions; i++ {
			queue = append(queue, WorkUnit{
				SubjectID:       subject.SubjectID,
				SubjectName:     subject.Name,
				Kind:            domain.TaskKindSession,
				Title:           fmt.Sprintf("%s session %d", subject.Name, i),
				DurationMinutes: minutes,
				Priority:        priority,
			})
		}

		if reviewPasses && subject.Weak {
			reviews := subject.Sessions / params.SessionsPerReview
			if reviews < 1 {
				reviews = 1
			}
			reviewMinutes := int(math.Round(float64(minutes) * params.ReviewFactor))
			if reviewMinutes < 1 {
				reviewMinutes = 1
			}
			for i := 1; i <= reviews; i++ {
				queue = append(queue, WorkUnit{
					SubjectID:       subject.SubjectID,
					SubjectName:     subject.Name,
					Kind:            domain.TaskKindReview,
					Title:           fmt.Sprintf("%s review %d", subject.Name, i),
					DurationMinutes: reviewMinutes,
					Priority:        params.ReviewPriority,
				})
			}
		}

		queues = append(queues, queue)
	}

	return Interleave(queues)
}

// Interleave merges queues round-robin: one unit from the front of each non-empty
// queue, in queue order, until every queue is empty. Each queue's internal order is
// preserved.
func Interleave(queues [][]WorkUnit) []WorkUnit {
	total := 0
	for _, q := range queues {
		total += len(q)
	}

	out := make([]WorkUnit, 0, total)
	for round := 0; len(out) < total; round++ {
		for _, q := range queues {
			if round < len(q) {
				out = append(out, q[round])
			}
		}
	}
	return out
}
