package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/generation"
	"github.com/phrazzld/studyplan-api/internal/store"
)

// Clock returns the current instant. Services take one so tests can pin "today".
type Clock func() time.Time

// Deps are the collaborators shared by the services. Each constructor checks the
// fields it needs.
type Deps struct {
	Transactor store.Transactor
	Goals      store.GoalStore
	Plans      store.PlanStore
	Tasks      store.PlanTaskStore
	Curriculum store.CurriculumStore
	Generator  generation.TextGenerator
	Planner    config.PlannerConfig
	LLM        config.LLMConfig
	Clock      Clock
	Logger     *slog.Logger
}

// require returns a ServiceError naming the first missing dependency.
func (d *Deps) require(service string, fields ...string) error {
	for _, f := range fields {
		missing := false
		switch f {
		case "transactor":
			missing = d.Transactor == nil
		case "goals":
			missing = d.Goals == nil
		case "plans":
			missing = d.Plans == nil
		case "tasks":
			missing = d.Tasks == nil
		case "curriculum":
			missing = d.Curriculum == nil
		}
		if missing {
			return &ServiceError{
				Operation: "create_" + service,
				Message:   fmt.Sprintf("%s cannot be nil", f),
			}
		}
	}

	if d.Generator == nil {
		d.Generator = generation.Unavailable{}
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return nil
}

// today is the learner's current calendar date in the configured timezone.
func (d *Deps) today() time.Time {
	return dateIn(d.Clock(), d.Planner)
}
