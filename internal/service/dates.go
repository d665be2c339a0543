package service

import (
	"time"

	"github.com/phrazzld/studyplan-api/internal/config"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

func dateIn(t time.Time, cfg config.PlannerConfig) time.Time {
	return domain.DateOf(t, cfg.Location())
}

func datePtr(t time.Time) *time.Time {
	return &t
}
