package planner

import (
	"github.com/google/uuid"
	"github.com/phrazzld/studyplan-api/internal/domain"
)

// Source is the input a plan is generated from. It is a closed set: either a
// CurriculumSource or a DescriptionSource.
type Source interface {
	Mode() domain.GenerationMode
	isSource()
}

// CurriculumSource derives units from the completion gaps of a curriculum.
type CurriculumSource struct {
	Index domain.CurriculumIndex
	// InScope filters subjects; nil keeps every subject.
	InScope func(subjectID uuid.UUID) bool
}

// Mode implements Source.
func (CurriculumSource) Mode() domain.GenerationMode { return domain.ModeCurriculum }

func (CurriculumSource) isSource() {}

// SubjectSessions is one subject of a description-derived plan.
type SubjectSessions struct {
	Name            string     `json:"name"`
	SubjectID       *uuid.UUID `json:"subject_id,omitempty"`
	Sessions        int        `json:"sessions"`
	DurationMinutes int        `json:"duration_minutes"`
	Weak            bool       `json:"weak"`
}

// DescriptionSource derives units from a parsed natural-language plan.
type DescriptionSource struct {
	Subjects     []SubjectSessions `json:"subjects"`
	ReviewPasses bool              `json:"review_passes"`
	// DurationDays is the requested horizon; zero lets the caller decide.
	DurationDays int `json:"duration_days"`
}

// Mode implements Source.
func (DescriptionSource) Mode() domain.GenerationMode { return domain.ModeDescription }

func (DescriptionSource) isSource() {}
