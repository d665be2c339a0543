package domain

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Subject is a named area of study owned by a user.
type Subject struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

// NewSubject creates a subject named name for userID.
func NewSubject(userID uuid.UUID, name string) (*Subject, error) {
	s := &Subject{ID: uuid.New(), UserID: userID, Name: strings.TrimSpace(name)}
	if s.UserID == uuid.Nil {
		return nil, NewValidationError("user_id", "subject user ID cannot be empty")
	}
	if s.Name == "" {
		return nil, NewValidationError("name", "subject name is required")
	}
	return s, nil
}

// CurriculumItem is either a top-level learning objective (ParentID == nil) or a
// lesson under one. Its three flags are independent of each other and of the flags
// of its children.
type CurriculumItem struct {
	ID        uuid.UUID  `json:"id"`
	SubjectID uuid.UUID  `json:"subject_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	Studied   bool       `json:"studied"`
	Reviewed  bool       `json:"reviewed"`
	Solved    bool       `json:"solved"`
}

// NewCurriculumItem creates an item with all flags cleared. parentID is nil for a
// top-level learning objective.
func NewCurriculumItem(subjectID uuid.UUID, parentID *uuid.UUID, title string, position int) (*CurriculumItem, error) {
	item := &CurriculumItem{
		ID:        uuid.New(),
		SubjectID: subjectID,
		ParentID:  parentID,
		Title:     strings.TrimSpace(title),
		Position:  position,
	}
	if item.SubjectID == uuid.Nil {
		return nil, NewValidationError("subject_id", "subject ID cannot be empty")
	}
	if item.Title == "" {
		return nil, NewValidationError("title", "title is required")
	}
	if item.Position < 0 {
		return nil, NewValidationError("position", "position cannot be negative")
	}
	return item, nil
}

// IsObjective reports whether the item is a top-level learning objective.
func (c *CurriculumItem) IsObjective() bool {
	return c.ParentID == nil
}

// Flags is a partial update of an item's completion flags.
type Flags struct {
	Studied  *bool `json:"studied,omitempty"`
	Reviewed *bool `json:"reviewed,omitempty"`
	Solved   *bool `json:"solved,omitempty"`
}

// Apply copies the set flags onto item.
func (f Flags) Apply(item *CurriculumItem) {
	if f.Studied != nil {
		item.Studied = *f.Studied
	}
	if f.Reviewed != nil {
		item.Reviewed = *f.Reviewed
	}
	if f.Solved != nil {
		item.Solved = *f.Solved
	}
}

// IsEmpty reports whether no flag is set.
func (f Flags) IsEmpty() bool {
	return f.Studied == nil && f.Reviewed == nil && f.Solved == nil
}

// CurriculumIndex is a read-only snapshot of a user's subjects and items.
type CurriculumIndex struct {
	Subjects []Subject
	Items    []CurriculumItem
}

// SubjectName returns the name of subjectID, or "" when unknown.
func (ci *CurriculumIndex) SubjectName(subjectID uuid.UUID) string {
	for _, s := range ci.Subjects {
		if s.ID == subjectID {
			return s.Name
		}
	}
	return ""
}

// Objectives returns the top-level learning objectives whose subject passes
// inScope, ordered by subject name, then position, then title.
func (ci *CurriculumIndex) Objectives(inScope func(uuid.UUID) bool) []CurriculumItem {
	names := make(map[uuid.UUID]string, len(ci.Subjects))
	for _, s := range ci.Subjects {
		names[s.ID] = s.Name
	}

	var out []CurriculumItem
	for _, item := range ci.Items {
		if !item.IsObjective() {
			continue
		}
		if _, known := names[item.SubjectID]; !known {
			continue
		}
		if inScope != nil && !inScope(item.SubjectID) {
			continue
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		ni, nj := names[out[i].SubjectID], names[out[j].SubjectID]
		if ni != nj {
			return ni < nj
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Title < out[j].Title
	})
	return out
}
