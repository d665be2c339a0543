package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Limits applied to parsed descriptions.
const (
	MaxSessionsPerSubject = 60
	MaxSessionMinutes     = 240
	MaxDescriptionDays    = 365
)

// ErrUnparseableDescription is returned when a parsed plan description is not
// valid JSON or describes nothing schedulable.
var ErrUnparseableDescription = errors.New("plan description could not be understood")

// ParseDescriptionJSON decodes the structured form of a natural-language plan,
// tolerating a surrounding markdown code fence. Malformed fields are coerced when
// there is an obvious safe value and rejected otherwise.
func ParseDescriptionJSON(raw string) (DescriptionSource, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return DescriptionSource{}, fmt.Errorf("%w: empty response", ErrUnparseableDescription)
	}

	var src DescriptionSource
	if err := json.Unmarshal([]byte(text), &src); err != nil {
		return DescriptionSource{}, fmt.Errorf("%w: %v", ErrUnparseableDescription, err)
	}

	return NormalizeDescription(src)
}

// NormalizeDescription trims names, fills default durations, drops empty subjects and
// enforces the limits above. It fails when no subject has a session left.
func NormalizeDescription(src DescriptionSource) (DescriptionSource, error) {
	out := DescriptionSource{
		ReviewPasses: src.ReviewPasses,
		DurationDays: src.DurationDays,
		Subjects:     make([]SubjectSessions, 0, len(src.Subjects)),
	}
	if out.DurationDays < 0 || out.DurationDays > MaxDescriptionDays {
		return DescriptionSource{}, fmt.Errorf("%w: duration_days must be between 0 and %d",
			ErrUnparseableDescription, MaxDescriptionDays)
	}

	for _, s := range src.Subjects {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return DescriptionSource{}, fmt.Errorf("%w: subject without a name", ErrUnparseableDescription)
		}
		if s.Sessions < 0 || s.Sessions > MaxSessionsPerSubject {
			return DescriptionSource{}, fmt.Errorf("%w: %s: sessions must be between 0 and %d",
				ErrUnparseableDescription, s.Name, MaxSessionsPerSubject)
		}
		if s.DurationMinutes <= 0 {
			s.DurationMinutes = NewDefaultParams().DefaultSessionMinutes
		}
		if s.DurationMinutes > MaxSessionMinutes {
			s.DurationMinutes = MaxSessionMinutes
		}
		if s.Sessions == 0 {
			continue
		}
		out.Subjects = append(out.Subjects, s)
	}

	if len(out.Subjects) == 0 {
		return DescriptionSource{}, fmt.Errorf("%w: no subject has any sessions", ErrUnparseableDescription)
	}
	return out, nil
}

func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:] // drop the language tag line
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
