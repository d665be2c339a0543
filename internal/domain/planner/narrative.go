package planner

import "fmt"

// EncouragementThreshold is the completion percentage from which the fallback
// narrative congratulates instead of pushing.
const EncouragementThreshold = 80

// NarrativeTone selects one of the fallback templates.
type NarrativeTone string

// Fallback narrative tones
const (
	ToneOverdue       NarrativeTone = "overdue"
	ToneEncouragement NarrativeTone = "encouragement"
	TonePushHarder    NarrativeTone = "push_harder"
)

// ToneFor picks the tone for s: overdue work first, then high completion.
func ToneFor(s Summary) NarrativeTone {
	switch {
	case s.OverdueTasks > 0:
		return ToneOverdue
	case s.CompletionPct >= EncouragementThreshold:
		return ToneEncouragement
	default:
		return TonePushHarder
	}
}

// FallbackNarrative is the deterministic status text used whenever generated text
// is unavailable.
func FallbackNarrative(s Summary) string {
	switch ToneFor(s) {
	case ToneOverdue:
		return fmt.Sprintf(
			"You have %d overdue %s. Clear them today so they do not pile up before your deadline.",
			s.OverdueTasks, plural(s.OverdueTasks, "task", "tasks"))
	case ToneEncouragement:
		return fmt.Sprintf(
			"Great work: %d%% of your plan is done. Keep the same rhythm and you will finish on time.",
			s.CompletionPct)
	default:
		return fmt.Sprintf(
			"You are %d%% through your plan with %d %s left. Push a little harder today to stay on track.",
			s.CompletionPct, s.DaysLeft, plural(s.DaysLeft, "day", "days"))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
