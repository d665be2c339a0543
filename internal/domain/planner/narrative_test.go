package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackNarrativeThresholds(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		summary  Summary
		tone     NarrativeTone
		contains string
	}{
		{
			name:     "overdue wins over high completion",
			summary:  Summary{OverdueTasks: 2, CompletionPct: 95},
			tone:     ToneOverdue,
			contains: "2 overdue tasks",
		},
		{
			name:     "single overdue task",
			summary:  Summary{OverdueTasks: 1},
			tone:     ToneOverdue,
			contains: "1 overdue task.",
		},
		{
			name:     "encouragement at threshold",
			summary:  Summary{CompletionPct: 80},
			tone:     ToneEncouragement,
			contains: "80%",
		},
		{
			name:     "push harder below threshold",
			summary:  Summary{CompletionPct: 79, DaysLeft: 4},
			tone:     TonePushHarder,
			contains: "4 days left",
		},
		{
			name:     "push harder on empty plan",
			summary:  Summary{DaysLeft: 1},
			tone:     TonePushHarder,
			contains: "1 day left",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.tone, ToneFor(tc.summary))
			text := FallbackNarrative(tc.summary)
			assert.Contains(t, text, tc.contains)
			assert.Equal(t, text, FallbackNarrative(tc.summary), "deterministic")
		})
	}
}
