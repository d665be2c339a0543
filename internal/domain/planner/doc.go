// Package planner turns study material into a day-by-day schedule and summarizes
// progress against it.
//
// The pipeline is pure and deterministic:
//
//	Source  --GenerateUnits-->  []WorkUnit  --Allocate-->  Allocation
//	[]domain.PlanTask  --Summarize-->  Summary  --FallbackNarrative-->  string
//
// Allocation is greedy, single pass and order preserving. It does not search for
// an optimal schedule.
package planner
