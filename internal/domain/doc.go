// Package domain contains the core study-planning entities: goals, study plans,
// plan tasks and the curriculum they are derived from. It holds the entity
// invariants and the task status state machine and is independent of any storage
// or delivery mechanism.
package domain
