// Package service implements the study-plan use cases on top of the planner
// algorithms and the store interfaces.
//
// GoalService keeps one active goal per user. PlanService turns that goal into
// a dated plan: it gathers work units from the user's curriculum or from a
// free-text description parsed by the text generator, allocates them to days
// with the planner, and writes the plan and its tasks in one transaction.
// Plan generation for a user is serialized by a per-user lock, and an active
// plan with completed tasks is reused so progress survives regeneration.
//
// TaskService drives the task state machine (pending, completed, skipped) and
// moves overdue pending tasks to today. StatusService summarizes progress and
// asks the generator for a short coaching message, falling back to a fixed
// template whenever generation fails. CurriculumService manages the subjects,
// objectives and lessons that curriculum plans are built from.
//
// Every service is built from a Deps value. Stores run inside a
// store.Transactor, so tests can substitute the in-memory stores from
// internal/mocks for Postgres. Store errors are translated to the sentinels in
// errors.go, and ownership is checked before any task or plan is returned.
package service
