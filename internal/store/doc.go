// Package store defines the persistence interfaces for goals, study plans, plan
// tasks and curricula. Implementations live in internal/platform/postgres; the
// service layer depends only on these interfaces.
package store
