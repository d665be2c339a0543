// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it are skipped unless DATABASE_URL is set; the schema is
// migrated once per test binary and each test runs in a transaction that is
// rolled back afterwards.
package testdb
