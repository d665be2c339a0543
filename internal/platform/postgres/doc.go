// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the connection setup and the embedded schema migrations.
// Queries go through database/sql with the pgx driver.
package postgres
