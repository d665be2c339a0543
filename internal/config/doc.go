// Package config loads and validates application configuration.
//
// Values are read from (lowest to highest precedence) built-in defaults, an optional
// config.yaml in the working directory, a .env file, and environment variables with
// the STUDYPLAN_ prefix (for example STUDYPLAN_DATABASE_URL for database.url).
package config
