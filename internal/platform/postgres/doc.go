// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, plus the embedded
// schema migrations. Connections go through database/sql with the pgx driver.
package postgres
