// Package pg wires PostgreSQL into the application: pgxpool connection with
// startup retries and goose schema migrations driven from the same pool.
package pg
