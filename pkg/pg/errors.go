package pg

import "errors"

var (
	ErrInvalidConfig         = errors.New("pg: invalid connection config")
	ErrConnectionFailed      = errors.New("pg: failed to open database connection")
	ErrMigrationFailed       = errors.New("pg: failed to apply migrations")
	ErrMigrationsPathMissing = errors.New("pg: migrations path not provided")
)
