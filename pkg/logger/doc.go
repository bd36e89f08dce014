// Package logger builds configured log/slog loggers and provides typed
// attribute helpers so log keys stay consistent across the codebase.
//
//	log := logger.New(logger.WithEnvironment(appEnv, "clubnotify"))
//	log.Info("delivery failed", logger.UserID(id), logger.Error(err))
package logger
