// Package logger configures the process-wide log/slog logger.
//
// Init selects a text or JSON handler and a minimum level, installs the
// result as the slog default and returns it. Packages that accept a
// *slog.Logger fall back to Get when none is supplied.
package logger
