// Package logging constructs the slog loggers used across labelspool.
//
// Two output formats are supported: a human-oriented console handler for
// interactive terminals and a JSON handler for log files and collectors. The
// package also centralizes attribute helpers and field names so log output
// stays greppable.
package logging
