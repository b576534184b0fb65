// Package logging provides structured logging for PowerLift Control.
//
// It wraps log/slog with configuration-driven output format and level
// selection, and attaches service identity fields to every record.
package logging
