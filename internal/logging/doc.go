// Package logging constructs the slog loggers used across the pipeline.
//
// Two formats are supported: a human-oriented console handler for
// interactive runs and a JSON handler for machine consumption. Loggers
// write to stdout and, when a log directory is configured, to
// cinelake.log inside it.
package logging
