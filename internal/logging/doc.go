// Package logging wires log/slog for the aerial pipeline.
//
// Two handler formats are supported: a human-oriented console handler used
// when running jobs interactively, and a JSON handler for daemon logs. Both
// honour a shared level var so the level can be adjusted per invocation.
// Components obtain loggers through NewComponentLogger so every record
// carries a stable "component" attribute.
package logging
