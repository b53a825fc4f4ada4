// Package daemon runs the aerial pipeline unattended: the daily, hourly,
// and weekly jobs on their cadences, plus an optional inbox watcher that
// ingests broadcaster files as they are dropped. A file lock enforces a
// single instance per machine.
package daemon
