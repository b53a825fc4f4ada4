// Package catalog owns the canonical programming model: channels, shows,
// sessions, per-channel corrections, the provider response cache, reminders,
// alarms, highlights, and streaming-service availability.
//
// Persistence is SQLite through database/sql. Every mutation issued by a
// batch job runs inside a transaction the store owns (WithTx); the schema is
// applied from embedded migrations at open time. A REGEXP scalar function is
// registered with the driver so search-key lookups can anchor on the
// underscore sentinels produced by package searchkey.
package catalog
