// Package matcher reconciles parsed schedule rows against the catalog.
// Each row resolves to exactly one ShowData: through a per-channel
// correction, an existing row, a placeholder, or TMDB resolution with
// enrichment. Rows nothing matches still get a catalog row so their
// sessions are never dropped.
package matcher
