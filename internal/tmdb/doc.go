// Package tmdb provides access to The Movie Database API for show matching
// and metadata enrichment.
//
// Every call except GetCrew is backed by a persistent response cache keyed
// by a stable string of the call's arguments: on a hit the stored body is
// reparsed, on a miss the HTTP body is stored before returning. Transport
// failures degrade to empty results so the ingest pipeline keeps moving;
// callers must tolerate absence.
package tmdb
