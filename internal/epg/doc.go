// Package epg talks to the live-schedule provider: a channel list served
// as XML and a channelsguide JSON endpoint serving per-channel program
// grids for a date range.
package epg
