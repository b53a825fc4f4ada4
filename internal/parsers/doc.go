// Package parsers turns broadcaster-supplied schedule files into catalog
// sessions.
//
// A flat registry maps a channel name to a parser variant plus a small CSV
// descriptor declaring, per logical field, where the value lives in the
// source file and how it is formatted. Five variants cover the observed
// file families: an XML event guide, position-indexed and header-indexed
// row spreadsheets, a merged-cell spreadsheet with regex-validated fields,
// and a weekly grid where weekday columns hold border-delimited cells whose
// font attributes carry meaning.
//
// Parsers never raise across their boundary: a file with no usable data
// yields a nil InsertionResult, bad rows are logged and skipped.
package parsers
