// Package index builds the block-level time index.
//
// Every block starts with a fixed-size header carrying its time range
// and body length, so Build discovers all blocks with one forward scan
// that reads headers only. Bodies stay untouched until a query decodes
// them.
//
// Build validates that blocks appear in time order without overlap,
// which makes both start and end times binary-searchable: BlockForTime
// answers point queries and BlocksInRange answers window queries in
// logarithmic time.
package index
