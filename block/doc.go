// Package block decodes one value-change block at a time.
//
// A block on disk is a fixed 29-byte header followed by a compressed
// body. The header carries the block's inclusive time range, its record
// count, the plain and compressed body sizes and the codec tag, so an
// index can be built by scanning headers alone without touching bodies.
//
// Decode expands a body and walks its records: each record is a uvarint
// time delta from the previous record, a uvarint handle and the value
// payload, whose width comes from the variable's declaration. A Mask
// restricts which handles are materialized; records outside the mask
// are consumed but not returned, so filtering never desynchronizes the
// cursor.
//
// Damage inside a body is localized to that block. Decode hands back
// every record it decoded before the bad byte together with the error,
// and callers are free to continue with later blocks.
package block
