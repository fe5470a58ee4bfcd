// Package reader ties the format, index, block and signal layers into
// a query session over one waveform file.
//
// Open parses the header and hierarchy, then scans block headers into a
// time index without decoding any bodies. Bodies are decoded lazily:
// replay (IterBlocks, Records) decodes blocks in file order against the
// process mask, and point queries (ValueAt) decode only the blocks that
// can hold the answer, walking backward from the block covering the
// queried time.
//
// The process mask selects which variables replay delivers. It defaults
// to all variables; narrow it with ClearProcessMaskAll plus
// SetProcessMask to pay decode cost for only the signals of interest.
// Iterations snapshot the mask when they start.
//
// Damage in one block never poisons the rest of the file. The intact
// prefix of a damaged block is delivered, a warning is logged, and the
// error surfaces once the replay ends.
package reader
