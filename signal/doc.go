// Package signal models decoded signal values and per-variable change
// series.
//
// Value carries one of three payload shapes: multi-state bit characters
// for wires and vectors, a float64 for reals, and raw bytes for string
// variables. Conversion helpers (Uint64, Float64, Defined) read driven
// levels out of multi-state vectors without the caller knowing the
// nine-state character set.
//
// History accumulates one variable's changes in time order and answers
// point queries with binary search: the value holding at time t is the
// latest change at or before t.
package signal
