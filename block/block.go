package block

import (
	"encoding/binary"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
)

// Header is the fixed-size on-disk header of one value-change block.
// Headers can be scanned without touching payloads, which is how the
// time index is built.
type Header struct {
	StartTime   uint64
	EndTime     uint64
	RecordCount uint32
	PlainLen    uint32
	CompLen     uint32
	Codec       format.Codec
}

// Range returns the block's inclusive time range.
func (h Header) Range() fstreader.TimeRange {
	return fstreader.TimeRange{Start: h.StartTime, End: h.EndTime}
}

// ParseHeader decodes a block header from exactly
// format.BlockHeaderSize bytes.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < format.BlockHeaderSize {
		return Header{}, errors.InvalidData(errors.PhaseIndex, nil, "short block header")
	}
	h := Header{
		StartTime:   binary.LittleEndian.Uint64(buf[0:8]),
		EndTime:     binary.LittleEndian.Uint64(buf[8:16]),
		RecordCount: binary.LittleEndian.Uint32(buf[16:20]),
		PlainLen:    binary.LittleEndian.Uint32(buf[20:24]),
		CompLen:     binary.LittleEndian.Uint32(buf[24:28]),
		Codec:       format.Codec(buf[28]),
	}
	if h.EndTime < h.StartTime {
		return Header{}, errors.InvalidData(errors.PhaseIndex, nil, "block end time before start time")
	}
	if !h.Codec.Valid() {
		return Header{}, errors.UnsupportedCodec(errors.PhaseIndex, buf[28])
	}
	return h, nil
}

// Record is one decoded value change. Value is an owned copy and stays
// valid after the decode call returns; for bit/vector variables it holds
// multi-state characters, for reals 8 IEEE-754 little-endian bytes, for
// strings the raw payload.
type Record struct {
	Time   uint64
	Handle fstreader.Handle
	Value  []byte
}
