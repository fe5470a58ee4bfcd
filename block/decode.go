package block

import (
	"fmt"
	"sort"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/internal/binary"
)

// Decode decompresses one block payload and walks its delta-encoded
// records. blockIdx is used only for error context.
//
// Records for handles outside mask are skipped but their bytes are
// still consumed, so a sparse mask never desynchronizes the cursor.
//
// Damage is localized: Decode returns every record decoded before the
// first bad byte together with a corrupt-block error, never nothing.
// Returned records are sorted by (time, handle); within one block times
// are already monotonic, so only equal-time runs are reordered.
func Decode(blockIdx int, hdr Header, payload []byte, hier *format.Hierarchy, mask *Mask) ([]Record, error) {
	if uint32(len(payload)) != hdr.CompLen {
		return nil, errors.CorruptBlock(blockIdx,
			fmt.Sprintf("payload is %d bytes, header declares %d", len(payload), hdr.CompLen), nil)
	}

	plain, release, err := format.DecompressPooled(hdr.Codec, payload, int(hdr.PlainLen), errors.PhaseDecode)
	defer release()
	if err != nil {
		return nil, errors.CorruptBlock(blockIdx, "decompress", err)
	}

	records := make([]Record, 0, min(int(hdr.RecordCount), 1024))
	r := binary.NewReader(plain)
	clock := hdr.StartTime

	for i := uint32(0); i < hdr.RecordCount; i++ {
		delta, err := r.ReadUvarint()
		if err != nil {
			return done(records), errors.CorruptBlock(blockIdx, fmt.Sprintf("record %d time delta", i), err)
		}
		// Checked as headroom so a forged delta cannot wrap the clock
		// past the uint64 range and back under the block end.
		if delta > hdr.EndTime-clock {
			return done(records), errors.CorruptBlock(blockIdx,
				fmt.Sprintf("record %d time delta %d past block end %d", i, delta, hdr.EndTime), nil)
		}
		clock += delta

		rawHandle, err := r.ReadUvarint()
		if err != nil {
			return done(records), errors.CorruptBlock(blockIdx, fmt.Sprintf("record %d handle", i), err)
		}
		handle := fstreader.Handle(rawHandle)
		v, err := hier.Variable(handle)
		if err != nil {
			return done(records), errors.CorruptBlock(blockIdx,
				fmt.Sprintf("record %d references unknown handle %d", i, rawHandle), err)
		}

		width, err := valueWidth(r, v)
		if err != nil {
			return done(records), errors.CorruptBlock(blockIdx, fmt.Sprintf("record %d length", i), err)
		}
		raw, err := r.ReadBytes(width)
		if err != nil {
			return done(records), errors.CorruptBlock(blockIdx,
				fmt.Sprintf("record %d truncated value (%d bytes wanted)", i, width), err)
		}

		if !mask.Has(handle) {
			continue
		}
		if !v.IsReal() && !v.IsString() {
			for _, c := range raw {
				if !format.ValidBitChar(c) {
					return done(records), errors.CorruptBlock(blockIdx,
						fmt.Sprintf("record %d invalid bit char 0x%02x", i, c), nil)
				}
			}
		}

		value := make([]byte, len(raw))
		copy(value, raw)
		records = append(records, Record{Time: clock, Handle: handle, Value: value})
	}

	if r.Remaining() > 0 {
		return done(records), errors.CorruptBlock(blockIdx,
			fmt.Sprintf("%d trailing bytes after last record", r.Remaining()), nil)
	}
	return done(records), nil
}

// valueWidth returns the payload width for one record: declared bit
// length for vectors, 8 for reals, a length prefix for strings.
func valueWidth(r *binary.Reader, v *format.Var) (int, error) {
	switch {
	case v.IsReal():
		return 8, nil
	case v.IsString():
		n, err := r.ReadUvarint()
		if err != nil {
			return 0, err
		}
		if n > uint64(r.Remaining()) {
			return 0, fmt.Errorf("string length %d exceeds remaining %d bytes", n, r.Remaining())
		}
		return int(n), nil
	default:
		return int(v.Bits), nil
	}
}

// done enforces the delivery-order contract on a decoded batch: times
// are already ascending, equal-time runs become handle-ascending.
func done(records []Record) []Record {
	i := 0
	for i < len(records) {
		j := i + 1
		for j < len(records) && records[j].Time == records[i].Time {
			j++
		}
		if j-i > 1 {
			run := records[i:j]
			sort.SliceStable(run, func(a, b int) bool {
				return run[a].Handle < run[b].Handle
			})
		}
		i = j
	}
	return records
}
