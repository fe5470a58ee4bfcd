package reader

import (
	"go.uber.org/zap"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/block"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/signal"
)

// IterBlocks replays every masked value change in time order, calling
// fn for each. Returning false from fn stops the replay early.
//
// Changes arrive ascending by time; changes at the same instant arrive
// ascending by handle. A damaged block costs only its own tail: the
// intact records are delivered, the damage is logged and returned after
// the remaining blocks have been replayed.
func (s *Session) IterBlocks(fn func(t uint64, h fstreader.Handle, v signal.Value) bool) error {
	if err := s.checkOpen("block iteration"); err != nil {
		return err
	}
	mask := s.snapshotMask()

	var firstErr error
	for bi := 0; bi < s.ix.Len(); bi++ {
		recs, err := s.decodeBlock(bi, mask)
		if err != nil {
			if errors.IsKind(err, errors.KindSessionClosed) {
				return err
			}
			s.log.Warn("damaged block during replay",
				zap.Int("block", bi), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
		for _, rec := range recs {
			v, verr := s.file.Hier.Variable(rec.Handle)
			if verr != nil {
				continue
			}
			if !fn(rec.Time, rec.Handle, signal.FromRecord(v, rec.Value)) {
				return firstErr
			}
		}
	}
	return firstErr
}

// Iterator is a pull-style replay of masked value changes in time
// order. Use it when the consumer owns the loop:
//
//	it := session.Records()
//	for it.Next() {
//		rec := it.Record()
//		...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	s    *Session
	mask *block.Mask

	blockIdx int
	recs     []block.Record
	pos      int

	cur block.Record
	err error
}

// Records starts a replay over the current process mask. The mask is
// snapshotted, so later mask changes do not affect this iterator.
func (s *Session) Records() *Iterator {
	it := &Iterator{s: s}
	if err := s.checkOpen("block iteration"); err != nil {
		it.err = err
		it.blockIdx = s.ix.Len()
		return it
	}
	it.mask = s.snapshotMask()
	return it
}

// Next advances to the next change. It returns false when the replay
// is exhausted; check Err afterwards, damaged blocks surface there
// after their intact records have been delivered.
func (it *Iterator) Next() bool {
	for {
		if it.pos < len(it.recs) {
			it.cur = it.recs[it.pos]
			it.pos++
			return true
		}
		if it.blockIdx >= it.s.ix.Len() {
			return false
		}
		recs, err := it.s.decodeBlock(it.blockIdx, it.mask)
		if err != nil {
			if errors.IsKind(err, errors.KindSessionClosed) {
				if it.err == nil {
					it.err = err
				}
				it.blockIdx = it.s.ix.Len()
				return false
			}
			it.s.log.Warn("damaged block during replay",
				zap.Int("block", it.blockIdx), zap.Error(err))
			if it.err == nil {
				it.err = err
			}
		}
		it.blockIdx++
		it.recs = recs
		it.pos = 0
	}
}

// Record returns the change Next stopped on. The value bytes stay
// valid until the iterator is advanced past the owning block.
func (it *Iterator) Record() block.Record {
	return it.cur
}

// Value interprets the current change's payload.
func (it *Iterator) Value() (signal.Value, error) {
	v, err := it.s.file.Hier.Variable(it.cur.Handle)
	if err != nil {
		return signal.Value{}, err
	}
	return signal.FromRecord(v, it.cur.Value), nil
}

// Err returns the first damage encountered during the replay.
func (it *Iterator) Err() error {
	return it.err
}
