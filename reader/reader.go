package reader

import (
	"bytes"
	"os"
	"sync"

	"go.uber.org/zap"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/block"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/format"
	"github.com/wippyai/fst-reader/index"
	"github.com/wippyai/fst-reader/signal"
)

// Options configures a Session. The zero value is usable.
type Options struct {
	// Logger overrides the package logger for this session.
	Logger *zap.Logger

	// Mode selects how iteration helpers render values.
	// Default: OutputString.
	Mode fstreader.OutputMode

	// CacheValues keeps a per-variable change series after the first
	// point query for it, turning repeated ValueAt calls into binary
	// searches. Costs memory proportional to the cached signals.
	CacheValues bool
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}
	if oo.Logger == nil {
		oo.Logger = Logger()
	}
	return &oo
}

// Session is an open waveform file. It is safe for concurrent reads
// once opened; the process mask and Close are guarded.
type Session struct {
	opts *Options
	log  *zap.Logger

	data []byte
	file *format.File
	ix   *index.TimeIndex

	mu     sync.Mutex
	mask   *block.Mask
	cache  map[fstreader.Handle]*signal.History
	closed bool
}

// Open reads and indexes a waveform file.
func Open(path string, o *Options) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound(path, err)
		}
		return nil, errors.Wrap(errors.PhaseOpen, errors.KindInvalidData, err, "read "+path)
	}
	return OpenBytes(data, o)
}

// OpenBytes opens a waveform held in memory. The session keeps a
// reference to data; callers must not mutate it afterwards.
func OpenBytes(data []byte, o *Options) (*Session, error) {
	opts := o.norm()

	f, err := format.Parse(data)
	if err != nil {
		return nil, err
	}
	ix, err := index.Build(bytes.NewReader(data), int64(f.BlockStart), int64(len(data)))
	if err != nil {
		return nil, err
	}

	s := &Session{
		opts:  opts,
		log:   opts.Logger,
		data:  data,
		file:  f,
		ix:    ix,
		mask:  block.NewMask(f.Hier.MaxHandle()),
		cache: make(map[fstreader.Handle]*signal.History),
	}
	s.mask.SetAll()

	if mismatches := f.CountMismatches(); len(mismatches) > 0 {
		s.log.Warn("header counts diverge from hierarchy",
			zap.Strings("mismatches", mismatches))
	}
	s.log.Debug("session opened",
		zap.Int("blocks", ix.Len()),
		zap.Int("vars", f.Hier.VarCount()),
		zap.Uint64("start", f.Header.StartTime),
		zap.Uint64("end", f.Header.EndTime))
	return s, nil
}

// Close releases the session. Every further accessor and query fails
// with a session-closed error; Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	s.cache = nil
	return nil
}

func (s *Session) checkOpen(what string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.SessionClosed(what)
	}
	return nil
}

// Header returns the file header metadata.
func (s *Session) Header() (format.Header, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return format.Header{}, err
	}
	return s.file.Header, nil
}

// Hierarchy returns the design hierarchy.
func (s *Session) Hierarchy() (*format.Hierarchy, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return nil, err
	}
	return s.file.Hier, nil
}

// TimeRange returns the simulation time span from the header.
func (s *Session) TimeRange() (fstreader.TimeRange, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return fstreader.TimeRange{}, err
	}
	return s.file.Header.Range(), nil
}

// Timescale returns the human-readable timescale unit, e.g. "ns".
func (s *Session) Timescale() (string, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return "", err
	}
	return format.TimescaleUnit(s.file.Header.TimescaleExp), nil
}

// BlockCount returns the number of indexed value-change blocks.
func (s *Session) BlockCount() (int, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return 0, err
	}
	return s.ix.Len(), nil
}

// Mismatches returns the divergences between header counts and the
// hierarchy. Header counts stay authoritative; this surfaces damage.
func (s *Session) Mismatches() ([]string, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return nil, err
	}
	return s.file.CountMismatches(), nil
}

// Mode returns the session's output mode.
func (s *Session) Mode() fstreader.OutputMode {
	return s.opts.Mode
}

// Variable resolves a handle to its declaration.
func (s *Session) Variable(h fstreader.Handle) (*format.Var, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return nil, err
	}
	return s.file.Hier.Variable(h)
}

// VarByPath resolves a dotted hierarchy path like "top.cpu.clk".
func (s *Session) VarByPath(path string) (*format.Var, error) {
	if err := s.checkOpen("metadata access"); err != nil {
		return nil, err
	}
	v, ok := s.file.Hier.VarByPath(path)
	if !ok {
		return nil, errors.New(errors.PhaseQuery, errors.KindNotFound).
			Detail("no variable at path %q", path).
			Build()
	}
	return v, nil
}

// SetProcessMaskAll marks every variable for iteration.
func (s *Session) SetProcessMaskAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.SetAll()
}

// ClearProcessMaskAll removes every variable from iteration.
func (s *Session) ClearProcessMaskAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.ClearAll()
}

// SetProcessMask marks one variable for iteration.
func (s *Session) SetProcessMask(h fstreader.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.Set(h)
}

// ClearProcessMask removes one variable from iteration.
func (s *Session) ClearProcessMask(h fstreader.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mask.Clear(h)
}

// ProcessMask reports whether iteration delivers changes for h.
func (s *Session) ProcessMask(h fstreader.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mask.Has(h)
}

// snapshotMask copies the process mask so a running iteration is not
// affected by later mask changes.
func (s *Session) snapshotMask() *block.Mask {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := block.NewMask(s.file.Hier.MaxHandle())
	for h := fstreader.Handle(1); h <= s.file.Hier.MaxHandle(); h++ {
		if s.mask.Has(h) {
			m.Set(h)
		}
	}
	return m
}

// ValueAt returns the value variable h holds at time t: the latest
// change at or before t. It decodes only the blocks it needs, walking
// backward from the block covering t, independent of the process mask.
func (s *Session) ValueAt(h fstreader.Handle, t uint64) (signal.Value, error) {
	if err := s.checkOpen("value query"); err != nil {
		return signal.Value{}, err
	}
	v, err := s.file.Hier.Variable(h)
	if err != nil {
		return signal.Value{}, err
	}

	if s.opts.CacheValues {
		hist, err := s.history(h)
		if err != nil {
			return signal.Value{}, err
		}
		return hist.ValueAt(t)
	}

	mask := block.NewMask(s.file.Hier.MaxHandle())
	mask.Set(h)

	bi, ok := s.ix.BlockForTime(t)
	if !ok {
		return signal.Value{}, errors.NoValueBefore(uint32(h), t)
	}
	// Boundary-sharing blocks can all carry changes at t; the backward
	// walk must begin at the last block starting at or before t.
	for bi+1 < s.ix.Len() && s.ix.Entry(bi+1).Header.StartTime <= t {
		bi++
	}
	for ; bi >= 0; bi-- {
		recs, err := s.decodeBlock(bi, mask)
		if err != nil {
			if errors.IsKind(err, errors.KindSessionClosed) {
				return signal.Value{}, err
			}
			s.log.Warn("skipping damaged block in point query",
				zap.Int("block", bi), zap.Error(err))
		}
		for i := len(recs) - 1; i >= 0; i-- {
			if recs[i].Time <= t {
				return signal.FromRecord(v, recs[i].Value), nil
			}
		}
	}
	return signal.Value{}, errors.NoValueBefore(uint32(h), t)
}

// ValueAtString renders ValueAt under the session's output mode.
func (s *Session) ValueAtString(h fstreader.Handle, t uint64) (string, error) {
	v, err := s.ValueAt(h, t)
	if err != nil {
		return "", err
	}
	return string(v.Format(s.opts.Mode)), nil
}

// history returns the full cached change series for h, building it on
// first use by decoding every block with a single-handle mask.
func (s *Session) history(h fstreader.Handle) (*signal.History, error) {
	s.mu.Lock()
	if hist, ok := s.cache[h]; ok {
		s.mu.Unlock()
		return hist, nil
	}
	s.mu.Unlock()

	v, err := s.file.Hier.Variable(h)
	if err != nil {
		return nil, err
	}
	mask := block.NewMask(s.file.Hier.MaxHandle())
	mask.Set(h)

	hist := signal.NewHistory(h)
	for bi := 0; bi < s.ix.Len(); bi++ {
		recs, err := s.decodeBlock(bi, mask)
		if err != nil {
			if errors.IsKind(err, errors.KindSessionClosed) {
				return nil, err
			}
			s.log.Warn("skipping damaged block while caching signal",
				zap.Int("block", bi), zap.Error(err))
		}
		for _, rec := range recs {
			if err := hist.Append(rec.Time, signal.FromRecord(v, rec.Value)); err != nil {
				return nil, err
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.SessionClosed("value query")
	}
	if cached, ok := s.cache[h]; ok {
		return cached, nil
	}
	s.cache[h] = hist
	return hist, nil
}

// decodeBlock decodes one indexed block against a mask. On damage it
// returns the intact prefix together with the error. A session closed
// mid-iteration reports session-closed, not block damage.
func (s *Session) decodeBlock(bi int, mask *block.Mask) ([]block.Record, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.SessionClosed("block decode")
	}
	data := s.data
	s.mu.Unlock()

	e := s.ix.Entry(bi)
	body := blockBody(e, data)
	if body == nil {
		return nil, errors.CorruptBlock(bi, "body extends past end of file", nil)
	}
	return block.Decode(bi, e.Header, body, s.file.Hier, mask)
}

func blockBody(e index.Entry, data []byte) []byte {
	lo := e.BodyOffset()
	hi := lo + int64(e.Header.CompLen)
	if hi > int64(len(data)) {
		return nil
	}
	return data[lo:hi]
}
