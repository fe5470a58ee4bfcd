package format

import (
	"bytes"
	"fmt"

	fstreader "github.com/wippyai/fst-reader"
	"github.com/wippyai/fst-reader/errors"
	"github.com/wippyai/fst-reader/internal/binary"
)

// Parse reads the container header and hierarchy section from the start
// of data and returns file metadata plus the parsed hierarchy. The
// returned File records where value-change blocks begin; block payloads
// themselves are not touched here.
//
// Header damage is fatal: a file whose magic, version, time range or
// hierarchy section cannot be parsed is rejected outright.
func Parse(data []byte) (*File, error) {
	r := binary.NewReader(data)

	magic, err := r.ReadBytes(len(Magic))
	if err != nil {
		return nil, errors.CorruptHeader("truncated magic", err)
	}
	if !bytes.Equal(magic, Magic) {
		return nil, errors.CorruptHeader(fmt.Sprintf("bad magic %q", magic), nil)
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, errors.CorruptHeader("truncated version", err)
	}
	if version != Version {
		return nil, errors.CorruptHeader(fmt.Sprintf("unsupported format version %d", version), nil)
	}

	var hdr Header
	if hdr.StartTime, err = r.ReadUvarint(); err != nil {
		return nil, errors.CorruptHeader("start time", err)
	}
	if hdr.EndTime, err = r.ReadUvarint(); err != nil {
		return nil, errors.CorruptHeader("end time", err)
	}
	if hdr.EndTime < hdr.StartTime {
		return nil, errors.CorruptHeader(
			fmt.Sprintf("end time %d before start time %d", hdr.EndTime, hdr.StartTime), nil)
	}

	tsByte, err := r.ReadByte()
	if err != nil {
		return nil, errors.CorruptHeader("timescale", err)
	}
	hdr.TimescaleExp = int8(tsByte)

	if hdr.Version, err = r.ReadName(); err != nil {
		return nil, errors.CorruptHeader("version string", err)
	}
	if hdr.Date, err = r.ReadName(); err != nil {
		return nil, errors.CorruptHeader("date string", err)
	}
	if hdr.ScopeCount, err = r.ReadUvarint(); err != nil {
		return nil, errors.CorruptHeader("scope count", err)
	}
	if hdr.VarCount, err = r.ReadUvarint(); err != nil {
		return nil, errors.CorruptHeader("var count", err)
	}
	maxHandle, err := r.ReadUvarint()
	if err != nil {
		return nil, errors.CorruptHeader("max handle", err)
	}
	hdr.MaxHandle = fstreader.Handle(maxHandle)

	// Hierarchy section: declared plain size, compressed size, codec, payload.
	plainLen, err := r.ReadUvarint()
	if err != nil {
		return nil, errors.CorruptHierarchy("section plain length", err)
	}
	compLen, err := r.ReadUvarint()
	if err != nil {
		return nil, errors.CorruptHierarchy("section compressed length", err)
	}
	codecByte, err := r.ReadByte()
	if err != nil {
		return nil, errors.CorruptHierarchy("section codec", err)
	}
	codec := Codec(codecByte)
	if !codec.Valid() {
		return nil, errors.CorruptHierarchy(fmt.Sprintf("unknown codec 0x%02x", codecByte), nil)
	}
	payload, err := r.ReadBytes(int(compLen))
	if err != nil {
		return nil, errors.CorruptHierarchy("truncated section payload", err)
	}

	tokens, err := Decompress(codec, payload, int(plainLen), errors.PhaseHierarchy)
	if err != nil {
		return nil, errors.CorruptHierarchy("hierarchy section", err)
	}

	hier, err := parseHierarchy(tokens)
	if err != nil {
		return nil, err
	}

	return &File{
		Header:     hdr,
		Hier:       hier,
		BlockStart: r.Position(),
	}, nil
}

// parseHierarchy walks the flat token stream once, building the node
// arena, the dense handle index and the dotted path table. Scope nesting
// is tracked with an explicit name stack; nodes keep only forward order,
// never parent pointers.
//
// An empty stream is a valid degenerate hierarchy.
func parseHierarchy(tokens []byte) (*Hierarchy, error) {
	r := binary.NewReader(tokens)

	h := &Hierarchy{
		vars:  make([]Var, 1), // slot 0 unused, handles are 1-based
		paths: make(map[string]fstreader.Handle),
	}
	var stack []string

	for r.Remaining() > 0 {
		tok, err := r.ReadByte()
		if err != nil {
			return nil, errors.CorruptHierarchy("token", err)
		}

		switch NodeType(tok) {
		case NodeScope:
			typ, err := r.ReadByte()
			if err != nil {
				return nil, errors.CorruptHierarchy("scope type", err)
			}
			name, err := r.ReadName()
			if err != nil {
				return nil, errors.CorruptHierarchy("scope name", err)
			}
			h.nodes = append(h.nodes, Node{
				Type:  NodeScope,
				Scope: &Scope{Name: name, Type: ScopeType(typ)},
			})
			h.scopeCount++
			stack = append(stack, name)

		case NodeUpscope:
			if len(stack) == 0 {
				return nil, errors.CorruptHierarchy("upscope without open scope", nil)
			}
			stack = stack[:len(stack)-1]
			h.nodes = append(h.nodes, Node{Type: NodeUpscope})

		case NodeVar:
			v, err := parseVarToken(r)
			if err != nil {
				return nil, err
			}
			next := fstreader.Handle(len(h.vars))
			switch {
			case v.Handle == next:
				// new primary declaration
				h.vars = append(h.vars, *v)
				h.maxHandle = v.Handle
			case v.Handle < next:
				// alias of an existing handle, primary stays
			default:
				return nil, errors.CorruptHierarchy(
					fmt.Sprintf("handle %d leaves gap after %d", v.Handle, next-1), nil)
			}
			h.varCount++
			h.paths[joinPath(stack, v.Name)] = v.Handle
			h.nodes = append(h.nodes, Node{Type: NodeVar, Var: v})

		case NodeAttrBegin:
			arg, err := r.ReadUvarint()
			if err != nil {
				return nil, errors.CorruptHierarchy("attr arg", err)
			}
			name, err := r.ReadName()
			if err != nil {
				return nil, errors.CorruptHierarchy("attr name", err)
			}
			h.nodes = append(h.nodes, Node{
				Type: NodeAttrBegin,
				Attr: &Attr{Name: name, Arg: arg},
			})

		case NodeAttrEnd:
			h.nodes = append(h.nodes, Node{Type: NodeAttrEnd})

		default:
			return nil, errors.CorruptHierarchy(fmt.Sprintf("unknown token 0x%02x", tok), nil)
		}
	}

	return h, nil
}

func parseVarToken(r *binary.Reader) (*Var, error) {
	typ, err := r.ReadByte()
	if err != nil {
		return nil, errors.CorruptHierarchy("var type", err)
	}
	dir, err := r.ReadByte()
	if err != nil {
		return nil, errors.CorruptHierarchy("var direction", err)
	}
	bits, err := r.ReadUvarint()
	if err != nil {
		return nil, errors.CorruptHierarchy("var bit length", err)
	}
	handle, err := r.ReadUvarint()
	if err != nil {
		return nil, errors.CorruptHierarchy("var handle", err)
	}
	if handle == 0 {
		return nil, errors.CorruptHierarchy("var handle 0", nil)
	}
	rawName, err := r.ReadName()
	if err != nil {
		return nil, errors.CorruptHierarchy("var name", err)
	}

	name, index := parseBitRange(rawName)
	return &Var{
		Name:      name,
		Type:      VarType(typ),
		Direction: VarDirection(dir),
		Bits:      uint32(bits),
		Handle:    fstreader.Handle(handle),
		Index:     index,
	}, nil
}

func joinPath(stack []string, name string) string {
	if len(stack) == 0 {
		return name
	}
	n := len(name)
	for _, s := range stack {
		n += len(s) + 1
	}
	buf := make([]byte, 0, n)
	for _, s := range stack {
		buf = append(buf, s...)
		buf = append(buf, '.')
	}
	buf = append(buf, name...)
	return string(buf)
}
