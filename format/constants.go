package format

// Magic identifies an FST container, followed by a single format version byte.
var Magic = []byte{'F', 'S', 'T', 'R'}

// Version is the container format version understood by this reader.
const Version byte = 1

// NodeType discriminates hierarchy token stream entries.
type NodeType byte

// Hierarchy token types, in on-disk encoding order.
const (
	NodeScope NodeType = iota
	NodeUpscope
	NodeVar
	NodeAttrBegin
	NodeAttrEnd
)

func (t NodeType) String() string {
	switch t {
	case NodeScope:
		return "scope"
	case NodeUpscope:
		return "upscope"
	case NodeVar:
		return "var"
	case NodeAttrBegin:
		return "attrbegin"
	case NodeAttrEnd:
		return "attrend"
	default:
		return "unknown"
	}
}

// ScopeType classifies a hierarchy scope.
type ScopeType byte

const (
	ScopeModule ScopeType = iota
	ScopeTask
	ScopeFunction
	ScopeBegin
	ScopeFork
	ScopeGenerate
)

func (t ScopeType) String() string {
	switch t {
	case ScopeModule:
		return "module"
	case ScopeTask:
		return "task"
	case ScopeFunction:
		return "function"
	case ScopeBegin:
		return "begin"
	case ScopeFork:
		return "fork"
	case ScopeGenerate:
		return "generate"
	default:
		return "unknown"
	}
}

// VarType classifies a variable. Values follow the VCD/SystemVerilog
// taxonomy used by waveform dumpers.
type VarType byte

const (
	VarEvent VarType = iota
	VarInteger
	VarParameter
	VarReal
	VarRealTime
	VarReg
	VarSupply0
	VarSupply1
	VarTime
	VarTri
	VarTriAnd
	VarTriOr
	VarTriReg
	VarTri0
	VarTri1
	VarWAnd
	VarWire
	VarWOr
	VarPort
	VarString
	VarBit
	VarLogic
	VarInt
	VarShortInt
	VarLongInt
	VarByte
	VarEnum
	VarShortReal
)

var varTypeNames = map[VarType]string{
	VarEvent:     "event",
	VarInteger:   "integer",
	VarParameter: "parameter",
	VarReal:      "real",
	VarRealTime:  "realtime",
	VarReg:       "reg",
	VarSupply0:   "supply0",
	VarSupply1:   "supply1",
	VarTime:      "time",
	VarTri:       "tri",
	VarTriAnd:    "triand",
	VarTriOr:     "trior",
	VarTriReg:    "trireg",
	VarTri0:      "tri0",
	VarTri1:      "tri1",
	VarWAnd:      "wand",
	VarWire:      "wire",
	VarWOr:       "wor",
	VarPort:      "port",
	VarString:    "string",
	VarBit:       "bit",
	VarLogic:     "logic",
	VarInt:       "int",
	VarShortInt:  "shortint",
	VarLongInt:   "longint",
	VarByte:      "byte",
	VarEnum:      "enum",
	VarShortReal: "shortreal",
}

func (t VarType) String() string {
	if s, ok := varTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsReal reports whether values of this type are IEEE-754 payloads.
func (t VarType) IsReal() bool {
	return t == VarReal || t == VarRealTime || t == VarShortReal
}

// IsString reports whether values of this type are variable-length strings.
func (t VarType) IsString() bool {
	return t == VarString
}

// VarDirection describes a port direction.
type VarDirection byte

const (
	DirImplicit VarDirection = iota
	DirInput
	DirOutput
	DirInOut
	DirBuffer
	DirLinkage
)

func (d VarDirection) String() string {
	switch d {
	case DirImplicit:
		return "implicit"
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInOut:
		return "inout"
	case DirBuffer:
		return "buffer"
	case DirLinkage:
		return "linkage"
	default:
		return "unknown"
	}
}

// Codec identifies the compression applied to a section or block payload.
type Codec byte

const (
	CodecNone Codec = iota
	CodecZlib
	CodecSnappy
	CodecZstd
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecZlib:
		return "zlib"
	case CodecSnappy:
		return "snappy"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Valid reports whether c is a known codec.
func (c Codec) Valid() bool {
	return c <= CodecZstd
}

// Multi-state bit characters permitted in bit/vector value payloads.
// These are the nine-state VCD extension values.
const BitChars = "01xzhuwl-XZHUWL"

// ValidBitChar reports whether b is a legal multi-state bit character.
func ValidBitChar(b byte) bool {
	switch b {
	case '0', '1', 'x', 'z', 'h', 'u', 'w', 'l', '-',
		'X', 'Z', 'H', 'U', 'W', 'L':
		return true
	}
	return false
}

// TimescaleUnit returns the human-readable unit for a timescale
// exponent (power of ten seconds), e.g. -9 is "ns".
func TimescaleUnit(exp int8) string {
	switch exp {
	case -21:
		return "zs"
	case -18:
		return "as"
	case -15:
		return "fs"
	case -12:
		return "ps"
	case -9:
		return "ns"
	case -6:
		return "us"
	case -3:
		return "ms"
	case 0:
		return "s"
	default:
		return "?"
	}
}

// BlockHeaderSize is the fixed on-disk size of a value-change block
// header: start time, end time (8 bytes each), record count,
// uncompressed length, compressed length (4 bytes each), codec byte.
const BlockHeaderSize = 8 + 8 + 4 + 4 + 4 + 1
