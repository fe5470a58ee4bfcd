package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Position() != 3 {
		t.Errorf("final position: got %d, want 3", r.Position())
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data)

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	if _, err := r.ReadBytes(10); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short read: expected ErrUnexpectedEOF, got %v", err)
	}
	if _, err := r.ReadBytes(-1); err == nil {
		t.Error("negative length accepted")
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 256, 16383, 16384, 624485, 1<<32 - 1, 1<<63 + 17}

	for _, v := range values {
		w := NewWriter()
		w.WriteUvarint(v)

		r := NewReader(w.Bytes())
		got, err := r.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if r.Remaining() != 0 {
			t.Errorf("round trip %d: %d bytes left over", v, r.Remaining())
		}
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, 64, -64, -65, 624485, -624485, 1<<62 - 1, -(1 << 62)}

	for _, v := range values {
		w := NewWriter()
		w.WriteVarint(v)

		r := NewReader(w.Bytes())
		got, err := r.ReadVarint()
		if err != nil {
			t.Fatalf("ReadVarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestUvarintOverflow(t *testing.T) {
	// 11 continuation bytes exceed 64 bits
	data := bytes.Repeat([]byte{0xff}, 11)
	r := NewReader(data)
	if _, err := r.ReadUvarint(); !errors.Is(err, ErrOverflow) {
		t.Errorf("expected ErrOverflow, got %v", err)
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0xdeadbeef)
	w.WriteU64LE(0x0123456789abcdef)
	w.Byte(0x7f)

	r := NewReader(w.Bytes())
	u32, err := r.ReadU32LE()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("ReadU32LE: %v %#x", err, u32)
	}
	u64, err := r.ReadU64LE()
	if err != nil || u64 != 0x0123456789abcdef {
		t.Fatalf("ReadU64LE: %v %#x", err, u64)
	}
	b, err := r.ReadByte()
	if err != nil || b != 0x7f {
		t.Fatalf("ReadByte: %v %#x", err, b)
	}
}

func TestReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("top.cpu.clk")

	r := NewReader(w.Bytes())
	name, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if name != "top.cpu.clk" {
		t.Errorf("ReadName: got %q", name)
	}
}

func TestReadNameInvalidUTF8(t *testing.T) {
	r := NewReader([]byte{0x02, 0xff, 0xfe})
	if _, err := r.ReadName(); err == nil {
		t.Error("invalid UTF-8 accepted")
	}
}

func TestReadNameTruncated(t *testing.T) {
	// Length prefix claims 100 bytes, only 2 available
	r := NewReader([]byte{100, 'a', 'b'})
	if _, err := r.ReadName(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4})
	if err := r.Seek(2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	b, _ := r.ReadByte()
	if b != 3 {
		t.Errorf("after seek: got %d, want 3", b)
	}
	if err := r.Seek(5); err == nil {
		t.Error("out-of-range seek accepted")
	}
}

func TestParseError(t *testing.T) {
	r := NewReader(nil)
	err := r.WrapError("block header", io.ErrUnexpectedEOF)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("not a ParseError")
	}
	if pe.Section != "block header" {
		t.Errorf("section: %q", pe.Section)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause not reachable")
	}
}
