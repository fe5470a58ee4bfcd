package format

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/fst-reader/errors"
)

// Shared zstd decoder. Safe for concurrent DecodeAll use; decoders are
// expensive to construct so one is kept for the process lifetime.
var (
	zstdDecoder     *zstd.Decoder
	zstdDecoderOnce sync.Once
)

func zstdDec() *zstd.Decoder {
	zstdDecoderOnce.Do(func() {
		d, err := zstd.NewReader(nil)
		if err != nil {
			panic("fst: create zstd decoder: " + err.Error())
		}
		zstdDecoder = d
	})
	return zstdDecoder
}

// Decompress expands a section or block payload. uncompressedLen is the
// length declared by the header; a mismatch between declared and actual
// size is reported as an error so damage is caught before record walking.
func Decompress(c Codec, data []byte, uncompressedLen int, phase errors.Phase) ([]byte, error) {
	var (
		plain []byte
		err   error
	)

	switch c {
	case CodecNone:
		plain = data
	case CodecZlib:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(bytes.NewReader(data))
		if err == nil {
			defer zr.Close()
			plain = make([]byte, 0, uncompressedLen)
			buf := bytes.NewBuffer(plain)
			// Bound the copy: a forged header must not balloon memory.
			_, err = io.Copy(buf, io.LimitReader(zr, int64(uncompressedLen)+1))
			plain = buf.Bytes()
		}
	case CodecSnappy:
		plain, err = snappy.Decode(make([]byte, 0, uncompressedLen), data)
	case CodecZstd:
		plain, err = zstdDec().DecodeAll(data, make([]byte, 0, uncompressedLen))
	default:
		return nil, errors.UnsupportedCodec(phase, byte(c))
	}

	if err != nil {
		return nil, errors.Wrap(phase, errors.KindInvalidData, err, fmt.Sprintf("decompress %s payload", c))
	}
	if len(plain) != uncompressedLen {
		return nil, errors.InvalidData(phase, nil,
			fmt.Sprintf("%s payload expands to %d bytes, header declares %d", c, len(plain), uncompressedLen))
	}
	return plain, nil
}

// Scratch buffers for DecompressPooled. Block bodies are decoded and
// discarded at high rate, so the expansion buffer is reused.
var plainBufs = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 64<<10)
		return &b
	},
}

// DecompressPooled is Decompress backed by pooled scratch. The returned
// bytes are only valid until release is called; callers that keep any of
// the payload must copy it first. release is non-nil even on error.
func DecompressPooled(c Codec, data []byte, uncompressedLen int, phase errors.Phase) (plain []byte, release func(), err error) {
	if c == CodecNone {
		if len(data) != uncompressedLen {
			return nil, func() {}, errors.InvalidData(phase, nil,
				fmt.Sprintf("none payload is %d bytes, header declares %d", len(data), uncompressedLen))
		}
		return data, func() {}, nil
	}

	bp := plainBufs.Get().(*[]byte)
	release = func() {
		plainBufs.Put(bp)
	}
	dst := (*bp)[:0]

	switch c {
	case CodecZlib:
		var zr io.ReadCloser
		zr, err = zlib.NewReader(bytes.NewReader(data))
		if err == nil {
			defer zr.Close()
			if cap(dst) < uncompressedLen {
				dst = make([]byte, uncompressedLen)
			} else {
				dst = dst[:uncompressedLen]
			}
			if _, err = io.ReadFull(zr, dst); err == nil {
				var extra [1]byte
				if n, _ := zr.Read(extra[:]); n != 0 {
					err = fmt.Errorf("payload larger than declared %d bytes", uncompressedLen)
				}
			}
			plain = dst
		}
	case CodecSnappy:
		plain, err = snappy.Decode(dst[:cap(dst)], data)
	case CodecZstd:
		plain, err = zstdDec().DecodeAll(data, dst)
	default:
		return nil, release, errors.UnsupportedCodec(phase, byte(c))
	}

	if plain != nil {
		// Keep the possibly grown backing array in the pool.
		*bp = plain[:0]
	}
	if err != nil {
		return nil, release, errors.Wrap(phase, errors.KindInvalidData, err, fmt.Sprintf("decompress %s payload", c))
	}
	if len(plain) != uncompressedLen {
		return nil, release, errors.InvalidData(phase, nil,
			fmt.Sprintf("%s payload expands to %d bytes, header declares %d", c, len(plain), uncompressedLen))
	}
	return plain, release, nil
}
