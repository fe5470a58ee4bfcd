package fstgen

import (
	"bytes"
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"

	"github.com/wippyai/fst-reader/format"
)

func compress(c format.Codec, plain []byte) ([]byte, error) {
	switch c {
	case format.CodecNone:
		return plain, nil
	case format.CodecZlib:
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(plain); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case format.CodecSnappy:
		return snappy.Encode(nil, plain), nil
	case format.CodecZstd:
		zw, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := zw.EncodeAll(plain, nil)
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("fstgen: unknown codec %d", c)
	}
}
