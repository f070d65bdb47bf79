package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// decompress returns data unchanged unless it starts with a zstd or gzip
// frame header.
func decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return data, nil
	}
}

// writeOutput writes text to w, compressed with algo when it is not empty.
func writeOutput(w io.Writer, text, algo string) error {
	var zw io.WriteCloser
	switch algo {
	case "":
		_, err := io.WriteString(w, text)
		return err
	case "zstd":
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		zw = enc
	case "gzip":
		zw = gzip.NewWriter(w)
	default:
		return fmt.Errorf("unknown compression: %s", algo)
	}

	if _, err := io.WriteString(zw, text); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
