package container

import (
	"bytes"
	"compress/zlib"
	"context"
	"fmt"
	"io"
)

// Upper bound of inflated text chunk size.
const MaxInflatedSize = 64 << 20

// Inflate decompresses a zlib stream. It stops early when ctx is done.
// A truncated stream returns the bytes inflated so far along with the error.
func Inflate(ctx context.Context, data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer zr.Close()
	var out bytes.Buffer
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return out.Bytes(), err
		}
		n, err := zr.Read(buf)
		out.Write(buf[:n])
		if out.Len() > MaxInflatedSize {
			return out.Bytes(), fmt.Errorf("inflated data exceeds %d bytes", MaxInflatedSize)
		}
		if err == io.EOF {
			return out.Bytes(), nil
		}
		if err != nil {
			return out.Bytes(), err
		}
	}
}
