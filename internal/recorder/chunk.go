package recorder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"

	"github.com/prometheus/prometheus/tsdb/chunkenc"
)

var (
	ErrInvalidChecksum = errors.New("checksum mismatch: data is corrupted")
	ErrTooSmall        = errors.New("blob too small to be a valid chunk")
	ErrTooManySamples  = errors.New("series exceeds chunk sample limit")
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// encodeChunk packs (timestamp, value) pairs into a Gorilla XOR chunk framed as
// [encoding byte | chunk bytes | crc32c big endian].
func encodeChunk(ts []int64, vs []float64) ([]byte, error) {
	if len(ts) != len(vs) {
		return nil, fmt.Errorf("timestamps (%d) and values (%d) differ", len(ts), len(vs))
	}
	if len(vs) > math.MaxUint16 {
		return nil, ErrTooManySamples
	}
	c := chunkenc.NewXORChunk()
	app, err := c.Appender()
	if err != nil {
		return nil, fmt.Errorf("chunk appender: %w", err)
	}
	for i := range vs {
		app.Append(ts[i], vs[i])
	}

	raw := c.Bytes()
	res := make([]byte, 1+len(raw)+4)
	res[0] = byte(c.Encoding())
	copy(res[1:], raw)
	binary.BigEndian.PutUint32(res[1+len(raw):], crc32.Checksum(res[:1+len(raw)], castagnoli))
	return res, nil
}

// decodeChunk validates the frame and unpacks every sample.
func decodeChunk(data []byte) ([]int64, []float64, error) {
	if len(data) < 5 {
		return nil, nil, ErrTooSmall
	}
	payload := data[:len(data)-4]
	want := binary.BigEndian.Uint32(data[len(data)-4:])
	if got := crc32.Checksum(payload, castagnoli); got != want {
		return nil, nil, ErrInvalidChecksum
	}
	if enc := chunkenc.Encoding(payload[0]); enc != chunkenc.EncXOR {
		return nil, nil, fmt.Errorf("unsupported encoding type: %d", enc)
	}

	c := chunkenc.NewXORChunk()
	c.Reset(payload[1:])

	n := c.NumSamples()
	ts := make([]int64, 0, n)
	vs := make([]float64, 0, n)
	it := c.Iterator(nil)
	for it.Next() != chunkenc.ValNone {
		t, v := it.At()
		ts = append(ts, t)
		vs = append(vs, v)
	}
	if err := it.Err(); err != nil {
		return nil, nil, fmt.Errorf("chunk iteration: %w", err)
	}
	return ts, vs, nil
}
