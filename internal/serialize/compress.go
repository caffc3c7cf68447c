// Package serialize handles ZStandard compressed filter documents and
// conversion results.
package serialize

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Ext is the file extension of ZStandard compressed files.
const Ext = ".zst"

var magic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// IsCompressed reports whether data starts with the ZStandard frame magic.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// Compressor handles ZStandard compression of conversion results.
// Create once and reuse to eliminate allocations.
type Compressor struct {
	encoder *zstd.Encoder
}

// NewCompressor creates a reusable ZStandard compressor.
// Uses SpeedDefault (level 3) for balanced compression ratio and speed.
// Caller must call Close() when done to release resources.
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	return &Compressor{
		encoder: encoder,
	}, nil
}

// Compress compresses data using ZStandard.
// Safe for concurrent use from multiple goroutines.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	// XML filters are repetitive and shrink well
	dst := make([]byte, 0, len(data)/4)

	// EncodeAll is goroutine-safe
	return c.encoder.EncodeAll(data, dst), nil
}

// Close releases compressor resources.
func (c *Compressor) Close() error {
	if c.encoder != nil {
		return c.encoder.Close()
	}
	return nil
}

// Decompressor handles ZStandard decompression of input documents.
// Create once and reuse to eliminate allocations.
type Decompressor struct {
	decoder *zstd.Decoder
}

// NewDecompressor creates a reusable ZStandard decompressor.
// Caller must call Close() when done to release resources.
func NewDecompressor() (*Decompressor, error) {
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Decompressor{
		decoder: decoder,
	}, nil
}

// Decompress decompresses ZStandard data.
// Safe for concurrent use from multiple goroutines.
func (d *Decompressor) Decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return []byte{}, nil
	}

	// DecodeAll is goroutine-safe
	decompressed, err := d.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	return decompressed, nil
}

// Maybe returns data decompressed when it is a ZStandard frame and
// unchanged otherwise.
func (d *Decompressor) Maybe(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return data, nil
	}
	return d.Decompress(data)
}

// Close releases decompressor resources.
func (d *Decompressor) Close() {
	if d.decoder != nil {
		d.decoder.Close()
	}
}
