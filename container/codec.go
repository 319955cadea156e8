package container

import "fmt"

// CompressionType identifies an archival compression algorithm.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0x1 // CompressionNone passes data through unchanged.
	CompressionGzip CompressionType = 0x2 // CompressionGzip uses klauspost/compress/gzip.
	CompressionS2   CompressionType = 0x3 // CompressionS2 uses klauspost/compress/s2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 uses pierrec/lz4/v4.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses a byte slice, returning newly allocated output that
// does not alias the input.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a byte slice produced by the matching Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes the outcome of an archival compression pass.
type CompressionStats struct {
	Algorithm      CompressionType
	OriginalSize   int64
	CompressedSize int64
}

// Ratio returns CompressedSize / OriginalSize. Values at or above 1.0 mean
// the second compression pass did not help, which is routine for POCKET+
// output and is not treated as an error.
func (s CompressionStats) Ratio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage, 0-100. Negative
// values indicate the container grew the data.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.Ratio()) * 100.0
}

// CreateCodec is a factory that returns the Codec for a CompressionType.
//
// target names the caller-facing use of the codec (e.g. "archive bundle")
// and is only used to build a readable error message.
func CreateCodec(compressionType CompressionType, target string) (Codec, error) {
	switch compressionType {
	case CompressionNone:
		return NewNoOpCodec(), nil
	case CompressionGzip:
		return NewGzipCodec(), nil
	case CompressionS2:
		return NewS2Codec(), nil
	case CompressionLZ4:
		return NewLZ4Codec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}
