// Package container provides archival compression codecs for already
// POCKET+-compressed housekeeping packet streams.
//
// A POCKET+ stream (see the session package) is already entropy-coded at
// the bit level: runs of unchanged bits never reach the wire, and what
// remains is close to the Shannon limit of the telemetry source. Running a
// general-purpose compressor over it rarely helps much. This package exists
// for the operational case that does benefit: ground systems bundle many
// packet files together (a pass, a day, a mission phase) before they hit
// cold storage or a bandwidth-constrained downlink, and bundling is exactly
// where a second compression pass earns its CPU cost.
//
// # Architecture
//
// The package defines three small interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported algorithms
//
//   - None (CompressionNone): passes bytes through unchanged.
//   - Gzip (CompressionGzip): klauspost/compress's drop-in gzip, for
//     interoperability with tooling that expects a .gz container.
//   - S2 (CompressionS2): klauspost/compress/s2, a Snappy-compatible
//     codec tuned for throughput.
//   - LZ4 (CompressionLZ4): pierrec/lz4/v4, very fast to decompress.
//
// Callers pick an algorithm with CreateCodec and report the outcome with
// CompressionStats, which is honest about the common case where the second
// pass does not shrink the data at all (Ratio >= 1.0) — POCKET+ output is
// not a nice target for general-purpose compression, and this package does
// not pretend otherwise.
package container
