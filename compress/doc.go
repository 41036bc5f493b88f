// Package compress provides whole-file compression codecs for eclio output and
// transparent decompression on input.
//
// ECLIPSE result files are large and highly compressible (ZCORN, PARAMS and
// restart solution arrays). eclfile.Create can wrap its output in one of the
// codecs below, and eclfile.Open recognises every supported stream by its magic
// number, so compressed and plain files are read through the same API.
//
// # Supported Algorithms
//
//   - None: no compression (format.CompressionNone)
//   - Zstd: zstd frames, best ratio (format.CompressionZstd)
//   - S2: S2 framed stream, fastest (format.CompressionS2)
//   - LZ4: LZ4 frame format (format.CompressionLZ4)
//
// All codecs emit self-describing streams, so Detect can identify them:
//
//	codec, _ := compress.GetCodec(format.CompressionZstd)
//	packed, _ := codec.Compress(raw)
//	typ := compress.Detect(packed) // format.CompressionZstd
//
// The zstd codec uses github.com/klauspost/compress/zstd by default. Building
// with cgo and the gozstd tag switches to github.com/valyala/gozstd.
//
// # Thread Safety
//
// Codecs are stateless values and safe for concurrent use; encoder and decoder
// state is pooled internally.
package compress
