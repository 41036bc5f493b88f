package compress

import (
	"bytes"
	"fmt"

	"github.com/arloliu/eclio/errs"
	"github.com/arloliu/eclio/format"
)

// Compressor compresses a complete byte stream.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines Compressor and Decompressor.
type Codec interface {
	Compressor
	Decompressor
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	s2Magic   = []byte("\xff\x06\x00\x00S2sTwO")
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Detect identifies the compression of data from its leading magic number.
// Anything unrecognised is reported as format.CompressionNone.
func Detect(data []byte) format.CompressionType {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return format.CompressionZstd
	case bytes.HasPrefix(data, s2Magic):
		return format.CompressionS2
	case bytes.HasPrefix(data, lz4Magic):
		return format.CompressionLZ4
	default:
		return format.CompressionNone
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared codec instance for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompressionType, compressionType)
}

// DecompressAuto detects the stream type of data and decompresses it. Plain
// data is returned unchanged with format.CompressionNone.
func DecompressAuto(data []byte) ([]byte, format.CompressionType, error) {
	typ := Detect(data)
	if typ == format.CompressionNone {
		return data, typ, nil
	}

	codec, err := GetCodec(typ)
	if err != nil {
		return nil, typ, err
	}

	out, err := codec.Decompress(data)
	if err != nil {
		return nil, typ, fmt.Errorf("%w: %w", errs.ErrUnknownCompression, err)
	}

	return out, typ, nil
}
