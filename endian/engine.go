// Package endian provides the byte order engines used by the binary record codec.
//
// ECLIPSE unformatted files are written big-endian by convention. Files produced
// on little-endian machines by some tools exist too, so the reader detects the
// order from the first record marker instead of assuming it.
//
//	engine := endian.GetBigEndianEngine()
//	buf = engine.AppendUint32(buf, 16)
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetDefaultEngine returns the engine used when writing new files.
func GetDefaultEngine() EndianEngine {
	return binary.BigEndian
}

// IsLittleEndian reports whether engine is the little-endian engine.
func IsLittleEndian(engine EndianEngine) bool {
	return engine == binary.LittleEndian
}

// DetectFromMarker returns the engine under which the four bytes of a record
// length marker decode to want. It returns false when neither order matches.
//
// Parameters:
//   - marker: first four bytes of a record
//   - want: expected record payload length
//
// Returns:
//   - EndianEngine: matching engine, big-endian preferred
//   - bool: true if one of the two orders matched
func DetectFromMarker(marker []byte, want uint32) (EndianEngine, bool) {
	if len(marker) < 4 {
		return nil, false
	}

	if binary.BigEndian.Uint32(marker) == want {
		return binary.BigEndian, true
	}

	if binary.LittleEndian.Uint32(marker) == want {
		return binary.LittleEndian, true
	}

	return nil, false
}
