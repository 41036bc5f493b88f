// Package format defines the closed enumerations used across eclio: the keyword
// array element types and the optional whole-file compression types.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

type (
	ArrayType       uint8
	CompressionType uint8
)

const (
	TypeInte ArrayType = 0x1 // TypeInte is a 4-byte signed integer array.
	TypeReal ArrayType = 0x2 // TypeReal is a 4-byte IEEE float array.
	TypeDoub ArrayType = 0x3 // TypeDoub is an 8-byte IEEE float array.
	TypeLogi ArrayType = 0x4 // TypeLogi is a 4-byte logical array.
	TypeChar ArrayType = 0x5 // TypeChar is an 8-character string array.
	TypeC0nn ArrayType = 0x6 // TypeC0nn is a fixed-width string array, width 1..999.
	TypeMess ArrayType = 0x7 // TypeMess is a payload-less marker array.
	TypeX231 ArrayType = 0x8 // TypeX231 marks a header continued by a second header.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

// CharWidth is the fixed element width of CHAR arrays.
const CharWidth = 8

func (t ArrayType) String() string {
	switch t {
	case TypeInte:
		return "INTE"
	case TypeReal:
		return "REAL"
	case TypeDoub:
		return "DOUB"
	case TypeLogi:
		return "LOGI"
	case TypeChar:
		return "CHAR"
	case TypeC0nn:
		return "C0NN"
	case TypeMess:
		return "MESS"
	case TypeX231:
		return "X231"
	default:
		return "Unknown"
	}
}

// ElementSize returns the on-disk size in bytes of one element. For TypeC0nn
// the size is the string width, which the caller supplies.
func (t ArrayType) ElementSize(width int) int {
	switch t {
	case TypeInte, TypeReal, TypeLogi:
		return 4
	case TypeDoub:
		return 8
	case TypeChar:
		return CharWidth
	case TypeC0nn:
		return width
	default:
		return 0
	}
}

// IsString reports whether the type stores character data.
func (t ArrayType) IsString() bool {
	return t == TypeChar || t == TypeC0nn
}

// Tag returns the four-character type tag written into keyword headers.
func (t ArrayType) Tag(width int) string {
	if t == TypeC0nn {
		return fmt.Sprintf("C%03d", width)
	}

	return t.String()
}

// ParseTag parses a four-character header type tag. For C0nn tags the width is
// returned as the second value; for every other type it is the element size.
func ParseTag(tag string) (ArrayType, int, bool) {
	switch tag {
	case "INTE":
		return TypeInte, 4, true
	case "REAL":
		return TypeReal, 4, true
	case "DOUB":
		return TypeDoub, 8, true
	case "LOGI":
		return TypeLogi, 4, true
	case "CHAR":
		return TypeChar, CharWidth, true
	case "MESS":
		return TypeMess, 0, true
	case "X231":
		return TypeX231, 0, true
	}

	if len(tag) == 4 && tag[0] == 'C' {
		width, err := strconv.Atoi(strings.TrimLeft(tag[1:], "0"))
		if err == nil && width > 0 {
			return TypeC0nn, width, true
		}
	}

	return 0, 0, false
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a user supplied name such as "zstd" to its CompressionType.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}
