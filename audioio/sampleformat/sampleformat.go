// Package sampleformat converts between the engine's internal float32
// samples and the byte layouts a Device's MMAP buffer expects: signed
// 8/16/20/24/32-bit integers and 32/64-bit IEEE floats, in either byte
// order. Conversion happens only at the write boundary, never in the DSP
// hot path.
package sampleformat

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrUnsupportedBitDepth is returned for a bit depth outside the supported
// set.
var ErrUnsupportedBitDepth = errors.New("sampleformat: unsupported bit depth")

// Kind distinguishes integer from float encodings.
type Kind int

const (
	Int Kind = iota
	Float
)

// ByteOrder selects little- or big-endian encoding.
type ByteOrder int

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Format describes one concrete sample encoding.
type Format struct {
	Kind      Kind
	BitDepth  int
	ByteOrder ByteOrder
}

// BitDepths supported for Kind == Int.
var validIntDepths = map[int]bool{8: true, 16: true, 20: true, 24: true, 32: true}

// BitDepths supported for Kind == Float.
var validFloatDepths = map[int]bool{32: true, 64: true}

// ByteRate returns the number of bytes occupied by one sample, i.e.
// ceil(bitDepth/8).
func (f Format) ByteRate() int {
	return (f.BitDepth + 7) / 8
}

// Validate reports whether the format's bit depth is supported for its kind.
func (f Format) Validate() error {
	switch f.Kind {
	case Int:
		if !validIntDepths[f.BitDepth] {
			return ErrUnsupportedBitDepth
		}
	case Float:
		if !validFloatDepths[f.BitDepth] {
			return ErrUnsupportedBitDepth
		}
	default:
		return ErrUnsupportedBitDepth
	}
	return nil
}

func (f Format) order() binaryByteOrder {
	if f.ByteOrder == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// binaryByteOrder is the subset of encoding/binary.ByteOrder this package
// needs; named locally so callers never have to import encoding/binary.
type binaryByteOrder interface {
	PutUint16([]byte, uint16)
	PutUint32([]byte, uint32)
	PutUint64([]byte, uint64)
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

// Encode writes one sample (range [-1, 1]) into dst, which must be at least
// f.ByteRate() bytes long.
func Encode(f Format, dst []byte, sample float32) error {
	if err := f.Validate(); err != nil {
		return err
	}
	order := f.order()
	switch f.Kind {
	case Int:
		return encodeInt(f, order, dst, sample)
	case Float:
		return encodeFloat(f, order, dst, sample)
	}
	return ErrUnsupportedBitDepth
}

// Decode reads one sample out of src, which must be at least f.ByteRate()
// bytes long.
func Decode(f Format, src []byte) (float32, error) {
	if err := f.Validate(); err != nil {
		return 0, err
	}
	order := f.order()
	switch f.Kind {
	case Int:
		return decodeInt(f, order, src), nil
	case Float:
		return decodeFloat(f, order, src), nil
	}
	return 0, ErrUnsupportedBitDepth
}

func encodeInt(f Format, order binaryByteOrder, dst []byte, sample float32) error {
	if sample > 1 {
		sample = 1
	} else if sample < -1 {
		sample = -1
	}
	bits := f.BitDepth
	maxVal := int64(1)<<(bits-1) - 1
	v := int64(float64(sample) * float64(maxVal))

	switch bits {
	case 8:
		dst[0] = byte(int8(v))
	case 16:
		order.PutUint16(dst, uint16(int16(v)))
	case 20, 24:
		// Stored in 3 bytes regardless of 20 vs 24 significant bits.
		u := uint32(int32(v))
		if f.ByteOrder == BigEndian {
			dst[0] = byte(u >> 16)
			dst[1] = byte(u >> 8)
			dst[2] = byte(u)
		} else {
			dst[0] = byte(u)
			dst[1] = byte(u >> 8)
			dst[2] = byte(u >> 16)
		}
	case 32:
		order.PutUint32(dst, uint32(int32(v)))
	}
	return nil
}

func decodeInt(f Format, order binaryByteOrder, src []byte) float32 {
	bits := f.BitDepth
	maxVal := float64(int64(1)<<(bits-1) - 1)

	var v int64
	switch bits {
	case 8:
		v = int64(int8(src[0]))
	case 16:
		v = int64(int16(order.Uint16(src)))
	case 20, 24:
		var u uint32
		if f.ByteOrder == BigEndian {
			u = uint32(src[0])<<16 | uint32(src[1])<<8 | uint32(src[2])
		} else {
			u = uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
		}
		// Sign-extend from 24 bits.
		if u&0x800000 != 0 {
			u |= 0xFF000000
		}
		v = int64(int32(u))
	case 32:
		v = int64(int32(order.Uint32(src)))
	}
	return float32(float64(v) / maxVal)
}

func encodeFloat(f Format, order binaryByteOrder, dst []byte, sample float32) error {
	switch f.BitDepth {
	case 32:
		order.PutUint32(dst, math.Float32bits(sample))
	case 64:
		order.PutUint64(dst, math.Float64bits(float64(sample)))
	}
	return nil
}

func decodeFloat(f Format, order binaryByteOrder, src []byte) float32 {
	switch f.BitDepth {
	case 32:
		return math.Float32frombits(order.Uint32(src))
	case 64:
		return float32(math.Float64frombits(order.Uint64(src)))
	}
	return 0
}
