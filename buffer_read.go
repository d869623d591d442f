package segio

import (
	"encoding/binary"
	"math"
)

// readFull moves exactly len(p) bytes from the head of the buffer into p.
// When the buffer holds fewer bytes it fails with ErrPrematureEOF without
// consuming anything.
func (b *Buffer) readFull(p []byte) error {
	if int64(len(p)) > b.size {
		return ErrPrematureEOF
	}
	for i := 0; i < len(p); {
		s := b.head
		n := copy(p[i:], s.Data[s.Pos:s.Limit])
		s.Pos += n
		b.size -= int64(n)
		i += n
		if s.Len() == 0 {
			b.popHead()
		}
	}
	return nil
}

// ReadBytes removes exactly byteCount bytes and returns them in a fresh
// slice.
func (b *Buffer) ReadBytes(byteCount int64) ([]byte, error) {
	if byteCount < 0 {
		return nil, errByteCount(byteCount)
	}
	p := make([]byte, byteCount)
	if err := b.readFull(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReadByte removes and returns the byte at the head of the buffer. It
// implements io.ByteReader, failing with ErrPrematureEOF when empty.
func (b *Buffer) ReadByte() (byte, error) {
	if b.size == 0 {
		return 0, ErrPrematureEOF
	}
	s := b.head
	v := s.Data[s.Pos]
	s.Pos++
	b.size--
	if s.Len() == 0 {
		b.popHead()
	}
	return v, nil
}

// ReadUint16 removes two bytes and returns them as a big-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	var p [2]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p[:]), nil
}

// ReadUint16LE is ReadUint16 in little-endian byte order.
func (b *Buffer) ReadUint16LE() (uint16, error) {
	var p [2]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p[:]), nil
}

// ReadUint32 removes four bytes and returns them as a big-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	var p [4]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p[:]), nil
}

// ReadUint32LE is ReadUint32 in little-endian byte order.
func (b *Buffer) ReadUint32LE() (uint32, error) {
	var p [4]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p[:]), nil
}

// ReadUint64 removes eight bytes and returns them as a big-endian uint64.
func (b *Buffer) ReadUint64() (uint64, error) {
	var p [8]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p[:]), nil
}

// ReadUint64LE is ReadUint64 in little-endian byte order.
func (b *Buffer) ReadUint64LE() (uint64, error) {
	var p [8]byte
	if err := b.readFull(p[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p[:]), nil
}

// ReadDecimalLong reads a signed base-10 long: an optional leading '-'
// followed by one or more digits, stopping at the first non-digit byte
// without consuming it. It fails with ErrNumberFormat when the input does
// not start a valid number or would overflow 64 bits, and with
// ErrPrematureEOF when the buffer is empty.
func (b *Buffer) ReadDecimalLong() (int64, error) {
	if b.size == 0 {
		return 0, ErrPrematureEOF
	}

	// Accumulate negatively so math.MinInt64 is representable.
	const overflowZone = math.MinInt64 / 10
	overflowDigit := int64(math.MinInt64%10) + 1
	var value int64
	seen := 0
	negative := false

	for b.size > 0 {
		s := b.head
		c := s.Data[s.Pos]
		switch {
		case c >= '0' && c <= '9':
			digit := int64(c - '0')
			if value < overflowZone || (value == overflowZone && -digit < overflowDigit) {
				return 0, errNumberFormat("number too large: %d%c…", value, c)
			}
			value = value*10 - digit
			seen++
		case c == '-' && seen == 0 && !negative:
			negative = true
			overflowDigit--
		default:
			if seen == 0 {
				return 0, errNumberFormat("expected leading [0-9] or '-' character but was %#x", c)
			}
			if negative {
				return value, nil
			}
			return -value, nil
		}
		s.Pos++
		b.size--
		if s.Len() == 0 {
			b.popHead()
		}
	}
	if seen == 0 {
		// A lone '-' with nothing after it.
		return 0, errNumberFormat("expected a digit after '-'")
	}
	if negative {
		return value, nil
	}
	return -value, nil
}

// ReadHexadecimalUnsignedLong reads an unsigned base-16 long of up to 16
// digits in either letter case, stopping at the first non-hex byte without
// consuming it.
func (b *Buffer) ReadHexadecimalUnsignedLong() (uint64, error) {
	if b.size == 0 {
		return 0, ErrPrematureEOF
	}
	var value uint64
	seen := 0
	for b.size > 0 {
		s := b.head
		c := s.Data[s.Pos]
		var digit uint64
		switch {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			if seen == 0 {
				return 0, errNumberFormat("expected leading [0-9a-fA-F] character but was %#x", c)
			}
			return value, nil
		}
		if value&0xf000000000000000 != 0 {
			return 0, errNumberFormat("number too large: %x%c…", value, c)
		}
		value = value<<4 | digit
		seen++
		s.Pos++
		b.size--
		if s.Len() == 0 {
			b.popHead()
		}
	}
	return value, nil
}
