package segio

import (
	"encoding/binary"
	"strconv"
)

// WriteByte appends a single byte. It implements io.ByteWriter and never
// fails.
func (b *Buffer) WriteByte(c byte) error {
	s := b.writableSegment(1)
	s.Data[s.Limit] = c
	s.Limit++
	b.size++
	return nil
}

// WriteUint16 appends v in big-endian byte order.
func (b *Buffer) WriteUint16(v uint16) {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteUint16LE appends v in little-endian byte order.
func (b *Buffer) WriteUint16LE(v uint16) {
	var p [2]byte
	binary.LittleEndian.PutUint16(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteUint32 appends v in big-endian byte order.
func (b *Buffer) WriteUint32(v uint32) {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteUint32LE appends v in little-endian byte order.
func (b *Buffer) WriteUint32LE(v uint32) {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteUint64 appends v in big-endian byte order.
func (b *Buffer) WriteUint64(v uint64) {
	var p [8]byte
	binary.BigEndian.PutUint64(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteUint64LE appends v in little-endian byte order.
func (b *Buffer) WriteUint64LE(v uint64) {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], v)
	_, _ = b.Write(p[:])
}

// WriteDecimalLong appends v as signed base-10 text.
func (b *Buffer) WriteDecimalLong(v int64) {
	// Sign plus up to 19 digits.
	s := b.writableSegment(20)
	out := strconv.AppendInt(s.Data[s.Limit:s.Limit], v, 10)
	s.Limit += len(out)
	b.size += int64(len(out))
}

// WriteHexadecimalUnsignedLong appends v as lower-case base-16 text without
// a prefix.
func (b *Buffer) WriteHexadecimalUnsignedLong(v uint64) {
	s := b.writableSegment(16)
	out := strconv.AppendUint(s.Data[s.Limit:s.Limit], v, 16)
	s.Limit += len(out)
	b.size += int64(len(out))
}
