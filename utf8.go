package segio

import (
	"io"
	"strings"
	"unicode/utf8"
)

// UTF-8 is the only text encoding of the package. Invalid byte sequences
// decode to U+FFFD; runes outside the Basic Multilingual Plane encode as
// four bytes; surrogate code points are not encodable and become U+FFFD.

// ReadUTF8All removes the whole buffer and returns it as a string.
func (b *Buffer) ReadUTF8All() string {
	s, _ := b.ReadUTF8(b.size)
	return s
}

// ReadUTF8 removes exactly byteCount bytes and returns them decoded as
// UTF-8.
func (b *Buffer) ReadUTF8(byteCount int64) (string, error) {
	if byteCount < 0 {
		return "", errByteCount(byteCount)
	}
	if byteCount == 0 {
		return "", nil
	}
	if byteCount > b.size {
		return "", ErrPrematureEOF
	}
	p := make([]byte, byteCount)
	if err := b.readFull(p); err != nil {
		return "", err
	}
	return toValidUTF8(p), nil
}

func toValidUTF8(p []byte) string {
	if utf8.Valid(p) {
		return string(p)
	}
	return strings.ToValidUTF8(string(p), string(utf8.RuneError))
}

// ReadUTF8Line removes and returns the next line, consuming but not
// returning its terminator: "\n" or "\r\n". The last line may be
// unterminated. Returns io.EOF when the buffer is empty.
func (b *Buffer) ReadUTF8Line() (string, error) {
	if b.size == 0 {
		return "", io.EOF
	}
	newline, err := b.IndexOf('\n', 0, b.size)
	if err != nil {
		return "", err
	}
	if newline == -1 {
		return b.ReadUTF8All(), nil
	}
	return b.readUTF8LineAt(newline)
}

// ReadUTF8LineStrict is ReadUTF8Line but fails with ErrPrematureEOF unless a
// terminated line is present.
func (b *Buffer) ReadUTF8LineStrict() (string, error) {
	newline, err := b.IndexOf('\n', 0, b.size)
	if err != nil {
		return "", err
	}
	if newline == -1 {
		return "", ErrPrematureEOF
	}
	return b.readUTF8LineAt(newline)
}

func (b *Buffer) readUTF8LineAt(newline int64) (string, error) {
	if newline > 0 && b.Get(newline-1) == '\r' {
		line, err := b.ReadUTF8(newline - 1)
		if err != nil {
			return "", err
		}
		return line, b.Skip(2)
	}
	line, err := b.ReadUTF8(newline)
	if err != nil {
		return "", err
	}
	return line, b.Skip(1)
}

// ReadRune removes and returns the next UTF-8 code point. A malformed
// leading sequence consumes one byte and yields U+FFFD. It implements
// io.RuneReader.
func (b *Buffer) ReadRune() (rune, int, error) {
	if b.size == 0 {
		return 0, 0, ErrPrematureEOF
	}
	var p [utf8.UTFMax]byte
	n := int64(len(p))
	if n > b.size {
		n = b.size
	}
	for i := int64(0); i < n; i++ {
		p[i] = b.Get(i)
	}
	r, size := utf8.DecodeRune(p[:n])
	if err := b.Skip(int64(size)); err != nil {
		return 0, 0, err
	}
	return r, size, nil
}

// WriteUTF8 appends the bytes of s.
func (b *Buffer) WriteUTF8(s string) {
	n := len(s)
	for len(s) > 0 {
		seg := b.writableSegment(1)
		k := copy(seg.Data[seg.Limit:], s)
		seg.Limit += k
		s = s[k:]
	}
	b.size += int64(n)
}

// WriteRune appends r encoded as UTF-8 and returns the number of bytes
// written. Invalid runes, surrogate halves included, encode as U+FFFD.
func (b *Buffer) WriteRune(r rune) int {
	s := b.writableSegment(utf8.UTFMax)
	out := utf8.AppendRune(s.Data[s.Limit:s.Limit], r)
	s.Limit += len(out)
	b.size += int64(len(out))
	return len(out)
}
