package segio

import (
	"io"

	"github.com/javi11/segio/internal/segment"
)

// Reader wraps a Source with an internal staging Buffer and the typed read
// surface. Every consuming operation serves from the staging buffer first
// and pulls from upstream in block-sized gulps only when more bytes are
// needed.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	src    Source
	buf    Buffer
	closed bool
}

// NewReader returns a Reader reading from src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Buffered returns the number of bytes currently staged.
func (r *Reader) Buffered() int64 { return r.buf.size }

// fill pulls once from upstream with at least a block-sized hint.
func (r *Reader) fill() (int64, error) {
	return r.src.ReadAtMostTo(&r.buf, segment.BlockSize)
}

// Request pulls from upstream until the staging buffer holds byteCount
// bytes, reporting false when upstream ends first.
func (r *Reader) Request(byteCount int64) (bool, error) {
	if byteCount < 0 {
		return false, errByteCount(byteCount)
	}
	if r.closed {
		return false, ErrClosed
	}
	for r.buf.size < byteCount {
		if _, err := r.fill(); err != nil {
			if err == io.EOF {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Require fails with ErrPrematureEOF unless byteCount bytes can be staged.
func (r *Reader) Require(byteCount int64) error {
	ok, err := r.Request(byteCount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPrematureEOF
	}
	return nil
}

// Exhausted reports whether the staging buffer is empty and upstream has
// ended.
func (r *Reader) Exhausted() (bool, error) {
	if r.closed {
		return false, ErrClosed
	}
	if r.buf.size > 0 {
		return false, nil
	}
	if _, err := r.fill(); err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// ReadAtMostTo implements Source over the staging buffer and upstream.
func (r *Reader) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	if r.closed {
		return 0, ErrClosed
	}
	if r.buf.size == 0 {
		if _, err := r.fill(); err != nil {
			return 0, err
		}
	}
	return r.buf.ReadAtMostTo(dst, byteCount)
}

// Read removes up to len(p) staged or upstream bytes into p. It implements
// io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if r.buf.size == 0 {
		if _, err := r.fill(); err != nil {
			return 0, err
		}
	}
	return r.buf.Read(p)
}

// ReadTo moves exactly byteCount bytes into dst, failing with
// ErrPrematureEOF when upstream ends short.
func (r *Reader) ReadTo(dst *Buffer, byteCount int64) error {
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if r.closed {
		return ErrClosed
	}
	for byteCount > 0 {
		if r.buf.size == 0 {
			if _, err := r.fill(); err != nil {
				if err == io.EOF {
					return ErrPrematureEOF
				}
				return err
			}
		}
		n := min(byteCount, r.buf.size)
		if err := dst.WriteFrom(&r.buf, n); err != nil {
			return err
		}
		byteCount -= n
	}
	return nil
}

// ReadBytes removes exactly byteCount bytes and returns them.
func (r *Reader) ReadBytes(byteCount int64) ([]byte, error) {
	if err := r.Require(byteCount); err != nil {
		return nil, err
	}
	return r.buf.ReadBytes(byteCount)
}

// Skip discards byteCount bytes, pulling from upstream as needed.
func (r *Reader) Skip(byteCount int64) error {
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if r.closed {
		return ErrClosed
	}
	for byteCount > 0 {
		if r.buf.size == 0 {
			if _, err := r.fill(); err != nil {
				if err == io.EOF {
					return ErrPrematureEOF
				}
				return err
			}
		}
		n := min(byteCount, r.buf.size)
		if err := r.buf.Skip(n); err != nil {
			return err
		}
		byteCount -= n
	}
	return nil
}

// TransferTo drains upstream into dst until end of stream, returning the
// number of bytes moved.
func (r *Reader) TransferTo(dst Sink) (int64, error) {
	if r.closed {
		return 0, ErrClosed
	}
	var total int64
	for {
		_, err := r.fill()
		if err != nil && err != io.EOF {
			return total, err
		}
		for r.buf.size > 0 {
			n := r.buf.size
			if werr := dst.WriteFrom(&r.buf, n); werr != nil {
				return total, werr
			}
			total += n
		}
		if err == io.EOF {
			return total, nil
		}
	}
}

// IndexOf returns the head-relative position of the first occurrence of
// target, staging upstream bytes as it scans, or -1 when upstream ends
// without one.
func (r *Reader) IndexOf(target byte) (int64, error) {
	if r.closed {
		return -1, ErrClosed
	}
	from := int64(0)
	for {
		i, err := r.buf.IndexOf(target, from, r.buf.size)
		if err != nil {
			return -1, err
		}
		if i != -1 {
			return i, nil
		}
		from = r.buf.size
		if _, err := r.fill(); err != nil {
			if err == io.EOF {
				return -1, nil
			}
			return -1, err
		}
	}
}

// ReadByte removes and returns one byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	return r.buf.ReadByte()
}

// ReadUint16 removes two bytes as a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if err := r.Require(2); err != nil {
		return 0, err
	}
	return r.buf.ReadUint16()
}

// ReadUint16LE is ReadUint16 in little-endian byte order.
func (r *Reader) ReadUint16LE() (uint16, error) {
	if err := r.Require(2); err != nil {
		return 0, err
	}
	return r.buf.ReadUint16LE()
}

// ReadUint32 removes four bytes as a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if err := r.Require(4); err != nil {
		return 0, err
	}
	return r.buf.ReadUint32()
}

// ReadUint32LE is ReadUint32 in little-endian byte order.
func (r *Reader) ReadUint32LE() (uint32, error) {
	if err := r.Require(4); err != nil {
		return 0, err
	}
	return r.buf.ReadUint32LE()
}

// ReadUint64 removes eight bytes as a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.Require(8); err != nil {
		return 0, err
	}
	return r.buf.ReadUint64()
}

// ReadUint64LE is ReadUint64 in little-endian byte order.
func (r *Reader) ReadUint64LE() (uint64, error) {
	if err := r.Require(8); err != nil {
		return 0, err
	}
	return r.buf.ReadUint64LE()
}

// ReadDecimalLong stages bytes until the number ends, then decodes it like
// Buffer.ReadDecimalLong.
func (r *Reader) ReadDecimalLong() (int64, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	pos := int64(0)
	for {
		ok, err := r.Request(pos + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		c := r.buf.Get(pos)
		if (c < '0' || c > '9') && !(pos == 0 && c == '-') {
			break
		}
		pos++
	}
	return r.buf.ReadDecimalLong()
}

// ReadHexadecimalUnsignedLong stages bytes until the number ends, then
// decodes it like Buffer.ReadHexadecimalUnsignedLong.
func (r *Reader) ReadHexadecimalUnsignedLong() (uint64, error) {
	if err := r.Require(1); err != nil {
		return 0, err
	}
	pos := int64(0)
	for {
		ok, err := r.Request(pos + 1)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		c := r.buf.Get(pos)
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			break
		}
		pos++
	}
	return r.buf.ReadHexadecimalUnsignedLong()
}

// ReadUTF8 removes exactly byteCount bytes decoded as UTF-8.
func (r *Reader) ReadUTF8(byteCount int64) (string, error) {
	if err := r.Require(byteCount); err != nil {
		return "", err
	}
	return r.buf.ReadUTF8(byteCount)
}

// ReadUTF8All drains upstream to its end and returns everything as a
// string.
func (r *Reader) ReadUTF8All() (string, error) {
	if r.closed {
		return "", ErrClosed
	}
	for {
		if _, err := r.fill(); err != nil {
			if err == io.EOF {
				return r.buf.ReadUTF8All(), nil
			}
			return "", err
		}
	}
}

// ReadUTF8Line removes and returns the next line, staging upstream bytes
// until a terminator or end of stream. See Buffer.ReadUTF8Line.
func (r *Reader) ReadUTF8Line() (string, error) {
	newline, err := r.IndexOf('\n')
	if err != nil {
		return "", err
	}
	if newline == -1 {
		if r.buf.size == 0 {
			return "", io.EOF
		}
		return r.buf.ReadUTF8All(), nil
	}
	return r.buf.readUTF8LineAt(newline)
}

// ReadUTF8LineStrict is ReadUTF8Line but fails with ErrPrematureEOF when
// upstream ends without a line terminator.
func (r *Reader) ReadUTF8LineStrict() (string, error) {
	newline, err := r.IndexOf('\n')
	if err != nil {
		return "", err
	}
	if newline == -1 {
		return "", ErrPrematureEOF
	}
	return r.buf.readUTF8LineAt(newline)
}

// ReadRune removes and returns the next UTF-8 code point. It implements
// io.RuneReader.
func (r *Reader) ReadRune() (rune, int, error) {
	if err := r.Require(1); err != nil {
		return 0, 0, err
	}
	// Stage up to a full encoding; a short stage near end of stream is fine.
	if _, err := r.Request(4); err != nil {
		return 0, 0, err
	}
	return r.buf.ReadRune()
}

// Peek returns a reader over the upcoming bytes that does not consume them.
// Reading from this Reader invalidates the peek.
func (r *Reader) Peek() *Reader {
	return NewReader(newPeekSource(r, &r.buf))
}

// Close discards staged bytes and closes upstream. Close is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.buf.Clear()
	return r.src.Close()
}
