package segio

import (
	"errors"
	"io"

	"github.com/javi11/segio/internal/segment"
)

// Writer wraps a Sink with an internal staging Buffer and the typed write
// surface. Write primitives stage bytes and opportunistically push complete
// segments downstream, so memory stays bounded while the partial tail keeps
// coalescing small writes.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	dst    Sink
	buf    Buffer
	closed bool
}

// NewWriter returns a Writer writing to dst.
func NewWriter(dst Sink) *Writer {
	return &Writer{dst: dst}
}

// EmitCompleteSegments pushes every full segment downstream, keeping a
// partial tail to coalesce further writes.
func (w *Writer) EmitCompleteSegments() error {
	if w.closed {
		return ErrClosed
	}
	if n := w.buf.completeSegmentByteCount(); n > 0 {
		return w.dst.WriteFrom(&w.buf, n)
	}
	return nil
}

// Emit pushes everything currently staged downstream without flushing it.
func (w *Writer) Emit() error {
	if w.closed {
		return ErrClosed
	}
	if n := w.buf.size; n > 0 {
		return w.dst.WriteFrom(&w.buf, n)
	}
	return nil
}

// Flush emits all staged bytes and flushes downstream.
func (w *Writer) Flush() error {
	if err := w.Emit(); err != nil {
		return err
	}
	return w.dst.Flush()
}

// WriteFrom implements Sink: it stages byteCount bytes moved from src and
// pushes complete segments downstream.
func (w *Writer) WriteFrom(src *Buffer, byteCount int64) error {
	if w.closed {
		return ErrClosed
	}
	if err := w.buf.WriteFrom(src, byteCount); err != nil {
		return err
	}
	return w.EmitCompleteSegments()
}

// Write stages p. It implements io.Writer; the returned count includes
// staged bytes even when pushing them downstream fails.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	n, _ := w.buf.Write(p)
	return n, w.EmitCompleteSegments()
}

// WriteByte stages a single byte. It implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error {
	if w.closed {
		return ErrClosed
	}
	_ = w.buf.WriteByte(c)
	return w.EmitCompleteSegments()
}

// WriteUint16 stages v in big-endian byte order.
func (w *Writer) WriteUint16(v uint16) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint16(v)
	return w.EmitCompleteSegments()
}

// WriteUint16LE stages v in little-endian byte order.
func (w *Writer) WriteUint16LE(v uint16) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint16LE(v)
	return w.EmitCompleteSegments()
}

// WriteUint32 stages v in big-endian byte order.
func (w *Writer) WriteUint32(v uint32) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint32(v)
	return w.EmitCompleteSegments()
}

// WriteUint32LE stages v in little-endian byte order.
func (w *Writer) WriteUint32LE(v uint32) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint32LE(v)
	return w.EmitCompleteSegments()
}

// WriteUint64 stages v in big-endian byte order.
func (w *Writer) WriteUint64(v uint64) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint64(v)
	return w.EmitCompleteSegments()
}

// WriteUint64LE stages v in little-endian byte order.
func (w *Writer) WriteUint64LE(v uint64) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUint64LE(v)
	return w.EmitCompleteSegments()
}

// WriteDecimalLong stages v as signed base-10 text.
func (w *Writer) WriteDecimalLong(v int64) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteDecimalLong(v)
	return w.EmitCompleteSegments()
}

// WriteHexadecimalUnsignedLong stages v as lower-case base-16 text.
func (w *Writer) WriteHexadecimalUnsignedLong(v uint64) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteHexadecimalUnsignedLong(v)
	return w.EmitCompleteSegments()
}

// WriteUTF8 stages the bytes of s.
func (w *Writer) WriteUTF8(s string) error {
	if w.closed {
		return ErrClosed
	}
	w.buf.WriteUTF8(s)
	return w.EmitCompleteSegments()
}

// WriteRune stages r encoded as UTF-8 and returns the number of bytes
// staged.
func (w *Writer) WriteRune(r rune) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	n := w.buf.WriteRune(r)
	return n, w.EmitCompleteSegments()
}

// TransferFrom pulls from src until end of stream, staging and periodically
// emitting. It returns the number of bytes transferred.
func (w *Writer) TransferFrom(src Source) (int64, error) {
	if w.closed {
		return 0, ErrClosed
	}
	var total int64
	for {
		n, err := src.ReadAtMostTo(&w.buf, segment.BlockSize)
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
		total += n
		if err := w.EmitCompleteSegments(); err != nil {
			return total, err
		}
	}
}

// Close emits staged bytes and closes downstream. When both the final emit
// and the downstream close fail, the emit failure wins and the close
// failure is attached. Downstream close always runs. Close is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	var err error
	if w.buf.size > 0 {
		err = w.dst.WriteFrom(&w.buf, w.buf.size)
	}
	if cerr := w.dst.Close(); cerr != nil {
		if err == nil {
			err = cerr
		} else {
			err = errors.Join(err, cerr)
		}
	}
	w.closed = true
	w.buf.Clear()
	return err
}
