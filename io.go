package segio

import (
	"context"
	"io"
)

// ioSource adapts an io.Reader to a Source. Reads land directly in the
// destination buffer's tail segment, and the cancel token carried by ctx is
// consulted around each read.
type ioSource struct {
	ctx    context.Context
	r      io.Reader
	closed bool
}

// NewSource adapts r to a Source. Blocking reads honor the cancel token in
// ctx; Close closes r when it is an io.Closer.
func NewSource(ctx context.Context, r io.Reader) Source {
	return &ioSource{ctx: ctx, r: r}
}

func (s *ioSource) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	if byteCount == 0 {
		return 0, nil
	}
	for {
		if err := CheckCancel(s.ctx); err != nil {
			return 0, err
		}
		n, err := dst.readFromOnce(s.r, byteCount)
		if n > 0 {
			// Bytes landed in dst; a trailing error resurfaces on the next
			// call.
			return n, nil
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, wrapIO("read", err)
		}
		// The reader returned 0, nil; retry after a cancellation check.
	}
}

func (s *ioSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.r.(io.Closer); ok {
		return wrapIO("close", c.Close())
	}
	return nil
}

// ioSink adapts an io.Writer to a Sink.
type ioSink struct {
	ctx    context.Context
	w      io.Writer
	closed bool
}

// NewSink adapts w to a Sink. Blocking writes honor the cancel token in
// ctx; Close closes w when it is an io.Closer.
func NewSink(ctx context.Context, w io.Writer) Sink {
	return &ioSink{ctx: ctx, w: w}
}

func (s *ioSink) WriteFrom(src *Buffer, byteCount int64) (err error) {
	if s.closed {
		return ErrClosed
	}
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	defer recoverIO("write", &err)
	for byteCount > 0 {
		if err := CheckCancel(s.ctx); err != nil {
			return err
		}
		seg := src.head
		n := seg.Len()
		if int64(n) > byteCount {
			n = int(byteCount)
		}
		written, werr := s.w.Write(seg.Data[seg.Pos : seg.Pos+n])
		seg.Pos += written
		src.size -= int64(written)
		byteCount -= int64(written)
		if seg.Len() == 0 {
			src.popHead()
		}
		if werr != nil {
			return wrapIO("write", werr)
		}
		if written == 0 {
			return wrapIO("write", io.ErrShortWrite)
		}
	}
	return nil
}

func (s *ioSink) Flush() error {
	if s.closed {
		return ErrClosed
	}
	if err := CheckCancel(s.ctx); err != nil {
		return err
	}
	if f, ok := s.w.(interface{ Flush() error }); ok {
		return wrapIO("flush", f.Flush())
	}
	return nil
}

func (s *ioSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.w.(io.Closer); ok {
		return wrapIO("close", c.Close())
	}
	return nil
}
