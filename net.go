package segio

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"time"
)

// connSource adapts a net.Conn to a Source. The active cancel token's wait
// budget is projected onto the connection's read deadline before each
// blocking read, so timeouts fire inside the kernel instead of leaving the
// goroutine parked.
type connSource struct {
	ctx    context.Context
	conn   net.Conn
	closed bool
}

// ConnSource adapts conn's read side to a Source honoring the cancel token
// in ctx.
func ConnSource(ctx context.Context, conn net.Conn) Source {
	return &connSource{ctx: ctx, conn: conn}
}

func (s *connSource) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
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
		if err := applyDeadline(s.ctx, s.conn.SetReadDeadline); err != nil {
			return 0, err
		}
		n, err := dst.readFromOnce(s.conn, byteCount)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, translateConnError("read", err)
		}
	}
}

func (s *connSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return wrapIO("close", s.conn.Close())
}

// connSink adapts a net.Conn to a Sink with the dual deadline mapping.
type connSink struct {
	ctx    context.Context
	conn   net.Conn
	closed bool
}

// ConnSink adapts conn's write side to a Sink honoring the cancel token in
// ctx.
func ConnSink(ctx context.Context, conn net.Conn) Sink {
	return &connSink{ctx: ctx, conn: conn}
}

func (s *connSink) WriteFrom(src *Buffer, byteCount int64) error {
	if s.closed {
		return ErrClosed
	}
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	for byteCount > 0 {
		if err := CheckCancel(s.ctx); err != nil {
			return err
		}
		if err := applyDeadline(s.ctx, s.conn.SetWriteDeadline); err != nil {
			return err
		}
		seg := src.head
		n := seg.Len()
		if int64(n) > byteCount {
			n = int(byteCount)
		}
		written, werr := s.conn.Write(seg.Data[seg.Pos : seg.Pos+n])
		seg.Pos += written
		src.size -= int64(written)
		byteCount -= int64(written)
		if seg.Len() == 0 {
			src.popHead()
		}
		if werr != nil {
			return translateConnError("write", werr)
		}
		if written == 0 {
			return wrapIO("write", io.ErrShortWrite)
		}
	}
	return nil
}

func (s *connSink) Flush() error {
	if s.closed {
		return ErrClosed
	}
	return CheckCancel(s.ctx)
}

func (s *connSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return wrapIO("close", s.conn.Close())
}

func applyDeadline(ctx context.Context, set func(time.Time) error) error {
	tok := TokenFrom(ctx)
	if tok == nil {
		return nil
	}
	now := time.Now()
	if budget := tok.waitBudget(now); budget > 0 {
		return wrapIO("deadline", set(now.Add(budget)))
	}
	return wrapIO("deadline", set(time.Time{}))
}

func translateConnError(op string, err error) error {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrTimeout
	}
	return wrapIO(op, err)
}
