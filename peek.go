package segio

import (
	"errors"
	"io"

	"github.com/javi11/segio/internal/segment"
)

var errPeekInvalid = errors.New("buffer modified while peeking")

// peekSource is a non-consuming cursor over a buffer's content. When the
// cursor belongs to a Reader's Peek it also pulls from upstream, staging
// bytes into the reader's buffer without consuming them.
//
// The cursor snapshots the buffer's head when it is created (or, when the
// buffer is empty then, once bytes first arrive); consuming from the
// underlying buffer afterwards invalidates the cursor.
type peekSource struct {
	upstream *Reader // nil when peeking a raw Buffer
	buf      *Buffer

	expectedSegment *segment.Segment
	expectedPos     int
	pos             int64
	closed          bool
}

func newPeekSource(upstream *Reader, buf *Buffer) *peekSource {
	p := &peekSource{upstream: upstream, buf: buf}
	p.snapshot()
	return p
}

func (p *peekSource) snapshot() {
	if p.buf.head != nil {
		p.expectedSegment = p.buf.head
		p.expectedPos = p.buf.head.Pos
	}
}

func (p *peekSource) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	if p.expectedSegment != nil &&
		(p.buf.head != p.expectedSegment || p.buf.head.Pos != p.expectedPos) {
		return 0, &IOError{Op: "peek", Err: errPeekInvalid}
	}
	if p.upstream != nil {
		if _, err := p.upstream.Request(p.pos + byteCount); err != nil {
			return 0, err
		}
	}
	if p.expectedSegment == nil {
		// The buffer was empty when the cursor was created; pin it now that
		// bytes have arrived.
		p.snapshot()
	}
	if p.pos == p.buf.size {
		return 0, io.EOF
	}
	n := min(byteCount, p.buf.size-p.pos)
	if err := p.buf.CopyTo(dst, p.pos, n); err != nil {
		return 0, err
	}
	p.pos += n
	return n, nil
}

func (p *peekSource) Close() error {
	p.closed = true
	return nil
}
