package segio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

var errPipeSourceClosed = errors.New("pipe source is closed")

// pipe is a back-pressured in-memory connection between one writer and one
// reader goroutine. A single shared Buffer is guarded by a mutex with two
// conditions: the writer blocks while the buffer is at capacity and the
// reader blocks while it is empty. Closing either side wakes and poisons
// the other.
type pipe struct {
	ctx context.Context
	max int64

	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	buf      Buffer

	sourceClosed bool
	sinkClosed   bool
}

// PipeSource is the readable side of a pipe.
type PipeSource struct {
	p *pipe
}

// PipeSink is the writable side of a pipe.
type PipeSink struct {
	p *pipe
}

// NewPipe returns the two sides of an in-memory pipe holding at most
// maxBufferSize bytes. One goroutine may write while another reads; the
// blocking waits on both sides honor the cancel token in ctx. NewPipe
// panics when maxBufferSize is not positive.
func NewPipe(ctx context.Context, maxBufferSize int64) (*PipeSource, *PipeSink) {
	if maxBufferSize < 1 {
		panic(fmt.Sprintf("segio: maxBufferSize < 1: %d", maxBufferSize))
	}
	p := &pipe{ctx: ctx, max: maxBufferSize}
	p.notFull = sync.NewCond(&p.mu)
	p.notEmpty = sync.NewCond(&p.mu)
	return &PipeSource{p: p}, &PipeSink{p: p}
}

func (s *PipeSink) WriteFrom(src *Buffer, byteCount int64) error {
	p := s.p
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sinkClosed {
		return ErrClosed
	}
	for byteCount > 0 {
		if p.sourceClosed {
			return &IOError{Op: "pipe write", Err: errPipeSourceClosed}
		}
		space := p.max - p.buf.size
		if space == 0 {
			if err := AwaitSignal(p.ctx, p.notFull); err != nil {
				return err
			}
			continue
		}
		n := min(space, byteCount)
		if err := p.buf.WriteFrom(src, n); err != nil {
			return err
		}
		byteCount -= n
		p.notEmpty.Broadcast()
	}
	return nil
}

// Flush is a no-op: pipe bytes are visible to the reader as soon as they
// are written.
func (s *PipeSink) Flush() error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()
	if s.p.sinkClosed {
		return ErrClosed
	}
	return nil
}

// Close marks the write side done. The reader drains remaining bytes and
// then sees end of stream. Close is idempotent.
func (s *PipeSink) Close() error {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinkClosed = true
	p.notEmpty.Broadcast()
	return nil
}

func (s *PipeSource) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	p := s.p
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sourceClosed {
		return 0, ErrClosed
	}
	for p.buf.size == 0 {
		if p.sinkClosed {
			return 0, io.EOF
		}
		if err := AwaitSignal(p.ctx, p.notEmpty); err != nil {
			return 0, err
		}
	}
	n, err := p.buf.ReadAtMostTo(dst, byteCount)
	p.notFull.Broadcast()
	return n, err
}

// Close marks the read side done, discarding buffered bytes; subsequent
// writes fail. Close is idempotent.
func (s *PipeSource) Close() error {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sourceClosed = true
	p.buf.Clear()
	p.notFull.Broadcast()
	return nil
}
