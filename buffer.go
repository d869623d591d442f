package segio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/javi11/segio/internal/segment"
)

// Buffer is an ordered queue of pooled segments holding bytes in memory. It
// is readable at its head and writable at its tail, implements Source and
// Sink over itself, and exchanges whole segments with other buffers instead
// of copying whenever alignment permits.
//
// The zero value is an empty buffer ready for use. A Buffer is not safe for
// concurrent use.
type Buffer struct {
	// head is the first segment of a circular list; head.Prev is the tail.
	// nil when the buffer is empty.
	head *segment.Segment
	size int64
}

// Size returns the number of bytes currently in the buffer.
func (b *Buffer) Size() int64 { return b.size }

// Exhausted reports whether the buffer is empty.
func (b *Buffer) Exhausted() bool { return b.size == 0 }

func (b *Buffer) String() string {
	return fmt.Sprintf("segio.Buffer(size=%d)", b.size)
}

// pushTail appends a detached segment at the tail of the queue.
func (b *Buffer) pushTail(s *segment.Segment) {
	if b.head == nil {
		s.Prev = s
		s.Next = s
		b.head = s
		return
	}
	b.head.Prev.Push(s)
}

// popHead detaches and recycles the head segment, which must be empty.
func (b *Buffer) popHead() {
	s := b.head
	b.head = s.Pop()
	segment.Default.Recycle(s)
}

// writableSegment returns a tail segment with at least minCapacity writable
// bytes, appending a fresh one when the current tail is full or not an
// owner.
func (b *Buffer) writableSegment(minCapacity int) *segment.Segment {
	if minCapacity < 1 || minCapacity > segment.BlockSize {
		panic(fmt.Sprintf("segio: unexpected capacity %d", minCapacity))
	}
	if b.head == nil {
		s := segment.Default.Take()
		s.Prev = s
		s.Next = s
		b.head = s
		return s
	}
	t := b.head.Prev
	if !t.Owner || t.Limit+minCapacity > segment.BlockSize {
		t = t.Push(segment.Default.Take())
	}
	return t
}

// completeSegmentByteCount returns the bytes held in full segments, i.e. the
// size minus a partial tail that may still coalesce further writes.
func (b *Buffer) completeSegmentByteCount() int64 {
	n := b.size
	if n == 0 {
		return 0
	}
	if t := b.head.Prev; t.Owner && t.Limit < segment.BlockSize {
		n -= int64(t.Len())
	}
	return n
}

// Write appends p to the buffer. It implements io.Writer and never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		s := b.writableSegment(1)
		k := copy(s.Data[s.Limit:], p)
		s.Limit += k
		p = p[k:]
	}
	b.size += int64(n)
	return n, nil
}

// Read removes up to len(p) bytes from the head of the buffer into p. It
// implements io.Reader, returning io.EOF when the buffer is empty.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.size == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	s := b.head
	n := copy(p, s.Data[s.Pos:s.Limit])
	s.Pos += n
	b.size -= int64(n)
	if s.Len() == 0 {
		b.popHead()
	}
	return n, nil
}

// WriteFrom moves byteCount bytes from src's head to the tail of this
// buffer. Whole segments are relinked without copying; a trailing partial
// span is copied into this buffer's tail segment when it fits there and is
// split off src's head segment otherwise. The move is all-or-nothing: either all byteCount bytes transfer or
// the error reports why none could.
func (b *Buffer) WriteFrom(src *Buffer, byteCount int64) error {
	if src == b {
		return &argumentError{msg: "source buffer is the destination buffer"}
	}
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}

	for byteCount > 0 {
		if byteCount < int64(src.head.Len()) {
			// The move ends inside src's head segment. Land the bytes in our
			// tail when they fit, otherwise split the head so a whole-segment
			// move applies.
			t := b.tailSegment()
			if t != nil && t.Owner {
				avail := int64(segment.BlockSize - t.Limit)
				if !t.Shared {
					avail += int64(t.Pos)
				}
				if byteCount <= avail {
					src.head.WriteTo(t, int(byteCount))
					src.size -= byteCount
					b.size += byteCount
					return nil
				}
			}
			src.head = src.head.Split(int(byteCount), segment.Default)
		}

		// Relink src's head segment onto our tail.
		s := src.head
		moved := int64(s.Len())
		src.head = s.Pop()
		if b.head == nil {
			s.Prev = s
			s.Next = s
			b.head = s
		} else {
			b.head.Prev.Push(s)
			s.Compact(segment.Default)
		}
		src.size -= moved
		b.size += moved
		byteCount -= moved
	}
	return nil
}

func (b *Buffer) tailSegment() *segment.Segment {
	if b.head == nil {
		return nil
	}
	return b.head.Prev
}

// ReadAtMostTo moves up to byteCount bytes from this buffer's head to dst's
// tail, returning the number moved, or io.EOF when this buffer is empty.
func (b *Buffer) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	if b.size == 0 {
		return 0, io.EOF
	}
	if byteCount > b.size {
		byteCount = b.size
	}
	if err := dst.WriteFrom(b, byteCount); err != nil {
		return 0, err
	}
	return byteCount, nil
}

// CopyTo copies (without consuming) byteCount bytes starting at offset into
// dst. The copy aliases this buffer's blocks through shared segments, so no
// bytes move until one side later mutates.
func (b *Buffer) CopyTo(dst *Buffer, offset, byteCount int64) error {
	if dst == b {
		return &argumentError{msg: "destination buffer is the source buffer"}
	}
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if offset < 0 || offset+byteCount > b.size {
		return errOffsetCount(b.size, offset, byteCount)
	}
	if byteCount == 0 {
		return nil
	}

	s := b.head
	for offset >= int64(s.Len()) {
		offset -= int64(s.Len())
		s = s.Next
	}
	dst.size += byteCount
	for byteCount > 0 {
		c := s.SharedCopy()
		c.Pos += int(offset)
		if remaining := int64(c.Limit - c.Pos); byteCount < remaining {
			c.Limit = c.Pos + int(byteCount)
		}
		byteCount -= int64(c.Limit - c.Pos)
		offset = 0
		dst.pushTail(c)
		s = s.Next
	}
	return nil
}

// Skip discards byteCount bytes from the head of the buffer, failing with
// ErrPrematureEOF when fewer are present.
func (b *Buffer) Skip(byteCount int64) error {
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	for byteCount > 0 {
		if b.head == nil {
			return ErrPrematureEOF
		}
		n := b.head.Len()
		if int64(n) > byteCount {
			n = int(byteCount)
		}
		b.head.Pos += n
		b.size -= int64(n)
		byteCount -= int64(n)
		if b.head.Len() == 0 {
			b.popHead()
		}
	}
	return nil
}

// Clear discards all bytes, returning the buffer's segments to the pool.
func (b *Buffer) Clear() {
	_ = b.Skip(b.size)
}

// Get returns the byte at index. Lookup walks the segment queue, so the cost
// grows with index/BlockSize; this is a sequential container, not a
// random-access one. Get panics when index is out of range.
func (b *Buffer) Get(index int64) byte {
	if index < 0 || index >= b.size {
		panic(fmt.Sprintf("segio: index %d out of range for size %d", index, b.size))
	}
	s := b.head
	for {
		n := int64(s.Len())
		if index < n {
			return s.Data[s.Pos+int(index)]
		}
		index -= n
		s = s.Next
	}
}

// IndexOf returns the head-relative position of the first occurrence of
// target in [from, to), or -1 when absent. to is clamped to the buffer size.
func (b *Buffer) IndexOf(target byte, from, to int64) (int64, error) {
	if from < 0 || to < from {
		return -1, &argumentError{msg: fmt.Sprintf("from=%d to=%d out of order", from, to)}
	}
	if to > b.size {
		to = b.size
	}
	if from >= to || b.head == nil {
		return -1, nil
	}

	base := int64(0)
	s := b.head
	for {
		segLen := int64(s.Len())
		if from < base+segLen {
			start := int64(0)
			if from > base {
				start = from - base
			}
			end := segLen
			if to < base+segLen {
				end = to - base
			}
			if i := bytes.IndexByte(s.Data[s.Pos+int(start):s.Pos+int(end)], target); i >= 0 {
				return base + start + int64(i), nil
			}
		}
		base += segLen
		if base >= to {
			return -1, nil
		}
		s = s.Next
	}
}

// ReadFrom appends bytes read from r until io.EOF. It implements
// io.ReaderFrom.
func (b *Buffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		n, err := b.readFromOnce(r, segment.BlockSize)
		total += n
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// readFromOnce performs a single read from r into the tail segment,
// appending at most max bytes.
func (b *Buffer) readFromOnce(r io.Reader, max int64) (int64, error) {
	s := b.writableSegment(1)
	limit := segment.BlockSize - s.Limit
	if int64(limit) > max {
		limit = int(max)
	}
	read, err := safeRead(r, s.Data[s.Limit:s.Limit+limit])
	if read > 0 {
		s.Limit += read
		b.size += int64(read)
	} else if s.Len() == 0 {
		// Nothing arrived and the fresh tail segment is empty; drop it so no
		// empty segment outlives this call.
		if s == b.head {
			b.head = s.Pop()
		} else {
			s.Pop()
		}
		segment.Default.Recycle(s)
	}
	return int64(read), err
}

// safeRead shields the buffer from panics raised by foreign readers,
// surfacing them as IO errors instead.
func safeRead(r io.Reader, p []byte) (n int, err error) {
	defer recoverIO("read", &err)
	return r.Read(p)
}

// WriteTo drains the whole buffer into w. It implements io.WriterTo.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	defer recoverIO("write", &err)
	total := b.size
	for b.head != nil {
		s := b.head
		written, err := w.Write(s.Data[s.Pos:s.Limit])
		s.Pos += written
		b.size -= int64(written)
		if err != nil {
			return total - b.size, err
		}
		if written == 0 {
			return total - b.size, io.ErrShortWrite
		}
		if s.Len() == 0 {
			b.popHead()
		}
	}
	return total, nil
}

// Peek returns a reader over this buffer's current content that does not
// consume it. Mutating the buffer while the peek reader is in use
// invalidates the reader.
func (b *Buffer) Peek() *Reader {
	return NewReader(newPeekSource(nil, b))
}

// Flush implements Sink; an in-memory buffer retains nothing to push.
func (b *Buffer) Flush() error { return nil }

// Close implements Source and Sink; closing a buffer is a no-op and its
// bytes remain readable.
func (b *Buffer) Close() error { return nil }
