// Package segment provides the pooled fixed-size byte blocks that back the
// library's buffers. A Segment is a bounded view over one block and a node in
// a buffer's circular queue; the Pool recycles blocks across buffers.
package segment

import "sync/atomic"

const (
	// BlockSize is the size in bytes of every block handed out by the pool.
	BlockSize = 8192

	// shareMinimum is the smallest prefix worth aliasing on a Split. Shorter
	// prefixes are copied into a fresh block so tiny reads do not pin whole
	// blocks through shared references.
	shareMinimum = BlockSize / 2
)

// block is the unit of pooling. refs counts the segments aliasing data; the
// block may return to the pool only when refs reaches zero.
type block struct {
	data [BlockSize]byte
	refs int32
}

// Segment is a view over one pooled block and a node in a circular
// doubly-linked segment list. The valid byte range is Data[Pos:Limit].
//
// A Segment is owned by at most one buffer at a time and is not safe for
// concurrent use.
type Segment struct {
	// Data aliases the segment's whole backing block.
	Data []byte

	// Pos is the index of the first readable byte.
	Pos int

	// Limit is the index of the first writable byte.
	Limit int

	// Owner reports whether this segment may append into Data[Limit:].
	Owner bool

	// Shared reports whether another segment aliases the same block. The
	// bytes of a shared segment must not be moved or overwritten; appending
	// past Limit remains safe because aliases never see past their own limit.
	Shared bool

	Prev, Next *Segment

	blk *block
}

// Len returns the number of readable bytes.
func (s *Segment) Len() int {
	return s.Limit - s.Pos
}

// Push inserts t after the receiver in the circular list and returns t.
func (s *Segment) Push(t *Segment) *Segment {
	t.Prev = s
	t.Next = s.Next
	s.Next.Prev = t
	s.Next = t
	return t
}

// Pop unlinks the receiver from the circular list and returns its successor,
// or nil if the receiver was the only node.
func (s *Segment) Pop() *Segment {
	next := s.Next
	if next == s {
		next = nil
	}
	s.Prev.Next = s.Next
	s.Next.Prev = s.Prev
	s.Prev = nil
	s.Next = nil
	return next
}

// SharedCopy returns an unlinked segment aliasing the receiver's block over
// the same byte range. Both handles become shared; the copy is never an
// owner.
func (s *Segment) SharedCopy() *Segment {
	atomic.AddInt32(&s.blk.refs, 1)
	s.Shared = true
	return &Segment{
		Data:   s.Data,
		Pos:    s.Pos,
		Limit:  s.Limit,
		Shared: true,
		blk:    s.blk,
	}
}

// Split divides the receiver at byteCount: a new segment holding the first
// byteCount readable bytes is inserted before the receiver and returned,
// while the receiver keeps the remainder. Prefixes of at least half a block
// alias the receiver's block; shorter prefixes are copied into a fresh
// segment from pool.
//
// The receiver must be linked into a list and 0 < byteCount <= Len().
func (s *Segment) Split(byteCount int, pool *Pool) *Segment {
	if byteCount <= 0 || byteCount > s.Len() {
		panic("segment: split byteCount out of range")
	}
	var head *Segment
	if byteCount >= shareMinimum {
		head = s.SharedCopy()
		// Neither half of a shared split may append.
		s.Owner = false
	} else {
		head = pool.Take()
		copy(head.Data[:byteCount], s.Data[s.Pos:s.Pos+byteCount])
	}
	head.Limit = head.Pos + byteCount
	s.Pos += byteCount
	s.Prev.Push(head)
	return head
}

// Compact merges the receiver into its predecessor when both fit in one
// block, recycling the receiver. It reports whether the merge happened; the
// receiver must not be used again after a successful merge. Predecessors
// that are shared or not owners are left alone.
func (s *Segment) Compact(pool *Pool) bool {
	prev := s.Prev
	if prev == s {
		return false
	}
	if !prev.Owner || prev.Shared {
		return false
	}
	size := s.Len()
	avail := BlockSize - prev.Limit + prev.Pos
	if size > avail {
		return false
	}
	s.WriteTo(prev, size)
	s.Pop()
	pool.Recycle(s)
	return true
}

// WriteTo copies byteCount bytes from the receiver's head to target's tail,
// shifting target's content to the front of its block when needed. target
// must be an owner with room for byteCount bytes after shifting.
func (s *Segment) WriteTo(target *Segment, byteCount int) {
	if !target.Owner {
		panic("segment: write to non-owner segment")
	}
	if target.Limit+byteCount > BlockSize {
		// Make room by sliding target's bytes to the front of the block.
		if target.Shared {
			panic("segment: write would move bytes of a shared segment")
		}
		if target.Limit+byteCount-target.Pos > BlockSize {
			panic("segment: write byteCount exceeds target capacity")
		}
		copy(target.Data, target.Data[target.Pos:target.Limit])
		target.Limit -= target.Pos
		target.Pos = 0
	}
	copy(target.Data[target.Limit:target.Limit+byteCount], s.Data[s.Pos:s.Pos+byteCount])
	target.Limit += byteCount
	s.Pos += byteCount
}
