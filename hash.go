package segio

import (
	"crypto/sha256"
	"hash"

	"github.com/cespare/xxhash/v2"
)

// HashingSink feeds every byte written through it into a hash.Hash before
// forwarding to the downstream sink.
type HashingSink struct {
	dst Sink
	h   hash.Hash
}

// NewHashingSink returns a sink hashing with h while writing to dst.
func NewHashingSink(dst Sink, h hash.Hash) *HashingSink {
	return &HashingSink{dst: dst, h: h}
}

// NewSHA256Sink returns a sink computing a SHA-256 digest.
func NewSHA256Sink(dst Sink) *HashingSink {
	return NewHashingSink(dst, sha256.New())
}

// NewXXHash64Sink returns a sink computing a 64-bit xxHash digest.
func NewXXHash64Sink(dst Sink) *HashingSink {
	return NewHashingSink(dst, xxhash.New())
}

// Sum returns the digest of all bytes written so far.
func (s *HashingSink) Sum() []byte {
	return s.h.Sum(nil)
}

func (s *HashingSink) WriteFrom(src *Buffer, byteCount int64) error {
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	// Hash in place before the bytes move downstream.
	remaining := byteCount
	for seg := src.head; remaining > 0; seg = seg.Next {
		n := int64(seg.Len())
		if n > remaining {
			n = remaining
		}
		_, _ = s.h.Write(seg.Data[seg.Pos : seg.Pos+int(n)])
		remaining -= n
	}
	return s.dst.WriteFrom(src, byteCount)
}

func (s *HashingSink) Flush() error { return s.dst.Flush() }

func (s *HashingSink) Close() error { return s.dst.Close() }

// HashingSource feeds every byte read through it into a hash.Hash as it
// passes to the caller.
type HashingSource struct {
	src Source
	h   hash.Hash
}

// NewHashingSource returns a source hashing with h while reading from src.
func NewHashingSource(src Source, h hash.Hash) *HashingSource {
	return &HashingSource{src: src, h: h}
}

// Sum returns the digest of all bytes read so far.
func (s *HashingSource) Sum() []byte {
	return s.h.Sum(nil)
}

func (s *HashingSource) ReadAtMostTo(dst *Buffer, byteCount int64) (int64, error) {
	var staged Buffer
	n, err := s.src.ReadAtMostTo(&staged, byteCount)
	if err != nil {
		return n, err
	}
	for seg, remaining := staged.head, n; remaining > 0; seg = seg.Next {
		k := int64(seg.Len())
		if k > remaining {
			k = remaining
		}
		_, _ = s.h.Write(seg.Data[seg.Pos : seg.Pos+int(k)])
		remaining -= k
	}
	if werr := dst.WriteFrom(&staged, n); werr != nil {
		return 0, werr
	}
	return n, nil
}

func (s *HashingSource) Close() error { return s.src.Close() }
