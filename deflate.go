package segio

import (
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

// DEFLATE collaborators in the zlib framing (a two-byte header and an
// Adler-32 trailer around the raw DEFLATE stream). Compression levels are
// the zlib package's, zlib.DefaultCompression through zlib.BestCompression.

// deflateSink compresses everything written through it into dst.
type deflateSink struct {
	w      *Writer
	zw     *zlib.Writer
	closed bool
}

// NewDeflateSink returns a sink that DEFLATE-compresses written bytes into
// dst. Close finishes the stream and writes the trailer; Flush emits a sync
// point so the bytes so far are decompressible.
func NewDeflateSink(dst Sink, level int) (Sink, error) {
	w := NewWriter(dst)
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, wrapIO("deflate", err)
	}
	return &deflateSink{w: w, zw: zw}, nil
}

func (s *deflateSink) WriteFrom(src *Buffer, byteCount int64) (err error) {
	if s.closed {
		return ErrClosed
	}
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	defer recoverIO("deflate", &err)
	for byteCount > 0 {
		seg := src.head
		n := seg.Len()
		if int64(n) > byteCount {
			n = int(byteCount)
		}
		written, werr := s.zw.Write(seg.Data[seg.Pos : seg.Pos+n])
		seg.Pos += written
		src.size -= int64(written)
		byteCount -= int64(written)
		if seg.Len() == 0 {
			src.popHead()
		}
		if werr != nil {
			return wrapIO("deflate", werr)
		}
	}
	return nil
}

func (s *deflateSink) Flush() (err error) {
	if s.closed {
		return ErrClosed
	}
	defer recoverIO("deflate flush", &err)
	if err := s.zw.Flush(); err != nil {
		return wrapIO("deflate flush", err)
	}
	return s.w.Flush()
}

func (s *deflateSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	func() {
		defer recoverIO("deflate close", &err)
		err = wrapIO("deflate close", s.zw.Close())
	}()
	if cerr := s.w.Close(); cerr != nil {
		if err == nil {
			err = cerr
		} else {
			err = errors.Join(err, cerr)
		}
	}
	return err
}

// inflateSource decompresses a zlib-framed DEFLATE stream read from src.
type inflateSource struct {
	r      *Reader
	zr     io.ReadCloser
	closed bool
}

// NewInflateSource returns a source that decompresses the DEFLATE stream
// read from src. The stream header is read lazily on the first read.
func NewInflateSource(src Source) Source {
	return &inflateSource{r: NewReader(src)}
}

func (s *inflateSource) ReadAtMostTo(dst *Buffer, byteCount int64) (n int64, err error) {
	if s.closed {
		return 0, ErrClosed
	}
	if byteCount < 0 {
		return 0, errByteCount(byteCount)
	}
	if byteCount == 0 {
		return 0, nil
	}
	defer recoverIO("inflate", &err)
	if s.zr == nil {
		zr, err := zlib.NewReader(s.r)
		if err != nil {
			return 0, wrapIO("inflate", err)
		}
		s.zr = zr
	}
	for {
		n, err := dst.readFromOnce(s.zr, byteCount)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			return 0, io.EOF
		}
		if err != nil {
			return 0, wrapIO("inflate", err)
		}
	}
}

func (s *inflateSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var err error
	if s.zr != nil {
		err = wrapIO("inflate close", s.zr.Close())
	}
	if cerr := s.r.Close(); cerr != nil {
		if err == nil {
			err = cerr
		} else {
			err = errors.Join(err, cerr)
		}
	}
	return err
}
