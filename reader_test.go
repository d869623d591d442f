package segio

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func newStringReader(t *testing.T, s string) *Reader {
	t.Helper()
	return NewReader(NewSource(context.Background(), strings.NewReader(s)))
}

// newDribbleReader returns a Reader whose upstream produces one byte per
// read, forcing every operation through the refill path.
func newDribbleReader(t *testing.T, s string) *Reader {
	t.Helper()
	return NewReader(NewSource(context.Background(), iotest.OneByteReader(strings.NewReader(s))))
}

func TestReaderRequireAndRequest(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "abcdef")

	ok, err := r.Request(4)
	require.NoError(t, err)
	require.True(t, ok)
	require.GreaterOrEqual(t, r.Buffered(), int64(4))

	require.NoError(t, r.Require(6))

	ok, err = r.Request(7)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, r.Require(7), ErrPrematureEOF)

	_, err = r.Request(-1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReaderExhausted(t *testing.T) {
	t.Parallel()

	r := newStringReader(t, "x")
	done, err := r.Exhausted()
	require.NoError(t, err)
	require.False(t, done)

	b, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('x'), b)

	done, err = r.Exhausted()
	require.NoError(t, err)
	require.True(t, done)
}

func TestReaderTypedReads(t *testing.T) {
	t.Parallel()

	var b Buffer
	_ = b.WriteByte(0x01)
	b.WriteUint16(0x0203)
	b.WriteUint32(0x04050607)
	b.WriteUint64(0x08090A0B0C0D0E0F)
	b.WriteUint32LE(0x04030201)

	r := NewReader(&b)

	c, err := r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0x01), c)

	v16, err := r.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0203), v16)

	v32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x04050607), v32)

	v64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x08090A0B0C0D0E0F), v64)

	le, err := r.ReadUint32LE()
	require.NoError(t, err)
	require.Equal(t, uint32(0x04030201), le)
}

func TestReaderDecimalLongStopsAtBoundary(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "-12345 rest")
	v, err := r.ReadDecimalLong()
	require.NoError(t, err)
	require.Equal(t, int64(-12345), v)

	rest, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, " rest", rest)
}

func TestReaderDecimalLongAtEndOfStream(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "987")
	v, err := r.ReadDecimalLong()
	require.NoError(t, err)
	require.Equal(t, int64(987), v)

	r = newStringReader(t, "")
	_, err = r.ReadDecimalLong()
	require.ErrorIs(t, err, ErrPrematureEOF)
}

func TestReaderHexadecimalLong(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "cafeBABE!")
	v, err := r.ReadHexadecimalUnsignedLong()
	require.NoError(t, err)
	require.Equal(t, uint64(0xcafebabe), v)

	rest, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, "!", rest)
}

func TestReaderLines(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "abc\n")
	line, err := r.ReadUTF8LineStrict()
	require.NoError(t, err)
	require.Equal(t, "abc", line)
	done, err := r.Exhausted()
	require.NoError(t, err)
	require.True(t, done)

	r = newDribbleReader(t, "abc")
	_, err = r.ReadUTF8LineStrict()
	require.ErrorIs(t, err, ErrPrematureEOF)

	r = newDribbleReader(t, "abc")
	line, err = r.ReadUTF8Line()
	require.NoError(t, err)
	require.Equal(t, "abc", line)
	_, err = r.ReadUTF8Line()
	require.ErrorIs(t, err, io.EOF)
}

func TestReaderReadTo(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "0123456789")
	var dst Buffer
	require.NoError(t, r.ReadTo(&dst, 6))
	require.Equal(t, "012345", dst.ReadUTF8All())

	require.ErrorIs(t, r.ReadTo(&dst, 10), ErrPrematureEOF)
}

func TestReaderSkip(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "0123456789")
	require.NoError(t, r.Skip(4))
	got, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, "456789", got)

	require.ErrorIs(t, r.Skip(1), ErrPrematureEOF)
}

func TestReaderTransferTo(t *testing.T) {
	t.Parallel()

	payload := strings.Repeat("transfer me ", 5000)
	r := newStringReader(t, payload)
	var dst Buffer
	n, err := r.TransferTo(&dst)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)
	require.Equal(t, payload, dst.ReadUTF8All())
}

func TestReaderIndexOf(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "seek the marker X here")
	i, err := r.IndexOf('X')
	require.NoError(t, err)
	require.Equal(t, int64(16), i)

	i, err = r.IndexOf('Z')
	require.NoError(t, err)
	require.Equal(t, int64(-1), i)
}

func TestReaderPeek(t *testing.T) {
	t.Parallel()

	r := newStringReader(t, "peek then consume")

	peek := r.Peek()
	got, err := peek.ReadUTF8(4)
	require.NoError(t, err)
	require.Equal(t, "peek", got)

	// The peeked bytes are still there for the real reader.
	all, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, "peek then consume", all)
}

func TestReaderPeekInvalidatedByConsume(t *testing.T) {
	t.Parallel()

	r := newStringReader(t, "peek then consume")
	require.NoError(t, r.Require(1))
	peek := r.Peek()

	_, err := r.ReadUTF8(5)
	require.NoError(t, err)

	_, err = peek.ReadUTF8(4)
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestReaderCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newStringReader(t, "bytes")
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err := r.ReadByte()
	require.ErrorIs(t, err, ErrClosed)
	_, err = r.Request(1)
	require.ErrorIs(t, err, ErrClosed)
}

func TestReaderIOReaderCompat(t *testing.T) {
	t.Parallel()

	r := newDribbleReader(t, "stdlib io.Reader view")
	all, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "stdlib io.Reader view", string(all))
}
