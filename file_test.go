package segio

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAndSourceRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afero.NewMemMapFs()

	sink, err := CreateSink(ctx, fs, "data.bin")
	require.NoError(t, err)
	w := NewWriter(sink)
	require.NoError(t, w.WriteUTF8("file contents\n"))
	require.NoError(t, w.WriteDecimalLong(12345))
	require.NoError(t, w.Close())

	src, err := OpenSource(ctx, fs, "data.bin")
	require.NoError(t, err)
	r := NewReader(src)

	line, err := r.ReadUTF8LineStrict()
	require.NoError(t, err)
	require.Equal(t, "file contents", line)

	v, err := r.ReadDecimalLong()
	require.NoError(t, err)
	require.Equal(t, int64(12345), v)
	require.NoError(t, r.Close())
}

func TestOpenSourceMissingFile(t *testing.T) {
	t.Parallel()

	_, err := OpenSource(context.Background(), afero.NewMemMapFs(), "nope")
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestAppendSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "log.txt", []byte("first|"), 0o644))

	sink, err := AppendSink(ctx, fs, "log.txt")
	require.NoError(t, err)
	w := NewWriter(sink)
	require.NoError(t, w.WriteUTF8("second"))
	require.NoError(t, w.Close())

	got, err := afero.ReadFile(fs, "log.txt")
	require.NoError(t, err)
	require.Equal(t, "first|second", string(got))
}

func TestFileTransfer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	payload := make([]byte, 100_000)
	for i := range payload {
		payload[i] = byte(i * 31)
	}
	require.NoError(t, afero.WriteFile(fs, "src.bin", payload, 0o644))

	src, err := OpenSource(ctx, fs, "src.bin")
	require.NoError(t, err)
	dst, err := CreateSink(ctx, fs, "dst.bin")
	require.NoError(t, err)

	r := NewReader(src)
	n, err := r.TransferTo(dst)
	require.NoError(t, err)
	require.Equal(t, int64(len(payload)), n)
	require.NoError(t, dst.Close())
	require.NoError(t, r.Close())

	got, err := afero.ReadFile(fs, "dst.bin")
	require.NoError(t, err)
	require.Equal(t, payload, got)
}
