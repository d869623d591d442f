package segio

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPipeRoundTrip(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 64)
	payload := strings.Repeat("through the pipe ", 1000)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var staged Buffer
		staged.WriteUTF8(payload)
		if err := sink.WriteFrom(&staged, staged.Size()); err != nil {
			t.Errorf("pipe write: %v", err)
		}
		if err := sink.Close(); err != nil {
			t.Errorf("pipe close: %v", err)
		}
	}()

	r := NewReader(src)
	got, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, payload, got)
	wg.Wait()
}

func TestPipeBackPressure(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 8)

	var staged Buffer
	staged.WriteUTF8("0123456789abcdef")

	wrote := make(chan struct{})
	go func() {
		defer close(wrote)
		_ = sink.WriteFrom(&staged, staged.Size())
		_ = sink.Close()
	}()

	select {
	case <-wrote:
		t.Fatal("a write beyond capacity must block until the reader drains")
	case <-time.After(50 * time.Millisecond):
	}

	r := NewReader(src)
	got, err := r.ReadUTF8All()
	require.NoError(t, err)
	require.Equal(t, "0123456789abcdef", got)
	<-wrote
}

func TestPipeSinkCloseSignalsEOF(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 16)
	var staged Buffer
	staged.WriteUTF8("tail")
	require.NoError(t, sink.WriteFrom(&staged, staged.Size()))
	require.NoError(t, sink.Close())

	var dst Buffer
	n, err := src.ReadAtMostTo(&dst, 100)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)

	_, err = src.ReadAtMostTo(&dst, 100)
	require.ErrorIs(t, err, io.EOF)
}

func TestPipeSourceClosePoisonsWriter(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 4)
	require.NoError(t, src.Close())

	var staged Buffer
	staged.WriteUTF8("lost")
	err := sink.WriteFrom(&staged, staged.Size())
	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
}

func TestPipeReadBlocksUntilWrite(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 16)

	go func() {
		time.Sleep(20 * time.Millisecond)
		var staged Buffer
		staged.WriteUTF8("late")
		_ = sink.WriteFrom(&staged, staged.Size())
	}()

	var dst Buffer
	n, err := src.ReadAtMostTo(&dst, 100)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, "late", dst.ReadUTF8All())
}

func TestPipeReadTimesOut(t *testing.T) {
	t.Parallel()

	ctx, scope := WithCancelScope(context.Background(), WithTimeout(80*time.Millisecond))
	defer scope.Cancel()

	src, _ := NewPipe(ctx, 16)
	var dst Buffer
	_, err := src.ReadAtMostTo(&dst, 1)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestPipeWriteCancelled(t *testing.T) {
	t.Parallel()

	ctx, scope := WithCancelScope(context.Background())
	src, sink := NewPipe(ctx, 2)
	defer func() { _ = src.Close() }()

	go func() {
		time.Sleep(20 * time.Millisecond)
		scope.Cancel()
	}()

	var staged Buffer
	staged.WriteUTF8("more than two")
	err := sink.WriteFrom(&staged, staged.Size())
	require.ErrorIs(t, err, ErrCancelled)
}

func TestPipeCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 4)
	require.NoError(t, sink.Close())
	require.NoError(t, sink.Close())
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
}

// TestPipeConcurrentChurn hammers one reader and one writer; the race
// detector and the byte count are the assertions.
func TestPipeConcurrentChurn(t *testing.T) {
	t.Parallel()

	src, sink := NewPipe(context.Background(), 256)
	const total = 1 << 20

	go func() {
		var staged Buffer
		remaining := int64(total)
		for remaining > 0 {
			n := min(remaining, 997)
			staged.WriteUTF8(strings.Repeat("c", int(n)))
			if err := sink.WriteFrom(&staged, n); err != nil {
				t.Errorf("pipe write: %v", err)
				return
			}
			remaining -= n
		}
		_ = sink.Close()
	}()

	var received int64
	var dst Buffer
	for {
		n, err := src.ReadAtMostTo(&dst, 4096)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		received += n
		dst.Clear()
	}
	require.Equal(t, int64(total), received)
}
