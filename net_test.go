package segio

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnSourceAndSink(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	ctx := context.Background()

	go func() {
		sink := ConnSink(ctx, client)
		var staged Buffer
		staged.WriteUTF8("over the wire")
		if err := sink.WriteFrom(&staged, staged.Size()); err != nil {
			t.Errorf("conn write: %v", err)
		}
		_ = sink.Close()
	}()

	r := NewReader(ConnSource(ctx, server))
	got, err := r.ReadUTF8(13)
	require.NoError(t, err)
	require.Equal(t, "over the wire", got)
	require.NoError(t, r.Close())
}

func TestConnSourceTimesOut(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ctx, scope := WithCancelScope(context.Background(), WithTimeout(80*time.Millisecond))
	defer scope.Cancel()

	src := ConnSource(ctx, server)
	var dst Buffer
	start := time.Now()
	_, err := src.ReadAtMostTo(&dst, 10)
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 2*time.Second)
}
