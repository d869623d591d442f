package segment

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTakeReturnsEmptyOwnerSegment(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	s := pool.Take()

	require.Equal(t, 0, s.Pos)
	require.Equal(t, 0, s.Limit)
	require.True(t, s.Owner)
	require.False(t, s.Shared)
	require.Nil(t, s.Prev)
	require.Nil(t, s.Next)
	require.Len(t, s.Data, BlockSize)
}

func TestRecycleKeepsBlocksUpToCap(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	s := pool.Take()
	require.True(t, pool.Recycle(s))
	require.Equal(t, int64(BlockSize), pool.ByteCount())
}

func TestByteCountMovesInWholeBlocks(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	for i := 0; i < 32; i++ {
		pool.Recycle(pool.Take())
		require.Zero(t, pool.ByteCount()%BlockSize)
	}
}

func TestRecycleSharedBlockWaitsForAllAliases(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	s := pool.Take()
	s.Limit = BlockSize
	c := s.SharedCopy()

	require.False(t, pool.Recycle(s), "an aliased block must not return to the pool")
	require.Zero(t, pool.ByteCount())

	require.True(t, pool.Recycle(c), "the last alias releases the block")
	require.Equal(t, int64(BlockSize), pool.ByteCount())
}

func TestTakeReusesRecycledBlock(t *testing.T) {
	t.Parallel()

	// A single-bucket pool makes reuse deterministic.
	pool := &Pool{buckets: make([]poolBucket, 1)}
	s := pool.Take()
	require.True(t, pool.Recycle(s))

	u := pool.Take()
	require.Zero(t, pool.ByteCount())
	require.Equal(t, 0, u.Pos)
	require.Equal(t, 0, u.Limit)
	require.True(t, u.Owner)
}

func TestPoolBoundsRetainedBytes(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	segments := make([]*Segment, 0, 4096)
	for i := 0; i < cap(segments); i++ {
		segments = append(segments, pool.Take())
	}
	for _, s := range segments {
		pool.Recycle(s)
	}
	require.LessOrEqual(t, pool.ByteCount(), int64(len(pool.buckets))*maxBucketBytes)
}

func TestDoubleRecyclePanics(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	s := pool.Take()
	pool.Recycle(s)
	require.Panics(t, func() { pool.Recycle(s) })
}

// TestConcurrentTakeRecycle exercises the pool from many goroutines; the
// race detector is the real assertion here.
func TestConcurrentTakeRecycle(t *testing.T) {
	t.Parallel()

	pool := NewPool()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				s := pool.Take()
				s.Data[0] = byte(i)
				s.Limit = 1
				s.Pos = 1
				s.Pos = 0
				s.Limit = 0
				pool.Recycle(s)
			}
		}()
	}
	wg.Wait()
	require.Zero(t, pool.ByteCount()%BlockSize)
}
