package segio

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// throttleSink paces writes to the downstream sink with a token bucket of
// bytes. Each chunk waits for its tokens before moving, so a slow limit
// back-pressures the writer instead of buffering unboundedly.
type throttleSink struct {
	ctx context.Context
	dst Sink
	lim *rate.Limiter
}

// NewThrottleSink returns a sink limiting throughput into dst to limit
// bytes per second with the given burst. Waits honor ctx.
func NewThrottleSink(ctx context.Context, dst Sink, limit rate.Limit, burst int) Sink {
	if burst < 1 {
		panic(fmt.Sprintf("segio: burst < 1: %d", burst))
	}
	return &throttleSink{ctx: ctx, dst: dst, lim: rate.NewLimiter(limit, burst)}
}

func (s *throttleSink) WriteFrom(src *Buffer, byteCount int64) error {
	if byteCount < 0 {
		return errByteCount(byteCount)
	}
	if byteCount > src.size {
		return errOffsetCount(src.size, 0, byteCount)
	}
	for byteCount > 0 {
		n := min(byteCount, int64(s.lim.Burst()))
		if err := s.lim.WaitN(s.ctx, int(n)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("%w: %w", ErrCancelled, err)
			}
			return wrapIO("throttle", err)
		}
		if err := s.dst.WriteFrom(src, n); err != nil {
			return err
		}
		byteCount -= n
	}
	return nil
}

func (s *throttleSink) Flush() error { return s.dst.Flush() }

func (s *throttleSink) Close() error { return s.dst.Close() }
