package browser

import (
	"context"
	"math/rand"
	"time"
)

// RandomDelay waits for a random duration between min and max, or until ctx
// is done.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	d := min
	if max > min {
		d += time.Duration(rand.Int63n(int64(max - min)))
	}
	return Sleep(ctx, d)
}

// Sleep is time.Sleep that gives up when ctx is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
