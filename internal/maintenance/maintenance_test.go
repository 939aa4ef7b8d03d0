package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/albapepper/swiss-tournament/internal/archive"
)

type countingSnapshotter struct {
	calls  atomic.Int32
	prefix atomic.Value
	err    error
}

func (c *countingSnapshotter) Export(ctx context.Context, prefix string) (archive.Result, error) {
	c.calls.Add(1)
	c.prefix.Store(prefix)
	return archive.Result{Prefix: prefix}, c.err
}

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStartRunsSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	snap := &countingSnapshotter{err: errors.New("bucket gone")}

	done := make(chan struct{})
	go func() {
		Start(ctx, Config{SnapshotInterval: 10 * time.Millisecond}, snap, quietLogger)
		close(done)
	}()

	assert.Eventually(t, func() bool { return snap.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond,
		"failed exports must not stop the ticker")
	assert.Equal(t, SnapshotPrefix, snap.prefix.Load())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}

func TestStartDisabled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	snap := &countingSnapshotter{}

	Start(ctx, Config{}, snap, quietLogger)
	assert.Zero(t, snap.calls.Load())
}
