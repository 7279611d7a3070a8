package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerPool_DrainRunsQueuedJobs(t *testing.T) {
	release := make(chan struct{})
	p := newWorkerPool[int, int](context.Background(), 1, 4, func(_ context.Context, v int) (int, error) {
		<-release
		return v * 2, nil
	})

	replies := make([]chan jobResult[int], 3)
	for i := range replies {
		replies[i] = make(chan jobResult[int], 1)
		require.True(t, p.Submit(i, replies[i]))
	}

	done := make(chan struct{})
	go func() {
		p.Drain()
		close(done)
	}()
	close(release)
	<-done

	for i, reply := range replies {
		select {
		case r := <-reply:
			require.NoError(t, r.err)
			require.Equal(t, i*2, r.value)
		default:
			t.Fatalf("job %d was dropped by Drain", i)
		}
	}
	require.False(t, p.Submit(9, nil))
}
