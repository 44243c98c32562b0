package lifecycle

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMarkDoneUnblocksWaitBeforeTimeout(t *testing.T) {
	h := NewShutdownHandler(context.Background())
	go func() {
		<-h.Context().Done()
		h.MarkDone()
	}()

	done := make(chan struct{})
	go func() {
		h.Wait(time.Second)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after MarkDone")
	}
}
