package signals

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupSignalContext_ParentCancel(t *testing.T) {
	parent, parentCancel := context.WithCancel(context.Background())

	ctx, cancel := SetupSignalContext(parent)
	defer cancel()

	require.NoError(t, ctx.Err())
	parentCancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should be done after parent cancel")
	}
}

func TestNotify_SignalRecordsCause(t *testing.T) {
	ctx, cancel := notify(context.Background(), syscall.SIGUSR1)
	defer cancel()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context should be done after signal")
	}

	var interrupted *InterruptedError
	require.True(t, errors.As(context.Cause(ctx), &interrupted))
	assert.Equal(t, syscall.SIGUSR1, interrupted.Signal)
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
	assert.Contains(t, interrupted.Error(), "user defined signal 1")
}

func TestNotify_CancelIsPlain(t *testing.T) {
	ctx, cancel := notify(context.Background(), syscall.SIGUSR2)
	cancel()

	<-ctx.Done()
	var interrupted *InterruptedError
	assert.False(t, errors.As(context.Cause(ctx), &interrupted))
}
