// Package signals turns SIGINT and SIGTERM into context cancellation so a
// long merge can stop before it touches the working tree.
package signals

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// InterruptedError carries the signal that canceled the context.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("interrupted by %s", e.Signal)
}

// Is lets errors.Is(err, context.Canceled) match.
func (e *InterruptedError) Is(target error) bool {
	return target == context.Canceled
}

// SetupSignalContext creates a context that's canceled on SIGINT/SIGTERM.
// context.Cause on the result returns an *InterruptedError after a signal.
func SetupSignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return notify(parent, syscall.SIGINT, syscall.SIGTERM)
}

func notify(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, sigs...)

	go func() {
		select {
		case sig := <-sigChan:
			cancel(&InterruptedError{Signal: sig})
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, func() { cancel(context.Canceled) }
}
