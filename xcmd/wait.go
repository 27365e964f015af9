package xcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var ErrInterrupted = errors.New("interrupted")

// WaitInterrupted blocks until one of signals arrives or ctx is done.
// Without signals it waits for SIGINT and SIGTERM. The returned error wraps
// ErrInterrupted and names the signal.
func WaitInterrupted(ctx context.Context, signals ...os.Signal) error {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		return fmt.Errorf("%w: %s", ErrInterrupted, sig)

	case <-ctx.Done():
		return ctx.Err()
	}
}
