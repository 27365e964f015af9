package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Run("invalid spec", func(t *testing.T) {
		s := New(context.Background(), nil)

		err := s.Register("recompute", "not a cron spec", func(context.Context) error { return nil })
		assert.ErrorContains(t, err, "register recompute task")
	})

	t.Run("seconds field", func(t *testing.T) {
		s := New(context.Background(), nil)

		assert.NoError(t, s.Register("recompute", "*/5 * * * * *", func(context.Context) error { return nil }))
	})
}

func TestRunNow(t *testing.T) {
	s := New(context.Background(), nil)

	var calls atomic.Int32
	require.NoError(t, s.Register("a", "0 0 * * * *", func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.Register("b", "0 0 * * * *", func(context.Context) error {
		calls.Add(1)
		return errors.New("boom")
	}))

	s.RunNow()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, s.Runs("a"))
	assert.Equal(t, 1, s.Runs("b"))
	assert.Equal(t, 0, s.Runs("c"))
}

func TestStartStop(t *testing.T) {
	s := New(context.Background(), nil)

	ran := make(chan struct{}, 1)
	require.NoError(t, s.Register("tick", "* * * * * *", func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	s.Start()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}

	done := s.Stop()
	select {
	case <-done.Done():
	case <-time.After(time.Second):
		t.Fatal("running job was not cancelled")
	}

	s.RunNow()
	assert.Equal(t, 1, s.Runs("tick"))
}
