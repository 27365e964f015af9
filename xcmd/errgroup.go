// Package xcmd holds process-level helpers for the mathtrace command.
package xcmd

import (
	"context"
	"sync"
)

// Group runs tasks concurrently and cancels the shared context as soon as
// one of them fails. SetLimit bounds how many tasks run at once.
type Group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup
	sem    chan struct{}

	errOnce sync.Once
	err     error
}

// ErrGroup returns a new Group and the Context shared by its tasks. The
// Context is cancelled by the first failing task or by Wait.
func ErrGroup(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Group{ctx: ctx, cancel: cancel}, ctx
}

// SetLimit caps the number of tasks running at the same time. n <= 0
// removes the cap. It must be called before the first Go.
func (g *Group) SetLimit(n int) {
	if n <= 0 {
		g.sem = nil
		return
	}
	g.sem = make(chan struct{}, n)
}

// Go starts f in a new goroutine, blocking while the limit is reached.
// Tasks queued after the context is cancelled are not started.
func (g *Group) Go(f func(ctx context.Context) error) {
	if g.sem != nil {
		select {
		case g.sem <- struct{}{}:
		case <-g.ctx.Done():
			g.fail(context.Cause(g.ctx))
			return
		}
	}

	g.wg.Add(1)

	go func() {
		defer g.wg.Done()
		if g.sem != nil {
			defer func() { <-g.sem }()
		}

		if err := f(g.ctx); err != nil {
			g.fail(err)
		}
	}()
}

// Wait blocks until every started task has returned and reports the first
// error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel(nil)
	return g.err
}

func (g *Group) fail(err error) {
	g.errOnce.Do(func() {
		g.err = err
		g.cancel(err)
	})
}
