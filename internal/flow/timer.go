package flow

import (
	"context"
	"sync"
	"time"
)

// TimerDispatcher delivers in-process with time.AfterFunc. Deliveries are
// detached from the caller's cancellation and always run.
type TimerDispatcher struct {
	store Store
	wg    sync.WaitGroup
}

// NewTimerDispatcher creates a dispatcher writing into store.
func NewTimerDispatcher(store Store) *TimerDispatcher {
	return &TimerDispatcher{store: store}
}

func (t *TimerDispatcher) Dispatch(ctx context.Context, d Delivery) error {
	ctx = context.WithoutCancel(ctx)
	t.wg.Add(1)
	time.AfterFunc(d.Delay, func() {
		defer t.wg.Done()
		_ = Deliver(ctx, t.store, d)
	})
	return nil
}

// Wait blocks until every scheduled delivery has run.
func (t *TimerDispatcher) Wait() {
	t.wg.Wait()
}
