package integration

import (
	"context"
	"sync"
	"time"

	"github.com/hibiken/asynq"
)

// queuedTask is a task held by memoryQueue together with its options.
type queuedTask struct {
	task      *asynq.Task
	id        string
	processIn time.Duration
}

// memoryQueue stands in for the asynq client. Tasks stay queued until the
// test hands them to a handler.
type memoryQueue struct {
	mu    sync.Mutex
	tasks []queuedTask
	ids   map[string]bool
}

func newMemoryQueue() *memoryQueue {
	return &memoryQueue{ids: make(map[string]bool)}
}

func (q *memoryQueue) EnqueueContext(_ context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	qt := queuedTask{task: task}
	for _, o := range opts {
		switch o.Type() {
		case asynq.TaskIDOpt:
			qt.id = o.Value().(string)
		case asynq.ProcessInOpt:
			qt.processIn = o.Value().(time.Duration)
		}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ids[qt.id] {
		return nil, asynq.ErrTaskIDConflict
	}
	q.ids[qt.id] = true
	q.tasks = append(q.tasks, qt)

	return &asynq.TaskInfo{ID: qt.id, Type: task.Type(), State: asynq.TaskStateScheduled}, nil
}

// drain removes and returns every queued task.
func (q *memoryQueue) drain() []queuedTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.tasks
	q.tasks = nil
	return out
}
