package playback

import "sync"

// taskQueue runs posted functions one at a time, in order, on a single
// goroutine. Posting never blocks.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// post enqueues fn. It returns false once the queue is shut down.
func (q *taskQueue) post(fn func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// shutdown drops pending tasks. The loop exits after the running task.
func (q *taskQueue) shutdown() {
	q.mu.Lock()
	q.closed = true
	q.tasks = nil
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *taskQueue) next() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || len(q.tasks) == 0 {
		return nil, q.closed
	}
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return fn, false
}

func (q *taskQueue) run() {
	defer close(q.done)
	for range q.wake {
		for {
			fn, closed := q.next()
			if closed {
				return
			}
			if fn == nil {
				break
			}
			fn()
		}
	}
}
