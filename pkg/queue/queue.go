package queue

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrClosed    = errors.New("queue is closed")
	ErrDuplicate = errors.New("task already exists")
)

// TaskQueue is an unbounded FIFO of tasks. Cancelled tasks stay queued but
// are skipped by Get.
type TaskQueue[T any] struct {
	tasks          *list.List
	taskMap        map[string]*Task[T]
	runningTaskMap map[string]*Task[T]
	mu             sync.RWMutex
	cond           *sync.Cond
	closed         bool
}

func NewTaskQueue[T any]() *TaskQueue[T] {
	tq := &TaskQueue[T]{
		tasks:          list.New(),
		taskMap:        make(map[string]*Task[T]),
		runningTaskMap: make(map[string]*Task[T]),
	}
	tq.cond = sync.NewCond(&tq.mu)
	return tq
}

func (tq *TaskQueue[T]) Add(task *Task[T]) error {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	if tq.closed {
		return ErrClosed
	}

	if _, exists := tq.taskMap[task.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, task.ID)
	}

	if task.IsCancelled() {
		return fmt.Errorf("task %s has been cancelled", task.ID)
	}

	task.element = tq.tasks.PushBack(task)
	tq.taskMap[task.ID] = task

	tq.cond.Signal()
	return nil
}

// Get blocks until a task is available, the queue is closed and drained
// (ErrClosed) or ctx is done.
func (tq *TaskQueue[T]) Get(ctx context.Context) (*Task[T], error) {
	stop := context.AfterFunc(ctx, func() {
		tq.mu.Lock()
		defer tq.mu.Unlock()
		tq.cond.Broadcast()
	})
	defer stop()

	tq.mu.Lock()
	defer tq.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for tq.tasks.Len() > 0 {
			element := tq.tasks.Front()
			task := element.Value.(*Task[T])

			tq.tasks.Remove(element)
			task.element = nil

			if task.IsCancelled() {
				delete(tq.taskMap, task.ID)
				continue
			}
			tq.runningTaskMap[task.ID] = task
			return task, nil
		}
		if tq.closed {
			return nil, ErrClosed
		}
		tq.cond.Wait()
	}
}

// Done releases a task handed out by Get.
func (tq *TaskQueue[T]) Done(taskID string) {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	delete(tq.taskMap, taskID)
	delete(tq.runningTaskMap, taskID)
}

// ActiveLength returns the number of queued tasks that are not cancelled.
func (tq *TaskQueue[T]) ActiveLength() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()

	count := 0
	for element := tq.tasks.Front(); element != nil; element = element.Next() {
		task := element.Value.(*Task[T])
		if !task.IsCancelled() {
			count++
		}
	}
	return count
}

// Running returns the number of tasks taken by Get and not yet Done.
func (tq *TaskQueue[T]) Running() int {
	tq.mu.RLock()
	defer tq.mu.RUnlock()
	return len(tq.runningTaskMap)
}

// CancelAll cancels every queued and running task.
func (tq *TaskQueue[T]) CancelAll() {
	tq.mu.RLock()
	tasks := make([]*Task[T], 0, len(tq.taskMap)+len(tq.runningTaskMap))
	for _, task := range tq.taskMap {
		tasks = append(tasks, task)
	}
	for _, task := range tq.runningTaskMap {
		tasks = append(tasks, task)
	}
	tq.mu.RUnlock()

	for _, task := range tasks {
		task.Cancel()
	}
}

// Close stops accepting tasks. Queued tasks can still be taken with Get.
func (tq *TaskQueue[T]) Close() {
	tq.mu.Lock()
	defer tq.mu.Unlock()

	tq.closed = true
	tq.cond.Broadcast()
}
