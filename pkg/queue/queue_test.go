package queue_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hrbox-pull/hrbox-pull/pkg/queue"
)

func newTask(id string) *queue.Task[int] {
	return queue.NewTask(context.Background(), id, 0)
}

func TestAddAndLength(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	if q.ActiveLength() != 0 {
		t.Fatalf("expected length 0, got %d", q.ActiveLength())
	}
	if err := q.Add(newTask("t1")); err != nil {
		t.Fatalf("unexpected error on Add: %v", err)
	}
	if q.ActiveLength() != 1 {
		t.Fatalf("expected length 1, got %d", q.ActiveLength())
	}
}

func TestDuplicateAdd(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	t1 := newTask("dup")
	if err := q.Add(t1); err != nil {
		t.Fatalf("unexpected error on first Add: %v", err)
	}
	if err := q.Add(t1); !errors.Is(err, queue.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetOrder(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	for _, id := range []string{"a", "b", "c"} {
		q.Add(newTask(id))
	}
	ctx := context.Background()
	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Get(ctx)
		if err != nil {
			t.Fatalf("unexpected error on Get: %v", err)
		}
		if got.ID != want {
			t.Fatalf("expected %s, got %s", want, got.ID)
		}
	}
	if q.Running() != 3 {
		t.Fatalf("expected 3 running, got %d", q.Running())
	}
	q.Done("a")
	if q.Running() != 2 {
		t.Fatalf("expected 2 running after Done, got %d", q.Running())
	}
}

func TestCancelledTasksAreSkipped(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	first := newTask("1")
	q.Add(first)
	q.Add(newTask("2"))
	first.Cancel()
	if got := q.ActiveLength(); got != 1 {
		t.Fatalf("expected active length 1, got %d", got)
	}
	task, err := q.Get(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if task.ID != "2" {
		t.Fatalf("expected task 2, got %s", task.ID)
	}
}

func TestCloseDrains(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	q.Add(newTask("last"))
	q.Close()

	if err := q.Add(newTask("late")); !errors.Is(err, queue.ErrClosed) {
		t.Fatalf("expected ErrClosed on Add, got %v", err)
	}
	task, err := q.Get(context.Background())
	if err != nil || task.ID != "last" {
		t.Fatalf("expected queued task after Close, got %v, %v", task, err)
	}
	if _, err := q.Get(context.Background()); !errors.Is(err, queue.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCloseWakesConsumer(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	done := make(chan error)
	go func() {
		_, err := q.Get(context.Background())
		done <- err
	}()

	q.Close()
	if err := <-done; !errors.Is(err, queue.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestGetHonoursContext(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Get(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestCancelAll(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	running := newTask("running")
	q.Add(running)
	q.Add(newTask("queued"))
	if _, err := q.Get(context.Background()); err != nil {
		t.Fatal(err)
	}

	q.CancelAll()
	if !running.IsCancelled() {
		t.Fatal("running task not cancelled")
	}
	if q.ActiveLength() != 0 {
		t.Fatalf("expected no active tasks, got %d", q.ActiveLength())
	}
}

func TestTaskWaited(t *testing.T) {
	task := newTask("w")
	time.Sleep(5 * time.Millisecond)
	if task.Waited() < 5*time.Millisecond {
		t.Fatalf("Waited = %s, want at least 5ms", task.Waited())
	}
}

func TestConcurrencySafety(t *testing.T) {
	q := queue.NewTaskQueue[int]()
	var wg sync.WaitGroup
	n := 1000

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			q.Add(newTask(fmt.Sprintf("p%d", i)))
		}
		q.Close()
	}()

	var mu sync.Mutex
	count := 0
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				task, err := q.Get(context.Background())
				if err != nil {
					return
				}
				q.Done(task.ID)
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if count != n {
		t.Fatalf("expected %d tasks consumed, got %d", n, count)
	}
}
