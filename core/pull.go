package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/hrbox-pull/hrbox-pull/common/utils/dlutil"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	"github.com/hrbox-pull/hrbox-pull/pkg/queue"
	"golang.org/x/sync/errgroup"
)

// Storage is where pulled documents end up.
type Storage interface {
	Name() string
	JoinStoragePath(p string) string
	Save(ctx context.Context, r io.Reader, storagePath string) error
}

type PullOptions struct {
	// Workers bounds concurrent downloads, values below 1 mean 1.
	Workers int
	// Dir is a directory inside the storage, empty for its root.
	Dir string
	// Ext is the file extension of saved documents, hrbox.DefaultExt if empty.
	Ext      string
	Progress ProgressTracker
}

type Result struct {
	Documents int
	Bytes     int64
	Elapsed   time.Duration
}

func (r *Result) String() string {
	speed := dlutil.GetSpeed(r.Bytes, time.Now().Add(-r.Elapsed))
	return fmt.Sprintf("%d documents, %s in %s (%s/s)",
		r.Documents,
		humanize.Bytes(uint64(r.Bytes)),
		r.Elapsed.Round(time.Millisecond),
		humanize.Bytes(uint64(speed)))
}

// storageSaver maps the relative document path into the storage.
type storageSaver struct {
	stor Storage
}

func (s storageSaver) Save(ctx context.Context, r io.Reader, p string) error {
	return s.stor.Save(ctx, r, s.stor.JoinStoragePath(p))
}

// existenceChecker is implemented by storages that can tell whether a
// document is about to be overwritten.
type existenceChecker interface {
	Exists(ctx context.Context, storagePath string) bool
}

// groupByPath keeps document order but puts targets sharing a path into one
// group, so they are saved one after another by the same worker.
func groupByPath(targets []hrbox.Target) [][]hrbox.Target {
	index := make(map[string]int, len(targets))
	groups := make([][]hrbox.Target, 0, len(targets))
	for _, target := range targets {
		if i, ok := index[target.Path()]; ok {
			groups[i] = append(groups[i], target)
			continue
		}
		index[target.Path()] = len(groups)
		groups = append(groups, []hrbox.Target{target})
	}
	return groups
}

// Pull downloads docs into stor with a bounded worker pool. The first
// failing download cancels all others and is returned.
// Documents sharing a file name are saved in listing order, the later one
// wins.
func Pull(ctx context.Context, session *hrbox.Session, docs []hrbox.Document, stor Storage, opts PullOptions) (*Result, error) {
	logger := log.FromContext(ctx)
	workers := max(opts.Workers, 1)
	start := time.Now()
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	checker, _ := stor.(existenceChecker)

	targets := make([]hrbox.Target, 0, len(docs))
	for _, doc := range docs {
		targets = append(targets, hrbox.Target{Document: doc, Dir: opts.Dir, Ext: opts.Ext})
	}
	groups := groupByPath(targets)
	for _, group := range groups {
		for _, later := range group[1:] {
			logger.Warn("Documents share a file name, the later one wins",
				"path", group[0].Path(), "first", group[0].Document.FileIndex, "later", later.Document.FileIndex)
		}
	}

	eg, gctx := errgroup.WithContext(ctx)
	q := queue.NewTaskQueue[[]hrbox.Target]()
	for i, group := range groups {
		if err := q.Add(queue.NewTask(gctx, fmt.Sprintf("%d-%s", i, group[0].Document.FileIndex), group)); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, err
		}
	}
	q.Close()
	progress.OnStart(ctx, len(docs))

	var (
		saved atomic.Int64
		total atomic.Int64
		mu    sync.Mutex
	)
	saver := storageSaver{stor: stor}
	save := func(task *queue.Task[[]hrbox.Target], target hrbox.Target) error {
		tctx := task.Context()
		if checker != nil && checker.Exists(tctx, stor.JoinStoragePath(target.Path())) {
			logger.Info("Overwriting existing document", "path", target.Path())
		}
		n, err := hrbox.DownloadWithProgress(tctx, session, target, saver, func(read, size int64) {
			progress.OnRead(tctx, target, read, size)
		})
		if err != nil {
			return err
		}
		done := saved.Add(1)
		total.Add(n)
		mu.Lock()
		progress.OnSaved(gctx, target, n, int(done), len(docs))
		mu.Unlock()
		return nil
	}

	for range min(workers, max(len(groups), 1)) {
		eg.Go(func() error {
			for {
				task, err := q.Get(gctx)
				if errors.Is(err, queue.ErrClosed) {
					return nil
				}
				if err != nil {
					return err
				}
				logger.Debug("Picked document", "path", task.Data[0].Path(), "waited", task.Waited())
				for _, target := range task.Data {
					if err = save(task, target); err != nil {
						break
					}
				}
				if err != nil {
					logger.Warn("Cancelling remaining downloads",
						"queued", q.ActiveLength(), "running", q.Running()-1)
					q.CancelAll()
					q.Done(task.ID)
					return err
				}
				q.Done(task.ID)
			}
		})
	}
	err := eg.Wait()

	result := &Result{
		Documents: int(saved.Load()),
		Bytes:     total.Load(),
		Elapsed:   time.Since(start),
	}
	progress.OnDone(ctx, result, err)
	if err != nil {
		logger.Error("Pull aborted", "saved", result.Documents, "total", len(docs), "error", err)
		return result, err
	}
	logger.Info("Pull finished", "result", result.String())
	return result, nil
}
