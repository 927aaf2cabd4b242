package core

import (
	"context"

	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
)

// ProgressTracker observes a pull. OnSaved calls are serialized, OnRead
// is called concurrently from every worker. size is -1 when unknown.
type ProgressTracker interface {
	OnStart(ctx context.Context, total int)
	OnRead(ctx context.Context, target hrbox.Target, read, size int64)
	OnSaved(ctx context.Context, target hrbox.Target, size int64, done, total int)
	OnDone(ctx context.Context, result *Result, err error)
}

type nopProgress struct{}

func (nopProgress) OnStart(context.Context, int) {}
func (nopProgress) OnRead(context.Context, hrbox.Target, int64, int64) {}
func (nopProgress) OnSaved(context.Context, hrbox.Target, int64, int, int) {}
func (nopProgress) OnDone(context.Context, *Result, error) {}
