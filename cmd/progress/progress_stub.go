//go:build no_bubbletea

package progress

import (
	"context"

	"github.com/hrbox-pull/hrbox-pull/core"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
)

// Bar is a no-op in builds without the terminal UI.
type Bar struct{}

var _ core.ProgressTracker = (*Bar)(nil)

func New(ctx context.Context) *Bar {
	return &Bar{}
}

func (b *Bar) OnStart(ctx context.Context, total int) {}

func (b *Bar) OnRead(ctx context.Context, target hrbox.Target, read, size int64) {}

func (b *Bar) OnSaved(ctx context.Context, target hrbox.Target, size int64, done, total int) {}

func (b *Bar) OnDone(ctx context.Context, result *core.Result, err error) {}
