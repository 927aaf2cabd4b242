package core

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/hrbox-pull/hrbox-pull/pkg/enums/ctxkey"
	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	"github.com/rs/xid"
)

type Options struct {
	BaseURL     string
	Credentials hrbox.Credentials
	Session     hrbox.Options
}

// Connect bootstraps a session against opts.BaseURL and logs in.
func Connect(ctx context.Context, opts Options) (*hrbox.Session, error) {
	session, err := hrbox.NewSession(ctx, opts.BaseURL, opts.Session)
	if err != nil {
		return nil, err
	}
	if err := hrbox.Login(ctx, session, opts.Credentials); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

// Run performs a complete pull: connect, list every document and save
// each one into stor. It stops at the first failure.
func Run(ctx context.Context, opts Options, stor Storage, pull PullOptions) (*Result, error) {
	ctx, logger := WithRunID(ctx)
	session, err := Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	catalog, err := hrbox.FetchAll(ctx, session)
	if err != nil {
		return nil, err
	}
	logger.Info("Saving documents", "count", len(catalog.Documents), "storage", stor.Name())
	return Pull(ctx, session, catalog.Documents, stor, pull)
}

// WithRunID tags ctx and its logger with an id for this run, reusing one
// already present.
func WithRunID(ctx context.Context) (context.Context, *log.Logger) {
	id, ok := ctx.Value(ctxkey.RunID).(string)
	if !ok {
		id = xid.New().String()
		ctx = context.WithValue(ctx, ctxkey.RunID, id)
	}
	logger := log.FromContext(ctx).With("run", id)
	return log.WithContext(ctx, logger), logger
}
