package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
)

// passthrough runs the body without a transaction.
type passthrough struct{}

func (passthrough) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

// InjectedTxRunner wraps a runner (a nil Inner runs the body bare) and can fail at the commit point.
// A commit failure runs the body inside the real transaction, then rolls it
// back and reports FailCommit, which is what a lost commit looks like to the
// caller.
type InjectedTxRunner struct {
	Inner aggregates.TxRunner

	mu         sync.Mutex
	FailBegin  error
	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

var errInjectedRollback = errors.New("injected rollback")

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin := r.FailBegin
	failCommit := r.FailCommit
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	inner := r.Inner
	if inner == nil {
		inner = passthrough{}
	}
	err := inner.InTx(ctx, func(dbc dbctx.Context) error {
		if err := fn(dbc); err != nil {
			return err
		}
		if failCommit != nil {
			return errInjectedRollback
		}
		return nil
	})
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case errors.Is(err, errInjectedRollback):
		r.RollbackCalls++
		return failCommit
	case err != nil:
		r.RollbackCalls++
		return err
	default:
		r.CommitCalls++
		return nil
	}
}
