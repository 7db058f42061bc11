package services

import (
	"context"
	"errors"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/menusync-backend/internal/cache/treecache"
	"github.com/yungbote/menusync-backend/internal/data/aggregates"
	"github.com/yungbote/menusync-backend/internal/domain/catalog"
	"github.com/yungbote/menusync-backend/internal/platform/ctxutil"
	"github.com/yungbote/menusync-backend/internal/platform/dbctx"
	"github.com/yungbote/menusync-backend/internal/platform/logger"
)

var tracer = otel.Tracer("github.com/yungbote/menusync-backend/internal/services")

// cacheUndo records compensations for cache writes made inside a store
// transaction. They run, newest first, only if that transaction does not
// commit.
type cacheUndo struct {
	steps []func(ctx context.Context) error
}

func (u *cacheUndo) push(step func(ctx context.Context) error) {
	u.steps = append(u.steps, step)
}

// syncer is the store-then-cache write path shared by the three levels.
type syncer struct {
	tx       aggregates.TxRunner
	tree     *treecache.Tree
	counters CounterPropagator
	log      *logger.Logger
}

// write runs fn inside one store transaction. fn performs the store write,
// then the cache write, then counter propagation; the transaction commits
// only after fn returns nil. When the transaction ends without committing
// after the cache was touched, the recorded compensations restore it.
func (s *syncer) write(ctx context.Context, op string, fn func(dbc dbctx.Context, undo *cacheUndo) error) error {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	undo := &cacheUndo{}
	var bodyErr error
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		bodyErr = fn(dbc, undo)
		return bodyErr
	})
	if err == nil {
		return nil
	}

	if len(undo.steps) > 0 {
		if cerr := s.compensate(ctx, op, undo); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}
	if bodyErr == nil {
		// The body succeeded, so the commit itself failed.
		err = catalog.SyncError(op, false, err)
	} else {
		err = aggregates.MapError(op, err)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, string(catalog.CodeOf(err)))
	span.SetAttributes(attribute.String("catalog.error_code", string(catalog.CodeOf(err))))
	return err
}

func (s *syncer) compensate(ctx context.Context, op string, undo *cacheUndo) error {
	ctx = context.WithoutCancel(ctx)
	var result *multierror.Error
	for i := len(undo.steps) - 1; i >= 0; i-- {
		if err := undo.steps[i](ctx); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		s.log.Error("tree cache compensation failed; cache is stale until reseed",
			append(ctxutil.LogFields(ctx), "op", op, "error", err)...)
		return err
	}
	s.log.Warn("tree cache write compensated after rollback", append(ctxutil.LogFields(ctx), "op", op)...)
	return nil
}

// refreshAncestors recomputes counters bottom-up: the submenu first when
// one is given, then its menu. Failures are logged and swallowed.
func (s *syncer) refreshAncestors(dbc dbctx.Context, op, menuID, submenuID string) {
	if submenuID != "" {
		if err := s.counters.RefreshSubmenu(dbc, menuID, submenuID); err != nil {
			s.log.Warn("submenu counter refresh failed",
				append(ctxutil.LogFields(dbc.Ctx), "op", op, "menu_id", menuID, "submenu_id", submenuID, "error", err)...)
		}
	}
	if err := s.counters.RefreshMenu(dbc, menuID); err != nil {
		s.log.Warn("menu counter refresh failed",
			append(ctxutil.LogFields(dbc.Ctx), "op", op, "menu_id", menuID, "error", err)...)
	}
}

// restoreCounters is the compensation form of refreshAncestors. It reads
// outside any transaction, after the rollback, and reports failures.
func (s *syncer) restoreCounters(ctx context.Context, menuID, submenuID string) error {
	dbc := dbctx.Context{Ctx: ctx}
	var result *multierror.Error
	if submenuID != "" {
		if err := s.counters.RefreshSubmenu(dbc, menuID, submenuID); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := s.counters.RefreshMenu(dbc, menuID); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// cacheWriteErr converts a failed or empty cache write into a SyncError.
// The surrounding transaction is rolled back, so nothing was committed.
func cacheWriteErr(op string, matched int, err error, what string) error {
	if err != nil {
		return catalog.SyncError(op, false, err)
	}
	if matched == 0 {
		return catalog.SyncError(op, false, errors.New(what+" not present in tree cache"))
	}
	return nil
}

// cacheReadErr wraps a failing cache read.
func cacheReadErr(op string, err error) error {
	return catalog.Wrap(catalog.CodeInternal, op, err)
}
