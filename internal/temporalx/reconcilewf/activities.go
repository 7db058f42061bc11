package reconcilewf

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/activity"

	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/services"
)

// Reconciler is the part of the reconciliation service the activity drives.
type Reconciler interface {
	Run(ctx context.Context) (*services.ReconcileReport, error)
}

type Activities struct {
	Log        *logger.Logger
	Reconciler Reconciler
}

func (a *Activities) Reconcile(ctx context.Context) (Result, error) {
	if a == nil || a.Reconciler == nil {
		return Result{}, fmt.Errorf("reconcile activity not configured")
	}
	info := activity.GetInfo(ctx)
	report, err := a.Reconciler.Run(ctx)
	if err != nil {
		if a.Log != nil {
			a.Log.Warn("reconcile activity failed", "workflow_id", info.WorkflowExecution.ID, "attempt", info.Attempt, "error", err)
		}
		return Result{}, err
	}
	return Result{
		Checksum: report.Checksum,
		Rows:     report.Rows,
		Skipped:  report.Skipped,
		Menus:    report.Tree.Menus,
		Submenus: report.Tree.Submenus,
		Dishes:   report.Tree.Dishes,
	}, nil
}
