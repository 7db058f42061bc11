package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/temporalx"
	"github.com/yungbote/menusync-backend/internal/temporalx/reconcilewf"
)

// Runner hosts the reconciliation workflow and activity, and makes sure
// exactly one reconciliation workflow is running.
type Runner struct {
	log *logger.Logger
	cfg temporalx.Config
	tc  temporalsdkclient.Client
	rec reconcilewf.Reconciler
	in  reconcilewf.Input
}

func NewRunner(
	log *logger.Logger,
	cfg temporalx.Config,
	tc temporalsdkclient.Client,
	rec reconcilewf.Reconciler,
	in reconcilewf.Input,
) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if rec == nil {
		return nil, fmt.Errorf("temporal worker missing reconciler")
	}
	return &Runner{
		log: log.With("component", "TemporalWorker"),
		cfg: cfg,
		tc:  tc,
		rec: rec,
		in:  in,
	}, nil
}

// Start polls the task queue until ctx is done, retrying worker start for
// up to a minute, then starts the reconciliation workflow.
func (r *Runner) Start(ctx context.Context) error {
	r.log.Info("Starting Temporal worker", "address", r.cfg.Address, "namespace", r.cfg.Namespace, "task_queue", r.cfg.TaskQueue)

	deadline := time.Now().Add(r.cfg.DialMaxWait)
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		w := r.newWorker()
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "task_queue", r.cfg.TaskQueue, "attempts", attempt)
			return r.ensureWorkflow(ctx)
		}
		w.Stop()

		var nfe *serviceerror.NamespaceNotFound
		if errors.As(startErr, &nfe) && r.cfg.AutoRegisterNamespace {
			if err := temporalx.EnsureNamespace(ctx, r.cfg, r.log); err != nil {
				r.log.Warn("Temporal namespace ensure failed", "namespace", r.cfg.Namespace, "error", err)
			}
		}
		if r.cfg.DialMaxWait <= 0 || time.Now().After(deadline) {
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", r.cfg.Namespace, startErr)
			}
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", r.cfg.TaskQueue, "attempt", attempt, "error", startErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(temporalx.ClampBackoff(r.cfg.DialBackoff, r.cfg.DialBackoffMax, attempt)):
		}
	}
}

func (r *Runner) newWorker() worker.Worker {
	w := worker.New(r.tc, r.cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     1,
		MaxConcurrentWorkflowTaskExecutionSize: 2,
	})
	acts := &reconcilewf.Activities{Log: r.log, Reconciler: r.rec}
	w.RegisterWorkflowWithOptions(reconcilewf.Workflow, workflow.RegisterOptions{Name: reconcilewf.WorkflowName})
	w.RegisterActivityWithOptions(acts.Reconcile, activity.RegisterOptions{Name: reconcilewf.ActivityReconcile})
	return w
}

// ensureWorkflow starts the reconciliation workflow under its fixed id. A
// workflow already running under that id is left alone.
func (r *Runner) ensureWorkflow(ctx context.Context) error {
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                                       r.cfg.WorkflowID,
		TaskQueue:                                r.cfg.TaskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := r.tc.ExecuteWorkflow(ctx, opts, reconcilewf.WorkflowName, r.in)
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	switch {
	case err == nil:
		r.log.Info("reconciliation workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
		return nil
	case errors.As(err, &already):
		r.log.Info("reconciliation workflow already running", "workflow_id", r.cfg.WorkflowID)
		return nil
	default:
		return fmt.Errorf("start reconciliation workflow: %w", err)
	}
}

// Trigger signals the running workflow to reconcile now.
func (r *Runner) Trigger(ctx context.Context) error {
	return r.tc.SignalWorkflow(ctx, r.cfg.WorkflowID, "", reconcilewf.SignalReconcile, nil)
}
