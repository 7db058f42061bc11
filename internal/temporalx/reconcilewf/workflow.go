package reconcilewf

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	defaultInterval         = 5 * time.Minute
	defaultRetryDelay       = 30 * time.Second
	defaultRunsPerExecution = 500
	continueHistoryLimit    = 10000
)

// Workflow runs reconciliation forever: one activity per cycle, then a
// durable sleep of Interval (RetryDelay after a failure). A signal cuts the
// sleep short.
func Workflow(ctx workflow.Context, in Input) error {
	in = withDefaults(in)
	log := workflow.GetLogger(ctx)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		// A failed run is retried by the loop on the next cycle.
		RetryPolicy: &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	nowCh := workflow.GetSignalChannel(ctx, SignalReconcile)

	for runs := 1; ; runs++ {
		wait := in.Interval
		var out Result
		if err := workflow.ExecuteActivity(ctx, ActivityReconcile).Get(ctx, &out); err != nil {
			log.Warn("reconciliation run failed", "run", runs, "error", err)
			wait = in.RetryDelay
		} else {
			log.Info("reconciliation run finished", "run", runs, "checksum", out.Checksum, "menus", out.Menus)
		}

		if shouldContinueAsNew(ctx, runs, in.RunsPerExecution) {
			return workflow.NewContinueAsNewError(ctx, Workflow, in)
		}
		if err := sleepOrSignal(ctx, nowCh, wait); err != nil {
			return err
		}
	}
}

func withDefaults(in Input) Input {
	if in.Interval <= 0 {
		in.Interval = defaultInterval
	}
	if in.RetryDelay <= 0 {
		in.RetryDelay = defaultRetryDelay
	}
	if in.RunsPerExecution <= 0 {
		in.RunsPerExecution = defaultRunsPerExecution
	}
	return in
}

func sleepOrSignal(ctx workflow.Context, ch workflow.ReceiveChannel, d time.Duration) error {
	timerCtx, cancel := workflow.WithCancel(ctx)
	defer cancel()
	timer := workflow.NewTimer(timerCtx, d)

	var timerErr error
	sel := workflow.NewSelector(ctx)
	sel.AddReceive(ch, func(c workflow.ReceiveChannel, more bool) {
		var v any
		c.Receive(ctx, &v)
		// drain queued signals so a burst costs one run
		for c.ReceiveAsync(&v) {
		}
	})
	sel.AddFuture(timer, func(f workflow.Future) {
		timerErr = f.Get(ctx, nil)
	})
	sel.Select(ctx)
	return timerErr
}

func shouldContinueAsNew(ctx workflow.Context, runs, maxRuns int) bool {
	if maxRuns > 0 && runs >= maxRuns {
		return true
	}
	return workflow.GetInfo(ctx).GetCurrentHistoryLength() >= continueHistoryLimit
}
