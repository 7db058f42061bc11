package reconcilewf

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/menusync-backend/internal/services"
)

type stubReconciler struct {
	report *services.ReconcileReport
	err    error
}

func (s stubReconciler) Run(ctx context.Context) (*services.ReconcileReport, error) {
	return s.report, s.err
}

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	acts := &Activities{}
	env.RegisterActivityWithOptions(acts.Reconcile, activity.RegisterOptions{Name: ActivityReconcile})
	return env
}

func TestWorkflow_ContinuesAsNewAfterRunLimit(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(ActivityReconcile, mock.Anything).Return(Result{Menus: 2}, nil).Times(3)

	env.ExecuteWorkflow(Workflow, Input{Interval: time.Minute, RetryDelay: time.Second, RunsPerExecution: 3})

	require.True(t, env.IsWorkflowCompleted())
	var can *workflow.ContinueAsNewError
	require.True(t, errors.As(env.GetWorkflowError(), &can), "got %v", env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestWorkflow_FailedRunDoesNotEndLoop(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(ActivityReconcile, mock.Anything).Return(Result{}, errors.New("fetch feed: unexpected status 502")).Once()
	env.OnActivity(ActivityReconcile, mock.Anything).Return(Result{Menus: 1}, nil).Once()

	env.ExecuteWorkflow(Workflow, Input{Interval: time.Hour, RetryDelay: time.Second, RunsPerExecution: 2})

	require.True(t, env.IsWorkflowCompleted())
	var can *workflow.ContinueAsNewError
	require.True(t, errors.As(env.GetWorkflowError(), &can), "got %v", env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestWorkflow_SignalCutsSleepShort(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(ActivityReconcile, mock.Anything).Return(Result{}, nil).Times(2)
	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalReconcile, nil)
	}, time.Minute)

	start := env.Now()
	env.ExecuteWorkflow(Workflow, Input{Interval: 24 * time.Hour, RetryDelay: time.Hour, RunsPerExecution: 2})

	require.True(t, env.IsWorkflowCompleted())
	require.Less(t, env.Now().Sub(start), time.Hour, "second run should follow the signal, not the interval")
	env.AssertExpectations(t)
}

func TestActivity_MapsReport(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	acts := &Activities{Reconciler: stubReconciler{report: &services.ReconcileReport{
		Checksum: "00000000cafef00d",
		Rows:     7,
		Skipped:  1,
		Tree:     services.ReseedResult{Menus: 2, Submenus: 3, Dishes: 4},
	}}}
	env.RegisterActivity(acts.Reconcile)

	val, err := env.ExecuteActivity(acts.Reconcile)
	require.NoError(t, err)
	var out Result
	require.NoError(t, val.Get(&out))
	require.Equal(t, Result{Checksum: "00000000cafef00d", Rows: 7, Skipped: 1, Menus: 2, Submenus: 3, Dishes: 4}, out)
}

func TestActivity_PropagatesFailure(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestActivityEnvironment()
	acts := &Activities{Reconciler: stubReconciler{err: errors.New("open feed: no such file")}}
	env.RegisterActivity(acts.Reconcile)

	_, err := env.ExecuteActivity(acts.Reconcile)
	require.Error(t, err)
}
