package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/menusync-backend/internal/platform/logger"
	"github.com/yungbote/menusync-backend/internal/services"
)

const (
	DefaultInterval   = 5 * time.Minute
	DefaultRetryDelay = 30 * time.Second
)

type Config struct {
	// Interval separates the end of one run from the start of the next.
	Interval time.Duration
	// RetryDelay replaces Interval after a failed run.
	RetryDelay   time.Duration
	InitialDelay time.Duration
}

// Reconciler is the part of the reconciliation service the runner drives.
type Reconciler interface {
	Run(ctx context.Context) (*services.ReconcileReport, error)
}

// Status is the outcome of the most recent run.
type Status struct {
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Report     *services.ReconcileReport `json:"report,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

// Runner schedules reconciliation in process. Runs never overlap: the timer
// is re-armed only after a run returns, and triggers that arrive during a
// run collapse into one follow-up run.
type Runner struct {
	cfg     Config
	rec     Reconciler
	log     *logger.Logger
	trigger chan struct{}
	runMu   sync.Mutex

	mu   sync.Mutex
	last *Status
}

func NewRunner(cfg Config, rec Reconciler, baseLog *logger.Logger) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = 0
	}
	return &Runner{
		cfg:     cfg,
		rec:     rec,
		log:     baseLog.With("component", "ReconcileRunner"),
		trigger: make(chan struct{}, 1),
	}
}

// RunOnce performs one reconciliation and records its status.
func (r *Runner) RunOnce(ctx context.Context) (*services.ReconcileReport, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	st := &Status{StartedAt: time.Now().UTC()}
	report, err := r.rec.Run(ctx)
	st.FinishedAt = time.Now().UTC()
	st.Report = report
	if err != nil {
		st.Error = err.Error()
		r.log.Warn("reconciliation failed", "error", err, "duration", st.FinishedAt.Sub(st.StartedAt))
	} else {
		r.log.Info("reconciliation finished",
			"checksum", report.Checksum,
			"rows", report.Rows,
			"skipped", report.Skipped,
			"menus", report.Tree.Menus,
			"submenus", report.Tree.Submenus,
			"dishes", report.Tree.Dishes,
			"duration", st.FinishedAt.Sub(st.StartedAt),
		)
	}

	r.mu.Lock()
	r.last = st
	r.mu.Unlock()
	return report, err
}

// Trigger asks the loop for an immediate run. It never blocks and reports
// whether a new request was queued.
func (r *Runner) Trigger() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Last returns the status of the most recent run, or nil before the first.
func (r *Runner) Last() *Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return nil
	}
	cp := *r.last
	return &cp
}

func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx)
}

func (r *Runner) loop(ctx context.Context) {
	timer := time.NewTimer(r.cfg.InitialDelay)
	defer timer.Stop()
	r.log.Info("reconciliation loop started", "interval", r.cfg.Interval, "retry_delay", r.cfg.RetryDelay)

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-r.trigger:
			timer.Stop()
		}

		next := r.cfg.Interval
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			next = r.cfg.RetryDelay
		}
		timer.Reset(next)
	}
}
