package reconcilewf

import "time"

const (
	WorkflowName      = "catalog_reconcile"
	ActivityReconcile = "catalog_reconcile_run"
	SignalReconcile   = "catalog_reconcile_now"
)

// Input configures the reconciliation loop. It is carried across
// ContinueAsNew.
type Input struct {
	Interval   time.Duration `json:"interval"`
	RetryDelay time.Duration `json:"retry_delay"`
	// RunsPerExecution bounds history; the loop continues as new after it.
	RunsPerExecution int `json:"runs_per_execution"`
}

// Result is the serializable summary of one reconciliation.
type Result struct {
	Checksum string `json:"checksum,omitempty"`
	Rows     int    `json:"rows"`
	Skipped  int    `json:"skipped"`
	Menus    int    `json:"menus"`
	Submenus int    `json:"submenus"`
	Dishes   int    `json:"dishes"`
}
