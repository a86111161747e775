package sweep

import "context"

// Repository persists the singleton sweep state.
type Repository interface {
	// TryBeginRun decides whether a sweep should run and stamps the state
	// row: acquire the transaction-level advisory lock, SELECT ... FOR UPDATE the
	// singleton row, decide whether to proceed, and if so stamp
	// last_sweep_utc_day/last_sweep_at/run_count and commit — all inside
	// one transaction, so the decision and the stamp are atomic with the
	// lock held. Already having run today always blocks a further run,
	// even when force is true; force only bypasses the scheduled-day
	// check. Returns shouldRun=false when today already ran, or when
	// force is false and today is not a scheduled day.
	TryBeginRun(ctx context.Context, today int64, force bool) (state State, shouldRun bool, err error)

	GetState(ctx context.Context) (State, error)
}
