package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	sweepdomain "github.com/riskibarqy/football-brain/internal/domain/sweep"
	"github.com/riskibarqy/football-brain/internal/platform/db"
)

// SweepRepository persists the singleton sweep_state row (id=1, enforced by
// a check constraint at the schema level).
type SweepRepository struct {
	db *sqlx.DB
}

func NewSweepRepository(conn *sqlx.DB) *SweepRepository {
	return &SweepRepository{db: conn}
}

type sweepStateRow struct {
	LastSweepUTCDay int64     `db:"last_sweep_utc_day"`
	LastSweepAt     time.Time `db:"last_sweep_at"`
	RunCount        int       `db:"run_count"`
}

func (r sweepStateRow) toDomain() sweepdomain.State {
	return sweepdomain.State{LastSweepUTCDay: r.LastSweepUTCDay, LastSweepAt: r.LastSweepAt, RunCount: r.RunCount}
}

func (r *SweepRepository) GetState(ctx context.Context) (sweepdomain.State, error) {
	const query = `SELECT last_sweep_utc_day, last_sweep_at, run_count FROM sweep_state WHERE id = 1`
	var row sweepStateRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return sweepdomain.State{}, fmt.Errorf("get sweep state: %w", err)
	}
	return row.toDomain(), nil
}

// TryBeginRun decides whether a sweep should run and stamps the state row
// atomically: the transaction-level advisory lock is held for the duration of the transaction, so the
// SELECT ... FOR UPDATE, the run/no-run decision, and (if running) the
// stamp-and-commit are indivisible from any concurrently triggered sweep.
func (r *SweepRepository) TryBeginRun(ctx context.Context, today int64, force bool) (sweepdomain.State, bool, error) {
	var (
		state     sweepdomain.State
		shouldRun bool
	)

	err := db.WithAdvisoryLock(ctx, r.db, sweepdomain.AdvisoryLockKey, func(tx *sqlx.Tx) error {
		var row sweepStateRow
		const lockQuery = `SELECT last_sweep_utc_day, last_sweep_at, run_count FROM sweep_state WHERE id = 1 FOR UPDATE`
		if err := tx.GetContext(ctx, &row, lockQuery); err != nil {
			return fmt.Errorf("lock sweep state: %w", err)
		}
		state = row.toDomain()

		alreadyRanToday := row.LastSweepUTCDay == today
		shouldRun = !alreadyRanToday && (force || sweepdomain.IsScheduledDay(today))
		if !shouldRun {
			return nil
		}

		const updateQuery = `
UPDATE sweep_state
SET last_sweep_utc_day = $1, last_sweep_at = $2, run_count = run_count + 1
WHERE id = 1
RETURNING last_sweep_utc_day, last_sweep_at, run_count`
		now := time.Now().UTC()
		if err := tx.GetContext(ctx, &row, updateQuery, today, now); err != nil {
			return fmt.Errorf("stamp sweep state: %w", err)
		}
		state = row.toDomain()
		return nil
	})
	if err != nil {
		return sweepdomain.State{}, false, err
	}
	return state, shouldRun, nil
}
