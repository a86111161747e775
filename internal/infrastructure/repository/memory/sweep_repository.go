package memory

import (
	"context"
	"sync"
	"time"

	sweepdomain "github.com/riskibarqy/football-brain/internal/domain/sweep"
)

type SweepRepository struct {
	mu    sync.Mutex
	state sweepdomain.State
	now   func() time.Time
}

func NewSweepRepository() *SweepRepository {
	return &SweepRepository{now: time.Now}
}

func (r *SweepRepository) GetState(ctx context.Context) (sweepdomain.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, nil
}

// TryBeginRun mirrors the postgres repository's single-method atomicity
// contract; a plain mutex stands in for the advisory lock since this fake
// only ever runs inside one process.
func (r *SweepRepository) TryBeginRun(ctx context.Context, today int64, force bool) (sweepdomain.State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	alreadyRanToday := r.state.LastSweepUTCDay == today
	shouldRun := !alreadyRanToday && (force || sweepdomain.IsScheduledDay(today))
	if !shouldRun {
		return r.state, false, nil
	}

	r.state.LastSweepUTCDay = today
	r.state.LastSweepAt = r.now()
	r.state.RunCount++
	return r.state, true, nil
}
