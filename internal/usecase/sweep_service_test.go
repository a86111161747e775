package usecase

import (
	"context"
	"testing"
	"time"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

func newSweepFixture(t *testing.T, now time.Time) (*SweepService, *memory.PlayerRepository) {
	t.Helper()
	players := memory.NewPlayerRepository()
	sweep := memory.NewSweepRepository()
	svc := NewSweepService(sweep, players, logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc, players
}

func TestSweepService_Run_PromotesAndCompletesByRating(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	svc, players := newSweepFixture(t, now)
	ctx := context.Background()

	rating := 72
	belowRating := 50
	champRating := 90

	mustCreate(t, players, "promote-to-one", "u1", playerdomain.LeagueTwo, rating)
	mustCreate(t, players, "skip-league-two", "u2", playerdomain.LeagueTwo, belowRating)
	mustCreate(t, players, "complete-champ", "u3", playerdomain.Championship, champRating)

	result, err := svc.Run(ctx, true)
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if !result.Ran {
		t.Fatalf("expected sweep to run")
	}
	if result.TotalActive != 3 {
		t.Fatalf("expected 3 active players, got %d", result.TotalActive)
	}
	if result.PromotedCount != 1 {
		t.Fatalf("expected 1 promotion, got %d", result.PromotedCount)
	}
	if result.CompletedCount != 1 {
		t.Fatalf("expected 1 completion, got %d", result.CompletedCount)
	}
	if result.SkippedCount != 1 {
		t.Fatalf("expected 1 skip, got %d", result.SkippedCount)
	}

	promoted, _, err := players.GetByID(ctx, "promote-to-one")
	if err != nil {
		t.Fatalf("get promoted player: %v", err)
	}
	if promoted.CurrentLeague != playerdomain.LeagueOne {
		t.Fatalf("expected promotion to league_one, got %s", promoted.CurrentLeague)
	}

	completed, _, err := players.GetByID(ctx, "complete-champ")
	if err != nil {
		t.Fatalf("get completed player: %v", err)
	}
	if completed.CareerStatus != playerdomain.StatusCompleted {
		t.Fatalf("expected completed status, got %s", completed.CareerStatus)
	}
}

func TestSweepService_Run_SkipsWhenAlreadyRanToday(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC) // UTC day divisible by 4
	svc, _ := newSweepFixture(t, now)
	ctx := context.Background()

	first, err := svc.Run(ctx, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !first.Ran {
		t.Fatalf("expected first run on scheduled day to run")
	}

	second, err := svc.Run(ctx, false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Ran {
		t.Fatalf("expected second run same day to be a no-op")
	}
	if !second.AlreadyRanToday {
		t.Fatalf("expected AlreadyRanToday=true")
	}
}

func TestSweepService_Run_ForceBypassesSchedule(t *testing.T) {
	now := time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC) // not divisible by 4
	svc, _ := newSweepFixture(t, now)

	result, err := svc.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("run sweep: %v", err)
	}
	if !result.Ran {
		t.Fatalf("expected forced run to proceed on an unscheduled day")
	}
}

func TestSweepService_Run_ForceStillBlockedWhenAlreadyRanToday(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC) // UTC day divisible by 4
	svc, _ := newSweepFixture(t, now)
	ctx := context.Background()

	first, err := svc.Run(ctx, false)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !first.Ran {
		t.Fatalf("expected first run on scheduled day to run")
	}

	forced, err := svc.Run(ctx, true)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if forced.Ran {
		t.Fatalf("expected force=true to still be blocked once the sweep already ran today")
	}
	if !forced.AlreadyRanToday {
		t.Fatalf("expected AlreadyRanToday=true even with force=true")
	}
}

func TestSweepService_Status_ReflectsLastRun(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	svc, _ := newSweepFixture(t, now)
	ctx := context.Background()

	if _, err := svc.Run(ctx, true); err != nil {
		t.Fatalf("run sweep: %v", err)
	}

	state, err := svc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if state.RunCount != 1 {
		t.Fatalf("expected run count 1, got %d", state.RunCount)
	}
}

func mustCreate(t *testing.T, repo *memory.PlayerRepository, id, userID string, league playerdomain.League, rating int) {
	t.Helper()
	_, _, err := repo.Create(context.Background(), playerdomain.Player{
		ID:            id,
		UserID:        userID,
		CurrentLeague: league,
		OverallRating: rating,
		CareerStatus:  playerdomain.StatusActive,
	})
	if err != nil {
		t.Fatalf("create player %s: %v", id, err)
	}
}
