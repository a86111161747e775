package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/platform/retry"
)

func newMatchdayFixture(t *testing.T) (*MatchdayService, *memory.SeasonRepository) {
	t.Helper()
	seasons := memory.NewSeasonRepository()
	svc := NewMatchdayService(seasons, logging.NewNop())
	// zero out the production throttle/backoff so the test doesn't spend
	// real wall-clock time waiting between the 36 fixture writes per day.
	svc.retryConfig = retry.Config{MaxAttempts: 1, BaseDelay: time.Millisecond, Throttle: 0}
	svc.rngSource = rand.New(rand.NewSource(1)).Float64
	return svc, seasons
}

func TestMatchdayService_SimulateDay_CreatesSeasonsOnFirstRun(t *testing.T) {
	svc, _ := newMatchdayFixture(t)

	result := svc.SimulateDay(context.Background())
	if !result.AllOK {
		t.Fatalf("expected all tiers ok, got %+v", result.Tiers)
	}
	if len(result.Tiers) != len(seasondomain.AllTiers) {
		t.Fatalf("expected %d tier results, got %d", len(seasondomain.AllTiers), len(result.Tiers))
	}
	for _, tr := range result.Tiers {
		if tr.Outcome != TierNewSeasonCreated {
			t.Fatalf("expected TierNewSeasonCreated for %s, got %s", tr.Tier, tr.Outcome)
		}
		if tr.Matchday != 1 {
			t.Fatalf("expected matchday 1 for %s, got %d", tr.Tier, tr.Matchday)
		}
	}
}

func TestMatchdayService_SimulateDay_PlaysGeneratedMatchday(t *testing.T) {
	svc, seasons := newMatchdayFixture(t)
	ctx := context.Background()

	// first call just creates the seasons
	svc.SimulateDay(ctx)

	result := svc.SimulateDay(ctx)
	if !result.AllOK {
		t.Fatalf("expected all tiers ok, got %+v", result.Tiers)
	}
	for _, tr := range result.Tiers {
		if tr.Outcome != TierOK {
			t.Fatalf("expected TierOK for %s, got %s (%s)", tr.Tier, tr.Outcome, tr.Message)
		}
		if tr.Matchday != 1 {
			t.Fatalf("expected matchday 1 to have been played for %s, got %d", tr.Tier, tr.Matchday)
		}
	}

	active, ok, err := seasons.GetActiveSeason(ctx, seasondomain.TierChampionship)
	if err != nil {
		t.Fatalf("get active season: %v", err)
	}
	if !ok {
		t.Fatalf("expected an active championship season")
	}
	if active.CurrentMatchday != 2 {
		t.Fatalf("expected matchday counter advanced to 2, got %d", active.CurrentMatchday)
	}

	standings, err := seasons.ListTeamSeasons(ctx, active.ID)
	if err != nil {
		t.Fatalf("list team seasons: %v", err)
	}
	if len(standings) != seasondomain.ClubsPerTier {
		t.Fatalf("expected standings for all %d clubs, got %d", seasondomain.ClubsPerTier, len(standings))
	}
	totalPlayed := 0
	for _, ts := range standings {
		totalPlayed += ts.Played
	}
	if totalPlayed != seasondomain.ClubsPerTier {
		t.Fatalf("expected %d total played-matches across clubs after one matchday, got %d", seasondomain.ClubsPerTier, totalPlayed)
	}
}

func TestMatchdayService_SimulateDay_AdvancesToNextMatchday(t *testing.T) {
	svc, _ := newMatchdayFixture(t)
	ctx := context.Background()

	svc.SimulateDay(ctx) // create seasons
	svc.SimulateDay(ctx) // play matchday 1

	result := svc.SimulateDay(ctx)
	if !result.AllOK {
		t.Fatalf("expected all tiers ok, got %+v", result.Tiers)
	}
	for _, tr := range result.Tiers {
		if tr.Outcome != TierOK {
			t.Fatalf("expected TierOK for matchday 2 for %s, got %s", tr.Tier, tr.Outcome)
		}
	}
}
