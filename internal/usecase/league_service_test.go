package usecase

import (
	"context"
	"errors"
	"testing"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
)

func TestLeagueService_ResetSync_CreatesMissingSeasons(t *testing.T) {
	seasons := memory.NewSeasonRepository()
	svc := NewLeagueService(seasons)

	statuses, err := svc.ResetSync(context.Background())
	if err != nil {
		t.Fatalf("reset sync: %v", err)
	}
	if len(statuses) != len(seasondomain.AllTiers) {
		t.Fatalf("expected %d tier statuses, got %d", len(seasondomain.AllTiers), len(statuses))
	}
	for _, ts := range statuses {
		if !ts.Created {
			t.Fatalf("expected season created for %s", ts.Tier)
		}
		if ts.CurrentMatchday != 1 {
			t.Fatalf("expected matchday 1 for %s, got %d", ts.Tier, ts.CurrentMatchday)
		}
	}
}

func TestLeagueService_ResetSync_IsIdempotent(t *testing.T) {
	seasons := memory.NewSeasonRepository()
	svc := NewLeagueService(seasons)
	ctx := context.Background()

	if _, err := svc.ResetSync(ctx); err != nil {
		t.Fatalf("first reset sync: %v", err)
	}

	statuses, err := svc.ResetSync(ctx)
	if err != nil {
		t.Fatalf("second reset sync: %v", err)
	}
	for _, ts := range statuses {
		if ts.Created {
			t.Fatalf("expected no new season created on second call for %s", ts.Tier)
		}
	}
}

func TestLeagueService_Table_NoActiveSeasonIsNotFound(t *testing.T) {
	svc := NewLeagueService(memory.NewSeasonRepository())
	_, err := svc.Table(context.Background(), seasondomain.TierChampionship)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLeagueService_Table_SortsByPointsThenGoalDifference(t *testing.T) {
	seasons := memory.NewSeasonRepository()
	svc := NewLeagueService(seasons)
	ctx := context.Background()

	if _, err := svc.ResetSync(ctx); err != nil {
		t.Fatalf("reset sync: %v", err)
	}
	active, ok, err := seasons.GetActiveSeason(ctx, seasondomain.TierChampionship)
	if err != nil || !ok {
		t.Fatalf("expected active championship season, ok=%v err=%v", ok, err)
	}

	mustUpsertStandings(t, seasons, active.ID, "club-a", 10, 5)
	mustUpsertStandings(t, seasons, active.ID, "club-b", 12, 1)
	mustUpsertStandings(t, seasons, active.ID, "club-c", 12, 4)

	table, err := svc.Table(ctx, seasondomain.TierChampionship)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	if table[0].ClubID != "club-c" {
		t.Fatalf("expected club-c first (same points, better GD), got %s", table[0].ClubID)
	}
	if table[1].ClubID != "club-b" {
		t.Fatalf("expected club-b second, got %s", table[1].ClubID)
	}
	if table[2].ClubID != "club-a" {
		t.Fatalf("expected club-a last, got %s", table[2].ClubID)
	}
}

func mustUpsertStandings(t *testing.T, seasons *memory.SeasonRepository, seasonID, clubID string, points, goalDiff int) {
	t.Helper()
	err := seasons.UpsertTeamSeason(context.Background(), seasondomain.TeamSeason{
		SeasonID:       seasonID,
		ClubID:         clubID,
		Points:         points,
		GoalDifference: goalDiff,
	})
	if err != nil {
		t.Fatalf("upsert team season %s: %v", clubID, err)
	}
}
