package usecase

import (
	"context"
	"errors"
	"testing"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
)

func TestLeaderboardService_GlobalLeaderboard_RequiresCallerID(t *testing.T) {
	svc := NewLeaderboardService(memory.NewPlayerRepository())
	_, err := svc.GlobalLeaderboard(context.Background(), "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestLeaderboardService_GlobalLeaderboard_InitializesCallerRow(t *testing.T) {
	players := memory.NewPlayerRepository()
	svc := NewLeaderboardService(players)
	ctx := context.Background()

	ranked, err := svc.GlobalLeaderboard(ctx, "caller-1")
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked row for the newly-initialized caller, got %d", len(ranked))
	}
	if !ranked[0].IsCaller {
		t.Fatalf("expected caller row to be flagged IsCaller")
	}
}

func TestLeaderboardService_GlobalLeaderboard_RanksByCompletions(t *testing.T) {
	players := memory.NewPlayerRepository()
	svc := NewLeaderboardService(players)
	ctx := context.Background()

	if _, _, err := players.Create(ctx, playerdomain.Player{
		ID:            "p1",
		UserID:        "u1",
		CurrentLeague: playerdomain.LeagueTwo,
		CareerStatus:  playerdomain.StatusActive,
	}); err != nil {
		t.Fatalf("create player: %v", err)
	}
	if _, _, err := players.CompleteCareer(ctx, "p1"); err != nil {
		t.Fatalf("complete career: %v", err)
	}

	ranked, err := svc.GlobalLeaderboard(ctx, "u2")
	if err != nil {
		t.Fatalf("global leaderboard: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked rows (u1 with a completion, u2 the caller), got %d", len(ranked))
	}
	if ranked[0].UserID != "u1" {
		t.Fatalf("expected u1 to rank first with a completion, got %s", ranked[0].UserID)
	}
}
