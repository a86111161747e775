package usecase

import (
	"context"
	"errors"
	"testing"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
)

func TestPlayerService_CreatePlayer_Defaults(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerRepository())

	p, err := svc.CreatePlayer(context.Background(), CreatePlayerInput{
		PlayerID: "p1",
		UserID:   "u1",
	})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	if p.OverallRating != 60 {
		t.Fatalf("expected default rating 60, got %d", p.OverallRating)
	}
	if p.CurrentLeague != playerdomain.LeagueTwo {
		t.Fatalf("expected default league_two, got %s", p.CurrentLeague)
	}
	if p.CareerStatus != playerdomain.StatusActive {
		t.Fatalf("expected active status, got %s", p.CareerStatus)
	}
}

func TestPlayerService_CreatePlayer_Idempotent(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	first, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1", DisplayName: "Alice"})
	if err != nil {
		t.Fatalf("create player: %v", err)
	}

	second, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1", DisplayName: "Alice Renamed"})
	if err != nil {
		t.Fatalf("create player (conflict): %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same player id on conflict, got %s vs %s", second.ID, first.ID)
	}
	if second.DisplayName != "Alice Renamed" {
		t.Fatalf("expected display name refreshed on conflict, got %q", second.DisplayName)
	}
}

func TestPlayerService_CreatePlayer_Validation(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerRepository())
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{UserID: "u1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing player_id, got %v", err)
	}
	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing user_id, got %v", err)
	}

	badLeague := "premier-league"
	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1", CurrentLeague: &badLeague}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for invalid league, got %v", err)
	}
}

func TestPlayerService_GetPlayer_OwnershipEnforced(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "owner"}); err != nil {
		t.Fatalf("create player: %v", err)
	}

	if _, err := svc.GetPlayer(ctx, "p1", "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	p, err := svc.GetPlayer(ctx, "p1", "owner")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if p.ID != "p1" {
		t.Fatalf("unexpected player id: %s", p.ID)
	}
}

func TestPlayerService_GetPlayer_NotFound(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerRepository())
	if _, err := svc.GetPlayer(context.Background(), "missing", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPlayerService_UpdatePlayerProgress_RequiresAtLeastOneField(t *testing.T) {
	svc := NewPlayerService(memory.NewPlayerRepository())
	_, err := svc.UpdatePlayerProgress(context.Background(), UpdatePlayerProgressInput{PlayerID: "p1"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPlayerService_UpdatePlayerProgress_NoopOnCompletedCareer(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1"}); err != nil {
		t.Fatalf("create player: %v", err)
	}
	if _, err := svc.CompletePlayerCareer(ctx, "p1", "u1"); err != nil {
		t.Fatalf("complete career: %v", err)
	}

	rating := 80
	result, err := svc.UpdatePlayerProgress(ctx, UpdatePlayerProgressInput{PlayerID: "p1", OverallRating: &rating})
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no-op (nil) result for completed player, got %+v", result)
	}
}

func TestPlayerService_UpdatePlayerProgress_UpdatesActivePlayer(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1"}); err != nil {
		t.Fatalf("create player: %v", err)
	}

	rating := 75
	league := string(playerdomain.LeagueOne)
	result, err := svc.UpdatePlayerProgress(ctx, UpdatePlayerProgressInput{PlayerID: "p1", OverallRating: &rating, CurrentLeague: &league})
	if err != nil {
		t.Fatalf("update progress: %v", err)
	}
	if result == nil {
		t.Fatalf("expected non-nil result")
	}
	if result.OverallRating != 75 {
		t.Fatalf("expected rating 75, got %d", result.OverallRating)
	}
	if result.CurrentLeague != playerdomain.LeagueOne {
		t.Fatalf("expected league_one, got %s", result.CurrentLeague)
	}
}

func TestPlayerService_CompletePlayerCareer_Idempotent(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "u1"}); err != nil {
		t.Fatalf("create player: %v", err)
	}

	first, err := svc.CompletePlayerCareer(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("complete career: %v", err)
	}
	if first.AlreadyCompleted {
		t.Fatalf("expected first completion to report AlreadyCompleted=false")
	}

	second, err := svc.CompletePlayerCareer(ctx, "p1", "u1")
	if err != nil {
		t.Fatalf("complete career (repeat): %v", err)
	}
	if !second.AlreadyCompleted {
		t.Fatalf("expected repeat completion to report AlreadyCompleted=true")
	}
	if second.Player.CareerStatus != playerdomain.StatusCompleted {
		t.Fatalf("expected completed status, got %s", second.Player.CareerStatus)
	}
}

func TestPlayerService_CompletePlayerCareer_OwnershipEnforced(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "owner"}); err != nil {
		t.Fatalf("create player: %v", err)
	}

	if _, err := svc.CompletePlayerCareer(ctx, "p1", "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPlayerService_CompletePlayerCareer_ServerOriginatedSkipsOwnership(t *testing.T) {
	repo := memory.NewPlayerRepository()
	svc := NewPlayerService(repo)
	ctx := context.Background()

	if _, err := svc.CreatePlayer(ctx, CreatePlayerInput{PlayerID: "p1", UserID: "owner"}); err != nil {
		t.Fatalf("create player: %v", err)
	}

	// empty requestingUserID means the call originated from the sweep/cron
	// path, not an end-user request, so ownership is not enforced.
	if _, err := svc.CompletePlayerCareer(ctx, "p1", ""); err != nil {
		t.Fatalf("expected sweep-originated completion to succeed, got %v", err)
	}
}
