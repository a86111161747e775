package usecase

import (
	"context"
	"fmt"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
)

type LeaderboardService struct {
	players playerdomain.Repository
}

func NewLeaderboardService(players playerdomain.Repository) *LeaderboardService {
	return &LeaderboardService{players: players}
}

// GlobalLeaderboard ranks every coach's completion stats. It upserts an
// empty CoachStats row for the caller when necessary (so their presence in
// the windowed ranking is durable) before ranking.
func (s *LeaderboardService) GlobalLeaderboard(ctx context.Context, callerUserID string) ([]playerdomain.RankedCoach, error) {
	if callerUserID == "" {
		return nil, fmt.Errorf("%w: caller user id is required", ErrValidation)
	}
	if _, ok, err := s.players.GetCoachStats(ctx, callerUserID); err != nil {
		return nil, fmt.Errorf("check caller coach stats: %w", err)
	} else if !ok {
		if err := s.players.UpsertCoachStats(ctx, callerUserID, ""); err != nil {
			return nil, fmt.Errorf("initialize caller coach stats: %w", err)
		}
	}

	rows, err := s.players.GlobalLeaderboard(ctx, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("load global leaderboard: %w", err)
	}
	return rows, nil
}
