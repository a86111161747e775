package usecase

import (
	"context"
	"fmt"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
)

type PlayerService struct {
	players playerdomain.Repository
}

func NewPlayerService(players playerdomain.Repository) *PlayerService {
	return &PlayerService{players: players}
}

type CreatePlayerInput struct {
	PlayerID      string
	UserID        string
	DisplayName   string
	OverallRating *int
	CurrentLeague *string
}

// CreatePlayer is an idempotent insert: on conflict it preserves the
// existing row and optionally refreshes display_name.
func (s *PlayerService) CreatePlayer(ctx context.Context, in CreatePlayerInput) (playerdomain.Player, error) {
	if in.PlayerID == "" {
		return playerdomain.Player{}, fmt.Errorf("%w: player_id is required", ErrValidation)
	}
	if in.UserID == "" {
		return playerdomain.Player{}, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	rating := 60
	if in.OverallRating != nil {
		rating = *in.OverallRating
	}

	league := playerdomain.LeagueTwo
	if in.CurrentLeague != nil {
		l, err := playerdomain.ValidateLeagueField(*in.CurrentLeague)
		if err != nil {
			return playerdomain.Player{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		league = l
	}

	p, _, err := s.players.Create(ctx, playerdomain.Player{
		ID:            in.PlayerID,
		UserID:        in.UserID,
		DisplayName:   in.DisplayName,
		OverallRating: rating,
		CurrentLeague: league,
		CareerStatus:  playerdomain.StatusActive,
	})
	if err != nil {
		return playerdomain.Player{}, fmt.Errorf("create player: %w", err)
	}

	if err := s.players.UpsertCoachStats(ctx, in.UserID, in.DisplayName); err != nil {
		return playerdomain.Player{}, fmt.Errorf("upsert coach stats: %w", err)
	}

	return p, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, playerID, requestingUserID string) (playerdomain.Player, error) {
	p, ok, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return playerdomain.Player{}, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return playerdomain.Player{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
	}
	if p.UserID != requestingUserID {
		return playerdomain.Player{}, fmt.Errorf("%w: player %s is not owned by caller", ErrForbidden, playerID)
	}
	return p, nil
}

type UpdatePlayerProgressInput struct {
	PlayerID      string
	OverallRating *int
	CurrentLeague *string
}

// UpdatePlayerProgress updates only when career_status is active; silently
// no-ops (returns nil, nil) for completed players.
func (s *PlayerService) UpdatePlayerProgress(ctx context.Context, in UpdatePlayerProgressInput) (*playerdomain.Player, error) {
	if in.PlayerID == "" {
		return nil, fmt.Errorf("%w: player_id is required", ErrValidation)
	}
	if in.OverallRating == nil && in.CurrentLeague == nil {
		return nil, fmt.Errorf("%w: at least one of overall_rating or current_league is required", ErrValidation)
	}

	var league *playerdomain.League
	if in.CurrentLeague != nil {
		l, err := playerdomain.ValidateLeagueField(*in.CurrentLeague)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		league = &l
	}

	existing, ok, err := s.players.GetByID(ctx, in.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, in.PlayerID)
	}
	if !existing.IsActive() {
		return nil, nil
	}

	updated, _, err := s.players.UpdateProgress(ctx, in.PlayerID, in.OverallRating, league)
	if err != nil {
		return nil, fmt.Errorf("update player progress: %w", err)
	}
	return &updated, nil
}

type CompleteCareerResult struct {
	Player           playerdomain.Player
	AlreadyCompleted bool
	DaysToPremier    int
}

// CompletePlayerCareer runs the keystone atomic completion pipeline. The
// repository implementation owns the whole transaction, including the
// squad-points award (step 6), since that step only ever needs to happen
// inside the same atomic scope as the completion itself — no call site in
// this system (sweep, HTTP) ever needs to compose it with an outer
// transaction, so the interface does not expose one.
func (s *PlayerService) CompletePlayerCareer(ctx context.Context, playerID, requestingUserID string) (CompleteCareerResult, error) {
	if requestingUserID != "" {
		p, ok, err := s.players.GetByID(ctx, playerID)
		if err != nil {
			return CompleteCareerResult{}, fmt.Errorf("get player: %w", err)
		}
		if !ok {
			return CompleteCareerResult{}, fmt.Errorf("%w: player %s", ErrNotFound, playerID)
		}
		if p.UserID != requestingUserID {
			return CompleteCareerResult{}, fmt.Errorf("%w: player %s is not owned by caller", ErrForbidden, playerID)
		}
	}

	completion, alreadyCompleted, err := s.players.CompleteCareer(ctx, playerID)
	if err != nil {
		return CompleteCareerResult{}, fmt.Errorf("complete player career: %w", err)
	}

	updated, ok, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return CompleteCareerResult{}, fmt.Errorf("reload player after completion: %w", err)
	}
	if !ok {
		return CompleteCareerResult{}, fmt.Errorf("%w: player %s vanished after completion", ErrInfra, playerID)
	}

	return CompleteCareerResult{
		Player:           updated,
		AlreadyCompleted: alreadyCompleted,
		DaysToPremier:    completion.DaysToPremier,
	}, nil
}
