package usecase

import (
	"context"
	"fmt"
	"sort"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
)

// LeagueService answers read queries over season/fixture/standings state and
// owns the idempotent bootstrap operation that ensures every tier has an
// active season to simulate against.
type LeagueService struct {
	seasons seasondomain.Repository
}

func NewLeagueService(seasons seasondomain.Repository) *LeagueService {
	return &LeagueService{seasons: seasons}
}

type TierStatus struct {
	Tier            seasondomain.Tier   `json:"tier"`
	SeasonID        string              `json:"season_id,omitempty"`
	Status          seasondomain.Status `json:"status,omitempty"`
	CurrentMatchday int                 `json:"current_matchday,omitempty"`
	TotalMatchdays  int                 `json:"total_matchdays,omitempty"`
	Created         bool                `json:"created"`
}

// ResetSync ensures every tier has an active season and a progress cursor,
// creating whatever is missing without touching existing fixtures or
// standings. It is the idempotent bootstrap hook run after a fresh deploy
// or a manual operator intervention.
func (s *LeagueService) ResetSync(ctx context.Context) ([]TierStatus, error) {
	statuses := make([]TierStatus, 0, len(seasondomain.AllTiers))
	for _, tier := range seasondomain.AllTiers {
		active, ok, err := s.seasons.GetActiveSeason(ctx, tier)
		if err != nil {
			return nil, fmt.Errorf("%w: load active season for %s: %s", ErrInfra, tier, err.Error())
		}
		created := false
		if !ok {
			active, err = s.seasons.CreateSeason(ctx, seasondomain.Season{
				EFLTier:         tier,
				CurrentMatchday: 1,
				TotalMatchdays:  seasondomain.TotalMatchdays,
				Status:          seasondomain.StatusActive,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: create season for %s: %s", ErrInfra, tier, err.Error())
			}
			created = true
		}
		if _, err := s.seasons.GetOrCreateProgress(ctx, active.ID); err != nil {
			return nil, fmt.Errorf("%w: ensure progress for %s: %s", ErrInfra, tier, err.Error())
		}

		statuses = append(statuses, TierStatus{
			Tier:            tier,
			SeasonID:        active.ID,
			Status:          active.Status,
			CurrentMatchday: active.CurrentMatchday,
			TotalMatchdays:  active.TotalMatchdays,
			Created:         created,
		})
	}
	return statuses, nil
}

// Status reports the current season/matchday cursor for every tier.
func (s *LeagueService) Status(ctx context.Context) ([]TierStatus, error) {
	statuses := make([]TierStatus, 0, len(seasondomain.AllTiers))
	for _, tier := range seasondomain.AllTiers {
		active, ok, err := s.seasons.GetActiveSeason(ctx, tier)
		if err != nil {
			return nil, fmt.Errorf("load active season for %s: %w", tier, err)
		}
		if !ok {
			statuses = append(statuses, TierStatus{Tier: tier})
			continue
		}
		statuses = append(statuses, TierStatus{
			Tier:            tier,
			SeasonID:        active.ID,
			Status:          active.Status,
			CurrentMatchday: active.CurrentMatchday,
			TotalMatchdays:  active.TotalMatchdays,
		})
	}
	return statuses, nil
}

func (s *LeagueService) resolveSeason(ctx context.Context, tier seasondomain.Tier) (seasondomain.Season, error) {
	active, ok, err := s.seasons.GetActiveSeason(ctx, tier)
	if err != nil {
		return seasondomain.Season{}, fmt.Errorf("load active season: %w", err)
	}
	if !ok {
		return seasondomain.Season{}, fmt.Errorf("%w: no active season for league %s", ErrNotFound, tier)
	}
	return active, nil
}

// Table returns the current standings for a tier, sorted points desc,
// goal_difference desc, goals_for desc, club_id asc.
func (s *LeagueService) Table(ctx context.Context, tier seasondomain.Tier) ([]seasondomain.TeamSeason, error) {
	active, err := s.resolveSeason(ctx, tier)
	if err != nil {
		return nil, err
	}
	rows, err := s.seasons.ListTeamSeasons(ctx, active.ID)
	if err != nil {
		return nil, fmt.Errorf("list team seasons: %w", err)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.ClubID < b.ClubID
	})
	return rows, nil
}

// Fixtures returns one matchday's fixtures for a tier; matchday<=0 means the
// tier's current matchday.
func (s *LeagueService) Fixtures(ctx context.Context, tier seasondomain.Tier, matchday int) ([]seasondomain.Fixture, error) {
	active, err := s.resolveSeason(ctx, tier)
	if err != nil {
		return nil, err
	}
	if matchday <= 0 {
		matchday = active.CurrentMatchday
	}
	rows, err := s.seasons.ListFixtures(ctx, active.ID, matchday)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	return rows, nil
}

// Results returns the played fixtures for a matchday (or the most recently
// completed matchday when matchday<=0).
func (s *LeagueService) Results(ctx context.Context, tier seasondomain.Tier, matchday int) ([]seasondomain.Fixture, error) {
	active, err := s.resolveSeason(ctx, tier)
	if err != nil {
		return nil, err
	}
	if matchday <= 0 {
		matchday = active.CurrentMatchday - 1
	}
	if matchday < 1 {
		return nil, nil
	}
	rows, err := s.seasons.ListFixtures(ctx, active.ID, matchday)
	if err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	played := make([]seasondomain.Fixture, 0, len(rows))
	for _, f := range rows {
		if isPlayed(f) {
			played = append(played, f)
		}
	}
	return played, nil
}
