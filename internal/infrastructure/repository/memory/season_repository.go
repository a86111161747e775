package memory

import (
	"fmt"
	"sort"
	"sync"

	"context"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
)

type SeasonRepository struct {
	mu        sync.Mutex
	seasons   map[string]seasondomain.Season
	progress  map[string]seasondomain.Progress
	fixtures  map[string]seasondomain.Fixture // keyed by fixture ID
	standings map[string]map[string]seasondomain.TeamSeason
	clubs     map[seasondomain.Tier][]string
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{
		seasons:   make(map[string]seasondomain.Season),
		progress:  make(map[string]seasondomain.Progress),
		fixtures:  make(map[string]seasondomain.Fixture),
		standings: make(map[string]map[string]seasondomain.TeamSeason),
		clubs:     make(map[seasondomain.Tier][]string),
	}
}

// SeedClubs installs the fixed club roster for a tier; tests call this
// instead of relying on the migration-seeded clubs table the postgres
// repository reads from.
func (r *SeasonRepository) SeedClubs(tier seasondomain.Tier, clubIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clubs[tier] = append([]string(nil), clubIDs...)
}

func (r *SeasonRepository) Clubs(ctx context.Context, tier seasondomain.Tier) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids, ok := r.clubs[tier]
	if !ok {
		ids = make([]string, 0, seasondomain.ClubsPerTier)
		for i := 1; i <= seasondomain.ClubsPerTier; i++ {
			ids = append(ids, fmt.Sprintf("%s-club-%02d", tier, i))
		}
		r.clubs[tier] = ids
	}
	return append([]string(nil), ids...), nil
}

func (r *SeasonRepository) GetActiveSeason(ctx context.Context, tier seasondomain.Tier) (seasondomain.Season, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seasons {
		if s.EFLTier == tier && s.Status == seasondomain.StatusActive {
			return s, true, nil
		}
	}
	return seasondomain.Season{}, false, nil
}

func (r *SeasonRepository) CreateSeason(ctx context.Context, s seasondomain.Season) (seasondomain.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seasons[s.ID] = s
	return s, nil
}

func (r *SeasonRepository) UpdateSeason(ctx context.Context, s seasondomain.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.seasons[s.ID]
	if !ok {
		return fmt.Errorf("season not found")
	}
	existing.CurrentMatchday = s.CurrentMatchday
	existing.FixturesGenerated = s.FixturesGenerated
	existing.Status = s.Status
	r.seasons[s.ID] = existing
	return nil
}

func (r *SeasonRepository) GetOrCreateProgress(ctx context.Context, seasonID string) (seasondomain.Progress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.progress[seasonID]
	if !ok {
		p = seasondomain.Progress{SeasonID: seasonID, CurrentMatchday: 1}
		r.progress[seasonID] = p
	}
	return p, nil
}

func (r *SeasonRepository) SetProgress(ctx context.Context, seasonID string, matchday int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[seasonID] = seasondomain.Progress{SeasonID: seasonID, CurrentMatchday: matchday}
	return nil
}

func (r *SeasonRepository) ListFixtures(ctx context.Context, seasonID string, matchday int) ([]seasondomain.Fixture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]seasondomain.Fixture, 0)
	for _, f := range r.fixtures {
		if f.SeasonID == seasonID && f.Matchday == matchday {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *SeasonRepository) InsertFixtures(ctx context.Context, fixtures []seasondomain.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range fixtures {
		if f.Status == "" {
			f.Status = seasondomain.FixtureUpcoming
		}
		r.fixtures[f.ID] = f
	}
	return nil
}

func (r *SeasonRepository) SetFixtureResult(ctx context.Context, fixtureID string, homeGoals, awayGoals int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("fixture not found")
	}
	f.HomeGoals = &homeGoals
	f.AwayGoals = &awayGoals
	f.Status = seasondomain.FixturePlayed
	r.fixtures[fixtureID] = f
	return nil
}

func (r *SeasonRepository) GetTeamSeason(ctx context.Context, seasonID, clubID string) (seasondomain.TeamSeason, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySeason, ok := r.standings[seasonID]
	if !ok {
		return seasondomain.TeamSeason{}, false, nil
	}
	t, ok := bySeason[clubID]
	return t, ok, nil
}

func (r *SeasonRepository) UpsertTeamSeason(ctx context.Context, t seasondomain.TeamSeason) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySeason, ok := r.standings[t.SeasonID]
	if !ok {
		bySeason = make(map[string]seasondomain.TeamSeason)
		r.standings[t.SeasonID] = bySeason
	}
	bySeason[t.ClubID] = t
	return nil
}

func (r *SeasonRepository) ListTeamSeasons(ctx context.Context, seasonID string) ([]seasondomain.TeamSeason, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bySeason := r.standings[seasonID]
	out := make([]seasondomain.TeamSeason, 0, len(bySeason))
	for _, t := range bySeason {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		if out[i].GoalsFor != out[j].GoalsFor {
			return out[i].GoalsFor > out[j].GoalsFor
		}
		return out[i].ClubID < out[j].ClubID
	})
	return out, nil
}
