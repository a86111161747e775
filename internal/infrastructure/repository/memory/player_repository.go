// Package memory provides in-process repository fakes for usecase tests,
// kept next to their postgres counterparts.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
)

type PlayerRepository struct {
	mu          sync.Mutex
	players     map[string]playerdomain.Player
	completions map[string]playerdomain.CareerCompletion
	coachStats  map[string]playerdomain.CoachStats
	squads      *SquadRepository // optional, used to credit squads on completion like the postgres impl does
	now         func() time.Time
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		players:     make(map[string]playerdomain.Player),
		completions: make(map[string]playerdomain.CareerCompletion),
		coachStats:  make(map[string]playerdomain.CoachStats),
		now:         time.Now,
	}
}

// WithSquadRepository wires the squad repository this fake should credit on
// career completion, mirroring the postgres repository's direct squad writes.
func (r *PlayerRepository) WithSquadRepository(squads *SquadRepository) *PlayerRepository {
	r.squads = squads
	return r
}

func (r *PlayerRepository) Create(ctx context.Context, p playerdomain.Player) (playerdomain.Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.players[p.ID]; ok {
		if p.DisplayName != "" {
			existing.DisplayName = p.DisplayName
		}
		r.players[p.ID] = existing
		return existing, false, nil
	}
	p.CareerStartedAt = r.now()
	p.CreatedAt = p.CareerStartedAt
	p.UpdatedAt = p.CareerStartedAt
	r.players[p.ID] = p
	return p, false, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (playerdomain.Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	return p, ok, nil
}

func (r *PlayerRepository) UpdateProgress(ctx context.Context, playerID string, rating *int, league *playerdomain.League) (playerdomain.Player, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[playerID]
	if !ok || p.CareerStatus != playerdomain.StatusActive {
		return playerdomain.Player{}, false, nil
	}
	if rating != nil {
		p.OverallRating = *rating
	}
	if league != nil {
		p.CurrentLeague = *league
	}
	p.UpdatedAt = r.now()
	r.players[playerID] = p
	return p, true, nil
}

func (r *PlayerRepository) CompleteCareer(ctx context.Context, playerID string) (playerdomain.CareerCompletion, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[playerID]
	if !ok {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("player not found")
	}
	if existing, ok := r.completions[playerID]; ok {
		return existing, true, nil
	}

	now := r.now()
	days := playerdomain.DaysToPremier(p.CareerStartedAt, now)
	p.CareerStatus = playerdomain.StatusCompleted
	p.CareerCompletedAt = &now
	p.UpdatedAt = now
	r.players[playerID] = p

	completion := playerdomain.CareerCompletion{ID: playerID, PlayerID: playerID, UserID: p.UserID, DaysToPremier: days, CompletedAt: now}
	r.completions[playerID] = completion

	r.upsertCoachStatsLocked(p.UserID, "", &days)

	if r.squads != nil {
		r.squads.creditActiveSquad(p.UserID)
	}

	return completion, false, nil
}

func (r *PlayerRepository) ListActive(ctx context.Context) ([]playerdomain.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]playerdomain.Player, 0)
	for _, p := range r.players {
		if p.CareerStatus == playerdomain.StatusActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PlayerRepository) PromoteLeague(ctx context.Context, fromLeague, toLeague playerdomain.League, minRating int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.players {
		if p.CareerStatus == playerdomain.StatusActive && p.CurrentLeague == fromLeague && p.OverallRating >= minRating {
			p.CurrentLeague = toLeague
			p.UpdatedAt = r.now()
			r.players[id] = p
			n++
		}
	}
	return n, nil
}

func (r *PlayerRepository) UpsertCoachStats(ctx context.Context, userID, displayName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertCoachStatsLocked(userID, displayName, nil)
	return nil
}

func (r *PlayerRepository) upsertCoachStatsLocked(userID, displayName string, completedDays *int) {
	cs, ok := r.coachStats[userID]
	if !ok {
		cs = playerdomain.CoachStats{UserID: userID}
	}
	if displayName != "" {
		cs.DisplayName = displayName
	}
	if completedDays != nil {
		d := *completedDays
		cs.CompletionsCount++
		cs.TotalDaysSum += d
		avg := (cs.TotalDaysSum + cs.CompletionsCount/2) / cs.CompletionsCount
		cs.AvgDaysToPremier = &avg
		if cs.BestDaysToPremier == nil || d < *cs.BestDaysToPremier {
			best := d
			cs.BestDaysToPremier = &best
		}
	}
	cs.UpdatedAt = r.now()
	r.coachStats[userID] = cs
}

func (r *PlayerRepository) GetCoachStats(ctx context.Context, userID string) (playerdomain.CoachStats, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cs, ok := r.coachStats[userID]
	return cs, ok, nil
}

func (r *PlayerRepository) GlobalLeaderboard(ctx context.Context, callerUserID string) ([]playerdomain.RankedCoach, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]playerdomain.CoachStats, 0, len(r.coachStats))
	for _, cs := range r.coachStats {
		all = append(all, cs)
	}
	sort.Slice(all, func(i, j int) bool { return lessCoachStats(all[i], all[j]) })

	out := make([]playerdomain.RankedCoach, 0, len(all))
	rank := 0
	for i, cs := range all {
		if i == 0 || lessCoachStats(all[i-1], cs) {
			rank = i + 1
		}
		if rank > 100 && cs.UserID != callerUserID {
			continue
		}
		out = append(out, playerdomain.RankedCoach{
			UserID: cs.UserID, DisplayName: cs.DisplayName, Rank: rank,
			CompletionsCount: cs.CompletionsCount, BestDaysToPremier: cs.BestDaysToPremier,
			AvgDaysToPremier: cs.AvgDaysToPremier, IsCaller: cs.UserID == callerUserID,
		})
	}
	return out, nil
}

func lessCoachStats(a, b playerdomain.CoachStats) bool {
	if a.CompletionsCount != b.CompletionsCount {
		return a.CompletionsCount > b.CompletionsCount
	}
	if ok, less := compareNullableIntMem(a.BestDaysToPremier, b.BestDaysToPremier); ok {
		return less
	}
	if ok, less := compareNullableIntMem(a.AvgDaysToPremier, b.AvgDaysToPremier); ok {
		return less
	}
	return a.UserID < b.UserID
}

func compareNullableIntMem(a, b *int) (decided bool, less bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return true, false
	case b == nil:
		return true, true
	case *a == *b:
		return false, false
	default:
		return true, *a < *b
	}
}
