package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/panjf2000/ants/v2"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
	"github.com/riskibarqy/football-brain/internal/platform/retry"
)

// Poisson parameters for goal simulation.
const (
	homeGoalLambda = 1.45
	awayGoalLambda = 1.15
	goalCap        = 7
)

// matchdayWriteWorkers bounds how many fixture/team-season writes a single
// tier's matchday can have in flight at once.
const matchdayWriteWorkers = 4

type TierOutcome string

const (
	TierOK                TierOutcome = "ok"
	TierAlreadyPlayed     TierOutcome = "alreadyPlayed"
	TierNewSeasonCreated  TierOutcome = "newSeasonCreated"
	TierAborted           TierOutcome = "aborted"
	TierError             TierOutcome = "error"
	TierSkipped           TierOutcome = "skipped"
)

type TierResult struct {
	Tier     seasondomain.Tier `json:"tier"`
	Outcome  TierOutcome       `json:"outcome"`
	Matchday int               `json:"matchday"`
	Message  string            `json:"message,omitempty"`
}

type SimulateDayResult struct {
	Tiers     []TierResult `json:"tiers"`
	AllOK     bool         `json:"all_ok"`
}

type MatchdayService struct {
	seasons     seasondomain.Repository
	retryConfig retry.Config
	rngSource   func() float64
	logger      *logging.Logger
}

func NewMatchdayService(seasons seasondomain.Repository, logger *logging.Logger) *MatchdayService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchdayService{
		seasons:     seasons,
		retryConfig: retry.DefaultConfig(),
		rngSource:   rand.Float64,
		logger:      logger,
	}
}

// SimulateDay advances every tier by one matchday. Each tier's failure is
// independent and contributes to a partial (207) response rather than
// aborting the whole request.
func (s *MatchdayService) SimulateDay(ctx context.Context) SimulateDayResult {
	result := SimulateDayResult{AllOK: true}
	for _, tier := range seasondomain.AllTiers {
		tr := s.simulateTier(ctx, tier)
		if tr.Outcome != TierOK && tr.Outcome != TierAlreadyPlayed && tr.Outcome != TierNewSeasonCreated {
			result.AllOK = false
		}
		result.Tiers = append(result.Tiers, tr)
	}
	return result
}

func (s *MatchdayService) simulateTier(ctx context.Context, tier seasondomain.Tier) TierResult {
	activeSeason, ok, err := s.seasons.GetActiveSeason(ctx, tier)
	if err != nil {
		return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
	}
	if !ok {
		created, err := s.seasons.CreateSeason(ctx, seasondomain.Season{
			EFLTier:         tier,
			CurrentMatchday: 1,
			TotalMatchdays:  seasondomain.TotalMatchdays,
			Status:          seasondomain.StatusActive,
		})
		if err != nil {
			return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
		}
		if _, err := s.seasons.GetOrCreateProgress(ctx, created.ID); err != nil {
			return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
		}
		return TierResult{Tier: tier, Outcome: TierNewSeasonCreated, Matchday: 1}
	}

	progress, err := s.seasons.GetOrCreateProgress(ctx, activeSeason.ID)
	if err != nil {
		return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
	}
	matchday := progress.CurrentMatchday
	if matchday < 1 {
		return TierResult{Tier: tier, Outcome: TierError, Message: "invalid current_matchday"}
	}

	if matchday > activeSeason.TotalMatchdays {
		activeSeason.Status = seasondomain.StatusCompleted
		if err := s.seasons.UpdateSeason(ctx, activeSeason); err != nil {
			return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
		}
		return TierResult{Tier: tier, Outcome: TierSkipped, Matchday: matchday, Message: "season completed"}
	}

	fixtures, err := s.seasons.ListFixtures(ctx, activeSeason.ID, matchday)
	if err != nil {
		return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
	}

	if len(fixtures) == 0 {
		generated, err := s.generateMatchday(ctx, activeSeason, matchday)
		if err != nil {
			return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
		}
		fixtures = generated
	}

	var upcoming, played []seasondomain.Fixture
	for _, f := range fixtures {
		if isPlayed(f) {
			played = append(played, f)
		} else {
			upcoming = append(upcoming, f)
		}
	}

	if len(played) == 12 && len(upcoming) == 0 {
		if err := s.advanceCounters(ctx, &activeSeason, progress, matchday+1); err != nil {
			return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
		}
		return TierResult{Tier: tier, Outcome: TierAlreadyPlayed, Matchday: matchday}
	}

	if len(upcoming) != 12 {
		return TierResult{Tier: tier, Outcome: TierAborted, Matchday: matchday,
			Message: fmt.Sprintf("expected 12 upcoming fixtures, found %d", len(upcoming))}
	}

	deltas := map[string]*seasondomain.TeamSeason{}
	if err := s.writeFixtureResults(ctx, tier, upcoming, deltas); err != nil {
		return TierResult{Tier: tier, Outcome: TierAborted, Matchday: matchday, Message: err.Error()}
	}

	verify, err := s.seasons.ListFixtures(ctx, activeSeason.ID, matchday)
	if err != nil {
		return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
	}
	playedCount := 0
	for _, f := range verify {
		if isPlayed(f) {
			playedCount++
		}
	}
	if playedCount < 12 {
		return TierResult{Tier: tier, Outcome: TierAborted, Matchday: matchday,
			Message: fmt.Sprintf("post-write verification found %d played fixtures", playedCount)}
	}

	if err := s.writeTeamSeasons(ctx, activeSeason.ID, deltas); err != nil {
		return TierResult{Tier: tier, Outcome: TierAborted, Matchday: matchday, Message: err.Error()}
	}

	if err := s.advanceCounters(ctx, &activeSeason, progress, matchday+1); err != nil {
		return TierResult{Tier: tier, Outcome: TierError, Message: err.Error()}
	}

	return TierResult{Tier: tier, Outcome: TierOK, Matchday: matchday}
}

// writeFixtureResults fans the matchday's fixture writes out across a
// bounded pool, each draw-and-write independent of the others, then folds
// the standings delta for every successfully written fixture into deltas.
func (s *MatchdayService) writeFixtureResults(ctx context.Context, tier seasondomain.Tier, upcoming []seasondomain.Fixture, deltas map[string]*seasondomain.TeamSeason) error {
	pool, err := ants.NewPool(matchdayWriteWorkers)
	if err != nil {
		return fmt.Errorf("create fixture write pool: %w", err)
	}
	defer pool.Release()

	var (
		workers  sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, f := range upcoming {
		f := f
		homeGoals := s.drawGoals(homeGoalLambda)
		awayGoals := s.drawGoals(awayGoalLambda)

		workers.Add(1)
		submitErr := pool.Submit(func() {
			defer workers.Done()

			writeErr := retry.Do(ctx, s.retryConfig, func(ctx context.Context) error {
				return s.seasons.SetFixtureResult(ctx, f.ID, homeGoals, awayGoals)
			})
			if writeErr == nil {
				writeErr = retry.Throttle(ctx, s.retryConfig)
			}

			mu.Lock()
			defer mu.Unlock()
			if writeErr != nil {
				s.logger.ErrorContext(ctx, "matchday: fixture write failed", "tier", tier, "fixture_id", f.ID, "error", writeErr)
				if firstErr == nil {
					firstErr = writeErr
				}
				return
			}
			applyDelta(deltas, f.HomeClubID, homeGoals, awayGoals)
			applyDelta(deltas, f.AwayClubID, awayGoals, homeGoals)
		})
		if submitErr != nil {
			workers.Done()
			return fmt.Errorf("submit fixture write: %w", submitErr)
		}
	}

	workers.Wait()
	return firstErr
}

// writeTeamSeasons fans the per-club standings upserts for one matchday out
// across a bounded pool; each club's read-modify-write is independent.
func (s *MatchdayService) writeTeamSeasons(ctx context.Context, seasonID string, deltas map[string]*seasondomain.TeamSeason) error {
	pool, err := ants.NewPool(matchdayWriteWorkers)
	if err != nil {
		return fmt.Errorf("create team season write pool: %w", err)
	}
	defer pool.Release()

	var (
		workers  sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for clubID, delta := range deltas {
		clubID, delta := clubID, delta

		workers.Add(1)
		submitErr := pool.Submit(func() {
			defer workers.Done()

			existing, ok, err := s.seasons.GetTeamSeason(ctx, seasonID, clubID)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("get team season: %w", err)
				}
				mu.Unlock()
				return
			}
			if !ok {
				existing = seasondomain.TeamSeason{SeasonID: seasonID, ClubID: clubID}
			}
			existing.Played += delta.Played
			existing.Won += delta.Won
			existing.Drawn += delta.Drawn
			existing.Lost += delta.Lost
			existing.GoalsFor += delta.GoalsFor
			existing.GoalsAgainst += delta.GoalsAgainst
			existing.GoalDifference = existing.GoalsFor - existing.GoalsAgainst
			existing.Points += delta.Points

			writeErr := retry.Do(ctx, s.retryConfig, func(ctx context.Context) error {
				return s.seasons.UpsertTeamSeason(ctx, existing)
			})

			mu.Lock()
			defer mu.Unlock()
			if writeErr != nil && firstErr == nil {
				firstErr = writeErr
			}
		})
		if submitErr != nil {
			workers.Done()
			return fmt.Errorf("submit team season write: %w", submitErr)
		}
	}

	workers.Wait()
	return firstErr
}

func (s *MatchdayService) generateMatchday(ctx context.Context, se seasondomain.Season, matchday int) ([]seasondomain.Fixture, error) {
	clubs, err := s.seasons.Clubs(ctx, se.EFLTier)
	if err != nil {
		return nil, fmt.Errorf("load clubs: %w", err)
	}
	schedule := generateRoundRobin(clubs)
	if matchday < 1 || matchday > len(schedule) {
		return nil, fmt.Errorf("matchday %d out of range for %d-round schedule", matchday, len(schedule))
	}
	fixtures := fixturesForMatchday(se.ID, se.EFLTier, matchday, schedule[matchday-1])

	err = retry.Do(ctx, s.retryConfig, func(ctx context.Context) error {
		return s.seasons.InsertFixtures(ctx, fixtures)
	})
	if err != nil {
		return nil, fmt.Errorf("insert generated fixtures: %w", err)
	}
	return s.seasons.ListFixtures(ctx, se.ID, matchday)
}

func (s *MatchdayService) advanceCounters(ctx context.Context, se *seasondomain.Season, progress seasondomain.Progress, next int) error {
	if err := s.seasons.SetProgress(ctx, se.ID, next); err != nil {
		return fmt.Errorf("advance season progress: %w", err)
	}
	se.CurrentMatchday = next
	if err := s.seasons.UpdateSeason(ctx, *se); err != nil {
		return fmt.Errorf("advance season counter: %w", err)
	}
	return nil
}

// isPlayed classifies a fixture without relying on a specific "unplayed"
// string value: played if played_at is set or goals are recorded or status
// says PLAYED.
func isPlayed(f seasondomain.Fixture) bool {
	return f.PlayedAt != nil || (f.HomeGoals != nil && f.AwayGoals != nil) || f.Status == seasondomain.FixturePlayed
}

func applyDelta(deltas map[string]*seasondomain.TeamSeason, clubID string, goalsFor, goalsAgainst int) {
	d, ok := deltas[clubID]
	if !ok {
		d = &seasondomain.TeamSeason{}
		deltas[clubID] = d
	}
	d.ApplyResult(goalsFor, goalsAgainst)
}

// drawGoals samples a Poisson(lambda)-distributed goal count via Knuth's
// algorithm, capped at goalCap.
func (s *MatchdayService) drawGoals(lambda float64) int {
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= s.rngSource()
		if p <= l {
			break
		}
	}
	goals := k - 1
	if goals > goalCap {
		goals = goalCap
	}
	return goals
}
