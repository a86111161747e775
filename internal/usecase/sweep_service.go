package usecase

import (
	"context"
	"time"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	sweepdomain "github.com/riskibarqy/football-brain/internal/domain/sweep"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

// maxListed caps the promotions/skips lists returned in a sweep summary.
const maxListed = 100

type SweepService struct {
	sweep   sweepdomain.Repository
	players playerdomain.Repository
	now     func() time.Time
	logger  *logging.Logger
}

func NewSweepService(sweep sweepdomain.Repository, players playerdomain.Repository, logger *logging.Logger) *SweepService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SweepService{sweep: sweep, players: players, now: time.Now, logger: logger}
}

// Status reports the last recorded sweep run, for the public GET
// /api/sweep/status endpoint.
func (s *SweepService) Status(ctx context.Context) (sweepdomain.State, error) {
	return s.sweep.GetState(ctx)
}

// Run executes one sweep attempt end to end: the advisory-lock-held
// run/no-run decision is delegated to the repository, while classification,
// completion, and promotion all happen here, outside the lock.
func (s *SweepService) Run(ctx context.Context, force bool) (sweepdomain.Result, error) {
	today := sweepdomain.UTCDay(s.now())

	state, shouldRun, err := s.sweep.TryBeginRun(ctx, today, force)
	if err != nil {
		return sweepdomain.Result{}, err
	}
	if !shouldRun {
		return sweepdomain.Result{
			Ran:             false,
			AlreadyRanToday: state.LastSweepUTCDay == today,
			UTCDay:          today,
		}, nil
	}

	active, err := s.players.ListActive(ctx)
	if err != nil {
		return sweepdomain.Result{}, err
	}

	result := sweepdomain.Result{
		Ran:         true,
		UTCDay:      today,
		TotalActive: len(active),
	}

	type promotionTarget struct {
		from, to playerdomain.League
	}
	toComplete := make([]playerdomain.Player, 0)
	toPromote := map[promotionTarget][]playerdomain.Player{}

	for _, p := range active {
		switch p.CurrentLeague {
		case playerdomain.LeagueTwo:
			if p.OverallRating < sweepdomain.LeagueTwoToOneRating {
				s.recordSkip(&result, p)
				continue
			}
			target := promotionTarget{playerdomain.LeagueTwo, playerdomain.LeagueOne}
			toPromote[target] = append(toPromote[target], p)
		case playerdomain.LeagueOne:
			if p.OverallRating < sweepdomain.LeagueOneToChampRating {
				s.recordSkip(&result, p)
				continue
			}
			target := promotionTarget{playerdomain.LeagueOne, playerdomain.Championship}
			toPromote[target] = append(toPromote[target], p)
		case playerdomain.Championship:
			if p.OverallRating < sweepdomain.ChampionshipCompleteRating {
				s.recordSkip(&result, p)
				continue
			}
			toComplete = append(toComplete, p)
		default:
			s.recordSkip(&result, p)
		}
	}
	result.SkippedCount = len(active) - len(toComplete) - func() int {
		n := 0
		for _, ps := range toPromote {
			n += len(ps)
		}
		return n
	}()

	for _, p := range toComplete {
		completion, alreadyCompleted, err := s.players.CompleteCareer(ctx, p.ID)
		if err != nil {
			result.Errors = append(result.Errors, sweepdomain.ItemError{PlayerID: p.ID, Message: err.Error()})
			s.logger.ErrorContext(ctx, "sweep: complete career failed", "player_id", p.ID, "error", err)
			continue
		}
		result.CompletedCount++
		result.Completions = append(result.Completions, sweepdomain.CompletionSummary{
			PlayerID:         p.ID,
			UserID:           p.UserID,
			DaysToPremier:    completion.DaysToPremier,
			AlreadyCompleted: alreadyCompleted,
		})
	}

	for target, players := range toPromote {
		minRating := sweepdomain.LeagueTwoToOneRating
		if target.from == playerdomain.LeagueOne {
			minRating = sweepdomain.LeagueOneToChampRating
		}
		n, err := s.players.PromoteLeague(ctx, target.from, target.to, minRating)
		if err != nil {
			for _, p := range players {
				result.Errors = append(result.Errors, sweepdomain.ItemError{PlayerID: p.ID, Message: err.Error()})
			}
			s.logger.ErrorContext(ctx, "sweep: promotion batch failed",
				"from_league", target.from, "to_league", target.to, "error", err)
			continue
		}
		result.PromotedCount += n
		for _, p := range players {
			if len(result.Promotions) >= maxListed {
				break
			}
			result.Promotions = append(result.Promotions, sweepdomain.PromotionSummary{
				PlayerID:   p.ID,
				FromLeague: string(target.from),
				ToLeague:   string(target.to),
			})
		}
	}

	return result, nil
}

func (s *SweepService) recordSkip(result *sweepdomain.Result, p playerdomain.Player) {
	if len(result.Skips) >= maxListed {
		return
	}
	result.Skips = append(result.Skips, sweepdomain.PlayerSummary{
		PlayerID: p.ID,
		League:   string(p.CurrentLeague),
		Rating:   p.OverallRating,
	})
}
