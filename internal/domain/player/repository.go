package player

import "context"

// Repository describes player/career persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p Player) (Player, bool, error)
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	UpdateProgress(ctx context.Context, playerID string, rating *int, league *League) (Player, bool, error)

	// CompleteCareer runs the atomic completion pipeline in its own
	// transaction: lock the player row, compute days-to-premier,
	// mark completed, insert CareerCompletion, upsert CoachStats, and credit
	// the coach's active squad. Returns (_, true, nil) if the player was
	// already completed (including the race where a concurrent completer
	// wins the CareerCompletion unique constraint).
	CompleteCareer(ctx context.Context, playerID string) (CareerCompletion, bool, error)

	ListActive(ctx context.Context) ([]Player, error)
	// PromoteLeague moves every active player in fromLeague with rating>=threshold to toLeague.
	PromoteLeague(ctx context.Context, fromLeague, toLeague League, minRating int) (int, error)

	UpsertCoachStats(ctx context.Context, userID, displayName string) error
	GetCoachStats(ctx context.Context, userID string) (CoachStats, bool, error)

	// GlobalLeaderboard returns the top 100 coaches plus the caller's row,
	// via a single windowed query ranking all CoachStats rows.
	GlobalLeaderboard(ctx context.Context, callerUserID string) ([]RankedCoach, error)
}
