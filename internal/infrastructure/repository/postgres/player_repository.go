package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

type playerRow struct {
	ID                string     `db:"id"`
	UserID            string     `db:"user_id"`
	DisplayName       string     `db:"display_name"`
	OverallRating     int        `db:"overall_rating"`
	CurrentLeague     string     `db:"current_league"`
	CareerStatus      string     `db:"career_status"`
	CareerStartedAt   time.Time  `db:"career_started_at"`
	CareerCompletedAt *time.Time `db:"career_completed_at"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r playerRow) toDomain() playerdomain.Player {
	return playerdomain.Player{
		ID:                r.ID,
		UserID:            r.UserID,
		DisplayName:       r.DisplayName,
		OverallRating:     r.OverallRating,
		CurrentLeague:     playerdomain.League(r.CurrentLeague),
		CareerStatus:      playerdomain.CareerStatus(r.CareerStatus),
		CareerStartedAt:   r.CareerStartedAt,
		CareerCompletedAt: r.CareerCompletedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *PlayerRepository) Create(ctx context.Context, p playerdomain.Player) (playerdomain.Player, bool, error) {
	const query = `
INSERT INTO players (id, user_id, display_name, overall_rating, current_league, career_status, career_started_at)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (id) DO UPDATE SET
    display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE players.display_name END
RETURNING id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at`

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, p.ID, p.UserID, p.DisplayName, p.OverallRating, string(p.CurrentLeague), string(p.CareerStatus)); err != nil {
		return playerdomain.Player{}, false, fmt.Errorf("upsert player: %w", err)
	}
	return row.toDomain(), false, nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (playerdomain.Player, bool, error) {
	const query = `
SELECT id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
FROM players WHERE id = $1`

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, playerID); err != nil {
		if isNotFound(err) {
			return playerdomain.Player{}, false, nil
		}
		return playerdomain.Player{}, false, fmt.Errorf("get player: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) UpdateProgress(ctx context.Context, playerID string, rating *int, league *playerdomain.League) (playerdomain.Player, bool, error) {
	const query = `
UPDATE players
SET overall_rating = COALESCE($2, overall_rating),
    current_league  = COALESCE($3, current_league),
    updated_at      = now()
WHERE id = $1 AND career_status = 'active'
RETURNING id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at`

	var leagueStr *string
	if league != nil {
		s := string(*league)
		leagueStr = &s
	}

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, playerID, rating, leagueStr); err != nil {
		if isNotFound(err) {
			return playerdomain.Player{}, false, nil
		}
		return playerdomain.Player{}, false, fmt.Errorf("update player progress: %w", err)
	}
	return row.toDomain(), true, nil
}

// CompleteCareer runs the full career-completion pipeline in a single
// transaction, including the squad-points award: it reaches into the squad
// tables directly with SQL rather than through squad.Repository, since that
// dependency only exists to keep this step inside the same atomic scope as
// the completion, not to reuse squad business logic.
func (r *PlayerRepository) CompleteCareer(ctx context.Context, playerID string) (playerdomain.CareerCompletion, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row playerRow
	const lockQuery = `
SELECT id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
FROM players WHERE id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &row, lockQuery, playerID); err != nil {
		if isNotFound(err) {
			return playerdomain.CareerCompletion{}, false, fmt.Errorf("player not found")
		}
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("lock player: %w", err)
	}

	if row.CareerStatus == string(playerdomain.StatusCompleted) {
		var existing struct {
			DaysToPremier int       `db:"days_to_premier"`
			UserID        string    `db:"user_id"`
			CompletedAt   time.Time `db:"completed_at"`
		}
		if err := tx.GetContext(ctx, &existing, `SELECT days_to_premier, user_id, completed_at FROM career_completions WHERE player_id = $1`, playerID); err != nil {
			return playerdomain.CareerCompletion{}, true, nil
		}
		if err := tx.Commit(); err != nil {
			return playerdomain.CareerCompletion{}, false, fmt.Errorf("commit already-completed read: %w", err)
		}
		return playerdomain.CareerCompletion{PlayerID: playerID, UserID: existing.UserID, DaysToPremier: existing.DaysToPremier, CompletedAt: existing.CompletedAt}, true, nil
	}

	now := time.Now()
	days := playerdomain.DaysToPremier(row.CareerStartedAt, now)

	if _, err := tx.ExecContext(ctx, `UPDATE players SET career_status = 'completed', career_completed_at = $2, updated_at = $2 WHERE id = $1`, playerID, now); err != nil {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("mark player completed: %w", err)
	}

	var completionID string
	insertErr := tx.GetContext(ctx, &completionID, `
INSERT INTO career_completions (player_id, user_id, days_to_premier, completed_at)
VALUES ($1, $2, $3, $4)
RETURNING id`, playerID, row.UserID, days, now)
	if insertErr != nil {
		if isUniqueViolation(insertErr) {
			return playerdomain.CareerCompletion{}, true, nil
		}
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("insert career completion: %w", insertErr)
	}

	if err := upsertCoachStatsTx(ctx, tx, row.UserID, "", &days); err != nil {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("upsert coach stats: %w", err)
	}

	if err := creditActiveSquadTx(ctx, tx, row.UserID); err != nil {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("credit squad: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return playerdomain.CareerCompletion{}, false, fmt.Errorf("commit career completion: %w", err)
	}

	return playerdomain.CareerCompletion{ID: completionID, PlayerID: playerID, UserID: row.UserID, DaysToPremier: days, CompletedAt: now}, false, nil
}

func creditActiveSquadTx(ctx context.Context, tx *sqlx.Tx, userID string) error {
	var squadID string
	err := tx.GetContext(ctx, &squadID, `SELECT squad_id FROM squad_members WHERE user_id = $1 AND status = 'active' FOR UPDATE`, userID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("lookup active squad membership: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE coaching_squads SET total_points = total_points + 1, unspent_points = unspent_points + 1, updated_at = now() WHERE id = $1`, squadID); err != nil {
		return fmt.Errorf("credit squad points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE squad_members SET points_contributed = points_contributed + 1 WHERE squad_id = $1 AND user_id = $2`, squadID, userID); err != nil {
		return fmt.Errorf("credit member points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO squad_point_events (squad_id, user_id, points, reason) VALUES ($1, $2, 1, 'premier_completion')`, squadID, userID); err != nil {
		return fmt.Errorf("insert point event: %w", err)
	}
	return nil
}

func (r *PlayerRepository) ListActive(ctx context.Context) ([]playerdomain.Player, error) {
	const query = `
SELECT id, user_id, display_name, overall_rating, current_league, career_status, career_started_at, career_completed_at, created_at, updated_at
FROM players WHERE career_status = 'active' ORDER BY id`

	var rows []playerRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active players: %w", err)
	}
	out := make([]playerdomain.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PlayerRepository) PromoteLeague(ctx context.Context, fromLeague, toLeague playerdomain.League, minRating int) (int, error) {
	const query = `
UPDATE players SET current_league = $2, updated_at = now()
WHERE current_league = $1 AND career_status = 'active' AND overall_rating >= $3`

	res, err := r.db.ExecContext(ctx, query, string(fromLeague), string(toLeague), minRating)
	if err != nil {
		return 0, fmt.Errorf("promote league batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return int(n), nil
}

func (r *PlayerRepository) UpsertCoachStats(ctx context.Context, userID, displayName string) error {
	return upsertCoachStatsTx(ctx, r.db, userID, displayName, nil)
}

// namedExec binds a sqlx named-parameter query against q (shared by *sqlx.DB
// and *sqlx.Tx) via sqlx.Named + Rebind + ExecContext rather than a bare Exec.
func namedExec(ctx context.Context, q sqlx.ExtContext, query string, arg map[string]any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind named query: %w", err)
	}
	bound = q.Rebind(bound)
	if _, err := q.ExecContext(ctx, bound, args...); err != nil {
		return fmt.Errorf("exec named query: %w", err)
	}
	return nil
}

// upsertCoachStatsTx maintains the per-coach aggregate: increment
// completions_count, add to total_days_sum, recompute avg = round(sum/count),
// best = least(coalesce(best, d), d). completedDays is nil for the plain
// registration upsert (zeroed row) and non-nil when folding in a completion.
func upsertCoachStatsTx(ctx context.Context, q sqlx.ExtContext, userID, displayName string, completedDays *int) error {
	if completedDays == nil {
		return namedExec(ctx, q, `
INSERT INTO coach_stats (user_id, display_name)
VALUES (:user_id, :display_name)
ON CONFLICT (user_id) DO UPDATE SET
    display_name = CASE WHEN EXCLUDED.display_name <> '' THEN EXCLUDED.display_name ELSE coach_stats.display_name END`,
			map[string]any{"user_id": userID, "display_name": displayName})
	}

	return namedExec(ctx, q, `
INSERT INTO coach_stats (user_id, display_name, completions_count, total_days_sum, avg_days_to_premier, best_days_to_premier)
VALUES (:user_id, :display_name, 1, :days, :days, :days)
ON CONFLICT (user_id) DO UPDATE SET
    completions_count     = coach_stats.completions_count + 1,
    total_days_sum         = coach_stats.total_days_sum + :days,
    avg_days_to_premier    = ROUND((coach_stats.total_days_sum + :days)::numeric / (coach_stats.completions_count + 1)),
    best_days_to_premier   = LEAST(COALESCE(coach_stats.best_days_to_premier, :days), :days),
    updated_at             = now()`,
		map[string]any{"user_id": userID, "display_name": displayName, "days": *completedDays})
}

func (r *PlayerRepository) GetCoachStats(ctx context.Context, userID string) (playerdomain.CoachStats, bool, error) {
	const query = `
SELECT user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, total_days_sum, updated_at
FROM coach_stats WHERE user_id = $1`

	var row struct {
		UserID            string    `db:"user_id"`
		DisplayName       string    `db:"display_name"`
		CompletionsCount  int       `db:"completions_count"`
		BestDaysToPremier *int      `db:"best_days_to_premier"`
		AvgDaysToPremier  *int      `db:"avg_days_to_premier"`
		TotalDaysSum      int       `db:"total_days_sum"`
		UpdatedAt         time.Time `db:"updated_at"`
	}
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return playerdomain.CoachStats{}, false, nil
		}
		return playerdomain.CoachStats{}, false, fmt.Errorf("get coach stats: %w", err)
	}
	return playerdomain.CoachStats{
		UserID:            row.UserID,
		DisplayName:       row.DisplayName,
		CompletionsCount:  row.CompletionsCount,
		BestDaysToPremier: row.BestDaysToPremier,
		AvgDaysToPremier:  row.AvgDaysToPremier,
		TotalDaysSum:      row.TotalDaysSum,
		UpdatedAt:         row.UpdatedAt,
	}, true, nil
}

// GlobalLeaderboard runs a single windowed query ranking every CoachStats
// row, returning rank<=100 plus the caller's own row
// however it ranks.
func (r *PlayerRepository) GlobalLeaderboard(ctx context.Context, callerUserID string) ([]playerdomain.RankedCoach, error) {
	const query = `
WITH ranked AS (
    SELECT user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier,
           RANK() OVER (
               ORDER BY completions_count DESC,
                        best_days_to_premier ASC NULLS LAST,
                        avg_days_to_premier ASC NULLS LAST
           ) AS rnk
    FROM coach_stats
)
SELECT user_id, display_name, completions_count, best_days_to_premier, avg_days_to_premier, rnk
FROM ranked
WHERE rnk <= 100 OR user_id = $1
ORDER BY rnk`

	var rows []struct {
		UserID            string `db:"user_id"`
		DisplayName       string `db:"display_name"`
		CompletionsCount  int    `db:"completions_count"`
		BestDaysToPremier *int   `db:"best_days_to_premier"`
		AvgDaysToPremier  *int   `db:"avg_days_to_premier"`
		Rank              int    `db:"rnk"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, callerUserID); err != nil {
		return nil, fmt.Errorf("query global leaderboard: %w", err)
	}

	out := make([]playerdomain.RankedCoach, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerdomain.RankedCoach{
			UserID:            row.UserID,
			DisplayName:       row.DisplayName,
			Rank:              row.Rank,
			CompletionsCount:  row.CompletionsCount,
			BestDaysToPremier: row.BestDaysToPremier,
			AvgDaysToPremier:  row.AvgDaysToPremier,
			IsCaller:          row.UserID == callerUserID,
		})
	}
	return out, nil
}
