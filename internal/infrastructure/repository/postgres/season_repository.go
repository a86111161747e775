package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

type seasonRow struct {
	ID                string    `db:"id"`
	EFLTier           string    `db:"efl_tier"`
	CurrentMatchday   int       `db:"current_matchday"`
	TotalMatchdays    int       `db:"total_matchdays"`
	FixturesGenerated bool      `db:"fixtures_generated"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r seasonRow) toDomain() seasondomain.Season {
	return seasondomain.Season{
		ID: r.ID, EFLTier: seasondomain.Tier(r.EFLTier), CurrentMatchday: r.CurrentMatchday,
		TotalMatchdays: r.TotalMatchdays, FixturesGenerated: r.FixturesGenerated,
		Status: seasondomain.Status(r.Status), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const seasonColumns = `id, efl_tier, current_matchday, total_matchdays, fixtures_generated, status, created_at, updated_at`

func (r *SeasonRepository) GetActiveSeason(ctx context.Context, tier seasondomain.Tier) (seasondomain.Season, bool, error) {
	const query = `SELECT ` + seasonColumns + ` FROM seasons WHERE efl_tier = $1 AND status = 'active' ORDER BY created_at DESC LIMIT 1`
	var row seasonRow
	if err := r.db.GetContext(ctx, &row, query, string(tier)); err != nil {
		if isNotFound(err) {
			return seasondomain.Season{}, false, nil
		}
		return seasondomain.Season{}, false, fmt.Errorf("get active season: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonRepository) CreateSeason(ctx context.Context, s seasondomain.Season) (seasondomain.Season, error) {
	const query = `
INSERT INTO seasons (id, efl_tier, current_matchday, total_matchdays, fixtures_generated, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + seasonColumns
	var row seasonRow
	if err := r.db.GetContext(ctx, &row, query, s.ID, string(s.EFLTier), s.CurrentMatchday, s.TotalMatchdays, s.FixturesGenerated, string(s.Status)); err != nil {
		return seasondomain.Season{}, fmt.Errorf("insert season: %w", err)
	}
	return row.toDomain(), nil
}

func (r *SeasonRepository) UpdateSeason(ctx context.Context, s seasondomain.Season) error {
	const query = `
UPDATE seasons
SET current_matchday = $2, fixtures_generated = $3, status = $4, updated_at = now()
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.CurrentMatchday, s.FixturesGenerated, string(s.Status)); err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) GetOrCreateProgress(ctx context.Context, seasonID string) (seasondomain.Progress, error) {
	const query = `
INSERT INTO season_progress (season_id, current_matchday)
VALUES ($1, 1)
ON CONFLICT (season_id) DO UPDATE SET season_id = EXCLUDED.season_id
RETURNING season_id, current_matchday`
	var row struct {
		SeasonID        string `db:"season_id"`
		CurrentMatchday int    `db:"current_matchday"`
	}
	if err := r.db.GetContext(ctx, &row, query, seasonID); err != nil {
		return seasondomain.Progress{}, fmt.Errorf("get or create progress: %w", err)
	}
	return seasondomain.Progress{SeasonID: row.SeasonID, CurrentMatchday: row.CurrentMatchday}, nil
}

func (r *SeasonRepository) SetProgress(ctx context.Context, seasonID string, matchday int) error {
	const query = `
INSERT INTO season_progress (season_id, current_matchday)
VALUES ($1, $2)
ON CONFLICT (season_id) DO UPDATE SET current_matchday = EXCLUDED.current_matchday`
	if _, err := r.db.ExecContext(ctx, query, seasonID, matchday); err != nil {
		return fmt.Errorf("set progress: %w", err)
	}
	return nil
}

type fixtureRow struct {
	ID         string     `db:"id"`
	SeasonID   string     `db:"season_id"`
	EFLTier    string     `db:"efl_tier"`
	Matchday   int        `db:"matchday"`
	HomeClubID string     `db:"home_club_id"`
	AwayClubID string     `db:"away_club_id"`
	HomeGoals  *int       `db:"home_goals"`
	AwayGoals  *int       `db:"away_goals"`
	Status     string     `db:"status"`
	PlayedAt   *time.Time `db:"played_at"`
}

func (r fixtureRow) toDomain() seasondomain.Fixture {
	return seasondomain.Fixture{
		ID: r.ID, SeasonID: r.SeasonID, EFLTier: seasondomain.Tier(r.EFLTier), Matchday: r.Matchday,
		HomeClubID: r.HomeClubID, AwayClubID: r.AwayClubID, HomeGoals: r.HomeGoals, AwayGoals: r.AwayGoals,
		Status: seasondomain.FixtureStatus(r.Status), PlayedAt: r.PlayedAt,
	}
}

const fixtureColumns = `id, season_id, efl_tier, matchday, home_club_id, away_club_id, home_goals, away_goals, status, played_at`

func (r *SeasonRepository) ListFixtures(ctx context.Context, seasonID string, matchday int) ([]seasondomain.Fixture, error) {
	const query = `SELECT ` + fixtureColumns + ` FROM fixtures WHERE season_id = $1 AND matchday = $2 ORDER BY id`
	var rows []fixtureRow
	if err := r.db.SelectContext(ctx, &rows, query, seasonID, matchday); err != nil {
		return nil, fmt.Errorf("list fixtures: %w", err)
	}
	out := make([]seasondomain.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SeasonRepository) InsertFixtures(ctx context.Context, fixtures []seasondomain.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO fixtures (id, season_id, efl_tier, matchday, home_club_id, away_club_id, status)
VALUES (:id, :season_id, :efl_tier, :matchday, :home_club_id, :away_club_id, :status)`
	for _, f := range fixtures {
		if err := namedExec(ctx, tx, query, map[string]any{
			"id": f.ID, "season_id": f.SeasonID, "efl_tier": string(f.EFLTier), "matchday": f.Matchday,
			"home_club_id": f.HomeClubID, "away_club_id": f.AwayClubID, "status": string(seasondomain.FixtureUpcoming),
		}); err != nil {
			return fmt.Errorf("insert fixture %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert fixtures: %w", err)
	}
	return nil
}

func (r *SeasonRepository) SetFixtureResult(ctx context.Context, fixtureID string, homeGoals, awayGoals int) error {
	const query = `
UPDATE fixtures
SET home_goals = $2, away_goals = $3, status = 'PLAYED', played_at = now()
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, fixtureID, homeGoals, awayGoals); err != nil {
		return fmt.Errorf("set fixture result: %w", err)
	}
	return nil
}

type teamSeasonRow struct {
	SeasonID       string `db:"season_id"`
	ClubID         string `db:"club_id"`
	Played         int    `db:"played"`
	Won            int    `db:"won"`
	Drawn          int    `db:"drawn"`
	Lost           int    `db:"lost"`
	GoalsFor       int    `db:"goals_for"`
	GoalsAgainst   int    `db:"goals_against"`
	GoalDifference int    `db:"goal_difference"`
	Points         int    `db:"points"`
}

func (r teamSeasonRow) toDomain() seasondomain.TeamSeason {
	return seasondomain.TeamSeason{
		SeasonID: r.SeasonID, ClubID: r.ClubID, Played: r.Played, Won: r.Won, Drawn: r.Drawn, Lost: r.Lost,
		GoalsFor: r.GoalsFor, GoalsAgainst: r.GoalsAgainst, GoalDifference: r.GoalDifference, Points: r.Points,
	}
}

const teamSeasonColumns = `season_id, club_id, played, won, drawn, lost, goals_for, goals_against, goal_difference, points`

func (r *SeasonRepository) GetTeamSeason(ctx context.Context, seasonID, clubID string) (seasondomain.TeamSeason, bool, error) {
	const query = `SELECT ` + teamSeasonColumns + ` FROM team_seasons WHERE season_id = $1 AND club_id = $2`
	var row teamSeasonRow
	if err := r.db.GetContext(ctx, &row, query, seasonID, clubID); err != nil {
		if isNotFound(err) {
			return seasondomain.TeamSeason{}, false, nil
		}
		return seasondomain.TeamSeason{}, false, fmt.Errorf("get team season: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonRepository) UpsertTeamSeason(ctx context.Context, t seasondomain.TeamSeason) error {
	const query = `
INSERT INTO team_seasons (season_id, club_id, played, won, drawn, lost, goals_for, goals_against, goal_difference, points)
VALUES (:season_id, :club_id, :played, :won, :drawn, :lost, :goals_for, :goals_against, :goal_difference, :points)
ON CONFLICT (season_id, club_id) DO UPDATE SET
    played = EXCLUDED.played, won = EXCLUDED.won, drawn = EXCLUDED.drawn, lost = EXCLUDED.lost,
    goals_for = EXCLUDED.goals_for, goals_against = EXCLUDED.goals_against,
    goal_difference = EXCLUDED.goal_difference, points = EXCLUDED.points`
	return namedExec(ctx, r.db, query, map[string]any{
		"season_id": t.SeasonID, "club_id": t.ClubID, "played": t.Played, "won": t.Won, "drawn": t.Drawn,
		"lost": t.Lost, "goals_for": t.GoalsFor, "goals_against": t.GoalsAgainst,
		"goal_difference": t.GoalDifference, "points": t.Points,
	})
}

func (r *SeasonRepository) ListTeamSeasons(ctx context.Context, seasonID string) ([]seasondomain.TeamSeason, error) {
	const query = `SELECT ` + teamSeasonColumns + ` FROM team_seasons WHERE season_id = $1 ORDER BY points DESC, goal_difference DESC, goals_for DESC, club_id ASC`
	var rows []teamSeasonRow
	if err := r.db.SelectContext(ctx, &rows, query, seasonID); err != nil {
		return nil, fmt.Errorf("list team seasons: %w", err)
	}
	out := make([]seasondomain.TeamSeason, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Clubs reads the fixed 24-club roster for a tier from the seeded clubs
// table (migrations/0001_init.up.sql), stably ordered so the circle-method
// generator produces the same fixture list every time it regenerates.
func (r *SeasonRepository) Clubs(ctx context.Context, tier seasondomain.Tier) ([]string, error) {
	const query = `SELECT club_id FROM clubs WHERE efl_tier = $1 ORDER BY club_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, string(tier)); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}
	return ids, nil
}
