package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	seasondomain "github.com/riskibarqy/football-brain/internal/domain/season"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

func parseTier(leagueID string) (seasondomain.Tier, error) {
	tier := seasondomain.Tier(leagueID)
	if !tier.Valid() {
		return "", fmt.Errorf("%w: unknown league id %q", usecase.ErrValidation, leagueID)
	}
	return tier, nil
}

func parseMatchdayQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("matchday")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: matchday query parameter must be a non-negative integer", usecase.ErrValidation)
	}
	return n, nil
}

func fixtureToMap(f seasondomain.Fixture) map[string]any {
	out := map[string]any{
		"id":            f.ID,
		"season_id":     f.SeasonID,
		"tier":          f.EFLTier,
		"matchday":      f.Matchday,
		"home_club_id":  f.HomeClubID,
		"away_club_id":  f.AwayClubID,
		"status":        f.Status,
		"home_goals":    f.HomeGoals,
		"away_goals":    f.AwayGoals,
	}
	if f.PlayedAt != nil {
		out["played_at"] = *f.PlayedAt
	}
	return out
}

func teamSeasonToMap(t seasondomain.TeamSeason) map[string]any {
	return map[string]any{
		"club_id":         t.ClubID,
		"played":          t.Played,
		"won":             t.Won,
		"drawn":           t.Drawn,
		"lost":            t.Lost,
		"goals_for":       t.GoalsFor,
		"goals_against":   t.GoalsAgainst,
		"goal_difference": t.GoalDifference,
		"points":          t.Points,
	}
}

// ListLeagues handles GET /api/leagues; public, no auth gate.
func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues := make([]map[string]any, 0, len(seasondomain.AllTiers))
	for _, tier := range seasondomain.AllTiers {
		leagues = append(leagues, map[string]any{"id": tier, "tier": tier})
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"leagues": leagues})
}

// LeagueTable handles GET /api/leagues/:leagueId/table; public, no auth gate.
func (h *Handler) LeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeagueTable")
	defer span.End()

	tier, err := parseTier(r.PathValue("leagueId"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	rows, err := h.leagues.Table(ctx, tier)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	table := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		entry := teamSeasonToMap(row)
		entry["position"] = i + 1
		table = append(table, entry)
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tier": tier, "table": table})
}

// LeagueFixtures handles GET /api/leagues/:leagueId/fixtures; public, no auth
// gate. ?matchday=N selects a matchday; omitted means the tier's current one.
func (h *Handler) LeagueFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeagueFixtures")
	defer span.End()

	tier, err := parseTier(r.PathValue("leagueId"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchday, err := parseMatchdayQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	rows, err := h.leagues.Fixtures(ctx, tier, matchday)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	fixtures := make([]map[string]any, 0, len(rows))
	for _, f := range rows {
		fixtures = append(fixtures, fixtureToMap(f))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tier": tier, "fixtures": fixtures})
}

// LeagueResults handles GET /api/leagues/:leagueId/results; public, no auth
// gate. ?matchday=N selects a matchday; omitted means the most recently
// completed one.
func (h *Handler) LeagueResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeagueResults")
	defer span.End()

	tier, err := parseTier(r.PathValue("leagueId"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	matchday, err := parseMatchdayQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	rows, err := h.leagues.Results(ctx, tier, matchday)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	results := make([]map[string]any, 0, len(rows))
	for _, f := range rows {
		results = append(results, fixtureToMap(f))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tier": tier, "results": results})
}

// SeasonStatus handles GET /api/seasons/status; public, no auth gate.
func (h *Handler) SeasonStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonStatus")
	defer span.End()

	statuses, err := h.leagues.Status(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tiers": statuses})
}

// SeasonResetSync handles POST /api/seasons/reset-sync, gated by the cron
// bearer secret; idempotently ensures every tier has an active season.
func (h *Handler) SeasonResetSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonResetSync")
	defer span.End()

	statuses, err := h.leagues.ResetSync(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "season reset-sync failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"tiers": statuses})
}

// SeasonSimulateDay handles POST /api/seasons/simulate-day, gated by the cron
// bearer secret; advances every tier by one matchday.
func (h *Handler) SeasonSimulateDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeasonSimulateDay")
	defer span.End()

	result := h.matchday.SimulateDay(ctx)
	status := http.StatusOK
	if !result.AllOK {
		status = http.StatusMultiStatus
	}
	writeSuccess(ctx, w, status, map[string]any{
		"all_ok": result.AllOK,
		"tiers":  result.Tiers,
	})
}
