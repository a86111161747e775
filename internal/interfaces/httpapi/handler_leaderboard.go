package httpapi

import (
	"net/http"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
)

func rankedCoachToMap(c playerdomain.RankedCoach) map[string]any {
	out := map[string]any{
		"user_id":           c.UserID,
		"display_name":      c.DisplayName,
		"rank":              c.Rank,
		"completions_count": c.CompletionsCount,
		"is_caller":         c.IsCaller,
	}
	if c.BestDaysToPremier != nil {
		out["best_days_to_premier"] = *c.BestDaysToPremier
	}
	if c.AvgDaysToPremier != nil {
		out["avg_days_to_premier"] = *c.AvgDaysToPremier
	}
	return out
}

// GlobalLeaderboard handles GET /api/leaderboard/global, gated by a user JWT.
func (h *Handler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GlobalLeaderboard")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.leaderboard.GlobalLeaderboard(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	coaches := make([]map[string]any, 0, len(rows))
	for _, c := range rows {
		coaches = append(coaches, rankedCoachToMap(c))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"coaches": coaches})
}
