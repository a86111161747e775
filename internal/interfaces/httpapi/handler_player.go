package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

type createPlayerRequest struct {
	PlayerID      string  `json:"player_id" validate:"required"`
	DisplayName   string  `json:"display_name" validate:"omitempty,max=64"`
	OverallRating *int    `json:"overall_rating" validate:"omitempty,min=0,max=99"`
	CurrentLeague *string `json:"current_league" validate:"omitempty"`
}

type progressPlayerRequest struct {
	UserID        string  `json:"user_id" validate:"required"`
	OverallRating *int    `json:"overall_rating" validate:"omitempty,min=0,max=99"`
	CurrentLeague *string `json:"current_league" validate:"omitempty"`
}

func playerToMap(p playerdomain.Player) map[string]any {
	out := map[string]any{
		"id":             p.ID,
		"user_id":        p.UserID,
		"display_name":   p.DisplayName,
		"overall_rating": p.OverallRating,
		"current_league": p.CurrentLeague,
		"career_status":  p.CareerStatus,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
	if p.CareerCompletedAt != nil {
		out["career_completed_at"] = *p.CareerCompletedAt
	}
	return out
}

// CreatePlayer handles POST /api/players/create, gated by a user JWT.
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreatePlayer")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createPlayerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrValidation, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	p, err := h.players.CreatePlayer(ctx, usecase.CreatePlayerInput{
		PlayerID:      req.PlayerID,
		UserID:        principal.UserID,
		DisplayName:   req.DisplayName,
		OverallRating: req.OverallRating,
		CurrentLeague: req.CurrentLeague,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create player failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	data := playerToMap(p)
	writeSuccess(ctx, w, http.StatusOK, data)
}

// GetPlayer handles GET /api/players/:id, gated by a user JWT; only the
// owning coach may read their own player.
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayer")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := r.PathValue("id")
	p, err := h.players.GetPlayer(ctx, playerID, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerToMap(p))
}

// ProgressPlayer handles POST /api/players/:id/progress, gated by the
// server HMAC signature; the caller's user_id is trusted from the body.
func (h *Handler) ProgressPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProgressPlayer")
	defer span.End()

	playerID := r.PathValue("id")

	var req progressPlayerRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrValidation, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.players.UpdatePlayerProgress(ctx, usecase.UpdatePlayerProgressInput{
		PlayerID:      playerID,
		OverallRating: req.OverallRating,
		CurrentLeague: req.CurrentLeague,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update player progress failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if updated == nil {
		writeSuccess(ctx, w, http.StatusOK, map[string]any{"updated": false})
		return
	}

	data := playerToMap(*updated)
	data["updated"] = true
	writeSuccess(ctx, w, http.StatusOK, data)
}

// CompletePlayer handles POST /api/players/:id/complete, gated by a user
// JWT; only the owning coach may complete their own player.
func (h *Handler) CompletePlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompletePlayer")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	playerID := r.PathValue("id")
	result, err := h.players.CompletePlayerCareer(ctx, playerID, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "complete player career failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	data := playerToMap(result.Player)
	data["already_completed"] = result.AlreadyCompleted
	data["days_to_premier"] = result.DaysToPremier
	writeSuccess(ctx, w, http.StatusOK, data)
}
