package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/football-brain/internal/usecase"
)

type runSweepRequest struct {
	Force bool `json:"force"`
}

// SweepStatus handles GET /api/sweep/status; public, no auth gate.
func (h *Handler) SweepStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SweepStatus")
	defer span.End()

	state, err := h.sweep.Status(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"last_sweep_utc_day": state.LastSweepUTCDay,
		"last_sweep_at":      state.LastSweepAt,
		"run_count":          state.RunCount,
	})
}

// RunSweep handles POST /api/sweep/run, gated by the cron bearer secret.
func (h *Handler) RunSweep(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSweep")
	defer span.End()

	var req runSweepRequest
	if r.ContentLength > 0 {
		decoder := sonic.ConfigDefault.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrValidation, err))
			return
		}
	}

	result, err := h.sweep.Run(ctx, req.Force)
	if err != nil {
		h.logger.ErrorContext(ctx, "sweep run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"ran":               result.Ran,
		"already_ran_today": result.AlreadyRanToday,
		"utc_day":           result.UTCDay,
		"total_active":      result.TotalActive,
		"promoted_count":    result.PromotedCount,
		"completed_count":   result.CompletedCount,
		"skipped_count":     result.SkippedCount,
		"promotions":        result.Promotions,
		"skips":             result.Skips,
		"completions":       result.Completions,
		"errors":            result.Errors,
	})
}
