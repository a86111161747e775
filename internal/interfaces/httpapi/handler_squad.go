package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"

	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

type createSquadRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Tag         string `json:"tag" validate:"omitempty"`
	Description string `json:"description" validate:"omitempty,max=280"`
	Privacy     string `json:"privacy" validate:"omitempty,oneof=open request closed"`
}

type upgradeFacilityRequest struct {
	FacilityType string `json:"facility_type" validate:"required,oneof=training_equipment spa analysis_room medical_center"`
}

type setRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=co_leader member"`
}

type resolveRequestRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

func squadToMap(s squaddomain.Squad) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"name":           s.Name,
		"tag":            s.Tag,
		"description":    s.Description,
		"leader_user_id": s.LeaderUserID,
		"privacy":        s.Privacy,
		"total_points":   s.TotalPoints,
		"unspent_points": s.UnspentPoints,
		"level":          s.Level,
		"created_at":     s.CreatedAt,
		"updated_at":     s.UpdatedAt,
	}
}

func facilityToMap(f squaddomain.Facility) map[string]any {
	return map[string]any{
		"facility_type": f.FacilityType,
		"level":         f.Level,
	}
}

func memberToMap(m squaddomain.Member) map[string]any {
	return map[string]any{
		"user_id":            m.UserID,
		"role":               m.Role,
		"points_contributed": m.PointsContributed,
		"joined_at":          m.JoinedAt,
	}
}

func joinRequestToMap(jr squaddomain.JoinRequest) map[string]any {
	out := map[string]any{
		"id":         jr.ID,
		"squad_id":   jr.SquadID,
		"user_id":    jr.UserID,
		"status":     jr.Status,
		"created_at": jr.CreatedAt,
	}
	if jr.ResolvedAt != nil {
		out["resolved_at"] = *jr.ResolvedAt
	}
	if jr.ResolvedBy != nil {
		out["resolved_by"] = *jr.ResolvedBy
	}
	return out
}

func parseLimitQuery(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// SquadLeaderboard handles GET /api/squads/leaderboard; public, no auth gate.
func (h *Handler) SquadLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SquadLeaderboard")
	defer span.End()

	rows, err := h.squads.Leaderboard(ctx, parseLimitQuery(r, 100))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	squads := make([]map[string]any, 0, len(rows))
	for i, s := range rows {
		entry := squadToMap(s)
		entry["rank"] = i + 1
		squads = append(squads, entry)
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squads": squads})
}

// SquadSearch handles GET /api/squads/search; public, no auth gate.
func (h *Handler) SquadSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SquadSearch")
	defer span.End()

	query := r.URL.Query().Get("query")
	rows, err := h.squads.Search(ctx, query, parseLimitQuery(r, 50))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	squads := make([]map[string]any, 0, len(rows))
	for _, s := range rows {
		squads = append(squads, squadToMap(s))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squads": squads})
}

// CreateSquad handles POST /api/squads/create, gated by a user JWT.
func (h *Handler) CreateSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSquad")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createSquadRequest
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

	created, err := h.squads.CreateSquad(ctx, usecase.CreateSquadInput{
		UserID:      principal.UserID,
		Name:        req.Name,
		Tag:         req.Tag,
		Description: req.Description,
		Privacy:     req.Privacy,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadToMap(created))
}

// JoinSquad handles POST /api/squads/:id/join, gated by a user JWT.
func (h *Handler) JoinSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinSquad")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := r.PathValue("id")
	if err := h.squads.JoinOpenSquad(ctx, principal.UserID, squadID); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squad_id": squadID, "joined": true})
}

// RequestJoinSquad handles POST /api/squads/:id/request-join, gated by a
// user JWT.
func (h *Handler) RequestJoinSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestJoinSquad")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := r.PathValue("id")
	request, err := h.squads.RequestJoinSquad(ctx, principal.UserID, squadID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if request == nil {
		writeSuccess(ctx, w, http.StatusOK, map[string]any{"squad_id": squadID, "joined": true})
		return
	}
	data := joinRequestToMap(*request)
	writeSuccess(ctx, w, http.StatusOK, data)
}

// UpgradeSquadFacility handles POST /api/squads/:id/upgrade, gated by a user
// JWT; caller must be leader or co-leader.
func (h *Handler) UpgradeSquadFacility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpgradeSquadFacility")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req upgradeFacilityRequest
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

	squadID := r.PathValue("id")
	facility, err := h.squads.UpgradeSquadFacility(ctx, principal.UserID, squadID, squaddomain.FacilityType(req.FacilityType))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, facilityToMap(facility))
}

// SetSquadMemberRole handles POST /api/squads/:id/set-role, gated by a user
// JWT; only the current leader may retitle another member.
func (h *Handler) SetSquadMemberRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetSquadMemberRole")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setRoleRequest
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

	squadID := r.PathValue("id")
	if err := h.squads.SetMemberRole(ctx, principal.UserID, squadID, req.UserID, squaddomain.Role(req.Role)); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squad_id": squadID, "user_id": req.UserID, "role": req.Role})
}

// ResolveSquadJoinRequest handles POST /api/squads/requests/:id/resolve,
// gated by a user JWT; caller must be leader or co-leader of the squad.
func (h *Handler) ResolveSquadJoinRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveSquadJoinRequest")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req resolveRequestRequest
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

	requestID := r.PathValue("id")
	if err := h.squads.ResolveJoinRequest(ctx, requestID, principal.UserID, usecase.ResolveAction(req.Action)); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"request_id": requestID, "action": req.Action})
}

// LeaveSquad handles POST /api/squads/leave, gated by a user JWT.
func (h *Handler) LeaveSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveSquad")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req struct {
		SquadID string `json:"squad_id" validate:"required"`
	}
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

	if err := h.squads.LeaveSquad(ctx, principal.UserID, req.SquadID); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"squad_id": req.SquadID, "left": true})
}

// MySquad handles GET /api/squads/mine, gated by a user JWT.
func (h *Handler) MySquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MySquad")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	squad, err := h.squads.MySquad(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, squadToMap(squad))
}

// SquadProfile handles GET /api/squads/:id/profile; public, no auth gate.
func (h *Handler) SquadProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SquadProfile")
	defer span.End()

	squadID := r.PathValue("id")
	squad, facilities, members, err := h.squads.GetSquadProfile(ctx, squadID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	facilityList := make([]map[string]any, 0, len(facilities))
	for _, f := range facilities {
		facilityList = append(facilityList, facilityToMap(f))
	}
	memberList := make([]map[string]any, 0, len(members))
	for _, m := range members {
		memberList = append(memberList, memberToMap(m))
	}

	data := squadToMap(squad)
	data["facilities"] = facilityList
	data["members"] = memberList
	writeSuccess(ctx, w, http.StatusOK, data)
}

// SquadJoinRequests handles GET /api/squads/:id/requests, gated by a user
// JWT; caller must be leader or co-leader.
func (h *Handler) SquadJoinRequests(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SquadJoinRequests")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	squadID := r.PathValue("id")
	rows, err := h.squads.ListJoinRequests(ctx, principal.UserID, squadID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	requests := make([]map[string]any, 0, len(rows))
	for _, jr := range rows {
		requests = append(requests, joinRequestToMap(jr))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"requests": requests})
}
