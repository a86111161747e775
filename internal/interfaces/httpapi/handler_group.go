package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"

	groupdomain "github.com/riskibarqy/football-brain/internal/domain/group"
	"github.com/riskibarqy/football-brain/internal/usecase"
)

type createGroupRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

func groupToMap(g groupdomain.Group) map[string]any {
	return map[string]any{
		"id":          g.ID,
		"name":        g.Name,
		"invite_code": g.InviteCode,
		"created_by":  g.CreatedBy,
		"created_at":  g.CreatedAt,
	}
}

func rankedMemberToMap(m groupdomain.RankedMember) map[string]any {
	out := map[string]any{
		"user_id":           m.UserID,
		"display_name":      m.DisplayName,
		"rank":              m.Rank,
		"completions_count": m.CompletionsCount,
	}
	if m.BestDaysToPremier != nil {
		out["best_days_to_premier"] = *m.BestDaysToPremier
	}
	if m.AvgDaysToPremier != nil {
		out["avg_days_to_premier"] = *m.AvgDaysToPremier
	}
	return out
}

// CreateGroup handles POST /api/groups/create, gated by a user JWT.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGroup")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createGroupRequest
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

	created, err := h.groups.CreateGroup(ctx, principal.UserID, req.Name)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupToMap(created))
}

// JoinGroup handles POST /api/groups/join, gated by a user JWT.
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinGroup")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinGroupRequest
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

	g, alreadyMember, err := h.groups.JoinGroup(ctx, principal.UserID, req.InviteCode)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	data := groupToMap(g)
	data["already_member"] = alreadyMember
	writeSuccess(ctx, w, http.StatusOK, data)
}

// MyGroups handles GET /api/groups/mine, gated by a user JWT.
func (h *Handler) MyGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MyGroups")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rows, err := h.groups.MyGroups(ctx, principal.UserID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	groups := make([]map[string]any, 0, len(rows))
	for _, g := range rows {
		groups = append(groups, groupToMap(g))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"groups": groups})
}

// GroupLeaderboard handles GET /api/groups/:id/leaderboard, gated by a user
// JWT; caller must be a member.
func (h *Handler) GroupLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GroupLeaderboard")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("id")
	rows, err := h.groups.GetGroupLeaderboard(ctx, principal.UserID, groupID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	members := make([]map[string]any, 0, len(rows))
	for _, m := range rows {
		members = append(members, rankedMemberToMap(m))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"members": members})
}

// LeaveGroup handles POST /api/groups/:id/leave, gated by a user JWT.
func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveGroup")
	defer span.End()

	principal, err := requiredPrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groupID := r.PathValue("id")
	if err := h.groups.LeaveGroup(ctx, principal.UserID, groupID); err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"group_id": groupID, "left": true})
}
