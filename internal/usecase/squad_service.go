package usecase

import (
	"context"
	"fmt"
	"time"

	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
	"github.com/riskibarqy/football-brain/internal/platform/id"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

type SquadService struct {
	squads squaddomain.Repository
	ids    id.Generator
	logger *logging.Logger
	nowFn  func() time.Time
}

func NewSquadService(squads squaddomain.Repository, ids id.Generator, logger *logging.Logger) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SquadService{squads: squads, ids: ids, logger: logger, nowFn: time.Now}
}

type CreateSquadInput struct {
	UserID      string
	Name        string
	Tag         string
	Description string
	Privacy     string
}

// CreateSquad enforces one-active-squad-per-user and initializes all four
// facility rows at level 0.
func (s *SquadService) CreateSquad(ctx context.Context, in CreateSquadInput) (squaddomain.Squad, error) {
	if in.UserID == "" {
		return squaddomain.Squad{}, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if in.Name == "" {
		return squaddomain.Squad{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	privacy := squaddomain.PrivacyOpen
	if in.Privacy != "" {
		privacy = squaddomain.Privacy(in.Privacy)
		if !privacy.Valid() {
			return squaddomain.Squad{}, fmt.Errorf("%w: invalid privacy %q", ErrValidation, in.Privacy)
		}
	}

	if _, ok, err := s.squads.GetActiveMembershipByUser(ctx, in.UserID); err != nil {
		return squaddomain.Squad{}, fmt.Errorf("check existing membership: %w", err)
	} else if ok {
		return squaddomain.Squad{}, fmt.Errorf("%w: user already has an active squad", ErrConflict)
	}

	var tag string
	if in.Tag != "" {
		t, err := squaddomain.SanitizeTag(in.Tag)
		if err != nil {
			return squaddomain.Squad{}, fmt.Errorf("%w: %s", ErrValidation, err.Error())
		}
		tag = t
	}

	squadID, err := s.ids.NewID()
	if err != nil {
		return squaddomain.Squad{}, fmt.Errorf("generate squad id: %w", err)
	}

	created, err := s.squads.Create(ctx, squaddomain.Squad{
		ID:           squadID,
		Name:         in.Name,
		Tag:          tag,
		Description:  in.Description,
		LeaderUserID: in.UserID,
		Privacy:      privacy,
		Level:        1,
	})
	if err != nil {
		return squaddomain.Squad{}, fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}

	if err := s.squads.UpsertMember(ctx, squaddomain.Member{
		SquadID: created.ID,
		UserID:  in.UserID,
		Role:    squaddomain.RoleLeader,
		Status:  squaddomain.MemberActive,
	}); err != nil {
		return squaddomain.Squad{}, fmt.Errorf("add leader membership: %w", err)
	}

	return created, nil
}

// JoinOpenSquad joins an open squad directly, with no approval step.
func (s *SquadService) JoinOpenSquad(ctx context.Context, userID, squadID string) error {
	squad, ok, err := s.squads.GetByIDForUpdate(ctx, squadID)
	if err != nil {
		return fmt.Errorf("lock squad: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
	}
	if squad.Privacy != squaddomain.PrivacyOpen {
		return fmt.Errorf("%w: squad is not open", ErrConflict)
	}
	return s.directJoin(ctx, userID, squad)
}

// RequestJoinSquad files (or reuses) a pending join request against an
// invite-only squad; open squads join directly instead.
func (s *SquadService) RequestJoinSquad(ctx context.Context, userID, squadID string) (*squaddomain.JoinRequest, error) {
	squad, ok, err := s.squads.GetByIDForUpdate(ctx, squadID)
	if err != nil {
		return nil, fmt.Errorf("lock squad: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
	}

	switch squad.Privacy {
	case squaddomain.PrivacyClosed:
		return nil, fmt.Errorf("%w: squad is closed", ErrConflict)
	case squaddomain.PrivacyOpen:
		return nil, s.directJoin(ctx, userID, squad)
	}

	if existing, ok, err := s.squads.GetPendingJoinRequest(ctx, squadID, userID); err != nil {
		return nil, fmt.Errorf("check pending request: %w", err)
	} else if ok {
		return &existing, nil
	}

	reqID, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate request id: %w", err)
	}
	created, err := s.squads.CreateJoinRequest(ctx, squaddomain.JoinRequest{
		ID:      reqID,
		SquadID: squadID,
		UserID:  userID,
		Status:  squaddomain.RequestPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create join request: %w", err)
	}
	return &created, nil
}

func (s *SquadService) directJoin(ctx context.Context, userID string, squad squaddomain.Squad) error {
	if err := s.squads.UpsertMember(ctx, squaddomain.Member{
		SquadID: squad.ID,
		UserID:  userID,
		Role:    squaddomain.RoleMember,
		Status:  squaddomain.MemberActive,
	}); err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return s.squads.TouchUpdatedAt(ctx, squad.ID)
}

type ResolveAction string

const (
	ActionApprove ResolveAction = "approve"
	ActionReject  ResolveAction = "reject"
)

// ResolveJoinRequest approves or rejects a pending join request; approval is
// downgraded to a rejection if the applicant already joined elsewhere in
// the meantime.
func (s *SquadService) ResolveJoinRequest(ctx context.Context, requestID, resolverUserID string, action ResolveAction) error {
	if action != ActionApprove && action != ActionReject {
		return fmt.Errorf("%w: action must be approve or reject", ErrValidation)
	}

	request, ok, err := s.squads.GetJoinRequestForUpdate(ctx, requestID)
	if err != nil {
		return fmt.Errorf("lock join request: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: join request %s", ErrNotFound, requestID)
	}
	if request.Status != squaddomain.RequestPending {
		return fmt.Errorf("%w: join request is not pending", ErrConflict)
	}

	resolver, ok, err := s.squads.GetMember(ctx, request.SquadID, resolverUserID)
	if err != nil {
		return fmt.Errorf("lookup resolver membership: %w", err)
	}
	if !ok || resolver.Status != squaddomain.MemberActive ||
		(resolver.Role != squaddomain.RoleLeader && resolver.Role != squaddomain.RoleCoLeader) {
		return fmt.Errorf("%w: resolver must be leader or co-leader", ErrForbidden)
	}

	status := squaddomain.RequestRejected
	if action == ActionApprove {
		if _, ok, err := s.squads.GetActiveMembershipByUser(ctx, request.UserID); err != nil {
			return fmt.Errorf("check applicant membership: %w", err)
		} else if ok {
			status = squaddomain.RequestRejected
		} else {
			status = squaddomain.RequestApproved
			if err := s.squads.UpsertMember(ctx, squaddomain.Member{
				SquadID: request.SquadID,
				UserID:  request.UserID,
				Role:    squaddomain.RoleMember,
				Status:  squaddomain.MemberActive,
			}); err != nil {
				return fmt.Errorf("upsert approved member: %w", err)
			}
		}
	}

	if err := s.squads.ResolveJoinRequest(ctx, requestID, status, resolverUserID, s.nowFn()); err != nil {
		return fmt.Errorf("resolve join request: %w", err)
	}
	if status == squaddomain.RequestRejected && action == ActionApprove {
		return fmt.Errorf("%w: applicant already has an active squad membership", ErrConflict)
	}
	return nil
}

// LeaveSquad marks the caller's membership inactive, refusing to leave a
// leader with no promoted co-leader behind in a non-empty squad.
func (s *SquadService) LeaveSquad(ctx context.Context, userID, squadID string) error {
	member, ok, err := s.squads.GetMemberForUpdate(ctx, squadID, userID)
	if err != nil {
		return fmt.Errorf("lock membership: %w", err)
	}
	if !ok || member.Status != squaddomain.MemberActive {
		return fmt.Errorf("%w: no active membership in squad %s", ErrNotFound, squadID)
	}

	if member.Role == squaddomain.RoleLeader {
		activeCount, err := s.squads.CountActiveMembers(ctx, squadID)
		if err != nil {
			return fmt.Errorf("count active members: %w", err)
		}
		if activeCount > 1 {
			leadersOrCoLeaders, err := s.squads.CountActiveLeadersOrCoLeaders(ctx, squadID, userID)
			if err != nil {
				return fmt.Errorf("count leaders: %w", err)
			}
			if leadersOrCoLeaders == 0 {
				return fmt.Errorf("%w: promote a co-leader before leaving", ErrConflict)
			}
		}
	}

	return s.squads.SetMemberStatus(ctx, squadID, userID, squaddomain.MemberInactive)
}

// UpgradeSquadFacility spends unspent squad points to raise one facility by
// a single level and recomputes the squad's overall level.
func (s *SquadService) UpgradeSquadFacility(ctx context.Context, userID, squadID string, facilityType squaddomain.FacilityType) (squaddomain.Facility, error) {
	if !facilityType.Valid() {
		return squaddomain.Facility{}, fmt.Errorf("%w: invalid facility_type %q", ErrValidation, facilityType)
	}

	member, ok, err := s.squads.GetMember(ctx, squadID, userID)
	if err != nil {
		return squaddomain.Facility{}, fmt.Errorf("lookup membership: %w", err)
	}
	if !ok || member.Status != squaddomain.MemberActive ||
		(member.Role != squaddomain.RoleLeader && member.Role != squaddomain.RoleCoLeader) {
		return squaddomain.Facility{}, fmt.Errorf("%w: caller must be leader or co-leader", ErrForbidden)
	}

	squad, ok, err := s.squads.GetByIDForUpdate(ctx, squadID)
	if err != nil {
		return squaddomain.Facility{}, fmt.Errorf("lock squad: %w", err)
	}
	if !ok {
		return squaddomain.Facility{}, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
	}

	facility, err := s.squads.GetFacilityForUpdate(ctx, squadID, facilityType)
	if err != nil {
		return squaddomain.Facility{}, fmt.Errorf("lock facility: %w", err)
	}

	cost := squaddomain.UpgradeCost(facilityType, facility.Level)
	if squad.UnspentPoints < cost {
		return squaddomain.Facility{}, fmt.Errorf("%w: need %d unspent points, have %d", ErrConflict, cost, squad.UnspentPoints)
	}

	newLevel := facility.Level + 1
	if err := s.squads.SetFacilityLevel(ctx, squadID, facilityType, newLevel); err != nil {
		return squaddomain.Facility{}, fmt.Errorf("set facility level: %w", err)
	}
	if err := s.squads.DeductUnspentPoints(ctx, squadID, cost); err != nil {
		return squaddomain.Facility{}, fmt.Errorf("deduct unspent points: %w", err)
	}

	facilities, err := s.squads.ListFacilities(ctx, squadID)
	if err != nil {
		return squaddomain.Facility{}, fmt.Errorf("list facilities: %w", err)
	}
	sum := 0
	for _, f := range facilities {
		if f.FacilityType == facilityType {
			sum += newLevel
			continue
		}
		sum += f.Level
	}
	if err := s.squads.SetSquadLevel(ctx, squadID, squaddomain.LevelFromFacilities(sum)); err != nil {
		return squaddomain.Facility{}, fmt.Errorf("recompute squad level: %w", err)
	}

	if err := s.squads.InsertSpendTransaction(ctx, squaddomain.SpendTransaction{
		SquadID:      squadID,
		UserID:       userID,
		FacilityType: facilityType,
		Cost:         cost,
		NewLevel:     newLevel,
	}); err != nil {
		return squaddomain.Facility{}, fmt.Errorf("insert spend transaction: %w", err)
	}

	return squaddomain.Facility{SquadID: squadID, FacilityType: facilityType, Level: newLevel}, nil
}

// SetMemberRole lets only the current leader retitle another active member
// co_leader or member.
func (s *SquadService) SetMemberRole(ctx context.Context, leaderUserID, squadID, targetUserID string, role squaddomain.Role) error {
	if role != squaddomain.RoleCoLeader && role != squaddomain.RoleMember {
		return fmt.Errorf("%w: role must be co_leader or member", ErrValidation)
	}

	leader, ok, err := s.squads.GetMember(ctx, squadID, leaderUserID)
	if err != nil {
		return fmt.Errorf("lookup leader membership: %w", err)
	}
	if !ok || leader.Status != squaddomain.MemberActive || leader.Role != squaddomain.RoleLeader {
		return fmt.Errorf("%w: only the squad leader may set roles", ErrForbidden)
	}

	target, ok, err := s.squads.GetMember(ctx, squadID, targetUserID)
	if err != nil {
		return fmt.Errorf("lookup target membership: %w", err)
	}
	if !ok || target.Status != squaddomain.MemberActive {
		return fmt.Errorf("%w: target has no active membership", ErrNotFound)
	}

	return s.squads.SetMemberRole(ctx, squadID, targetUserID, role)
}

// GetSquadProfile returns the public squad detail view: the squad row, its
// four facilities, and the active member roster (role + points contributed).
// No membership check — the profile is public.
func (s *SquadService) GetSquadProfile(ctx context.Context, squadID string) (squaddomain.Squad, []squaddomain.Facility, []squaddomain.Member, error) {
	squad, ok, err := s.squads.GetByID(ctx, squadID)
	if err != nil {
		return squaddomain.Squad{}, nil, nil, fmt.Errorf("get squad: %w", err)
	}
	if !ok {
		return squaddomain.Squad{}, nil, nil, fmt.Errorf("%w: squad %s", ErrNotFound, squadID)
	}
	facilities, err := s.squads.ListFacilities(ctx, squadID)
	if err != nil {
		return squaddomain.Squad{}, nil, nil, fmt.Errorf("list facilities: %w", err)
	}
	allMembers, err := s.squads.ListMembers(ctx, squadID)
	if err != nil {
		return squaddomain.Squad{}, nil, nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]squaddomain.Member, 0, len(allMembers))
	for _, m := range allMembers {
		if m.Status == squaddomain.MemberActive {
			members = append(members, m)
		}
	}
	return squad, facilities, members, nil
}

func (s *SquadService) MySquad(ctx context.Context, userID string) (squaddomain.Squad, error) {
	member, ok, err := s.squads.GetActiveMembershipByUser(ctx, userID)
	if err != nil {
		return squaddomain.Squad{}, fmt.Errorf("lookup membership: %w", err)
	}
	if !ok {
		return squaddomain.Squad{}, fmt.Errorf("%w: no active squad", ErrNotFound)
	}
	squad, ok, err := s.squads.GetByID(ctx, member.SquadID)
	if err != nil {
		return squaddomain.Squad{}, fmt.Errorf("get squad: %w", err)
	}
	if !ok {
		return squaddomain.Squad{}, fmt.Errorf("%w: squad %s", ErrNotFound, member.SquadID)
	}
	return squad, nil
}

func (s *SquadService) ListJoinRequests(ctx context.Context, requesterUserID, squadID string) ([]squaddomain.JoinRequest, error) {
	member, ok, err := s.squads.GetMember(ctx, squadID, requesterUserID)
	if err != nil {
		return nil, fmt.Errorf("lookup membership: %w", err)
	}
	if !ok || member.Status != squaddomain.MemberActive ||
		(member.Role != squaddomain.RoleLeader && member.Role != squaddomain.RoleCoLeader) {
		return nil, fmt.Errorf("%w: caller must be leader or co-leader", ErrForbidden)
	}
	return s.squads.ListJoinRequestsBySquad(ctx, squadID)
}

func (s *SquadService) Search(ctx context.Context, query string, limit int) ([]squaddomain.Squad, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.squads.Search(ctx, query, limit)
}

func (s *SquadService) Leaderboard(ctx context.Context, limit int) ([]squaddomain.Squad, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.squads.Leaderboard(ctx, limit)
}
