package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"strings"

	groupdomain "github.com/riskibarqy/football-brain/internal/domain/group"
	playerdomain "github.com/riskibarqy/football-brain/internal/domain/player"
	"github.com/riskibarqy/football-brain/internal/platform/id"
)

const inviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxInviteCodeCollisionRetries bounds the random-code generation loop.
const maxInviteCodeCollisionRetries = 5

type GroupService struct {
	groups  groupdomain.Repository
	players playerdomain.Repository
	ids     id.Generator
}

func NewGroupService(groups groupdomain.Repository, players playerdomain.Repository, ids id.Generator) *GroupService {
	return &GroupService{groups: groups, players: players, ids: ids}
}

// CreateGroup creates a friend group with a random invite code, retrying on
// collision, and adds the creator as an admin member.
func (s *GroupService) CreateGroup(ctx context.Context, userID, name string) (groupdomain.Group, error) {
	if name == "" {
		return groupdomain.Group{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	groupID, err := s.ids.NewID()
	if err != nil {
		return groupdomain.Group{}, fmt.Errorf("generate group id: %w", err)
	}

	var created groupdomain.Group
	for attempt := 0; attempt < maxInviteCodeCollisionRetries; attempt++ {
		code, err := randomInviteCode()
		if err != nil {
			return groupdomain.Group{}, fmt.Errorf("%w: %s", ErrInfra, err.Error())
		}
		if _, ok, err := s.groups.GetByInviteCode(ctx, code); err != nil {
			return groupdomain.Group{}, fmt.Errorf("check invite code collision: %w", err)
		} else if ok {
			continue
		}

		g := groupdomain.Group{ID: groupID, Name: name, InviteCode: code, CreatedBy: userID}
		if err := s.groups.Create(ctx, g); err != nil {
			return groupdomain.Group{}, fmt.Errorf("%w: %s", ErrConflict, err.Error())
		}
		created = g
		break
	}
	if created.ID == "" {
		return groupdomain.Group{}, fmt.Errorf("%w: could not generate a unique invite code", ErrInfra)
	}

	if err := s.groups.AddMember(ctx, groupdomain.Member{GroupID: created.ID, UserID: userID, Role: groupdomain.RoleAdmin}); err != nil {
		return groupdomain.Group{}, fmt.Errorf("add creator as admin: %w", err)
	}

	return created, nil
}

// JoinGroup joins by invite code, idempotently and case-insensitively.
func (s *GroupService) JoinGroup(ctx context.Context, userID, inviteCode string) (groupdomain.Group, bool, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return groupdomain.Group{}, false, fmt.Errorf("%w: invite_code is required", ErrValidation)
	}

	g, ok, err := s.groups.GetByInviteCode(ctx, code)
	if err != nil {
		return groupdomain.Group{}, false, fmt.Errorf("lookup invite code: %w", err)
	}
	if !ok {
		return groupdomain.Group{}, false, fmt.Errorf("%w: invite code %q", ErrNotFound, inviteCode)
	}

	alreadyMember, err := s.groups.IsMember(ctx, g.ID, userID)
	if err != nil {
		return groupdomain.Group{}, false, fmt.Errorf("check membership: %w", err)
	}
	if alreadyMember {
		return g, true, nil
	}

	if err := s.groups.AddMember(ctx, groupdomain.Member{GroupID: g.ID, UserID: userID, Role: groupdomain.RoleMember}); err != nil {
		return groupdomain.Group{}, false, fmt.Errorf("add member: %w", err)
	}
	return g, false, nil
}

func (s *GroupService) MyGroups(ctx context.Context, userID string) ([]groupdomain.Group, error) {
	return s.groups.ListByUser(ctx, userID)
}

// GetGroupLeaderboard requires the requester to be a member, and ranks
// members with the same comparator as the global leaderboard.
func (s *GroupService) GetGroupLeaderboard(ctx context.Context, requesterUserID, groupID string) ([]groupdomain.RankedMember, error) {
	isMember, err := s.groups.IsMember(ctx, groupID, requesterUserID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return nil, fmt.Errorf("%w: caller is not a member of this group", ErrForbidden)
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	ranked := make([]groupdomain.RankedMember, 0, len(members))
	for _, m := range members {
		stats, ok, err := s.players.GetCoachStats(ctx, m.UserID)
		if err != nil {
			return nil, fmt.Errorf("load coach stats: %w", err)
		}
		if !ok {
			ranked = append(ranked, groupdomain.RankedMember{UserID: m.UserID})
			continue
		}
		ranked = append(ranked, groupdomain.RankedMember{
			UserID:            m.UserID,
			DisplayName:       stats.DisplayName,
			CompletionsCount:  stats.CompletionsCount,
			BestDaysToPremier: stats.BestDaysToPremier,
			AvgDaysToPremier:  stats.AvgDaysToPremier,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return lessRanked(ranked[i], ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked, nil
}

// LeaveGroup removes the caller's membership from the group.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	isMember, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !isMember {
		return fmt.Errorf("%w: caller is not a member of this group", ErrNotFound)
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// lessRanked is the individual-leaderboard comparator: completions_count
// desc, best_days_to_premier asc (nulls last), avg_days_to_premier asc
// (nulls last).
func lessRanked(a, b groupdomain.RankedMember) bool {
	if a.CompletionsCount != b.CompletionsCount {
		return a.CompletionsCount > b.CompletionsCount
	}
	if cmp, ok := compareNullableInt(a.BestDaysToPremier, b.BestDaysToPremier); ok {
		return cmp
	}
	if cmp, ok := compareNullableInt(a.AvgDaysToPremier, b.AvgDaysToPremier); ok {
		return cmp
	}
	return a.UserID < b.UserID
}

// compareNullableInt reports (a < b, decisive) treating nil as "last".
func compareNullableInt(a, b *int) (bool, bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return false, true
	case b == nil:
		return true, true
	case *a == *b:
		return false, false
	default:
		return *a < *b, true
	}
}

func randomInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes for invite code: %w", err)
	}

	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(out), nil
}
