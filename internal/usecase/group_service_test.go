package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/football-brain/internal/platform/id"
)

func newGroupFixture() (*GroupService, *memory.GroupRepository, *memory.PlayerRepository) {
	groups := memory.NewGroupRepository()
	players := memory.NewPlayerRepository()
	svc := NewGroupService(groups, players, idgen.NewRandomGenerator())
	return svc, groups, players
}

func TestGroupService_CreateGroup_AddsCreatorAsAdmin(t *testing.T) {
	svc, groups, _ := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if g.InviteCode == "" {
		t.Fatalf("expected a generated invite code")
	}

	members, err := groups.ListMembers(ctx, g.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "creator-1" {
		t.Fatalf("expected creator as sole member, got %+v", members)
	}
}

func TestGroupService_CreateGroup_RequiresName(t *testing.T) {
	svc, _, _ := newGroupFixture()
	if _, err := svc.CreateGroup(context.Background(), "creator-1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestGroupService_JoinGroup_IsIdempotentAndCaseInsensitive(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	joined, alreadyMember, err := svc.JoinGroup(ctx, "member-1", toLowerInviteCode(g.InviteCode))
	if err != nil {
		t.Fatalf("join group: %v", err)
	}
	if alreadyMember {
		t.Fatalf("expected first join to not be already-a-member")
	}
	if joined.ID != g.ID {
		t.Fatalf("expected joined group id %s, got %s", g.ID, joined.ID)
	}

	_, alreadyMember2, err := svc.JoinGroup(ctx, "member-1", g.InviteCode)
	if err != nil {
		t.Fatalf("rejoin group: %v", err)
	}
	if !alreadyMember2 {
		t.Fatalf("expected second join to report already-a-member")
	}
}

func TestGroupService_JoinGroup_UnknownCodeIsNotFound(t *testing.T) {
	svc, _, _ := newGroupFixture()
	_, _, err := svc.JoinGroup(context.Background(), "member-1", "NOPE00")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGroupService_GetGroupLeaderboard_RequiresMembership(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	_, err = svc.GetGroupLeaderboard(ctx, "outsider", g.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestGroupService_GetGroupLeaderboard_RanksByCompletions(t *testing.T) {
	svc, _, players := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, _, err := svc.JoinGroup(ctx, "member-1", g.InviteCode); err != nil {
		t.Fatalf("join group: %v", err)
	}

	if err := players.UpsertCoachStats(ctx, "creator-1", "Creator"); err != nil {
		t.Fatalf("seed creator coach stats: %v", err)
	}
	if err := players.UpsertCoachStats(ctx, "member-1", "Member"); err != nil {
		t.Fatalf("seed member coach stats: %v", err)
	}

	ranked, err := svc.GetGroupLeaderboard(ctx, "creator-1", g.ID)
	if err != nil {
		t.Fatalf("group leaderboard: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 ranked members, got %d", len(ranked))
	}
	for i, rm := range ranked {
		if rm.Rank != i+1 {
			t.Fatalf("expected sequential rank at index %d, got %d", i, rm.Rank)
		}
	}
}

func TestGroupService_LeaveGroup_RemovesMembership(t *testing.T) {
	svc, groups, _ := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, _, err := svc.JoinGroup(ctx, "member-1", g.InviteCode); err != nil {
		t.Fatalf("join group: %v", err)
	}

	if err := svc.LeaveGroup(ctx, "member-1", g.ID); err != nil {
		t.Fatalf("leave group: %v", err)
	}

	isMember, err := groups.IsMember(ctx, g.ID, "member-1")
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if isMember {
		t.Fatalf("expected member-1 to no longer be a member")
	}
}

func TestGroupService_LeaveGroup_NonMemberIsNotFound(t *testing.T) {
	svc, _, _ := newGroupFixture()
	ctx := context.Background()

	g, err := svc.CreateGroup(ctx, "creator-1", "Sunday League")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	if err := svc.LeaveGroup(ctx, "never-joined", g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func toLowerInviteCode(code string) string {
	b := []byte(code)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
