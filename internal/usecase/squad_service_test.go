package usecase

import (
	"context"
	"errors"
	"testing"

	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
	"github.com/riskibarqy/football-brain/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/football-brain/internal/platform/id"
	"github.com/riskibarqy/football-brain/internal/platform/logging"
)

func newSquadFixture() (*SquadService, *memory.SquadRepository) {
	repo := memory.NewSquadRepository()
	svc := NewSquadService(repo, idgen.NewRandomGenerator(), logging.NewNop())
	return svc, repo
}

func TestSquadService_CreateSquad_InitializesLeaderAndFacilities(t *testing.T) {
	svc, repo := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	if squad.LeaderUserID != "leader-1" {
		t.Fatalf("expected leader_user_id leader-1, got %s", squad.LeaderUserID)
	}
	if squad.Privacy != squaddomain.PrivacyOpen {
		t.Fatalf("expected default privacy open, got %s", squad.Privacy)
	}

	member, ok, err := repo.GetMember(ctx, squad.ID, "leader-1")
	if err != nil || !ok {
		t.Fatalf("expected leader membership, ok=%v err=%v", ok, err)
	}
	if member.Role != squaddomain.RoleLeader {
		t.Fatalf("expected leader role, got %s", member.Role)
	}

	facilities, err := repo.ListFacilities(ctx, squad.ID)
	if err != nil {
		t.Fatalf("list facilities: %v", err)
	}
	if len(facilities) != len(squaddomain.AllFacilityTypes) {
		t.Fatalf("expected %d facilities, got %d", len(squaddomain.AllFacilityTypes), len(facilities))
	}
	for _, f := range facilities {
		if f.Level != 0 {
			t.Fatalf("expected facility %s to start at level 0, got %d", f.FacilityType, f.Level)
		}
	}
}

func TestSquadService_CreateSquad_RejectsSecondActiveSquad(t *testing.T) {
	svc, _ := newSquadFixture()
	ctx := context.Background()

	if _, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts"}); err != nil {
		t.Fatalf("create first squad: %v", err)
	}
	_, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Other"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for second active squad, got %v", err)
	}
}

func TestSquadService_JoinOpenSquad_JoinsDirectly(t *testing.T) {
	svc, repo := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts", Privacy: string(squaddomain.PrivacyOpen)})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	if err := svc.JoinOpenSquad(ctx, "member-1", squad.ID); err != nil {
		t.Fatalf("join open squad: %v", err)
	}

	member, ok, err := repo.GetMember(ctx, squad.ID, "member-1")
	if err != nil || !ok {
		t.Fatalf("expected member joined, ok=%v err=%v", ok, err)
	}
	if member.Role != squaddomain.RoleMember {
		t.Fatalf("expected member role, got %s", member.Role)
	}
}

func TestSquadService_RequestJoinSquad_ClosedSquadsAreConflict(t *testing.T) {
	svc, _ := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Vault", Privacy: string(squaddomain.PrivacyClosed)})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	_, err = svc.RequestJoinSquad(ctx, "member-1", squad.ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for closed squad, got %v", err)
	}
}

func TestSquadService_RequestJoinSquad_RequestApprovalFlow(t *testing.T) {
	svc, repo := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Gate", Privacy: string(squaddomain.PrivacyRequest)})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	req, err := svc.RequestJoinSquad(ctx, "member-1", squad.ID)
	if err != nil {
		t.Fatalf("request join: %v", err)
	}
	if req.Status != squaddomain.RequestPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}

	// resolving requires leader or co-leader
	if err := svc.ResolveJoinRequest(ctx, req.ID, "member-1", ActionApprove); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-leader resolver, got %v", err)
	}

	if err := svc.ResolveJoinRequest(ctx, req.ID, "leader-1", ActionApprove); err != nil {
		t.Fatalf("approve join request: %v", err)
	}

	member, ok, err := repo.GetMember(ctx, squad.ID, "member-1")
	if err != nil || !ok {
		t.Fatalf("expected approved member, ok=%v err=%v", ok, err)
	}
	if member.Status != squaddomain.MemberActive {
		t.Fatalf("expected active membership after approval, got %s", member.Status)
	}
}

func TestSquadService_LeaveSquad_LeaderMustPromoteFirst(t *testing.T) {
	svc, _ := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}
	if err := svc.JoinOpenSquad(ctx, "member-1", squad.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	if err := svc.LeaveSquad(ctx, "leader-1", squad.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict when leader leaves without promoting, got %v", err)
	}

	if err := svc.SetMemberRole(ctx, "leader-1", squad.ID, "member-1", squaddomain.RoleCoLeader); err != nil {
		t.Fatalf("promote member: %v", err)
	}

	if err := svc.LeaveSquad(ctx, "leader-1", squad.ID); err != nil {
		t.Fatalf("expected leader to leave after promoting a co-leader, got %v", err)
	}
}

func TestSquadService_UpgradeSquadFacility_DeductsPointsAndRecomputesLevel(t *testing.T) {
	svc, repo := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	cost := squaddomain.UpgradeCost(squaddomain.FacilityTrainingEquipment, 0)
	if err := repo.AddSquadPoints(ctx, squad.ID, cost); err != nil {
		t.Fatalf("seed squad points: %v", err)
	}

	facility, err := svc.UpgradeSquadFacility(ctx, "leader-1", squad.ID, squaddomain.FacilityTrainingEquipment)
	if err != nil {
		t.Fatalf("upgrade facility: %v", err)
	}
	if facility.Level != 1 {
		t.Fatalf("expected facility level 1, got %d", facility.Level)
	}

	updated, _, err := repo.GetByID(ctx, squad.ID)
	if err != nil {
		t.Fatalf("get squad: %v", err)
	}
	if updated.UnspentPoints != 0 {
		t.Fatalf("expected unspent points fully deducted, got %d", updated.UnspentPoints)
	}
	if updated.Level != squaddomain.LevelFromFacilities(1) {
		t.Fatalf("expected recomputed level %d, got %d", squaddomain.LevelFromFacilities(1), updated.Level)
	}
}

func TestSquadService_UpgradeSquadFacility_InsufficientPoints(t *testing.T) {
	svc, _ := newSquadFixture()
	ctx := context.Background()

	squad, err := svc.CreateSquad(ctx, CreateSquadInput{UserID: "leader-1", Name: "Scouts"})
	if err != nil {
		t.Fatalf("create squad: %v", err)
	}

	_, err = svc.UpgradeSquadFacility(ctx, "leader-1", squad.ID, squaddomain.FacilityTrainingEquipment)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for insufficient points, got %v", err)
	}
}
