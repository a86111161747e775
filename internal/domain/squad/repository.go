package squad

import (
	"context"
	"time"
)

// SquadWithFacilities bundles a squad with its four facility rows, the shape
// most callers (profile view, upgrade pipeline) actually need.
type SquadWithFacilities struct {
	Squad      Squad
	Facilities []Facility
}

type Repository interface {
	Create(ctx context.Context, s Squad) (Squad, error)
	GetByID(ctx context.Context, squadID string) (Squad, bool, error)
	// GetByIDForUpdate locks the squad row; must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, squadID string) (Squad, bool, error)
	GetActiveMembershipByUser(ctx context.Context, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, squadID string) ([]Member, error)
	UpsertMember(ctx context.Context, m Member) error
	GetMember(ctx context.Context, squadID, userID string) (Member, bool, error)
	GetMemberForUpdate(ctx context.Context, squadID, userID string) (Member, bool, error)
	SetMemberStatus(ctx context.Context, squadID, userID string, status MemberStatus) error
	SetMemberRole(ctx context.Context, squadID, userID string, role Role) error
	CountActiveLeadersOrCoLeaders(ctx context.Context, squadID string, excludeUserID string) (int, error)
	CountActiveMembers(ctx context.Context, squadID string) (int, error)

	ListFacilities(ctx context.Context, squadID string) ([]Facility, error)
	GetFacilityForUpdate(ctx context.Context, squadID string, facilityType FacilityType) (Facility, error)
	SetFacilityLevel(ctx context.Context, squadID string, facilityType FacilityType, level int) error

	CreateJoinRequest(ctx context.Context, r JoinRequest) (JoinRequest, error)
	GetPendingJoinRequest(ctx context.Context, squadID, userID string) (JoinRequest, bool, error)
	GetJoinRequestForUpdate(ctx context.Context, requestID string) (JoinRequest, bool, error)
	ResolveJoinRequest(ctx context.Context, requestID string, status RequestStatus, resolvedBy string, resolvedAt time.Time) error
	ListJoinRequestsBySquad(ctx context.Context, squadID string) ([]JoinRequest, error)

	AddSquadPoints(ctx context.Context, squadID string, delta int) error
	InsertPointEvent(ctx context.Context, e PointEvent) error
	InsertSpendTransaction(ctx context.Context, t SpendTransaction) error
	SetSquadLevel(ctx context.Context, squadID string, level int) error
	DeductUnspentPoints(ctx context.Context, squadID string, cost int) error
	TouchUpdatedAt(ctx context.Context, squadID string) error

	Search(ctx context.Context, query string, limit int) ([]Squad, error)
	Leaderboard(ctx context.Context, limit int) ([]Squad, error)
}
