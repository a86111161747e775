package group

import "context"

type Repository interface {
	Create(ctx context.Context, g Group) error
	GetByInviteCode(ctx context.Context, inviteCode string) (Group, bool, error)
	GetByID(ctx context.Context, groupID string) (Group, bool, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	AddMember(ctx context.Context, m Member) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListByUser(ctx context.Context, userID string) ([]Group, error)
	ListMembers(ctx context.Context, groupID string) ([]Member, error)
}
