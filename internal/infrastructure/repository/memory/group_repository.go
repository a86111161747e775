package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	groupdomain "github.com/riskibarqy/football-brain/internal/domain/group"
)

type GroupRepository struct {
	mu      sync.Mutex
	groups  map[string]groupdomain.Group
	members map[memberKey]groupdomain.Member // memberKey.squadID reused as groupID
	now     func() time.Time
}

func NewGroupRepository() *GroupRepository {
	return &GroupRepository{
		groups:  make(map[string]groupdomain.Group),
		members: make(map[memberKey]groupdomain.Member),
		now:     time.Now,
	}
}

func (r *GroupRepository) Create(ctx context.Context, g groupdomain.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.groups {
		if existing.InviteCode == g.InviteCode {
			return errAlreadyExists("invite code collision")
		}
	}
	g.CreatedAt = r.now()
	r.groups[g.ID] = g
	key := memberKey{squadID: g.ID, userID: g.CreatedBy}
	r.members[key] = groupdomain.Member{GroupID: g.ID, UserID: g.CreatedBy, Role: groupdomain.RoleAdmin, JoinedAt: g.CreatedAt}
	return nil
}

func (r *GroupRepository) GetByInviteCode(ctx context.Context, inviteCode string) (groupdomain.Group, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.InviteCode == inviteCode {
			return g, true, nil
		}
	}
	return groupdomain.Group{}, false, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, groupID string) (groupdomain.Group, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupID]
	return g, ok, nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[memberKey{squadID: groupID, userID: userID}]
	return ok, nil
}

func (r *GroupRepository) AddMember(ctx context.Context, m groupdomain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{squadID: m.GroupID, userID: m.UserID}
	if _, ok := r.members[key]; ok {
		return nil
	}
	m.JoinedAt = r.now()
	r.members[key] = m
	return nil
}

func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, memberKey{squadID: groupID, userID: userID})
	return nil
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID string) ([]groupdomain.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]groupdomain.Group, 0)
	for key := range r.members {
		if key.userID == userID {
			if g, ok := r.groups[key.squadID]; ok {
				out = append(out, g)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID string) ([]groupdomain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]groupdomain.Member, 0)
	for key, m := range r.members {
		if key.squadID == groupID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

type simpleError string

func (e simpleError) Error() string { return string(e) }

func errAlreadyExists(msg string) error { return simpleError(msg) }
