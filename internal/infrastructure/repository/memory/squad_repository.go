package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	squaddomain "github.com/riskibarqy/football-brain/internal/domain/squad"
)

type memberKey struct {
	squadID string
	userID  string
}

type SquadRepository struct {
	mu           sync.Mutex
	squads       map[string]squaddomain.Squad
	members      map[memberKey]squaddomain.Member
	facilities   map[memberKey]squaddomain.Facility // reuses memberKey as {squadID, facilityType}
	joinRequests map[string]squaddomain.JoinRequest
	now          func() time.Time
}

func NewSquadRepository() *SquadRepository {
	return &SquadRepository{
		squads:       make(map[string]squaddomain.Squad),
		members:      make(map[memberKey]squaddomain.Member),
		facilities:   make(map[memberKey]squaddomain.Facility),
		joinRequests: make(map[string]squaddomain.JoinRequest),
		now:          time.Now,
	}
}

func (r *SquadRepository) Create(ctx context.Context, s squaddomain.Squad) (squaddomain.Squad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.Tag != "" {
		for _, existing := range r.squads {
			if existing.Tag == s.Tag {
				return squaddomain.Squad{}, fmt.Errorf("tag already taken")
			}
		}
	}
	s.Level = 1
	s.CreatedAt = r.now()
	s.UpdatedAt = s.CreatedAt
	r.squads[s.ID] = s
	for _, ft := range squaddomain.AllFacilityTypes {
		r.facilities[memberKey{squadID: s.ID, userID: string(ft)}] = squaddomain.Facility{SquadID: s.ID, FacilityType: ft, Level: 0}
	}
	return s, nil
}

func (r *SquadRepository) GetByID(ctx context.Context, squadID string) (squaddomain.Squad, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.squads[squadID]
	return s, ok, nil
}

func (r *SquadRepository) GetByIDForUpdate(ctx context.Context, squadID string) (squaddomain.Squad, bool, error) {
	return r.GetByID(ctx, squadID)
}

func (r *SquadRepository) GetActiveMembershipByUser(ctx context.Context, userID string) (squaddomain.Member, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.UserID == userID && m.Status == squaddomain.MemberActive {
			return m, true, nil
		}
	}
	return squaddomain.Member{}, false, nil
}

func (r *SquadRepository) ListMembers(ctx context.Context, squadID string) ([]squaddomain.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]squaddomain.Member, 0)
	for _, m := range r.members {
		if m.SquadID == squadID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *SquadRepository) UpsertMember(ctx context.Context, m squaddomain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{squadID: m.SquadID, userID: m.UserID}
	if existing, ok := r.members[key]; ok {
		m.JoinedAt = existing.JoinedAt
	} else {
		m.JoinedAt = r.now()
	}
	r.members[key] = m
	return nil
}

func (r *SquadRepository) GetMember(ctx context.Context, squadID, userID string) (squaddomain.Member, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberKey{squadID: squadID, userID: userID}]
	return m, ok, nil
}

func (r *SquadRepository) GetMemberForUpdate(ctx context.Context, squadID, userID string) (squaddomain.Member, bool, error) {
	return r.GetMember(ctx, squadID, userID)
}

func (r *SquadRepository) SetMemberStatus(ctx context.Context, squadID, userID string, status squaddomain.MemberStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{squadID: squadID, userID: userID}
	m, ok := r.members[key]
	if !ok {
		return fmt.Errorf("member not found")
	}
	m.Status = status
	r.members[key] = m
	return nil
}

func (r *SquadRepository) SetMemberRole(ctx context.Context, squadID, userID string, role squaddomain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{squadID: squadID, userID: userID}
	m, ok := r.members[key]
	if !ok {
		return fmt.Errorf("member not found")
	}
	m.Role = role
	r.members[key] = m
	return nil
}

func (r *SquadRepository) CountActiveLeadersOrCoLeaders(ctx context.Context, squadID string, excludeUserID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.members {
		if m.SquadID == squadID && m.Status == squaddomain.MemberActive && (m.Role == squaddomain.RoleLeader || m.Role == squaddomain.RoleCoLeader) && m.UserID != excludeUserID {
			n++
		}
	}
	return n, nil
}

func (r *SquadRepository) CountActiveMembers(ctx context.Context, squadID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.members {
		if m.SquadID == squadID && m.Status == squaddomain.MemberActive {
			n++
		}
	}
	return n, nil
}

func (r *SquadRepository) ListFacilities(ctx context.Context, squadID string) ([]squaddomain.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]squaddomain.Facility, 0, len(squaddomain.AllFacilityTypes))
	for _, ft := range squaddomain.AllFacilityTypes {
		out = append(out, r.facilities[memberKey{squadID: squadID, userID: string(ft)}])
	}
	return out, nil
}

func (r *SquadRepository) GetFacilityForUpdate(ctx context.Context, squadID string, facilityType squaddomain.FacilityType) (squaddomain.Facility, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.facilities[memberKey{squadID: squadID, userID: string(facilityType)}], nil
}

func (r *SquadRepository) SetFacilityLevel(ctx context.Context, squadID string, facilityType squaddomain.FacilityType, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{squadID: squadID, userID: string(facilityType)}
	f := r.facilities[key]
	f.Level = level
	r.facilities[key] = f
	return nil
}

func (r *SquadRepository) CreateJoinRequest(ctx context.Context, jr squaddomain.JoinRequest) (squaddomain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jr.CreatedAt = r.now()
	r.joinRequests[jr.ID] = jr
	return jr, nil
}

func (r *SquadRepository) GetPendingJoinRequest(ctx context.Context, squadID, userID string) (squaddomain.JoinRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, jr := range r.joinRequests {
		if jr.SquadID == squadID && jr.UserID == userID && jr.Status == squaddomain.RequestPending {
			return jr, true, nil
		}
	}
	return squaddomain.JoinRequest{}, false, nil
}

func (r *SquadRepository) GetJoinRequestForUpdate(ctx context.Context, requestID string) (squaddomain.JoinRequest, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	jr, ok := r.joinRequests[requestID]
	return jr, ok, nil
}

func (r *SquadRepository) ResolveJoinRequest(ctx context.Context, requestID string, status squaddomain.RequestStatus, resolvedBy string, resolvedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	jr, ok := r.joinRequests[requestID]
	if !ok {
		return fmt.Errorf("join request not found")
	}
	jr.Status = status
	jr.ResolvedBy = &resolvedBy
	jr.ResolvedAt = &resolvedAt
	r.joinRequests[requestID] = jr
	return nil
}

func (r *SquadRepository) ListJoinRequestsBySquad(ctx context.Context, squadID string) ([]squaddomain.JoinRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]squaddomain.JoinRequest, 0)
	for _, jr := range r.joinRequests {
		if jr.SquadID == squadID {
			out = append(out, jr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *SquadRepository) AddSquadPoints(ctx context.Context, squadID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.squads[squadID]
	if !ok {
		return fmt.Errorf("squad not found")
	}
	s.TotalPoints += delta
	s.UnspentPoints += delta
	s.UpdatedAt = r.now()
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) InsertPointEvent(ctx context.Context, e squaddomain.PointEvent) error {
	return nil
}

func (r *SquadRepository) InsertSpendTransaction(ctx context.Context, t squaddomain.SpendTransaction) error {
	return nil
}

func (r *SquadRepository) SetSquadLevel(ctx context.Context, squadID string, level int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.squads[squadID]
	if !ok {
		return fmt.Errorf("squad not found")
	}
	s.Level = level
	s.UpdatedAt = r.now()
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) DeductUnspentPoints(ctx context.Context, squadID string, cost int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.squads[squadID]
	if !ok {
		return fmt.Errorf("squad not found")
	}
	s.UnspentPoints -= cost
	s.UpdatedAt = r.now()
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) TouchUpdatedAt(ctx context.Context, squadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.squads[squadID]
	if !ok {
		return fmt.Errorf("squad not found")
	}
	s.UpdatedAt = r.now()
	r.squads[squadID] = s
	return nil
}

func (r *SquadRepository) Search(ctx context.Context, query string, limit int) ([]squaddomain.Squad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]squaddomain.Squad, 0)
	for _, s := range r.squads {
		if containsFold(s.Name, query) || containsFold(s.Tag, query) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalPoints > out[j].TotalPoints })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *SquadRepository) Leaderboard(ctx context.Context, limit int) ([]squaddomain.Squad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]squaddomain.Squad, 0, len(r.squads))
	for _, s := range r.squads {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		if out[i].Level != out[j].Level {
			return out[i].Level > out[j].Level
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// creditActiveSquad mirrors the postgres CompleteCareer transaction's direct
// squad credit, so the memory fake exercises the same cross-aggregate path
// in usecase tests without a real database.
func (r *SquadRepository) creditActiveSquad(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, m := range r.members {
		if m.UserID == userID && m.Status == squaddomain.MemberActive {
			m.PointsContributed++
			r.members[key] = m
			if s, ok := r.squads[m.SquadID]; ok {
				s.TotalPoints++
				s.UnspentPoints++
				s.UpdatedAt = r.now()
				r.squads[m.SquadID] = s
			}
			return
		}
	}
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	h, n := []rune(haystack), []rune(needle)
	toLower := func(rs []rune) []rune {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r = r + ('a' - 'A')
			}
			out[i] = r
		}
		return out
	}
	h, n = toLower(h), toLower(n)
	if len(n) > len(h) {
		return false
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if h[i+j] != n[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
