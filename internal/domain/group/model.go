package group

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Group is a private friend group ("leaderboard group") with a shareable
// invite code.
type Group struct {
	ID         string
	Name       string
	InviteCode string
	CreatedBy  string
	CreatedAt  time.Time
}

type Member struct {
	GroupID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// RankedMember is a group member joined with their coach stats for the
// leaderboard view, using the same comparator as the global board.
type RankedMember struct {
	UserID            string
	DisplayName       string
	Rank              int
	CompletionsCount  int
	BestDaysToPremier *int
	AvgDaysToPremier  *int
}
