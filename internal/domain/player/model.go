package player

import (
	"fmt"
	"time"
)

// League is one of the three tiers a player career climbs through.
type League string

const (
	LeagueTwo    League = "league_two"
	LeagueOne    League = "league_one"
	Championship League = "championship"
)

func (l League) Valid() bool {
	switch l {
	case LeagueTwo, LeagueOne, Championship:
		return true
	default:
		return false
	}
}

// CareerStatus is the lifecycle state of a Player.
type CareerStatus string

const (
	StatusActive    CareerStatus = "active"
	StatusCompleted CareerStatus = "completed"
)

// Player is a managed football career, externally assigned an id.
type Player struct {
	ID                string
	UserID            string
	DisplayName       string
	OverallRating      int
	CurrentLeague     League
	CareerStatus      CareerStatus
	CareerStartedAt   time.Time
	CareerCompletedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (p Player) IsActive() bool {
	return p.CareerStatus == StatusActive
}

// CareerCompletion records the one-time transition of a player to completed.
type CareerCompletion struct {
	ID             string
	PlayerID       string
	UserID         string
	DaysToPremier  int
	CompletedAt    time.Time
}

// CoachStats is the per-user aggregate used by leaderboards.
type CoachStats struct {
	UserID             string
	DisplayName        string
	CompletionsCount   int
	BestDaysToPremier  *int
	AvgDaysToPremier   *int
	TotalDaysSum       int
	UpdatedAt          time.Time
}

// DaysToPremier computes the canonical days-to-premier: ceiling, minimum 1.
func DaysToPremier(startedAt, completedAt time.Time) int {
	deltaMS := completedAt.Sub(startedAt).Milliseconds()
	if deltaMS <= 0 {
		return 1
	}
	const dayMS = 86_400_000
	days := (deltaMS + dayMS - 1) / dayMS
	if days < 1 {
		days = 1
	}
	return int(days)
}

// RankedCoach is one row of the global leaderboard window query.
type RankedCoach struct {
	UserID            string
	DisplayName       string
	Rank              int
	CompletionsCount  int
	BestDaysToPremier *int
	AvgDaysToPremier  *int
	IsCaller          bool
}

func ValidateLeagueField(value string) (League, error) {
	l := League(value)
	if !l.Valid() {
		return "", fmt.Errorf("invalid league %q", value)
	}
	return l, nil
}
