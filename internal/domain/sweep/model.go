package sweep

import "time"

// State is the singleton row (id=1) tracking the last executed sweep day.
type State struct {
	LastSweepUTCDay int64
	LastSweepAt     time.Time
	RunCount        int
}

// AdvisoryLockKey is the fixed Postgres session advisory lock key the sweep
// engine holds for the duration of its state transition.
const AdvisoryLockKey = int64(0x5357454550) // "SWEEP" packed into an int64

// UTCDay is unix_ms / 86_400_000, floored.
func UTCDay(t time.Time) int64 {
	return t.UnixMilli() / 86_400_000
}

// IsScheduledDay reports whether the sweep runs on this UTC day: every
// fourth UTC day.
func IsScheduledDay(day int64) bool {
	return day%4 == 0
}

// Promotion/completion rating thresholds.
const (
	LeagueTwoToOneRating      = 70
	LeagueOneToChampRating    = 78
	ChampionshipCompleteRating = 86
)

// PromotionOutcome summarizes one league's promotion batch.
type PromotionOutcome struct {
	FromLeague string
	ToLeague   string
	Count      int
}

// Classification is the per-player sweep decision.
type Classification string

const (
	ClassificationSkip       Classification = "skip"
	ClassificationPromote    Classification = "promote"
	ClassificationComplete   Classification = "complete"
)

type Result struct {
	Ran              bool   `json:"ran"`
	AlreadyRanToday  bool   `json:"already_ran_today"`
	UTCDay           int64  `json:"utc_day"`
	TotalActive      int    `json:"total_active"`
	PromotedCount    int    `json:"promoted_count"`
	CompletedCount   int    `json:"completed_count"`
	SkippedCount     int    `json:"skipped_count"`
	Promotions       []PromotionSummary `json:"promotions"`
	Skips            []PlayerSummary    `json:"skips"`
	Completions      []CompletionSummary `json:"completions"`
	Errors           []ItemError         `json:"errors"`
}

type PromotionSummary struct {
	PlayerID  string `json:"player_id"`
	FromLeague string `json:"from_league"`
	ToLeague   string `json:"to_league"`
}

type PlayerSummary struct {
	PlayerID string `json:"player_id"`
	League   string `json:"league"`
	Rating   int    `json:"rating"`
}

type CompletionSummary struct {
	PlayerID        string `json:"player_id"`
	UserID          string `json:"user_id"`
	DaysToPremier   int    `json:"days_to_premier"`
	AlreadyCompleted bool  `json:"already_completed"`
}

type ItemError struct {
	PlayerID string `json:"player_id"`
	Message  string `json:"message"`
}
