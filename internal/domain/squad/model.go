package squad

import (
	"fmt"
	"strings"
	"time"
)

type Privacy string

const (
	PrivacyOpen    Privacy = "open"
	PrivacyRequest Privacy = "request"
	PrivacyClosed  Privacy = "closed"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyOpen, PrivacyRequest, PrivacyClosed:
		return true
	default:
		return false
	}
}

type Role string

const (
	RoleLeader   Role = "leader"
	RoleCoLeader Role = "co_leader"
	RoleMember   Role = "member"
)

type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type FacilityType string

const (
	FacilityTrainingEquipment FacilityType = "training_equipment"
	FacilitySpa               FacilityType = "spa"
	FacilityAnalysisRoom      FacilityType = "analysis_room"
	FacilityMedicalCenter     FacilityType = "medical_center"
)

func (f FacilityType) Valid() bool {
	switch f {
	case FacilityTrainingEquipment, FacilitySpa, FacilityAnalysisRoom, FacilityMedicalCenter:
		return true
	default:
		return false
	}
}

// AllFacilityTypes is the fixed set every squad gets initialized with at level 0.
var AllFacilityTypes = []FacilityType{
	FacilityTrainingEquipment,
	FacilitySpa,
	FacilityAnalysisRoom,
	FacilityMedicalCenter,
}

// BaseCost is the per-level-step cost for each facility.
var BaseCost = map[FacilityType]int{
	FacilityTrainingEquipment: 5,
	FacilitySpa:               8,
	FacilityAnalysisRoom:      6,
	FacilityMedicalCenter:     7,
}

func UpgradeCost(facilityType FacilityType, currentLevel int) int {
	return BaseCost[facilityType] * (currentLevel + 1)
}

type Squad struct {
	ID             string
	Name           string
	Tag            string
	Description    string
	LeaderUserID   string
	Privacy        Privacy
	TotalPoints    int
	UnspentPoints  int
	Level          int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// LevelFromFacilities is the canonical squad.level formula.
func LevelFromFacilities(facilityLevelSum int) int {
	return 1 + facilityLevelSum/4
}

type Member struct {
	SquadID            string
	UserID             string
	Role               Role
	PointsContributed  int
	Status             MemberStatus
	JoinedAt           time.Time
}

type JoinRequest struct {
	ID          string
	SquadID     string
	UserID      string
	Status      RequestStatus
	CreatedAt   time.Time
	ResolvedAt  *time.Time
	ResolvedBy  *string
}

type Facility struct {
	SquadID      string
	FacilityType FacilityType
	Level        int
}

type PointEvent struct {
	ID        string
	SquadID   string
	UserID    string
	Points    int
	Reason    string
	CreatedAt time.Time
}

type SpendTransaction struct {
	ID           string
	SquadID      string
	UserID       string
	FacilityType FacilityType
	Cost         int
	NewLevel     int
	CreatedAt    time.Time
}

var tagAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// SanitizeTag upper-cases and strips any character outside A-Z0-9.
func SanitizeTag(raw string) (string, error) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range raw {
		if strings.ContainsRune(tagAlphabet, r) {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if len(clean) < 2 || len(clean) > 5 {
		return "", fmt.Errorf("tag must be 2-5 uppercase alphanumeric characters")
	}
	return clean, nil
}
