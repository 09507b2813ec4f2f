package poll

import (
	"time"

	"github.com/google/uuid"
)

// ElectionType is one of the five fixed election categories.
type ElectionType string

const (
	ElectionPresidential    ElectionType = "presidential"
	ElectionGubernatorial   ElectionType = "gubernatorial"
	ElectionSenatorial      ElectionType = "senatorial"
	ElectionHouseOfReps     ElectionType = "house_of_reps"
	ElectionLocalGovernment ElectionType = "local_government"
)

// ElectionTypes lists every valid category.
var ElectionTypes = []ElectionType{
	ElectionPresidential,
	ElectionGubernatorial,
	ElectionSenatorial,
	ElectionHouseOfReps,
	ElectionLocalGovernment,
}

// ValidElectionType reports whether s is one of the fixed categories.
func ValidElectionType(s string) bool {
	for _, t := range ElectionTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Poll represents the polls table. CreatorID is nullable: deleting the
// creator keeps the poll but leaves it uneditable by anyone.
type Poll struct {
	ID           uuid.UUID
	Title        string
	Description  string
	ElectionType ElectionType
	State        string
	LGA          string
	CreatorID    *uuid.UUID
	IsActive     bool
	StartDate    time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Options []Option
}

// Ended reports whether the poll's end date has passed. Voting requires the
// end date to be strictly after now.
func (p Poll) Ended(now time.Time) bool {
	if p.EndDate == nil {
		return false
	}
	return !p.EndDate.After(now)
}

// OwnedBy reports whether userID is the poll's creator. A poll without a
// creator is owned by nobody.
func (p Poll) OwnedBy(userID uuid.UUID) bool {
	return p.CreatorID != nil && *p.CreatorID == userID
}

// Option represents the poll_options table. Options belong to exactly one
// poll and are cascade-deleted with it. DisplayOrder is assigned 1..N in
// submission order and is stable for the option's lifetime.
type Option struct {
	ID                uuid.UUID
	PollID            uuid.UUID
	CandidateName     string
	PartyName         string
	CandidateImageURL string
	DisplayOrder      int
	CreatedAt         time.Time
}

// Vote represents the votes table. Votes are immutable after creation and
// carry a UNIQUE(poll_id, voter_id) constraint, the system's one true
// correctness invariant.
type Vote struct {
	ID             uuid.UUID
	PollID         uuid.UUID
	OptionID       uuid.UUID
	VoterID        uuid.UUID
	VoterIPAddress string
	VotedAt        time.Time
}

func (Poll) TableName() string {
	return "polls"
}

func (Option) TableName() string {
	return "poll_options"
}

func (Vote) TableName() string {
	return "votes"
}
