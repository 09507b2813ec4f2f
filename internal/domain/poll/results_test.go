package poll

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func twoOptionPoll() (Poll, uuid.UUID, uuid.UUID) {
	pollID := uuid.New()
	a, b := uuid.New(), uuid.New()
	end := time.Now().Add(24 * time.Hour)
	p := Poll{
		ID:           pollID,
		Title:        "Presidential Election",
		ElectionType: ElectionPresidential,
		IsActive:     true,
		EndDate:      &end,
		Options: []Option{
			{ID: a, PollID: pollID, CandidateName: "Ada Obi", DisplayOrder: 1},
			{ID: b, PollID: pollID, CandidateName: "Bola Musa", DisplayOrder: 2},
		},
	}
	return p, a, b
}

func TestComputeResultsZeroVotes(t *testing.T) {
	p, _, _ := twoOptionPoll()
	r := ComputeResults(p, map[uuid.UUID]int64{})

	if r.TotalVotes != 0 {
		t.Errorf("TotalVotes = %d, want 0", r.TotalVotes)
	}
	for _, opt := range r.Options {
		if opt.VoteCount != 0 || opt.Percentage != 0 {
			t.Errorf("%s: count=%d pct=%v, want zeros", opt.CandidateName, opt.VoteCount, opt.Percentage)
		}
	}
	// No votes means display order decides.
	if r.Options[0].CandidateName != "Ada Obi" {
		t.Errorf("first option = %s, want display order preserved", r.Options[0].CandidateName)
	}
}

func TestComputeResultsPercentages(t *testing.T) {
	p, a, b := twoOptionPoll()
	r := ComputeResults(p, map[uuid.UUID]int64{a: 2, b: 0})

	if r.TotalVotes != 2 {
		t.Fatalf("TotalVotes = %d, want 2", r.TotalVotes)
	}
	if r.Options[0].OptionID != a || r.Options[0].Percentage != 100 {
		t.Errorf("leader = %s at %v%%, want Ada Obi at 100%%", r.Options[0].CandidateName, r.Options[0].Percentage)
	}
	if r.Options[1].OptionID != b || r.Options[1].Percentage != 0 {
		t.Errorf("trailer = %s at %v%%, want Bola Musa at 0%%", r.Options[1].CandidateName, r.Options[1].Percentage)
	}
}

func TestComputeResultsRounding(t *testing.T) {
	pollID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p := Poll{
		ID: pollID,
		Options: []Option{
			{ID: a, DisplayOrder: 1},
			{ID: b, DisplayOrder: 2},
			{ID: c, DisplayOrder: 3},
		},
	}
	r := ComputeResults(p, map[uuid.UUID]int64{a: 1, b: 1, c: 1})

	for _, opt := range r.Options {
		if opt.Percentage != 33.33 {
			t.Errorf("Percentage = %v, want 33.33", opt.Percentage)
		}
	}
}

func TestComputeResultsOrdersByCountThenDisplayOrder(t *testing.T) {
	pollID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	p := Poll{
		ID: pollID,
		Options: []Option{
			{ID: a, CandidateName: "A", DisplayOrder: 1},
			{ID: b, CandidateName: "B", DisplayOrder: 2},
			{ID: c, CandidateName: "C", DisplayOrder: 3},
		},
	}
	// B leads; A and C tie, so display order breaks the tie.
	r := ComputeResults(p, map[uuid.UUID]int64{a: 2, b: 5, c: 2})

	got := []string{r.Options[0].CandidateName, r.Options[1].CandidateName, r.Options[2].CandidateName}
	want := []string{"B", "A", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestPollEnded(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	tests := []struct {
		name    string
		endDate *time.Time
		want    bool
	}{
		{"no end date", nil, false},
		{"future end date", &future, false},
		{"exactly now", &now, true},
		{"past end date", &past, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Poll{EndDate: tt.endDate}
			if got := p.Ended(now); got != tt.want {
				t.Errorf("Ended() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidElectionType(t *testing.T) {
	for _, et := range ElectionTypes {
		if !ValidElectionType(string(et)) {
			t.Errorf("ValidElectionType(%q) = false, want true", et)
		}
	}
	if ValidElectionType("mayoral") {
		t.Error("ValidElectionType(\"mayoral\") = true, want false")
	}
}
