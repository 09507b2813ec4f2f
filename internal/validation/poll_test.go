package validation

import (
	"strings"
	"testing"

	ballot_errors "ballotbox/pkg/errors"
)

func validPayload() *PollPayload {
	return &PollPayload{
		Title:        "Presidential Election 2027",
		ElectionType: "presidential",
		Options: []PollOptionPayload{
			{CandidateName: "Ada Obi", PartyName: "APP"},
			{CandidateName: "Bola Musa", PartyName: "NDP"},
		},
	}
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		t.Fatal("ValidatePoll() = nil, want validation error")
	}
	verr, ok := ballot_errors.AsValidation(err)
	if !ok {
		t.Fatalf("ValidatePoll() error type = %T, want *ValidationError", err)
	}
	return verr.Messages
}

func hasMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidatePollAccepted(t *testing.T) {
	if err := ValidatePoll(validPayload()); err != nil {
		t.Fatalf("ValidatePoll() = %v, want nil", err)
	}
}

func TestValidatePollMissingTitle(t *testing.T) {
	p := validPayload()
	p.Title = "   "
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "title is required") {
		t.Errorf("messages = %v, want title required", msgs)
	}
}

func TestValidatePollTooFewOptions(t *testing.T) {
	p := validPayload()
	p.Options = p.Options[:1]
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "options must have at least 2 entries") {
		t.Errorf("messages = %v, want min-options violation", msgs)
	}
}

func TestValidatePollBlankCandidatesDropped(t *testing.T) {
	// Padding with blank candidate rows must not satisfy the two-option
	// minimum.
	p := validPayload()
	p.Options = []PollOptionPayload{
		{CandidateName: "Ada Obi"},
		{CandidateName: "   "},
		{CandidateName: ""},
	}
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "options must have at least 2 entries") {
		t.Errorf("messages = %v, want min-options violation after dropping blanks", msgs)
	}
	if len(p.Options) != 1 {
		t.Errorf("kept options = %d, want 1", len(p.Options))
	}
}

func TestValidatePollInvalidElectionType(t *testing.T) {
	p := validPayload()
	p.ElectionType = "mayoral"
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "election_type must be one of") {
		t.Errorf("messages = %v, want election_type violation", msgs)
	}
}

func TestValidatePollCandidateNameTooLong(t *testing.T) {
	p := validPayload()
	p.Options[1].CandidateName = strings.Repeat("x", 256)
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "options[1].candidate_name must be at most 255 characters") {
		t.Errorf("messages = %v, want candidate_name length violation", msgs)
	}
}

func TestValidatePollBadImageURL(t *testing.T) {
	p := validPayload()
	p.Options[0].CandidateImageURL = "not-a-url"
	msgs := validationMessages(t, ValidatePoll(p))
	if !hasMessage(msgs, "options[0].candidate_image_url must be a well-formed URL") {
		t.Errorf("messages = %v, want image URL violation", msgs)
	}
}

func TestValidatePollAggregatesViolations(t *testing.T) {
	p := &PollPayload{
		Title:        "",
		ElectionType: "bogus",
		Options:      []PollOptionPayload{{CandidateName: "Solo"}},
	}
	msgs := validationMessages(t, ValidatePoll(p))
	if len(msgs) < 3 {
		t.Fatalf("got %d messages %v, want all violations reported together", len(msgs), msgs)
	}
	for _, want := range []string{"title is required", "election_type must be one of", "at least 2 entries"} {
		if !hasMessage(msgs, want) {
			t.Errorf("messages = %v, missing %q", msgs, want)
		}
	}
}

func TestValidatePollTrimsFields(t *testing.T) {
	p := validPayload()
	p.Title = "  Gubernatorial Race  "
	p.State = " Lagos "
	if err := ValidatePoll(p); err != nil {
		t.Fatalf("ValidatePoll() = %v, want nil", err)
	}
	if p.Title != "Gubernatorial Race" {
		t.Errorf("Title = %q, want trimmed", p.Title)
	}
	if p.State != "Lagos" {
		t.Errorf("State = %q, want trimmed", p.State)
	}
}
