package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"ballotbox/internal/domain/poll"
	ballot_errors "ballotbox/pkg/errors"
)

// PollPayload is the typed poll-creation/update request. Nothing dynamic
// crosses this boundary: the payload either validates fully or the caller
// gets every violation back at once.
type PollPayload struct {
	Title        string              `json:"title" validate:"required,max=500"`
	Description  string              `json:"description" validate:"omitempty,max=2000"`
	ElectionType string              `json:"election_type" validate:"required,election_type"`
	State        string              `json:"state" validate:"omitempty,max=100"`
	LGA          string              `json:"lga" validate:"omitempty,max=100"`
	IsActive     *bool               `json:"is_active"`
	StartDate    *time.Time          `json:"start_date"`
	EndDate      *time.Time          `json:"end_date"`
	Options      []PollOptionPayload `json:"options" validate:"min=2,max=10,dive"`
}

// PollOptionPayload is one candidate entry.
type PollOptionPayload struct {
	CandidateName     string `json:"candidate_name" validate:"required,max=255"`
	PartyName         string `json:"party_name" validate:"omitempty,max=100"`
	CandidateImageURL string `json:"candidate_image_url" validate:"omitempty,url"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("election_type", func(fl validator.FieldLevel) bool {
		return poll.ValidElectionType(fl.Field().String())
	})
	return v
}

// ValidatePoll normalizes and validates a poll payload. Fields are trimmed
// and option entries with an empty candidate name are dropped before the
// rules run, so a submission padded with blank rows still needs two real
// candidates. Returns ballot_errors.ValidationError on any failure.
func ValidatePoll(p *PollPayload) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.ElectionType = strings.TrimSpace(p.ElectionType)
	p.State = strings.TrimSpace(p.State)
	p.LGA = strings.TrimSpace(p.LGA)

	kept := p.Options[:0]
	for _, opt := range p.Options {
		opt.CandidateName = strings.TrimSpace(opt.CandidateName)
		opt.PartyName = strings.TrimSpace(opt.PartyName)
		opt.CandidateImageURL = strings.TrimSpace(opt.CandidateImageURL)
		if opt.CandidateName == "" {
			continue
		}
		kept = append(kept, opt)
	}
	p.Options = kept

	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ballot_errors.NewValidationError([]string{"invalid poll payload"})
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, messageFor(fe))
	}
	return ballot_errors.NewValidationError(messages)
}

func messageFor(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		if fe.Kind().String() == "slice" {
			return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a well-formed URL", field)
	case "election_type":
		return fmt.Sprintf("%s must be one of: %s", field, electionTypeList())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldName converts the struct namespace into the JSON-ish field name users
// see, e.g. "Options[1].CandidateName" -> "options[1].candidate_name".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	var b strings.Builder
	for i, r := range ns {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && ns[i-1] != '.' && ns[i-1] != '[' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	s := b.String()
	s = strings.ReplaceAll(s, "l_g_a", "lga")
	s = strings.ReplaceAll(s, "_u_r_l", "_url")
	return s
}

func electionTypeList() string {
	names := make([]string, len(poll.ElectionTypes))
	for i, t := range poll.ElectionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
