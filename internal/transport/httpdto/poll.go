package httpdto

import (
	"time"

	"ballotbox/internal/domain/poll"
)

// VoteRequest is used for POST /v1/polls/:id/votes
type VoteRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

// PollDTO represents a poll in API responses
type PollDTO struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	ElectionType string      `json:"election_type"`
	State        string      `json:"state,omitempty"`
	LGA          string      `json:"lga,omitempty"`
	CreatorID    string      `json:"creator_id,omitempty"`
	IsActive     bool        `json:"is_active"`
	StartDate    time.Time   `json:"start_date"`
	EndDate      *time.Time  `json:"end_date,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	Options      []OptionDTO `json:"options"`
}

// OptionDTO represents a candidate option in API responses
type OptionDTO struct {
	ID                string `json:"id"`
	CandidateName     string `json:"candidate_name"`
	PartyName         string `json:"party_name,omitempty"`
	CandidateImageURL string `json:"candidate_image_url,omitempty"`
	DisplayOrder      int    `json:"display_order"`
}

// ListPollsResponse is returned when listing active polls
type ListPollsResponse struct {
	Polls []PollDTO `json:"polls"`
	Total int64     `json:"total"`
}

// ResultsDTO is the derived read view of a poll's tallies
type ResultsDTO struct {
	PollID     string            `json:"poll_id"`
	TotalVotes int64             `json:"total_votes"`
	Options    []OptionResultDTO `json:"options"`
}

// OptionResultDTO is the tally for one candidate
type OptionResultDTO struct {
	OptionID          string  `json:"option_id"`
	CandidateName     string  `json:"candidate_name"`
	PartyName         string  `json:"party_name,omitempty"`
	CandidateImageURL string  `json:"candidate_image_url,omitempty"`
	DisplayOrder      int     `json:"display_order"`
	VoteCount         int64   `json:"vote_count"`
	Percentage        float64 `json:"percentage"`
}

func FromPoll(p poll.Poll) PollDTO {
	dto := PollDTO{
		ID:           p.ID.String(),
		Title:        p.Title,
		Description:  p.Description,
		ElectionType: string(p.ElectionType),
		State:        p.State,
		LGA:          p.LGA,
		IsActive:     p.IsActive,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if p.CreatorID != nil {
		dto.CreatorID = p.CreatorID.String()
	}
	for _, opt := range p.Options {
		dto.Options = append(dto.Options, OptionDTO{
			ID:                opt.ID.String(),
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
			DisplayOrder:      opt.DisplayOrder,
		})
	}
	return dto
}

func FromPollSlice(polls []poll.Poll) []PollDTO {
	dtos := make([]PollDTO, 0, len(polls))
	for _, p := range polls {
		dtos = append(dtos, FromPoll(p))
	}
	return dtos
}

func FromResults(r poll.Results) ResultsDTO {
	dto := ResultsDTO{
		PollID:     r.PollID.String(),
		TotalVotes: r.TotalVotes,
	}
	for _, opt := range r.Options {
		dto.Options = append(dto.Options, OptionResultDTO{
			OptionID:          opt.OptionID.String(),
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
			DisplayOrder:      opt.DisplayOrder,
			VoteCount:         opt.VoteCount,
			Percentage:        opt.Percentage,
		})
	}
	return dto
}
