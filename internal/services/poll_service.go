package services

import (
	"context"

	"ballotbox/internal/domain/poll"
	"ballotbox/internal/repository"
	"ballotbox/internal/validation"
	ballot_errors "ballotbox/pkg/errors"
	"ballotbox/pkg/logger"

	"github.com/google/uuid"
)

// ResultsCache is the read-side cache for poll tallies. A nil cache is a
// valid configuration: every read then hits the store.
type ResultsCache interface {
	Get(ctx context.Context, pollID uuid.UUID) (*poll.Results, error)
	Set(ctx context.Context, results *poll.Results) error
	Invalidate(ctx context.Context, pollID uuid.UUID) error
}

// ResultsBroadcaster pushes fresh tallies to live watchers.
type ResultsBroadcaster interface {
	BroadcastResults(pollID uuid.UUID, results poll.Results)
}

type PollService struct {
	pollRepo    repository.PollRepository
	profileRepo repository.ProfileRepository
	cache       ResultsCache
	logger      *logger.Logger
}

func NewPollService(pollRepo repository.PollRepository, profileRepo repository.ProfileRepository, cache ResultsCache, l *logger.Logger) *PollService {
	return &PollService{
		pollRepo:    pollRepo,
		profileRepo: profileRepo,
		cache:       cache,
		logger:      l,
	}
}

// CreatePoll validates the payload, provisions a stub profile for first-time
// creators, and inserts the poll with its options in one transaction.
// Nothing is persisted when validation fails.
func (s *PollService) CreatePoll(ctx context.Context, payload validation.PollPayload, creatorID uuid.UUID) (poll.Poll, error) {
	if creatorID == uuid.Nil {
		return poll.Poll{}, ballot_errors.ErrUnauthenticated
	}
	if err := validation.ValidatePoll(&payload); err != nil {
		return poll.Poll{}, err
	}

	if err := s.profileRepo.EnsureExists(ctx, creatorID); err != nil {
		return poll.Poll{}, err
	}

	p := payloadToPoll(payload)
	p.CreatorID = &creatorID
	if err := s.pollRepo.Create(ctx, &p); err != nil {
		return poll.Poll{}, err
	}
	return p, nil
}

func (s *PollService) GetPoll(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	return s.pollRepo.GetByID(ctx, id)
}

func (s *PollService) ListActive(ctx context.Context, page, limit int) ([]poll.Poll, int64, error) {
	return s.pollRepo.ListActive(ctx, page, limit)
}

// UpdatePoll replaces the poll's fields and all of its options. Only the
// creator may update; a poll whose creator was deleted cannot be edited by
// anyone.
func (s *PollService) UpdatePoll(ctx context.Context, id uuid.UUID, payload validation.PollPayload, actorID uuid.UUID) (poll.Poll, error) {
	if actorID == uuid.Nil {
		return poll.Poll{}, ballot_errors.ErrUnauthenticated
	}

	existing, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return poll.Poll{}, err
	}
	if !existing.OwnedBy(actorID) {
		return poll.Poll{}, ballot_errors.ErrForbidden
	}

	if err := validation.ValidatePoll(&payload); err != nil {
		return poll.Poll{}, err
	}

	updated := payloadToPoll(payload)
	updated.ID = existing.ID
	updated.CreatorID = existing.CreatorID
	updated.StartDate = existing.StartDate
	updated.CreatedAt = existing.CreatedAt
	if err := s.pollRepo.Update(ctx, &updated); err != nil {
		return poll.Poll{}, err
	}

	s.invalidateResults(ctx, id)
	return s.pollRepo.GetByID(ctx, id)
}

// DeletePoll removes the poll with its options and votes. Creator only.
func (s *PollService) DeletePoll(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	if actorID == uuid.Nil {
		return ballot_errors.ErrUnauthenticated
	}

	existing, err := s.pollRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !existing.OwnedBy(actorID) {
		return ballot_errors.ErrForbidden
	}

	if err := s.pollRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateResults(ctx, id)
	return nil
}

// Results returns per-option counts and percentages, cache-aside. Repeated
// reads during a burst are served from the cache until a vote invalidates
// it or the TTL lapses.
func (s *PollService) Results(ctx context.Context, pollID uuid.UUID) (poll.Results, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, pollID)
		if err != nil && s.logger != nil {
			s.logger.Warnf("results cache read failed for poll %s: %v", pollID, err)
		}
		if cached != nil {
			return *cached, nil
		}
	}

	results, err := s.computeResults(ctx, pollID)
	if err != nil {
		return poll.Results{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &results); err != nil && s.logger != nil {
			s.logger.Warnf("results cache write failed for poll %s: %v", pollID, err)
		}
	}
	return results, nil
}

func (s *PollService) computeResults(ctx context.Context, pollID uuid.UUID) (poll.Results, error) {
	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return poll.Results{}, err
	}
	counts, err := s.pollRepo.CountVotes(ctx, pollID)
	if err != nil {
		return poll.Results{}, err
	}
	return poll.ComputeResults(p, counts), nil
}

func (s *PollService) invalidateResults(ctx context.Context, pollID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, pollID); err != nil && s.logger != nil {
		s.logger.Warnf("results cache invalidation failed for poll %s: %v", pollID, err)
	}
}

func payloadToPoll(payload validation.PollPayload) poll.Poll {
	p := poll.Poll{
		Title:        payload.Title,
		Description:  payload.Description,
		ElectionType: poll.ElectionType(payload.ElectionType),
		State:        payload.State,
		LGA:          payload.LGA,
		IsActive:     true,
		EndDate:      payload.EndDate,
	}
	if payload.IsActive != nil {
		p.IsActive = *payload.IsActive
	}
	if payload.StartDate != nil {
		p.StartDate = *payload.StartDate
	}
	for _, opt := range payload.Options {
		p.Options = append(p.Options, poll.Option{
			CandidateName:     opt.CandidateName,
			PartyName:         opt.PartyName,
			CandidateImageURL: opt.CandidateImageURL,
		})
	}
	return p
}
