package services

import (
	"context"
	"time"

	"ballotbox/internal/domain/poll"
	"ballotbox/internal/repository"
	ballot_errors "ballotbox/pkg/errors"
	"ballotbox/pkg/logger"

	"github.com/google/uuid"
)

type VoteService struct {
	voteRepo    repository.VoteRepository
	pollRepo    repository.PollRepository
	profileRepo repository.ProfileRepository
	cache       ResultsCache
	broadcaster ResultsBroadcaster
	logger      *logger.Logger
	now         repository.Clock
}

func NewVoteService(
	voteRepo repository.VoteRepository,
	pollRepo repository.PollRepository,
	profileRepo repository.ProfileRepository,
	cache ResultsCache,
	broadcaster ResultsBroadcaster,
	l *logger.Logger,
) *VoteService {
	return &VoteService{
		voteRepo:    voteRepo,
		pollRepo:    pollRepo,
		profileRepo: profileRepo,
		cache:       cache,
		broadcaster: broadcaster,
		logger:      l,
		now:         time.Now,
	}
}

// WithClock pins the service's time source; used by tests to exercise
// expiry without sleeping.
func (s *VoteService) WithClock(now repository.Clock) *VoteService {
	s.now = now
	return s
}

// CastVote applies the voting guards in order, short-circuiting on the
// first failure: authenticated voter, poll exists, option belongs to the
// poll, poll active, poll not ended, no prior vote. The duplicate pre-check
// gives a fast user-facing error; the unique constraint on
// (poll_id, voter_id) remains the source of truth and a violation during
// the insert also surfaces as ErrAlreadyVoted.
func (s *VoteService) CastVote(ctx context.Context, pollID, optionID, voterID uuid.UUID, voterIP string) error {
	if voterID == uuid.Nil {
		return ballot_errors.ErrUnauthenticated
	}

	p, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	if !optionBelongs(p, optionID) {
		return ballot_errors.ErrNotFound
	}

	if !p.IsActive {
		return ballot_errors.ErrPollInactive
	}

	if p.Ended(s.now()) {
		return ballot_errors.ErrPollEnded
	}

	voted, err := s.voteRepo.HasVoted(ctx, pollID, voterID)
	if err != nil {
		return err
	}
	if voted {
		return ballot_errors.ErrAlreadyVoted
	}

	if err := s.profileRepo.EnsureExists(ctx, voterID); err != nil {
		return err
	}

	vote := poll.Vote{
		PollID:         pollID,
		OptionID:       optionID,
		VoterID:        voterID,
		VoterIPAddress: voterIP,
	}
	if err := s.voteRepo.Create(ctx, &vote); err != nil {
		return err
	}

	s.afterVote(ctx, p)
	return nil
}

// afterVote invalidates the cached tally and pushes the fresh one to live
// watchers. Both are best effort; the vote is already durable.
func (s *VoteService) afterVote(ctx context.Context, p poll.Poll) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, p.ID); err != nil && s.logger != nil {
			s.logger.Warnf("results cache invalidation failed for poll %s: %v", p.ID, err)
		}
	}

	if s.broadcaster == nil {
		return
	}
	counts, err := s.pollRepo.CountVotes(ctx, p.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warnf("live results recount failed for poll %s: %v", p.ID, err)
		}
		return
	}
	s.broadcaster.BroadcastResults(p.ID, poll.ComputeResults(p, counts))
}

func optionBelongs(p poll.Poll, optionID uuid.UUID) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}
