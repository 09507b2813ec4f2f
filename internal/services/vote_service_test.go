package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"ballotbox/internal/domain/poll"
	ballot_errors "ballotbox/pkg/errors"
	"ballotbox/pkg/logger"
)

type voteFixture struct {
	service     *VoteService
	votes       *fakeVoteRepo
	polls       *fakePollRepo
	profiles    *fakeProfileRepo
	cache       *fakeCache
	broadcaster *fakeBroadcaster
	poll        poll.Poll
}

func newVoteFixture(t *testing.T, mutate func(*poll.Poll)) *voteFixture {
	t.Helper()
	votes := newFakeVoteRepo()
	polls := newFakePollRepo(votes)
	profiles := newFakeProfileRepo()
	cache := newFakeCache()
	broadcaster := &fakeBroadcaster{}

	end := time.Now().Add(24 * time.Hour)
	p := poll.Poll{
		Title:        "Presidential Election",
		ElectionType: poll.ElectionPresidential,
		IsActive:     true,
		EndDate:      &end,
		Options: []poll.Option{
			{CandidateName: "Ada Obi"},
			{CandidateName: "Bola Musa"},
		},
	}
	if mutate != nil {
		mutate(&p)
	}
	if err := polls.Create(context.Background(), &p); err != nil {
		t.Fatalf("seeding poll: %v", err)
	}

	service := NewVoteService(votes, polls, profiles, cache, broadcaster, logger.New(logger.DevelopmentMode))
	return &voteFixture{
		service:     service,
		votes:       votes,
		polls:       polls,
		profiles:    profiles,
		cache:       cache,
		broadcaster: broadcaster,
		poll:        p,
	}
}

func TestCastVoteSuccess(t *testing.T) {
	f := newVoteFixture(t, nil)
	voter := uuid.New()

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, voter, "10.0.0.1")
	if err != nil {
		t.Fatalf("CastVote() = %v, want nil", err)
	}

	voted, _ := f.votes.HasVoted(context.Background(), f.poll.ID, voter)
	if !voted {
		t.Error("vote not persisted")
	}
	// First-time voter gets a stub profile.
	if _, err := f.profiles.GetByID(context.Background(), voter); err != nil {
		t.Errorf("voter profile not provisioned: %v", err)
	}
	if f.cache.invalidates != 1 {
		t.Errorf("cache invalidations = %d, want 1", f.cache.invalidates)
	}
	if f.broadcaster.count() != 1 {
		t.Errorf("broadcasts = %d, want 1", f.broadcaster.count())
	}
}

func TestCastVoteUnauthenticated(t *testing.T) {
	f := newVoteFixture(t, nil)

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.Nil, "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrUnauthenticated) {
		t.Fatalf("CastVote() = %v, want ErrUnauthenticated", err)
	}
}

func TestCastVotePollNotFound(t *testing.T) {
	f := newVoteFixture(t, nil)

	err := f.service.CastVote(context.Background(), uuid.New(), f.poll.Options[0].ID, uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrNotFound) {
		t.Fatalf("CastVote() = %v, want ErrNotFound", err)
	}
}

func TestCastVoteOptionFromOtherPoll(t *testing.T) {
	f := newVoteFixture(t, nil)

	err := f.service.CastVote(context.Background(), f.poll.ID, uuid.New(), uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrNotFound) {
		t.Fatalf("CastVote() = %v, want ErrNotFound for foreign option", err)
	}
}

func TestCastVoteInactivePoll(t *testing.T) {
	f := newVoteFixture(t, func(p *poll.Poll) { p.IsActive = false })

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrPollInactive) {
		t.Fatalf("CastVote() = %v, want ErrPollInactive", err)
	}
}

func TestCastVoteEndedPoll(t *testing.T) {
	f := newVoteFixture(t, nil)
	// Pin the clock past the poll's end date.
	f.service.WithClock(func() time.Time { return f.poll.EndDate.Add(time.Minute) })

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrPollEnded) {
		t.Fatalf("CastVote() = %v, want ErrPollEnded", err)
	}
}

func TestCastVoteEndDateExactlyNow(t *testing.T) {
	f := newVoteFixture(t, nil)
	f.service.WithClock(func() time.Time { return *f.poll.EndDate })

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrPollEnded) {
		t.Fatalf("CastVote() at the exact end instant = %v, want ErrPollEnded", err)
	}
}

func TestCastVoteTwiceSameVoter(t *testing.T) {
	f := newVoteFixture(t, nil)
	voter := uuid.New()

	if err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, voter, "10.0.0.1"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	// Second vote for a different option still hits the one-vote rule.
	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[1].ID, voter, "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrAlreadyVoted) {
		t.Fatalf("second vote = %v, want ErrAlreadyVoted", err)
	}

	counts := f.votes.countByOption(f.poll.ID)
	if counts[f.poll.Options[0].ID] != 1 || counts[f.poll.Options[1].ID] != 0 {
		t.Errorf("counts = %v, want exactly the first vote", counts)
	}
}

func TestCastVoteConstraintRace(t *testing.T) {
	// The pre-check misses a concurrent insert; the repository surfaces the
	// unique violation as ErrAlreadyVoted.
	f := newVoteFixture(t, nil)
	f.votes.createErr = ballot_errors.ErrAlreadyVoted

	err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.New(), "10.0.0.1")
	if !errors.Is(err, ballot_errors.ErrAlreadyVoted) {
		t.Fatalf("CastVote() = %v, want ErrAlreadyVoted from insert", err)
	}
	if f.broadcaster.count() != 0 {
		t.Errorf("broadcasts = %d, want 0 after failed insert", f.broadcaster.count())
	}
}

func TestCastVoteDifferentVotersCounted(t *testing.T) {
	f := newVoteFixture(t, nil)

	for i := 0; i < 3; i++ {
		if err := f.service.CastVote(context.Background(), f.poll.ID, f.poll.Options[0].ID, uuid.New(), "10.0.0.1"); err != nil {
			t.Fatalf("vote %d: %v", i+1, err)
		}
	}

	counts := f.votes.countByOption(f.poll.ID)
	if counts[f.poll.Options[0].ID] != 3 {
		t.Errorf("count = %d, want 3", counts[f.poll.Options[0].ID])
	}
}
