package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"ballotbox/internal/domain/poll"
	"ballotbox/internal/domain/profile"
	ballot_errors "ballotbox/pkg/errors"
)

// In-memory repository fakes mirroring the Postgres contracts: Create
// assigns IDs and option display order, Delete cascades, and a duplicate
// (poll_id, voter_id) insert fails with ErrAlreadyVoted.

type fakePollRepo struct {
	mu    sync.Mutex
	polls map[uuid.UUID]poll.Poll
	votes *fakeVoteRepo

	createErr error
}

func newFakePollRepo(votes *fakeVoteRepo) *fakePollRepo {
	return &fakePollRepo{polls: map[uuid.UUID]poll.Poll{}, votes: votes}
}

func (r *fakePollRepo) Create(_ context.Context, p *poll.Poll) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	for i := range p.Options {
		p.Options[i].ID = uuid.New()
		p.Options[i].PollID = p.ID
		p.Options[i].DisplayOrder = i + 1
	}
	r.polls[p.ID] = *p
	return nil
}

func (r *fakePollRepo) GetByID(_ context.Context, id uuid.UUID) (poll.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.polls[id]
	if !ok {
		return poll.Poll{}, ballot_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakePollRepo) ListActive(_ context.Context, page, limit int) ([]poll.Poll, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []poll.Poll
	for _, p := range r.polls {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePollRepo) Update(_ context.Context, p *poll.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[p.ID]; !ok {
		return ballot_errors.ErrNotFound
	}
	for i := range p.Options {
		p.Options[i].ID = uuid.New()
		p.Options[i].PollID = p.ID
		p.Options[i].DisplayOrder = i + 1
	}
	r.polls[p.ID] = *p
	return nil
}

func (r *fakePollRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.polls[id]; !ok {
		return ballot_errors.ErrNotFound
	}
	delete(r.polls, id)
	if r.votes != nil {
		r.votes.deleteByPoll(id)
	}
	return nil
}

func (r *fakePollRepo) CountVotes(_ context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	if r.votes == nil {
		return map[uuid.UUID]int64{}, nil
	}
	return r.votes.countByOption(pollID), nil
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes []poll.Vote

	createErr error
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{}
}

func (r *fakeVoteRepo) Create(_ context.Context, v *poll.Vote) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.votes {
		if existing.PollID == v.PollID && existing.VoterID == v.VoterID {
			return ballot_errors.ErrAlreadyVoted
		}
	}
	v.ID = uuid.New()
	r.votes = append(r.votes, *v)
	return nil
}

func (r *fakeVoteRepo) HasVoted(_ context.Context, pollID, voterID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.PollID == pollID && v.VoterID == voterID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeVoteRepo) GetByPollAndVoter(_ context.Context, pollID, voterID uuid.UUID) (poll.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.votes {
		if v.PollID == pollID && v.VoterID == voterID {
			return v, nil
		}
	}
	return poll.Vote{}, ballot_errors.ErrNotFound
}

func (r *fakeVoteRepo) deleteByPoll(pollID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.votes[:0]
	for _, v := range r.votes {
		if v.PollID != pollID {
			kept = append(kept, v)
		}
	}
	r.votes = kept
}

func (r *fakeVoteRepo) countByOption(pollID uuid.UUID) map[uuid.UUID]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[uuid.UUID]int64{}
	for _, v := range r.votes {
		if v.PollID == pollID {
			counts[v.OptionID]++
		}
	}
	return counts
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]profile.Profile
	sessions map[uuid.UUID]profile.Session

	byEmail map[string]uuid.UUID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{
		profiles: map[uuid.UUID]profile.Profile{},
		sessions: map[uuid.UUID]profile.Session{},
		byEmail:  map[string]uuid.UUID{},
	}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.Email.Valid {
		if _, ok := r.byEmail[p.Email.String]; ok {
			return ballot_errors.ErrAlreadyExists
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.profiles[p.ID] = *p
	if p.Email.Valid {
		r.byEmail[p.Email.String] = p.ID
	}
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id uuid.UUID) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return profile.Profile{}, ballot_errors.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return profile.Profile{}, ballot_errors.ErrNotFound
	}
	return r.profiles[id], nil
}

func (r *fakeProfileRepo) Update(_ context.Context, p profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.ID]; !ok {
		return ballot_errors.ErrNotFound
	}
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) EnsureExists(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		r.profiles[id] = profile.Profile{ID: id}
	}
	return nil
}

func (r *fakeProfileRepo) CreateSession(_ context.Context, s *profile.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sessions[s.ID] = *s
	return nil
}

func (r *fakeProfileRepo) GetSessionByID(_ context.Context, sessionID uuid.UUID) (profile.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return profile.Session{}, ballot_errors.ErrNotFound
	}
	return s, nil
}

func (r *fakeProfileRepo) RevokeSession(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return ballot_errors.ErrNotFound
	}
	s.IsRevoked = true
	r.sessions[sessionID] = s
	return nil
}

func (r *fakeProfileRepo) UpdateSession(_ context.Context, s profile.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; !ok {
		return ballot_errors.ErrNotFound
	}
	r.sessions[s.ID] = s
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]poll.Results
	gets        int
	sets        int
	invalidates int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[uuid.UUID]poll.Results{}}
}

func (c *fakeCache) Get(_ context.Context, pollID uuid.UUID) (*poll.Results, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if r, ok := c.entries[pollID]; ok {
		return &r, nil
	}
	return nil, nil
}

func (c *fakeCache) Set(_ context.Context, results *poll.Results) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[results.PollID] = *results
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, pollID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidates++
	delete(c.entries, pollID)
	return nil
}

type fakeBroadcaster struct {
	mu        sync.Mutex
	broadcast []poll.Results
}

func (b *fakeBroadcaster) BroadcastResults(_ uuid.UUID, results poll.Results) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.broadcast = append(b.broadcast, results)
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.broadcast)
}
