package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ballotbox/internal/domain/poll"
	"ballotbox/internal/domain/profile"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *profile.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error)
	GetByEmail(ctx context.Context, email string) (profile.Profile, error)
	Update(ctx context.Context, p profile.Profile) error
	// EnsureExists inserts a minimal stub profile when none exists for id.
	// The profile primary key is the user's own identity, so a concurrent
	// duplicate insert fails safely and is not an error.
	EnsureExists(ctx context.Context, id uuid.UUID) error

	CreateSession(ctx context.Context, s *profile.Session) error
	GetSessionByID(ctx context.Context, sessionID uuid.UUID) (profile.Session, error)
	RevokeSession(ctx context.Context, sessionID uuid.UUID) error
	UpdateSession(ctx context.Context, s profile.Session) error
}

type PollRepository interface {
	// Create inserts the poll and all of its options in one transaction.
	Create(ctx context.Context, p *poll.Poll) error
	GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error)
	ListActive(ctx context.Context, page, limit int) ([]poll.Poll, int64, error)
	// Update rewrites the poll row and replaces all options
	// (delete-then-reinsert) in one transaction.
	Update(ctx context.Context, p *poll.Poll) error
	// Delete removes the poll; options and votes go with it.
	Delete(ctx context.Context, id uuid.UUID) error
	// CountVotes returns per-option vote counts for the poll.
	CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error)
}

type VoteRepository interface {
	// Create inserts a vote. A unique violation on (poll_id, voter_id) is
	// reported as ErrAlreadyVoted; the constraint is the source of truth.
	Create(ctx context.Context, v *poll.Vote) error
	HasVoted(ctx context.Context, pollID, voterID uuid.UUID) (bool, error)
	GetByPollAndVoter(ctx context.Context, pollID, voterID uuid.UUID) (poll.Vote, error)
}

// Clock lets time-dependent behavior be pinned down in tests.
type Clock func() time.Time
