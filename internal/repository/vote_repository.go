package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ballotbox/internal/domain/poll"
	ballot_errors "ballotbox/pkg/errors"

	"github.com/google/uuid"
)

type PostgresVoteRepository struct {
	db DBTX
}

func NewVoteRepository(db DBTX) VoteRepository {
	return &PostgresVoteRepository{db: db}
}

// Create inserts the vote. The pre-insert duplicate check in the service has
// a TOCTOU window; the UNIQUE(poll_id, voter_id) constraint closes it, and a
// violation surfaces as ErrAlreadyVoted rather than a generic failure.
func (r *PostgresVoteRepository) Create(ctx context.Context, v *poll.Vote) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.VotedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO votes (id, poll_id, option_id, voter_id, voter_ip_address, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.ID, v.PollID, v.OptionID, v.VoterID, v.VoterIPAddress, v.VotedAt)
	if err != nil {
		if isConstraintViolation(err, "votes_one_per_voter") || isUniqueViolation(err) {
			return ballot_errors.ErrAlreadyVoted
		}
		return err
	}
	return nil
}

func (r *PostgresVoteRepository) HasVoted(ctx context.Context, pollID, voterID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM votes WHERE poll_id = $1 AND voter_id = $2)
	`, pollID, voterID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresVoteRepository) GetByPollAndVoter(ctx context.Context, pollID, voterID uuid.UUID) (poll.Vote, error) {
	var v poll.Vote
	err := r.db.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, voter_id, voter_ip_address, voted_at
		FROM votes WHERE poll_id = $1 AND voter_id = $2
	`, pollID, voterID).Scan(&v.ID, &v.PollID, &v.OptionID, &v.VoterID, &v.VoterIPAddress, &v.VotedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return poll.Vote{}, ballot_errors.ErrNotFound
		}
		return poll.Vote{}, err
	}
	return v, nil
}
