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

type PostgresPollRepository struct {
	db DBTX
}

func NewPollRepository(db DBTX) PollRepository {
	return &PostgresPollRepository{db: db}
}

// Create inserts the poll row and all option rows inside one transaction, so
// a failed option insert can never leave an orphaned poll behind.
func (r *PostgresPollRepository) Create(ctx context.Context, p *poll.Poll) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.StartDate.IsZero() {
		p.StartDate = now
	}

	return WithTx(ctx, r.db, func(tx DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO polls (id, title, description, election_type, state, lga, creator_id,
				is_active, start_date, end_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, p.ID, p.Title, p.Description, p.ElectionType, p.State, p.LGA, p.CreatorID,
			p.IsActive, p.StartDate, p.EndDate, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return err
		}
		return insertOptions(ctx, tx, p)
	})
}

func insertOptions(ctx context.Context, tx DBTX, p *poll.Poll) error {
	for i := range p.Options {
		opt := &p.Options[i]
		if opt.ID == uuid.Nil {
			opt.ID = uuid.New()
		}
		opt.PollID = p.ID
		opt.DisplayOrder = i + 1
		opt.CreatedAt = time.Now()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll_options (id, poll_id, candidate_name, party_name, candidate_image_url, display_order, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, opt.ID, opt.PollID, opt.CandidateName, opt.PartyName, opt.CandidateImageURL, opt.DisplayOrder, opt.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPollRepository) GetByID(ctx context.Context, id uuid.UUID) (poll.Poll, error) {
	var p poll.Poll
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, description, election_type, state, lga, creator_id,
			is_active, start_date, end_date, created_at, updated_at
		FROM polls WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.ElectionType, &p.State, &p.LGA,
		&p.CreatorID, &p.IsActive, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return poll.Poll{}, ballot_errors.ErrNotFound
		}
		return poll.Poll{}, err
	}

	opts, err := r.getOptions(ctx, id)
	if err != nil {
		return poll.Poll{}, err
	}
	p.Options = opts
	return p, nil
}

func (r *PostgresPollRepository) getOptions(ctx context.Context, pollID uuid.UUID) ([]poll.Option, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, poll_id, candidate_name, party_name, candidate_image_url, display_order, created_at
		FROM poll_options WHERE poll_id = $1
		ORDER BY display_order ASC
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []poll.Option
	for rows.Next() {
		var o poll.Option
		if err := rows.Scan(&o.ID, &o.PollID, &o.CandidateName, &o.PartyName,
			&o.CandidateImageURL, &o.DisplayOrder, &o.CreatedAt); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (r *PostgresPollRepository) ListActive(ctx context.Context, page, limit int) ([]poll.Poll, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM polls
		WHERE is_active = TRUE AND (end_date IS NULL OR end_date > now())
	`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, description, election_type, state, lga, creator_id,
			is_active, start_date, end_date, created_at, updated_at
		FROM polls
		WHERE is_active = TRUE AND (end_date IS NULL OR end_date > now())
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var polls []poll.Poll
	for rows.Next() {
		var p poll.Poll
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ElectionType, &p.State, &p.LGA,
			&p.CreatorID, &p.IsActive, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		polls = append(polls, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range polls {
		opts, err := r.getOptions(ctx, polls[i].ID)
		if err != nil {
			return nil, 0, err
		}
		polls[i].Options = opts
	}
	return polls, total, nil
}

// Update rewrites the poll row and replaces all options (delete-then-reinsert,
// not a diff) in the same transaction. Vote rows are never touched: a vote
// whose option was replaced keeps holding the voter's one-per-poll slot but
// no longer contributes to tallies.
func (r *PostgresPollRepository) Update(ctx context.Context, p *poll.Poll) error {
	p.UpdatedAt = time.Now()
	return WithTx(ctx, r.db, func(tx DBTX) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE polls
			SET title = $2, description = $3, election_type = $4, state = $5, lga = $6,
				is_active = $7, end_date = $8, updated_at = $9
			WHERE id = $1
		`, p.ID, p.Title, p.Description, p.ElectionType, p.State, p.LGA,
			p.IsActive, p.EndDate, p.UpdatedAt)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ballot_errors.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = $1`, p.ID); err != nil {
			return err
		}
		return insertOptions(ctx, tx, p)
	})
}

// Delete removes votes, options and the poll row in one transaction. The
// schema also cascades, but the explicit ordering keeps the behavior
// independent of it.
func (r *PostgresPollRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return WithTx(ctx, r.db, func(tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM poll_options WHERE poll_id = $1`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ballot_errors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresPollRepository) CountVotes(ctx context.Context, pollID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT option_id, COUNT(*) FROM votes
		WHERE poll_id = $1
		GROUP BY option_id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var optionID uuid.UUID
		var count int64
		if err := rows.Scan(&optionID, &count); err != nil {
			return nil, err
		}
		counts[optionID] = count
	}
	return counts, rows.Err()
}
