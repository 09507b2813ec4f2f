package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ballotbox/internal/domain/profile"
	ballot_errors "ballotbox/pkg/errors"

	"github.com/google/uuid"
)

type PostgresProfileRepository struct {
	db DBTX
}

func NewProfileRepository(db DBTX) ProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) Create(ctx context.Context, p *profile.Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, password_hash, full_name, avatar_url, state, lga, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, p.ID, p.Email, p.PasswordHash, p.FullName, p.AvatarURL, p.State, p.LGA, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ballot_errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, avatar_url, state, lga, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
	return scanProfile(row)
}

func (r *PostgresProfileRepository) GetByEmail(ctx context.Context, email string) (profile.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, avatar_url, state, lga, created_at, updated_at
		FROM profiles WHERE email = $1
	`, email)
	return scanProfile(row)
}

func scanProfile(row *sql.Row) (profile.Profile, error) {
	var p profile.Profile
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FullName, &p.AvatarURL,
		&p.State, &p.LGA, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, ballot_errors.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) Update(ctx context.Context, p profile.Profile) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles
		SET email = $2, full_name = $3, avatar_url = $4, state = $5, lga = $6, updated_at = $7
		WHERE id = $1
	`, p.ID, p.Email, p.FullName, p.AvatarURL, p.State, p.LGA, time.Now())
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
}

func (r *PostgresProfileRepository) EnsureExists(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (id) DO NOTHING
	`, id)
	return err
}

func (r *PostgresProfileRepository) CreateSession(ctx context.Context, s *profile.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile_id, refresh_token_hash, expires_at, is_revoked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.ProfileID, s.RefreshTokenHash, s.ExpiresAt, s.IsRevoked, s.CreatedAt)
	return err
}

func (r *PostgresProfileRepository) GetSessionByID(ctx context.Context, sessionID uuid.UUID) (profile.Session, error) {
	var s profile.Session
	err := r.db.QueryRowContext(ctx, `
		SELECT id, profile_id, refresh_token_hash, expires_at, is_revoked, created_at
		FROM sessions WHERE id = $1
	`, sessionID).Scan(&s.ID, &s.ProfileID, &s.RefreshTokenHash, &s.ExpiresAt, &s.IsRevoked, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Session{}, ballot_errors.ErrNotFound
		}
		return profile.Session{}, err
	}
	return s, nil
}

func (r *PostgresProfileRepository) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET is_revoked = TRUE WHERE id = $1
	`, sessionID)
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
}

func (r *PostgresProfileRepository) UpdateSession(ctx context.Context, s profile.Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET refresh_token_hash = $2, expires_at = $3, is_revoked = $4
		WHERE id = $1
	`, s.ID, s.RefreshTokenHash, s.ExpiresAt, s.IsRevoked)
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
}
