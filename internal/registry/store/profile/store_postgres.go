package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"carehub/internal/registry/models"
	id "carehub/pkg/domain"
	"carehub/pkg/platform/sentinel"
)

// Postgres persists profiles in the caregiver_profiles table.
//
// Certifications are stored as a JSONB array so ordering survives the round
// trip without driver-specific array types. The identity column carries a
// unique constraint; Create maps its violation to sentinel.ErrConflict, so
// concurrent registrations for one identity resolve to exactly one success.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle. Schema is managed externally
// (see migrations/).
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, p *models.Profile) error {
	certs, err := json.Marshal(p.Certifications)
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO caregiver_profiles
			(identity, name, bio, experience_years, certifications,
			 is_available, reputation_score, review_count, is_verified, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.Identity.String(), p.Name, p.Bio, p.ExperienceYears, certs,
		p.IsAvailable, int64(p.ReputationScore), int64(p.ReviewCount), p.IsVerified, int64(p.LastUpdated))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Postgres) FindByIdentity(ctx context.Context, identity id.Identity) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT identity, name, bio, experience_years, certifications,
		       is_available, reputation_score, review_count, is_verified, last_updated
		FROM caregiver_profiles
		WHERE identity = $1
	`, identity.String())
	return scanProfile(row)
}

func (s *Postgres) Update(ctx context.Context, p *models.Profile) error {
	certs, err := json.Marshal(p.Certifications)
	if err != nil {
		return fmt.Errorf("marshal certifications: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE caregiver_profiles
		SET name = $2, bio = $3, experience_years = $4, certifications = $5,
		    is_available = $6, reputation_score = $7, review_count = $8,
		    is_verified = $9, last_updated = $10
		WHERE identity = $1
	`, p.Identity.String(), p.Name, p.Bio, p.ExperienceYears, certs,
		p.IsAvailable, int64(p.ReputationScore), int64(p.ReviewCount), p.IsVerified, int64(p.LastUpdated))
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM caregiver_profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	var (
		p        models.Profile
		identity string
		certs    []byte
		score    int64
		reviews  int64
		updated  int64
	)
	err := row.Scan(&identity, &p.Name, &p.Bio, &p.ExperienceYears, &certs,
		&p.IsAvailable, &score, &reviews, &p.IsVerified, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	if err := json.Unmarshal(certs, &p.Certifications); err != nil {
		return nil, fmt.Errorf("unmarshal certifications: %w", err)
	}
	p.Identity = id.Identity(identity)
	p.ReputationScore = uint64(score)
	p.ReviewCount = uint64(reviews)
	p.LastUpdated = uint64(updated)
	return &p, nil
}
