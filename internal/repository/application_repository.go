package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// ApplicationRepository encapsulates adoption attempt persistence. A partial
// unique index on (user_id) WHERE status='SUBMITTED' makes the
// check-then-create of a new attempt atomic per user.
type ApplicationRepository interface {
	CreateSubmitted(ctx context.Context, record *domain.ApplicationRecord) error
	GetByID(ctx context.Context, id string) (*domain.ApplicationRecord, error)
	// GetSubmittedByUser returns the user's current open attempt, ErrNotFound
	// when none exists.
	GetSubmittedByUser(ctx context.Context, userID string) (*domain.ApplicationRecord, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error)
	// ListByStatus returns records ordered by submitted_at ascending.
	ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.ApplicationRecord, error)
	// AttachPet sets the pet on a still-submitted record.
	AttachPet(ctx context.Context, id string, petID int64) error
	// MarkReviewed terminalizes a SUBMITTED record. Returns ErrStatusConflict
	// when the record was already reviewed, ErrNotFound when it does not exist.
	MarkReviewed(ctx context.Context, id string, status domain.ApplicationStatus, reviewedAt time.Time, reviewerID string) error
}

type applicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository instantiates repository.
func NewApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &applicationRepository{pool: pool}
}

func (r *applicationRepository) CreateSubmitted(ctx context.Context, record *domain.ApplicationRecord) error {
	payload, err := encodeResponses(record.Responses)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO applications (external_key, user_id, status, pet_id, responses, submitted_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	err = r.pool.QueryRow(ctx, query,
		record.ExternalKey,
		record.UserID,
		domain.ApplicationStatusSubmitted,
		record.PetID,
		payload,
		record.SubmittedAt,
	).Scan(&record.ID)
	if isUniqueViolation(err) {
		return ErrOpenRecordExists
	}
	if err != nil {
		return err
	}
	record.Status = domain.ApplicationStatusSubmitted
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*domain.ApplicationRecord, error) {
	const query = selectApplication + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *applicationRepository) GetSubmittedByUser(ctx context.Context, userID string) (*domain.ApplicationRecord, error) {
	const query = selectApplication + ` WHERE user_id=$1 AND status='SUBMITTED'`
	return r.fetchSingle(ctx, query, userID)
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID string) ([]domain.ApplicationRecord, error) {
	const query = selectApplication + ` WHERE user_id=$1 ORDER BY submitted_at ASC`
	return r.fetchMany(ctx, query, userID)
}

func (r *applicationRepository) ListByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.ApplicationRecord, error) {
	const query = selectApplication + ` WHERE status=$1 ORDER BY submitted_at ASC`
	return r.fetchMany(ctx, query, status)
}

func (r *applicationRepository) AttachPet(ctx context.Context, id string, petID int64) error {
	const query = `UPDATE applications SET pet_id=$1 WHERE id=$2 AND status='SUBMITTED'`
	cmd, err := r.pool.Exec(ctx, query, petID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

func (r *applicationRepository) MarkReviewed(ctx context.Context, id string, status domain.ApplicationStatus, reviewedAt time.Time, reviewerID string) error {
	const query = `
        UPDATE applications SET status=$1, reviewed_at=$2, reviewer_id=$3
        WHERE id=$4 AND status='SUBMITTED'`
	cmd, err := r.pool.Exec(ctx, query, status, reviewedAt, reviewerID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}

const selectApplication = `
        SELECT id, external_key, user_id, status, pet_id, responses, submitted_at, reviewed_at, reviewer_id
        FROM applications`

func (r *applicationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ApplicationRecord, error) {
	var (
		record  domain.ApplicationRecord
		payload []byte
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&record.ID,
		&record.ExternalKey,
		&record.UserID,
		&record.Status,
		&record.PetID,
		&payload,
		&record.SubmittedAt,
		&record.ReviewedAt,
		&record.ReviewerID,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	responses, err := decodeResponses(payload)
	if err != nil {
		return nil, err
	}
	record.Responses = responses
	return &record, nil
}

func (r *applicationRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.ApplicationRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApplicationRecord
	for rows.Next() {
		var (
			record  domain.ApplicationRecord
			payload []byte
		)
		if err := rows.Scan(
			&record.ID,
			&record.ExternalKey,
			&record.UserID,
			&record.Status,
			&record.PetID,
			&payload,
			&record.SubmittedAt,
			&record.ReviewedAt,
			&record.ReviewerID,
		); err != nil {
			return nil, err
		}
		responses, err := decodeResponses(payload)
		if err != nil {
			return nil, err
		}
		record.Responses = responses
		result = append(result, record)
	}
	return result, rows.Err()
}

// Responses are stored as a JSONB object keyed by question id.
func encodeResponses(responses map[int64]string) ([]byte, error) {
	out := make(map[string]string, len(responses))
	for id, answer := range responses {
		out[strconv.FormatInt(id, 10)] = answer
	}
	return json.Marshal(out)
}

func decodeResponses(payload []byte) (map[int64]string, error) {
	if len(payload) == 0 {
		return map[int64]string{}, nil
	}
	raw := map[string]string{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(raw))
	for key, answer := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, err
		}
		out[id] = answer
	}
	return out, nil
}
