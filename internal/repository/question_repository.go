package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// QuestionRepository encapsulates questionnaire catalog persistence. IDs come
// from a sequence and are never reused; listing order is the explicit
// position column, ascending.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) error
	Update(ctx context.Context, question *domain.Question) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context) ([]domain.Question, error)
	// ReplaceAll swaps the whole catalog in one transaction; fresh ids are
	// assigned from the same monotonic sequence.
	ReplaceAll(ctx context.Context, questions []*domain.Question) error
}

type questionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository instantiates repository.
func NewQuestionRepository(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepository{pool: pool}
}

func (r *questionRepository) Create(ctx context.Context, question *domain.Question) error {
	const query = `
        INSERT INTO questions (question_text, kind, options, required, position)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		question.Text,
		question.Kind,
		question.Options,
		question.Required,
		question.Position,
	).Scan(&question.ID, &question.CreatedAt)
}

func (r *questionRepository) Update(ctx context.Context, question *domain.Question) error {
	const query = `
        UPDATE questions SET question_text=$1, kind=$2, options=$3, required=$4, position=$5
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		question.Text,
		question.Kind,
		question.Options,
		question.Required,
		question.Position,
		question.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	const query = `
        SELECT id, question_text, kind, options, required, position, created_at
        FROM questions WHERE id=$1`

	var question domain.Question
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&question.ID,
		&question.Text,
		&question.Kind,
		&question.Options,
		&question.Required,
		&question.Position,
		&question.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) List(ctx context.Context) ([]domain.Question, error) {
	const query = `
        SELECT id, question_text, kind, options, required, position, created_at
        FROM questions ORDER BY position ASC, id ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(
			&question.ID,
			&question.Text,
			&question.Kind,
			&question.Options,
			&question.Required,
			&question.Position,
			&question.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, question)
	}
	return result, rows.Err()
}

func (r *questionRepository) ReplaceAll(ctx context.Context, questions []*domain.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM questions`); err != nil {
		return err
	}
	const insert = `
        INSERT INTO questions (question_text, kind, options, required, position)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	for _, question := range questions {
		if err := tx.QueryRow(ctx, insert,
			question.Text,
			question.Kind,
			question.Options,
			question.Required,
			question.Position,
		).Scan(&question.ID, &question.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
