package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/adoption-portal/internal/domain"
)

// PetFilter captures inventory search parameters; omitted fields pass all
// values and present fields combine by logical AND.
type PetFilter struct {
	Species *string
	Breed   *string
	Status  *domain.PetStatus
}

// PetRepository encapsulates pet inventory persistence.
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) error
	Update(ctx context.Context, pet *domain.Pet) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Pet, error)
	ListWithFilter(ctx context.Context, filter PetFilter) ([]domain.Pet, error)
	// UpdateStatusIf flips status from->to atomically; at most one concurrent
	// caller observes success. Returns ErrStatusConflict when the row's status
	// was not `from` at the moment of the flip.
	UpdateStatusIf(ctx context.Context, id int64, from, to domain.PetStatus) error
	// SetStatus writes status unconditionally (administrative override).
	SetStatus(ctx context.Context, id int64, to domain.PetStatus) error
}

type petRepository struct {
	pool *pgxpool.Pool
}

// NewPetRepository instantiates repository.
func NewPetRepository(pool *pgxpool.Pool) PetRepository {
	return &petRepository{pool: pool}
}

func (r *petRepository) Create(ctx context.Context, pet *domain.Pet) error {
	const query = `
        INSERT INTO pets (name, species, breed, age, description, status, image_url)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.Age,
		pet.Description,
		pet.Status,
		pet.ImageURL,
	).Scan(&pet.ID, &pet.CreatedAt, &pet.UpdatedAt)
}

func (r *petRepository) Update(ctx context.Context, pet *domain.Pet) error {
	const query = `
        UPDATE pets SET name=$1, species=$2, breed=$3, age=$4, description=$5,
            status=$6, image_url=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.pool.Exec(ctx, query,
		pet.Name,
		pet.Species,
		pet.Breed,
		pet.Age,
		pet.Description,
		pet.Status,
		pet.ImageURL,
		pet.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *petRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM pets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *petRepository) GetByID(ctx context.Context, id int64) (*domain.Pet, error) {
	const query = `
        SELECT id, name, species, breed, age, description, status, image_url, created_at, updated_at
        FROM pets WHERE id=$1`

	var pet domain.Pet
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&pet.ID,
		&pet.Name,
		&pet.Species,
		&pet.Breed,
		&pet.Age,
		&pet.Description,
		&pet.Status,
		&pet.ImageURL,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pet, nil
}

func (r *petRepository) ListWithFilter(ctx context.Context, filter PetFilter) ([]domain.Pet, error) {
	base := `SELECT id, name, species, breed, age, description, status, image_url, created_at, updated_at
             FROM pets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Species != nil {
		args = append(args, *filter.Species)
		clauses = append(clauses, fmt.Sprintf("LOWER(species)=LOWER($%d)", len(args)))
	}
	if filter.Breed != nil {
		args = append(args, *filter.Breed)
		clauses = append(clauses, fmt.Sprintf("LOWER(breed)=LOWER($%d)", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY id ASC`, base, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Pet
	for rows.Next() {
		var pet domain.Pet
		if err := rows.Scan(
			&pet.ID,
			&pet.Name,
			&pet.Species,
			&pet.Breed,
			&pet.Age,
			&pet.Description,
			&pet.Status,
			&pet.ImageURL,
			&pet.CreatedAt,
			&pet.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, pet)
	}
	return result, rows.Err()
}

func (r *petRepository) UpdateStatusIf(ctx context.Context, id int64, from, to domain.PetStatus) error {
	const query = `UPDATE pets SET status=$1, updated_at=NOW() WHERE id=$2 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, to, id, from)
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

func (r *petRepository) SetStatus(ctx context.Context, id int64, to domain.PetStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE pets SET status=$1, updated_at=NOW() WHERE id=$2`, to, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
