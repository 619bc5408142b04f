package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawws/internal/domain"
)

// AnimalRepositoryPG implements domain.AnimalRepository backed by PostgreSQL.
type AnimalRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewAnimalRepository creates a new AnimalRepositoryPG.
func NewAnimalRepository(pool *pgxpool.Pool) *AnimalRepositoryPG {
	return &AnimalRepositoryPG{pool: pool}
}

// Create inserts a new animal record.
func (r *AnimalRepositoryPG) Create(ctx context.Context, animal *domain.Animal) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO animals (name, bio, journey_story, status)
VALUES ($1, $2, $3, $4)
RETURNING id, status, admission_date, created_at, updated_at;
`, animal.Name, animal.Bio, animal.JourneyStory, animal.Status)
	if err := row.Scan(&animal.ID, &animal.Status, &animal.AdmissionDate, &animal.CreatedAt, &animal.UpdatedAt); err != nil {
		return fmt.Errorf("insert animal: %w", err)
	}
	return nil
}

// List returns animals ordered by admission, newest first.
func (r *AnimalRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.Animal, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, bio, journey_story, photo_key, status, admission_date, created_at, updated_at
FROM animals
ORDER BY admission_date DESC, id DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Animal
	for rows.Next() {
		animal, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *animal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns an animal with its milestones in timeline order.
func (r *AnimalRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Animal, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, bio, journey_story, photo_key, status, admission_date, created_at, updated_at
FROM animals
WHERE id = $1;
`, id)
	animal, err := scanAnimal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, animal_id, title, description, cost, current_amount, status, created_at
FROM milestones
WHERE animal_id = $1
ORDER BY created_at ASC, id ASC;
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.AnimalID, &m.Title, &m.Description, &m.Cost, &m.CurrentAmount, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		animal.Milestones = append(animal.Milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return animal, nil
}

// UpdateStatus sets the animal status. Status changes are admin-only
// and never derived from milestone state.
func (r *AnimalRepositoryPG) UpdateStatus(ctx context.Context, id int64, status domain.AnimalStatus) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE animals SET status = $2, updated_at = NOW() WHERE id = $1;
`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePhoto stores the blob key of the animal's photo.
func (r *AnimalRepositoryPG) UpdatePhoto(ctx context.Context, id int64, photoKey string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE animals SET photo_key = $2, updated_at = NOW() WHERE id = $1;
`, id, photoKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanAnimal(row pgx.Row) (*domain.Animal, error) {
	var a domain.Animal
	if err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.JourneyStory, &a.PhotoKey, &a.Status, &a.AdmissionDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
