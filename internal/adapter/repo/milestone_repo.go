package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawws/internal/domain"
)

// MilestoneRepositoryPG implements domain.MilestoneRepository backed by PostgreSQL.
type MilestoneRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMilestoneRepository creates a new MilestoneRepositoryPG.
func NewMilestoneRepository(pool *pgxpool.Pool) *MilestoneRepositoryPG {
	return &MilestoneRepositoryPG{pool: pool}
}

// Create inserts a milestone for an animal. The referenced animal must
// exist; a foreign key violation maps to ErrNotFound.
func (r *MilestoneRepositoryPG) Create(ctx context.Context, milestone *domain.Milestone) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO milestones (animal_id, title, description, cost)
VALUES ($1, $2, $3, $4)
RETURNING id, current_amount, status, created_at;
`, milestone.AnimalID, milestone.Title, milestone.Description, milestone.Cost)
	if err := row.Scan(&milestone.ID, &milestone.CurrentAmount, &milestone.Status, &milestone.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// GetByID returns a single milestone.
func (r *MilestoneRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Milestone, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, animal_id, title, description, cost, current_amount, status, created_at
FROM milestones
WHERE id = $1;
`, id)
	return scanMilestone(row)
}

// ListByAnimal returns an animal's milestones in timeline order.
func (r *MilestoneRepositoryPG) ListByAnimal(ctx context.Context, animalID int64) ([]domain.Milestone, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, animal_id, title, description, cost, current_amount, status, created_at
FROM milestones
WHERE animal_id = $1
ORDER BY created_at ASC, id ASC;
`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Complete promotes a funded milestone to completed. The guard lives in
// the statement so a concurrent approval cannot interleave.
func (r *MilestoneRepositoryPG) Complete(ctx context.Context, id int64) (*domain.Milestone, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE milestones
SET status = $2
WHERE id = $1 AND status = $3
RETURNING id, animal_id, title, description, cost, current_amount, status, created_at;
`, id, domain.MilestoneStatusCompleted, domain.MilestoneStatusFunded)
	milestone, err := scanMilestone(row)
	if err == nil {
		return milestone, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	// Distinguish a missing milestone from one that is not funded yet.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrInvalidStatus
}

func scanMilestone(row pgx.Row) (*domain.Milestone, error) {
	var m domain.Milestone
	if err := row.Scan(&m.ID, &m.AnimalID, &m.Title, &m.Description, &m.Cost, &m.CurrentAmount, &m.Status, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
