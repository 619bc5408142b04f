package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawws/internal/domain"
)

// DonationRepositoryPG implements domain.DonationRepository backed by
// PostgreSQL. Decide is the only write in the system that touches a
// milestone's running total.
type DonationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewDonationRepository creates a new DonationRepositoryPG.
func NewDonationRepository(pool *pgxpool.Pool) *DonationRepositoryPG {
	return &DonationRepositoryPG{pool: pool}
}

// Create inserts a new pending donation. The milestone record is not
// touched, so simultaneous pledges never contend on it.
func (r *DonationRepositoryPG) Create(ctx context.Context, donation *domain.Donation) error {
	row := r.pool.QueryRow(ctx, `
INSERT INTO donations (milestone_id, user_id, amount, proof_key, proof_content_type, country)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, status, created_at;
`, donation.MilestoneID, donation.UserID, donation.Amount, donation.ProofKey, donation.ProofContentType, donation.Country)
	if err := row.Scan(&donation.ID, &donation.Status, &donation.CreatedAt); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

const donationColumns = `
d.id, d.milestone_id, d.user_id, d.amount, d.proof_key, d.proof_content_type,
d.country, d.status, d.decided_by, d.decided_at, d.created_at, a.id, a.name`

// GetByID returns a donation with its animal denormalized for display.
func (r *DonationRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN milestones m ON m.id = d.milestone_id
JOIN animals a ON a.id = m.animal_id
WHERE d.id = $1;
`, id)
	return scanDonation(row)
}

// ListByUser returns a donor's history, newest first.
func (r *DonationRepositoryPG) ListByUser(ctx context.Context, userID int64) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN milestones m ON m.id = d.milestone_id
JOIN animals a ON a.id = m.animal_id
WHERE d.user_id = $1
ORDER BY d.created_at DESC, d.id DESC;
`, userID)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// ListForReview returns the moderation queue: pending donations first,
// newest first within each status.
func (r *DonationRepositoryPG) ListForReview(ctx context.Context, limit, offset int) ([]domain.Donation, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+donationColumns+`
FROM donations d
JOIN milestones m ON m.id = d.milestone_id
JOIN animals a ON a.id = m.animal_id
ORDER BY (d.status = 'pending') DESC, d.created_at DESC, d.id DESC
LIMIT $1 OFFSET $2;
`, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// AttachProof stores the proof reference on a still-pending donation.
func (r *DonationRepositoryPG) AttachProof(ctx context.Context, donationID int64, proofKey, contentType string) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE donations
SET proof_key = $2, proof_content_type = $3
WHERE id = $1 AND status = 'pending';
`, donationID, proofKey, contentType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either unknown or already decided; let the caller decide which
		// after a read. Report the decided case, it is the common one.
		if _, getErr := r.GetByID(ctx, donationID); getErr != nil {
			return getErr
		}
		return domain.ErrAlreadyDecided
	}
	return nil
}

// Decide applies an admin verdict. Approval runs as one transaction:
// the milestone row is locked, the donation is re-checked to still be
// pending, then the status flip, the increment and the status
// re-derivation commit together. Rejection is a single-row update.
func (r *DonationRepositoryPG) Decide(ctx context.Context, donationID int64, decision domain.Decision, adminID int64, decidedAt time.Time) (*domain.Donation, error) {
	switch decision {
	case domain.DecisionApprove:
		return r.approve(ctx, donationID, adminID, decidedAt)
	case domain.DecisionReject:
		return r.reject(ctx, donationID, adminID, decidedAt)
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
}

func (r *DonationRepositoryPG) approve(ctx context.Context, donationID int64, adminID int64, decidedAt time.Time) (*domain.Donation, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the milestone row first; concurrent approvals against the
	// same milestone serialize here.
	var (
		milestoneID   int64
		currentAmount int64
		cost          int64
		status        domain.MilestoneStatus
	)
	row := tx.QueryRow(ctx, `
SELECT m.id, m.current_amount, m.cost, m.status
FROM milestones m
JOIN donations d ON d.milestone_id = m.id
WHERE d.id = $1
FOR UPDATE OF m;
`, donationID)
	if err := row.Scan(&milestoneID, &currentAmount, &cost, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	// Re-check the donation under the lock; a concurrent decision loses.
	var (
		amount   int64
		proofKey *string
	)
	row = tx.QueryRow(ctx, `
SELECT amount, proof_key
FROM donations
WHERE id = $1 AND status = 'pending'
FOR UPDATE;
`, donationID)
	if err := row.Scan(&amount, &proofKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlreadyDecided
		}
		return nil, err
	}
	if proofKey == nil || *proofKey == "" {
		return nil, domain.ErrProofRequired
	}

	if _, err := tx.Exec(ctx, `
UPDATE donations
SET status = 'approved', decided_by = $2, decided_at = $3
WHERE id = $1;
`, donationID, adminID, decidedAt); err != nil {
		return nil, err
	}

	// Overshoot is kept verbatim; only display clamps.
	newAmount := currentAmount + amount
	newStatus := status
	if status != domain.MilestoneStatusCompleted {
		newStatus = domain.ResolveMilestoneStatus(newAmount, cost)
	}
	if _, err := tx.Exec(ctx, `
UPDATE milestones
SET current_amount = $2, status = $3
WHERE id = $1;
`, milestoneID, newAmount, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approve tx: %w", err)
	}
	return r.GetByID(ctx, donationID)
}

func (r *DonationRepositoryPG) reject(ctx context.Context, donationID int64, adminID int64, decidedAt time.Time) (*domain.Donation, error) {
	tag, err := r.pool.Exec(ctx, `
UPDATE donations
SET status = 'rejected', decided_by = $2, decided_at = $3
WHERE id = $1 AND status = 'pending';
`, donationID, adminID, decidedAt)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, donationID); getErr != nil {
			return nil, getErr
		}
		return nil, domain.ErrAlreadyDecided
	}
	return r.GetByID(ctx, donationID)
}

func scanDonation(row pgx.Row) (*domain.Donation, error) {
	var d domain.Donation
	err := row.Scan(
		&d.ID, &d.MilestoneID, &d.UserID, &d.Amount, &d.ProofKey, &d.ProofContentType,
		&d.Country, &d.Status, &d.DecidedBy, &d.DecidedAt, &d.CreatedAt, &d.AnimalID, &d.AnimalName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func collectDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	var items []domain.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
