package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pawws/internal/domain"
)

// PaymentQRRepositoryPG stores the single payment-instruction image slot.
type PaymentQRRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPaymentQRRepository creates a new PaymentQRRepositoryPG.
func NewPaymentQRRepository(pool *pgxpool.Pool) *PaymentQRRepositoryPG {
	return &PaymentQRRepositoryPG{pool: pool}
}

// Get returns the current payment QR reference.
func (r *PaymentQRRepositoryPG) Get(ctx context.Context) (*domain.PaymentQR, error) {
	row := r.pool.QueryRow(ctx, `
SELECT blob_key, content_type, updated_at FROM payment_qr WHERE id = 1;
`)
	var qr domain.PaymentQR
	if err := row.Scan(&qr.Key, &qr.ContentType, &qr.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &qr, nil
}

// Upsert replaces the payment QR reference.
func (r *PaymentQRRepositoryPG) Upsert(ctx context.Context, qr *domain.PaymentQR) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO payment_qr (id, blob_key, content_type, updated_at)
VALUES (1, $1, $2, NOW())
ON CONFLICT (id) DO UPDATE
SET blob_key = EXCLUDED.blob_key,
    content_type = EXCLUDED.content_type,
    updated_at = NOW();
`, qr.Key, qr.ContentType)
	return err
}

// StatsRepositoryPG computes dashboard aggregates.
type StatsRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepositoryPG.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepositoryPG {
	return &StatsRepositoryPG{pool: pool}
}

// Summary returns counters for the admin dashboard in a single round trip.
func (r *StatsRepositoryPG) Summary(ctx context.Context) (*domain.StatsSummary, error) {
	row := r.pool.QueryRow(ctx, `
SELECT
  (SELECT COUNT(*) FROM animals),
  (SELECT COUNT(*) FROM milestones WHERE status IN ('funded', 'completed')),
  (SELECT COUNT(*) FROM donations WHERE status = 'pending'),
  (SELECT COUNT(*) FROM donations WHERE status = 'approved'),
  (SELECT COALESCE(SUM(amount), 0) FROM donations WHERE status = 'approved'),
  (SELECT COUNT(*) FROM donations WHERE created_at > NOW() - INTERVAL '24 hours');
`)
	var s domain.StatsSummary
	if err := row.Scan(&s.Animals, &s.MilestonesFunded, &s.DonationsPending, &s.DonationsApproved, &s.AmountApprovedSum, &s.DonationsLast24h); err != nil {
		return nil, err
	}
	return &s, nil
}
