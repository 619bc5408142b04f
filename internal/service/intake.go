package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pawws/internal/domain"
	"pawws/internal/metrics"
	"pawws/internal/storage"
)

// Intake accepts donor pledges against milestones. It never mutates
// milestone totals; that is the moderation engine's job.
type Intake struct {
	animals    domain.AnimalRepository
	milestones domain.MilestoneRepository
	donations  domain.DonationRepository
	store      storage.BlobStore
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewIntake wires the donation intake service.
func NewIntake(
	animals domain.AnimalRepository,
	milestones domain.MilestoneRepository,
	donations domain.DonationRepository,
	store storage.BlobStore,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Intake {
	return &Intake{
		animals:    animals,
		milestones: milestones,
		donations:  donations,
		store:      store,
		metrics:    m,
		logger:     logger.With().Str("component", "intake").Logger(),
	}
}

// SubmitInput carries a donor's pledge. Proof may be empty: the donor
// can attach it later, but the donation cannot be approved without one.
type SubmitInput struct {
	MilestoneID      int64
	Amount           int64
	Proof            []byte
	ProofContentType string
	Donor            domain.Identity
	Country          string
}

// Submit validates the pledge and records a pending donation. A funded
// milestone still accepts donations (overshoot policy); a completed one
// does not, nor does any milestone of an adopted animal.
func (s *Intake) Submit(ctx context.Context, in SubmitInput) (*domain.Donation, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	milestone, err := s.milestones.GetByID(ctx, in.MilestoneID)
	if err != nil {
		return nil, fmt.Errorf("load milestone %d: %w", in.MilestoneID, err)
	}
	if !milestone.AcceptsFunding() {
		return nil, domain.ErrMilestoneClosed
	}
	animal, err := s.animals.GetByID(ctx, milestone.AnimalID)
	if err != nil {
		return nil, fmt.Errorf("load animal %d: %w", milestone.AnimalID, err)
	}
	if !animal.AcceptsFunding() {
		return nil, domain.ErrMilestoneClosed
	}

	donation := &domain.Donation{
		MilestoneID: milestone.ID,
		Amount:      in.Amount,
		UserID:      in.Donor.UserID,
	}
	if in.Country != "" {
		donation.Country = &in.Country
	}
	if len(in.Proof) > 0 {
		key, err := s.storeProof(ctx, in.Proof)
		if err != nil {
			return nil, err
		}
		contentType := in.ProofContentType
		donation.ProofKey = &key
		donation.ProofContentType = &contentType
	}

	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	s.metrics.DonationsSubmitted.Inc()
	s.logger.Info().
		Int64("donation_id", donation.ID).
		Int64("milestone_id", milestone.ID).
		Int64("amount", donation.Amount).
		Bool("anonymous", in.Donor.Anonymous()).
		Msg("donation submitted")
	return donation, nil
}

// AttachProof stores a proof-of-payment artifact on a pending donation.
// Only the donation's owner or an admin may attach; anonymous donations
// cannot be claimed after the fact.
func (s *Intake) AttachProof(ctx context.Context, caller domain.Identity, donationID int64, data []byte, contentType string) (*domain.Donation, error) {
	if len(data) == 0 {
		return nil, domain.ErrProofRequired
	}
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if donation.Status != domain.DonationStatusPending {
		return nil, domain.ErrAlreadyDecided
	}
	if !s.mayAttach(caller, donation) {
		return nil, domain.ErrForbidden
	}

	key, err := s.storeProof(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := s.donations.AttachProof(ctx, donationID, key, contentType); err != nil {
		return nil, err
	}
	donation.ProofKey = &key
	donation.ProofContentType = &contentType
	s.logger.Info().Int64("donation_id", donationID).Msg("proof attached")
	return donation, nil
}

func (s *Intake) mayAttach(caller domain.Identity, donation *domain.Donation) bool {
	if caller.IsAdmin() {
		return true
	}
	if donation.UserID == nil || caller.UserID == nil {
		return false
	}
	return *donation.UserID == *caller.UserID
}

func (s *Intake) storeProof(ctx context.Context, data []byte) (string, error) {
	key := "proofs/" + uuid.NewString()
	stored, err := s.store.Write(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("store proof: %w", err)
	}
	return stored, nil
}
