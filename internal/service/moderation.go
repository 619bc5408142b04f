package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pawws/internal/domain"
	"pawws/internal/metrics"
)

// Moderation applies admin verdicts to pending donations. Decisions
// are terminal and never retried automatically: an ambiguous failure
// surfaces to the caller, and a repeated approve reports
// ErrAlreadyDecided instead of double-counting.
type Moderation struct {
	donations  domain.DonationRepository
	milestones domain.MilestoneRepository
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewModeration wires the moderation engine.
func NewModeration(
	donations domain.DonationRepository,
	milestones domain.MilestoneRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Moderation {
	return &Moderation{
		donations:  donations,
		milestones: milestones,
		metrics:    m,
		logger:     logger.With().Str("component", "moderation").Logger(),
		now:        time.Now,
	}
}

// Decide transitions a pending donation to approved or rejected. The
// acting identity is passed explicitly; only admins may decide, checked
// before any state is read.
func (s *Moderation) Decide(ctx context.Context, acting domain.Identity, donationID int64, decision domain.Decision) (*domain.Donation, error) {
	if !acting.IsAdmin() || acting.UserID == nil {
		return nil, domain.ErrForbidden
	}
	if _, ok := decision.Status(); !ok {
		return nil, fmt.Errorf("%w: decision must be approve or reject", domain.ErrInvalidStatus)
	}

	donation, err := s.donations.Decide(ctx, donationID, decision, *acting.UserID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	event := s.logger.Info().
		Int64("donation_id", donation.ID).
		Int64("milestone_id", donation.MilestoneID).
		Int64("amount", donation.Amount).
		Int64("admin_id", *acting.UserID)

	switch decision {
	case domain.DecisionApprove:
		s.metrics.DonationsApproved.Inc()
		if milestone, err := s.milestones.GetByID(ctx, donation.MilestoneID); err == nil {
			event = event.Str("milestone_status", string(milestone.Status))
			if milestone.Status == domain.MilestoneStatusFunded && milestone.CurrentAmount-donation.Amount < milestone.Cost {
				s.metrics.MilestonesFunded.Inc()
			}
		}
		event.Msg("donation approved")
	case domain.DecisionReject:
		s.metrics.DonationsRejected.Inc()
		event.Msg("donation rejected")
	}
	return donation, nil
}
