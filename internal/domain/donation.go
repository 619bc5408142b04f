package domain

import "time"

// DonationStatus is the moderation state of a donation. A donation is
// born pending and moves exactly once, to approved or rejected. Only
// approved donations count toward a milestone's running total.
type DonationStatus string

const (
	DonationStatusPending  DonationStatus = "pending"
	DonationStatusApproved DonationStatus = "approved"
	DonationStatusRejected DonationStatus = "rejected"
)

// Decision is an admin verdict on a pending donation.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status maps a decision onto the terminal donation status it produces.
// The second return is false for an unknown decision value.
func (d Decision) Status() (DonationStatus, bool) {
	switch d {
	case DecisionApprove:
		return DonationStatusApproved, true
	case DecisionReject:
		return DonationStatusRejected, true
	default:
		return "", false
	}
}

// Donation is a pledge against a milestone. UserID is nil for anonymous
// donors. AnimalID and AnimalName are denormalized from the milestone's
// animal for display.
type Donation struct {
	ID               int64
	MilestoneID      int64
	UserID           *int64
	Amount           int64
	ProofKey         *string
	ProofContentType *string
	Country          *string
	Status           DonationStatus
	DecidedBy        *int64
	DecidedAt        *time.Time
	CreatedAt        time.Time

	AnimalID   int64
	AnimalName string
}

// HasProof reports whether a proof-of-payment upload is attached.
func (d *Donation) HasProof() bool {
	return d.ProofKey != nil && *d.ProofKey != ""
}
