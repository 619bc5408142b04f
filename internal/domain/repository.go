package domain

import (
	"context"
	"time"
)

// AnimalRepository defines persistence for animals.
type AnimalRepository interface {
	Create(ctx context.Context, animal *Animal) error
	List(ctx context.Context, limit, offset int) ([]Animal, error)
	GetByID(ctx context.Context, id int64) (*Animal, error)
	UpdateStatus(ctx context.Context, id int64, status AnimalStatus) error
	UpdatePhoto(ctx context.Context, id int64, photoKey string) error
}

// MilestoneRepository defines persistence for milestones.
type MilestoneRepository interface {
	Create(ctx context.Context, milestone *Milestone) error
	GetByID(ctx context.Context, id int64) (*Milestone, error)
	ListByAnimal(ctx context.Context, animalID int64) ([]Milestone, error)
	// Complete promotes a funded milestone to completed. It fails with
	// ErrInvalidStatus when the milestone is not funded yet.
	Complete(ctx context.Context, id int64) (*Milestone, error)
}

// DonationRepository handles donation persistence and the moderation
// transaction.
type DonationRepository interface {
	Create(ctx context.Context, donation *Donation) error
	GetByID(ctx context.Context, id int64) (*Donation, error)
	ListByUser(ctx context.Context, userID int64) ([]Donation, error)
	// ListForReview returns donations for the admin queue, pending first,
	// newest first within each status.
	ListForReview(ctx context.Context, limit, offset int) ([]Donation, error)
	AttachProof(ctx context.Context, donationID int64, proofKey, contentType string) error
	// Decide applies an admin verdict atomically. Approval locks the
	// milestone row, re-checks the donation is still pending, adds the
	// amount and re-derives the milestone status in the same
	// transaction. It returns ErrAlreadyDecided for a donation that is
	// no longer pending.
	Decide(ctx context.Context, donationID int64, decision Decision, adminID int64, decidedAt time.Time) (*Donation, error)
}

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// PaymentQR is the single payment-instruction image shown to donors.
type PaymentQR struct {
	Key         string
	ContentType string
	UpdatedAt   time.Time
}

// PaymentQRRepository stores the payment-instruction image slot.
type PaymentQRRepository interface {
	Get(ctx context.Context) (*PaymentQR, error)
	Upsert(ctx context.Context, qr *PaymentQR) error
}

// StatsSummary aggregates dashboard counters.
type StatsSummary struct {
	Animals           int64
	MilestonesFunded  int64
	DonationsPending  int64
	DonationsApproved int64
	AmountApprovedSum int64
	DonationsLast24h  int64
}

// StatsRepository computes dashboard aggregates.
type StatsRepository interface {
	Summary(ctx context.Context) (*StatsSummary, error)
}
