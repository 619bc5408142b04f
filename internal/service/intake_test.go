package service

import (
	"context"
	"errors"
	"testing"

	"pawws/internal/domain"
)

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)

	for _, amount := range []int64{0, -5} {
		_, err := env.intake.Submit(context.Background(), SubmitInput{MilestoneID: milestone.ID, Amount: amount})
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("Submit(amount=%d) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
}

func TestSubmitUnknownMilestone(t *testing.T) {
	env := newTestEnv()
	_, err := env.intake.Submit(context.Background(), SubmitInput{MilestoneID: 42, Amount: 100})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Submit() error = %v, want ErrNotFound", err)
	}
}

func TestSubmitFundedMilestoneStillAccepts(t *testing.T) {
	// Overshoot policy: a funded milestone accepts further donations.
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusFunded)

	donation, err := env.intake.Submit(context.Background(), SubmitInput{MilestoneID: milestone.ID, Amount: 250})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if donation.Status != domain.DonationStatusPending {
		t.Fatalf("donation status = %q, want pending", donation.Status)
	}

	// The milestone total is untouched by intake.
	stored, _ := milestoneStore{env.ledger}.GetByID(context.Background(), milestone.ID)
	if stored.CurrentAmount != 0 {
		t.Fatalf("intake mutated milestone amount to %d", stored.CurrentAmount)
	}
}

func TestSubmitCompletedMilestoneRejected(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusCompleted)

	_, err := env.intake.Submit(context.Background(), SubmitInput{MilestoneID: milestone.ID, Amount: 100})
	if !errors.Is(err, domain.ErrMilestoneClosed) {
		t.Fatalf("Submit() error = %v, want ErrMilestoneClosed", err)
	}
}

func TestSubmitAdoptedAnimalRejected(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusAdopted)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)

	_, err := env.intake.Submit(context.Background(), SubmitInput{MilestoneID: milestone.ID, Amount: 100})
	if !errors.Is(err, domain.ErrMilestoneClosed) {
		t.Fatalf("Submit() error = %v, want ErrMilestoneClosed", err)
	}
}

func TestSubmitStoresProofAndDonorDetails(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusCritical)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)

	donation, err := env.intake.Submit(context.Background(), SubmitInput{
		MilestoneID:      milestone.ID,
		Amount:           600,
		Proof:            []byte("receipt-bytes"),
		ProofContentType: "image/png",
		Donor:            donorIdentity(7),
		Country:          "ID",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if !donation.HasProof() {
		t.Fatal("expected proof reference on donation")
	}
	if data, err := env.blob.Read(context.Background(), *donation.ProofKey); err != nil || string(data) != "receipt-bytes" {
		t.Fatalf("stored proof = %q, err = %v", data, err)
	}
	if donation.UserID == nil || *donation.UserID != 7 {
		t.Fatalf("donation user = %v, want 7", donation.UserID)
	}
	if donation.Country == nil || *donation.Country != "ID" {
		t.Fatalf("donation country = %v, want ID", donation.Country)
	}
}

func TestAttachProofOwnershipAndState(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)

	ctx := context.Background()
	donation, err := env.intake.Submit(ctx, SubmitInput{MilestoneID: milestone.ID, Amount: 100, Donor: donorIdentity(3)})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}

	if _, err := env.intake.AttachProof(ctx, donorIdentity(9), donation.ID, []byte("x"), "image/jpeg"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("AttachProof() by stranger error = %v, want ErrForbidden", err)
	}

	updated, err := env.intake.AttachProof(ctx, donorIdentity(3), donation.ID, []byte("x"), "image/jpeg")
	if err != nil {
		t.Fatalf("AttachProof() by owner unexpected error: %v", err)
	}
	if !updated.HasProof() {
		t.Fatal("expected proof reference after attach")
	}

	// Once decided, proof can no longer change.
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionReject); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	if _, err := env.intake.AttachProof(ctx, donorIdentity(3), donation.ID, []byte("y"), "image/jpeg"); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("AttachProof() after decision error = %v, want ErrAlreadyDecided", err)
	}
}

func TestAttachProofAnonymousDonationUnclaimable(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)

	ctx := context.Background()
	donation, err := env.intake.Submit(ctx, SubmitInput{MilestoneID: milestone.ID, Amount: 100})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if _, err := env.intake.AttachProof(ctx, donorIdentity(3), donation.ID, []byte("x"), "image/jpeg"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("AttachProof() on anonymous donation error = %v, want ErrForbidden", err)
	}
	// Admins may still repair an anonymous donation's proof.
	if _, err := env.intake.AttachProof(ctx, adminIdentity(1), donation.ID, []byte("x"), "image/jpeg"); err != nil {
		t.Fatalf("AttachProof() by admin unexpected error: %v", err)
	}
}
