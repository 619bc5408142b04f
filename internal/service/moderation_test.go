package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pawws/internal/domain"
)

func (env *testEnv) submitWithProof(t *testing.T, milestoneID, amount int64) *domain.Donation {
	t.Helper()
	donation, err := env.intake.Submit(context.Background(), SubmitInput{
		MilestoneID:      milestoneID,
		Amount:           amount,
		Proof:            []byte("receipt"),
		ProofContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	return donation
}

func TestDecideRequiresAdmin(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	donation := env.submitWithProof(t, milestone.ID, 300)

	ctx := context.Background()
	for _, identity := range []domain.Identity{{}, donorIdentity(3)} {
		if _, err := env.moderation.Decide(ctx, identity, donation.ID, domain.DecisionApprove); !errors.Is(err, domain.ErrForbidden) {
			t.Fatalf("Decide() by %+v error = %v, want ErrForbidden", identity, err)
		}
	}

	// Nothing changed.
	stored, _ := donationStore{env.ledger}.GetByID(ctx, donation.ID)
	if stored.Status != domain.DonationStatusPending {
		t.Fatalf("donation status = %q after forbidden calls, want pending", stored.Status)
	}
}

func TestApproveAccumulatesAndDerivesStatus(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	first := env.submitWithProof(t, milestone.ID, 600)
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), first.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != 600 || m.Status != domain.MilestoneStatusPending {
		t.Fatalf("after first approval: amount=%d status=%q, want 600/pending", m.CurrentAmount, m.Status)
	}

	// The second approval overshoots: ledger keeps the true sum.
	second := env.submitWithProof(t, milestone.ID, 500)
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), second.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	m, _ = milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != 1100 || m.Status != domain.MilestoneStatusFunded {
		t.Fatalf("after second approval: amount=%d status=%q, want 1100/funded", m.CurrentAmount, m.Status)
	}
	if m.Progress() != 100 {
		t.Fatalf("Progress() = %d, want clamped 100", m.Progress())
	}
}

func TestApproveExactGoalFunds(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	donation := env.submitWithProof(t, milestone.ID, 1000)
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.Status != domain.MilestoneStatusFunded {
		t.Fatalf("status = %q at exact goal, want funded", m.Status)
	}
}

func TestRejectLeavesMilestoneUntouched(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	donation := env.submitWithProof(t, milestone.ID, 300)
	decided, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionReject)
	if err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	if decided.Status != domain.DonationStatusRejected {
		t.Fatalf("donation status = %q, want rejected", decided.Status)
	}
	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != 0 {
		t.Fatalf("milestone amount = %d after reject, want 0", m.CurrentAmount)
	}

	// Terminal: any further decision conflicts.
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionApprove); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("re-decide error = %v, want ErrAlreadyDecided", err)
	}
}

func TestApproveTwiceCountsOnce(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	donation := env.submitWithProof(t, milestone.ID, 400)
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionApprove); err != nil {
		t.Fatalf("Decide() unexpected error: %v", err)
	}
	if _, err := env.moderation.Decide(ctx, adminIdentity(2), donation.ID, domain.DecisionApprove); !errors.Is(err, domain.ErrAlreadyDecided) {
		t.Fatalf("second Decide() error = %v, want ErrAlreadyDecided", err)
	}
	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != 400 {
		t.Fatalf("milestone amount = %d, want single increment 400", m.CurrentAmount)
	}
}

func TestApproveWithoutProofRefused(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	donation, err := env.intake.Submit(ctx, SubmitInput{MilestoneID: milestone.ID, Amount: 100})
	if err != nil {
		t.Fatalf("Submit() unexpected error: %v", err)
	}
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionApprove); !errors.Is(err, domain.ErrProofRequired) {
		t.Fatalf("Decide() error = %v, want ErrProofRequired", err)
	}
	// Rejecting an unproven pledge is fine.
	if _, err := env.moderation.Decide(ctx, adminIdentity(1), donation.ID, domain.DecisionReject); err != nil {
		t.Fatalf("Decide(reject) unexpected error: %v", err)
	}
}

func TestConcurrentApprovalsNeverLoseIncrements(t *testing.T) {
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	const donors = 20
	ids := make([]int64, 0, donors)
	for i := 0; i < donors; i++ {
		ids = append(ids, env.submitWithProof(t, milestone.ID, 50).ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.moderation.Decide(ctx, adminIdentity(1), id, domain.DecisionApprove); err != nil {
				t.Errorf("Decide(%d) unexpected error: %v", id, err)
			}
		}()
	}
	wg.Wait()

	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != donors*50 {
		t.Fatalf("milestone amount = %d, want %d (no lost updates)", m.CurrentAmount, donors*50)
	}
	if m.Status != domain.MilestoneStatusFunded {
		t.Fatalf("milestone status = %q, want funded", m.Status)
	}
}

func TestConcurrentDoubleSubmitSingleEffect(t *testing.T) {
	// Two admins race on the same donation; exactly one wins.
	env := newTestEnv()
	animal := env.ledger.addAnimal(domain.AnimalStatusRecovering)
	milestone := env.ledger.addMilestone(animal.ID, 1000, domain.MilestoneStatusPending)
	ctx := context.Background()

	donation := env.submitWithProof(t, milestone.ID, 500)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.moderation.Decide(ctx, adminIdentity(int64(i+1)), donation.ID, domain.DecisionApprove)
		}()
	}
	wg.Wait()

	var conflicts int
	for _, err := range errs {
		if errors.Is(err, domain.ErrAlreadyDecided) {
			conflicts++
		} else if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if conflicts != 1 {
		t.Fatalf("conflicts = %d, want exactly 1", conflicts)
	}
	m, _ := milestoneStore{env.ledger}.GetByID(ctx, milestone.ID)
	if m.CurrentAmount != 500 {
		t.Fatalf("milestone amount = %d, want 500", m.CurrentAmount)
	}
}
