package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pawws/internal/domain"
	"pawws/internal/metrics"
)

// memLedger is an in-memory stand-in for the PostgreSQL repositories.
// Decide takes the ledger lock for the whole read-modify-write, the
// same serialization the SQL implementation gets from the milestone
// row lock.
type memLedger struct {
	mu         sync.Mutex
	animals    map[int64]*domain.Animal
	milestones map[int64]*domain.Milestone
	donations  map[int64]*domain.Donation
	nextID     int64
}

func newMemLedger() *memLedger {
	return &memLedger{
		animals:    make(map[int64]*domain.Animal),
		milestones: make(map[int64]*domain.Milestone),
		donations:  make(map[int64]*domain.Donation),
	}
}

func (l *memLedger) id() int64 {
	l.nextID++
	return l.nextID
}

func (l *memLedger) addAnimal(status domain.AnimalStatus) *domain.Animal {
	l.mu.Lock()
	defer l.mu.Unlock()
	a := &domain.Animal{ID: l.id(), Name: "Bubu", Status: status}
	l.animals[a.ID] = a
	return a
}

func (l *memLedger) addMilestone(animalID, cost int64, status domain.MilestoneStatus) *domain.Milestone {
	l.mu.Lock()
	defer l.mu.Unlock()
	m := &domain.Milestone{ID: l.id(), AnimalID: animalID, Title: "Surgery", Cost: cost, Status: status}
	l.milestones[m.ID] = m
	return m
}

// AnimalRepository

func (l *memLedger) Create(ctx context.Context, animal *domain.Animal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	animal.ID = l.id()
	l.animals[animal.ID] = animal
	return nil
}

func (l *memLedger) List(ctx context.Context, limit, offset int) ([]domain.Animal, error) {
	return nil, nil
}

func (l *memLedger) GetByID(ctx context.Context, id int64) (*domain.Animal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.animals[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (l *memLedger) UpdateStatus(ctx context.Context, id int64, status domain.AnimalStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.animals[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.Status = status
	return nil
}

func (l *memLedger) UpdatePhoto(ctx context.Context, id int64, photoKey string) error {
	return nil
}

// milestoneStore adapts memLedger to domain.MilestoneRepository; the
// method set collides with AnimalRepository otherwise.
type milestoneStore struct{ l *memLedger }

func (s milestoneStore) Create(ctx context.Context, milestone *domain.Milestone) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	milestone.ID = s.l.id()
	milestone.Status = domain.MilestoneStatusPending
	s.l.milestones[milestone.ID] = milestone
	return nil
}

func (s milestoneStore) GetByID(ctx context.Context, id int64) (*domain.Milestone, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	m, ok := s.l.milestones[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (s milestoneStore) ListByAnimal(ctx context.Context, animalID int64) ([]domain.Milestone, error) {
	return nil, nil
}

func (s milestoneStore) Complete(ctx context.Context, id int64) (*domain.Milestone, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	m, ok := s.l.milestones[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if m.Status != domain.MilestoneStatusFunded {
		return nil, domain.ErrInvalidStatus
	}
	m.Status = domain.MilestoneStatusCompleted
	copied := *m
	return &copied, nil
}

// donationStore adapts memLedger to domain.DonationRepository.
type donationStore struct{ l *memLedger }

func (s donationStore) Create(ctx context.Context, donation *domain.Donation) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	if _, ok := s.l.milestones[donation.MilestoneID]; !ok {
		return domain.ErrNotFound
	}
	donation.ID = s.l.id()
	donation.Status = domain.DonationStatusPending
	donation.CreatedAt = time.Now()
	s.l.donations[donation.ID] = donation
	return nil
}

func (s donationStore) GetByID(ctx context.Context, id int64) (*domain.Donation, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	d, ok := s.l.donations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s donationStore) ListByUser(ctx context.Context, userID int64) ([]domain.Donation, error) {
	return nil, nil
}

func (s donationStore) ListForReview(ctx context.Context, limit, offset int) ([]domain.Donation, error) {
	return nil, nil
}

func (s donationStore) AttachProof(ctx context.Context, donationID int64, proofKey, contentType string) error {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	d, ok := s.l.donations[donationID]
	if !ok {
		return domain.ErrNotFound
	}
	if d.Status != domain.DonationStatusPending {
		return domain.ErrAlreadyDecided
	}
	d.ProofKey = &proofKey
	d.ProofContentType = &contentType
	return nil
}

func (s donationStore) Decide(ctx context.Context, donationID int64, decision domain.Decision, adminID int64, decidedAt time.Time) (*domain.Donation, error) {
	s.l.mu.Lock()
	defer s.l.mu.Unlock()
	d, ok := s.l.donations[donationID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if d.Status != domain.DonationStatusPending {
		return nil, domain.ErrAlreadyDecided
	}
	switch decision {
	case domain.DecisionApprove:
		if d.ProofKey == nil || *d.ProofKey == "" {
			return nil, domain.ErrProofRequired
		}
		m := s.l.milestones[d.MilestoneID]
		m.CurrentAmount += d.Amount
		if m.Status != domain.MilestoneStatusCompleted {
			m.Status = domain.ResolveMilestoneStatus(m.CurrentAmount, m.Cost)
		}
		d.Status = domain.DonationStatusApproved
	case domain.DecisionReject:
		d.Status = domain.DonationStatusRejected
	}
	d.DecidedBy = &adminID
	d.DecidedAt = &decidedAt
	copied := *d
	return &copied, nil
}

// fakeBlob is an in-memory BlobStore.
type fakeBlob struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{blobs: make(map[string][]byte)}
}

func (f *fakeBlob) Write(ctx context.Context, key string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = append([]byte(nil), data...)
	return key, nil
}

func (f *fakeBlob) Read(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

type testEnv struct {
	ledger     *memLedger
	blob       *fakeBlob
	intake     *Intake
	moderation *Moderation
}

func newTestEnv() *testEnv {
	ledger := newMemLedger()
	blob := newFakeBlob()
	m := metrics.New()
	logger := zerolog.Nop()
	return &testEnv{
		ledger:     ledger,
		blob:       blob,
		intake:     NewIntake(ledger, milestoneStore{ledger}, donationStore{ledger}, blob, m, logger),
		moderation: NewModeration(donationStore{ledger}, milestoneStore{ledger}, m, logger),
	}
}

func adminIdentity(id int64) domain.Identity {
	return domain.Identity{UserID: &id, Role: domain.UserRoleAdmin}
}

func donorIdentity(id int64) domain.Identity {
	return domain.Identity{UserID: &id, Role: domain.UserRoleDonor}
}
