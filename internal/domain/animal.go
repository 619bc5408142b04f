package domain

import "time"

// AnimalStatus enumerates the recovery states of a rescued animal.
type AnimalStatus string

const (
	AnimalStatusCritical   AnimalStatus = "critical"
	AnimalStatusRecovering AnimalStatus = "recovering"
	AnimalStatusReady      AnimalStatus = "ready"
	AnimalStatusAdopted    AnimalStatus = "adopted"
)

// ValidAnimalStatus reports whether s is one of the known statuses.
func ValidAnimalStatus(s AnimalStatus) bool {
	switch s {
	case AnimalStatusCritical, AnimalStatusRecovering, AnimalStatusReady, AnimalStatusAdopted:
		return true
	}
	return false
}

// Animal represents a rescued animal and its recovery journey.
// Animals are never hard-deleted; status transitions are admin-driven.
type Animal struct {
	ID            int64
	Name          string
	Bio           string
	JourneyStory  string
	PhotoKey      *string
	Status        AnimalStatus
	AdmissionDate time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Milestones in timeline order. Populated on detail reads.
	Milestones []Milestone
}

// AcceptsFunding reports whether the animal can still receive donations.
func (a Animal) AcceptsFunding() bool {
	return a.Status != AnimalStatusAdopted
}
