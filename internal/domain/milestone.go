package domain

import "time"

// MilestoneStatus enumerates funding states of a milestone.
type MilestoneStatus string

const (
	MilestoneStatusPending   MilestoneStatus = "pending"
	MilestoneStatusFunded    MilestoneStatus = "funded"
	MilestoneStatusCompleted MilestoneStatus = "completed"
)

// Milestone is a funding-goal checkpoint within an animal's recovery
// journey. Cost is fixed at creation; CurrentAmount only ever grows and
// is written exclusively by donation approval.
type Milestone struct {
	ID            int64
	AnimalID      int64
	Title         string
	Description   string
	Cost          int64
	CurrentAmount int64
	Status        MilestoneStatus
	CreatedAt     time.Time
}

// AcceptsFunding reports whether the milestone can still receive
// donations. A funded milestone keeps accepting them (overshoot is
// allowed); a completed one does not.
func (m Milestone) AcceptsFunding() bool {
	return m.Status != MilestoneStatusCompleted
}

// Progress returns the funding percentage clamped to 100 for display.
// The stored ledger amount is never truncated.
func (m Milestone) Progress() int {
	if m.Cost <= 0 {
		return 0
	}
	p := m.CurrentAmount * 100 / m.Cost
	if p > 100 {
		return 100
	}
	return int(p)
}

// ResolveMilestoneStatus derives a milestone's funding status from its
// accumulated amount versus its goal. It never yields completed:
// completion requires an explicit admin action once the recovery step
// physically finished. Overshoot (current > cost) still reports funded.
func ResolveMilestoneStatus(currentAmount, cost int64) MilestoneStatus {
	if cost > 0 && currentAmount >= cost {
		return MilestoneStatusFunded
	}
	return MilestoneStatusPending
}
