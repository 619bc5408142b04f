package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"pawws/internal/domain"
)

type milestoneCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
}

type milestoneDTO struct {
	ID            int64     `json:"id"`
	AnimalID      int64     `json:"animal_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Cost          int64     `json:"cost"`
	CurrentAmount int64     `json:"current_amount"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	CreatedAt     time.Time `json:"created_at"`
}

func milestoneToDTO(m domain.Milestone) milestoneDTO {
	return milestoneDTO{
		ID:            m.ID,
		AnimalID:      m.AnimalID,
		Title:         m.Title,
		Description:   m.Description,
		Cost:          m.Cost,
		CurrentAmount: m.CurrentAmount,
		Status:        string(m.Status),
		Progress:      m.Progress(),
		CreatedAt:     m.CreatedAt,
	}
}

func (a *App) MilestonesCreate(w http.ResponseWriter, r *http.Request) {
	animalID, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid animal id")
		return
	}
	var req milestoneCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Title == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "title is required")
		return
	}
	if req.Cost <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "cost must be a positive integer")
		return
	}

	milestone := &domain.Milestone{
		AnimalID:    animalID,
		Title:       req.Title,
		Description: req.Description,
		Cost:        req.Cost,
	}
	if err := a.Milestones.Create(r.Context(), milestone); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, milestoneToDTO(*milestone))
}

func (a *App) MilestonesGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid milestone id")
		return
	}
	milestone, err := a.Milestones.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, milestoneToDTO(*milestone))
}

// MilestonesComplete marks a funded milestone's recovery step as
// physically done. Funding alone never completes a milestone.
func (a *App) MilestonesComplete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid milestone id")
		return
	}
	milestone, err := a.Milestones.Complete(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, milestoneToDTO(*milestone))
}
