package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pawws/internal/domain"
	"pawws/internal/middleware"
	"pawws/internal/service"
)

type donationDTO struct {
	ID          int64      `json:"id"`
	MilestoneID int64      `json:"milestone_id"`
	UserID      *int64     `json:"user_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	HasProof    bool       `json:"has_proof"`
	Country     *string    `json:"country,omitempty"`
	AnimalID    int64      `json:"animal_id,omitempty"`
	AnimalName  string     `json:"animal_name,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func donationToDTO(d domain.Donation) donationDTO {
	return donationDTO{
		ID:          d.ID,
		MilestoneID: d.MilestoneID,
		UserID:      d.UserID,
		Amount:      d.Amount,
		Status:      string(d.Status),
		HasProof:    d.HasProof(),
		Country:     d.Country,
		AnimalID:    d.AnimalID,
		AnimalName:  d.AnimalName,
		DecidedAt:   d.DecidedAt,
		CreatedAt:   d.CreatedAt,
	}
}

// DonationsCreate records a pledge against a milestone. The body is
// either multipart (amount field plus optional proof file) or plain
// JSON for a proof-less pledge completed later via the proof endpoint.
func (a *App) DonationsCreate(w http.ResponseWriter, r *http.Request) {
	milestoneID, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid milestone id")
		return
	}

	in := service.SubmitInput{
		MilestoneID: milestoneID,
		Donor:       a.identity(r),
		Country:     middleware.CountryFromContext(r.Context()),
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		amount, err := multipartAmount(r)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "amount must be a positive integer")
			return
		}
		in.Amount = amount
		if data, contentType, err := readUpload(r, "proof"); err == nil {
			in.Proof = data
			in.ProofContentType = contentType
		}
	} else {
		var req struct {
			Amount int64 `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		in.Amount = req.Amount
	}

	donation, err := a.Intake.Submit(r.Context(), in)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, donationToDTO(*donation))
}

// DonationsAttachProof is the second phase of a two-phase pledge.
func (a *App) DonationsAttachProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	data, contentType, err := readUpload(r, "proof")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "proof file required")
		return
	}
	donation, err := a.Intake.AttachProof(r.Context(), a.identity(r), id, data, contentType)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, donationToDTO(*donation))
}

func (a *App) DonationsMy(w http.ResponseWriter, r *http.Request) {
	identity := a.identity(r)
	if identity.Anonymous() {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	donations, err := a.Donations.ListByUser(r.Context(), *identity.UserID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": donationDTOs(donations)})
}

// DonationsList is the admin review queue.
func (a *App) DonationsList(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r, 100)
	donations, err := a.Donations.ListForReview(r.Context(), limit, offset)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": donationDTOs(donations)})
}

type donationDecisionRequest struct {
	Status string `json:"status"`
}

// DonationsDecide approves or rejects a pending donation.
func (a *App) DonationsDecide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	var req donationDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	var decision domain.Decision
	switch domain.DonationStatus(req.Status) {
	case domain.DonationStatusApproved:
		decision = domain.DecisionApprove
	case domain.DonationStatusRejected:
		decision = domain.DecisionReject
	default:
		a.error(w, http.StatusBadRequest, "bad_request", "status must be approved or rejected")
		return
	}

	donation, err := a.Moderation.Decide(r.Context(), a.identity(r), id, decision)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, donationToDTO(*donation))
}

// DonationsProof streams the proof-of-payment image. Admins may view
// any proof; donors only their own.
func (a *App) DonationsProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid donation id")
		return
	}
	identity := a.identity(r)
	donation, err := a.Donations.GetByID(r.Context(), id)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if !identity.IsAdmin() {
		if identity.Anonymous() || donation.UserID == nil || *donation.UserID != *identity.UserID {
			a.domainError(w, domain.ErrForbidden)
			return
		}
	}
	if !donation.HasProof() {
		a.error(w, http.StatusNotFound, "not_found", "no proof attached")
		return
	}
	data, err := a.Store.Read(r.Context(), *donation.ProofKey)
	if err != nil {
		a.domainError(w, err)
		return
	}
	contentType := "application/octet-stream"
	if donation.ProofContentType != nil && *donation.ProofContentType != "" {
		contentType = *donation.ProofContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func donationDTOs(donations []domain.Donation) []donationDTO {
	items := make([]donationDTO, 0, len(donations))
	for _, d := range donations {
		items = append(items, donationToDTO(d))
	}
	return items
}

func multipartAmount(r *http.Request) (int64, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return 0, err
	}
	return strconv.ParseInt(r.FormValue("amount"), 10, 64)
}
