package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"pawws/internal/domain"
	"pawws/internal/middleware"
	"pawws/internal/service"
	"pawws/internal/storage"
)

// IntakeService is the donation-intake surface consumed by handlers.
type IntakeService interface {
	Submit(ctx context.Context, in service.SubmitInput) (*domain.Donation, error)
	AttachProof(ctx context.Context, caller domain.Identity, donationID int64, data []byte, contentType string) (*domain.Donation, error)
}

// ModerationService is the moderation surface consumed by handlers.
type ModerationService interface {
	Decide(ctx context.Context, acting domain.Identity, donationID int64, decision domain.Decision) (*domain.Donation, error)
}

// App bundles handler dependencies.
type App struct {
	Logger     zerolog.Logger
	Intake     IntakeService
	Moderation ModerationService
	Animals    domain.AnimalRepository
	Milestones domain.MilestoneRepository
	Donations  domain.DonationRepository
	Users      domain.UserRepository
	PaymentQR  domain.PaymentQRRepository
	Stats      domain.StatsRepository
	Store      storage.BlobStore
	JWTSecret  string
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// domainError maps sentinel domain errors onto the HTTP envelope. The
// message distinguishes a permissions failure from a stale-state
// conflict so moderators can tell them apart.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrProofRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrMilestoneClosed):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrAlreadyDecided), errors.Is(err, domain.ErrEmailTaken):
		a.error(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "not allowed")
	case errors.Is(err, domain.ErrInvalidCredentials):
		a.error(w, http.StatusUnauthorized, "unauthorized", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) identity(r *http.Request) domain.Identity {
	identity, _ := middleware.IdentityFromContext(r.Context())
	return identity
}
