package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"pawws/internal/domain"
)

// PaymentQRGet serves the payment-instruction image donors transfer to.
func (a *App) PaymentQRGet(w http.ResponseWriter, r *http.Request) {
	qr, err := a.PaymentQR.Get(r.Context())
	if err != nil {
		a.domainError(w, err)
		return
	}
	data, err := a.Store.Read(r.Context(), qr.Key)
	if err != nil {
		a.domainError(w, err)
		return
	}
	w.Header().Set("Content-Type", qr.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PaymentQRPut replaces the payment-instruction image.
func (a *App) PaymentQRPut(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r, "image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image file required")
		return
	}
	key, err := a.Store.Write(r.Context(), "payments/"+uuid.NewString(), data)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if err := a.PaymentQR.Upsert(r.Context(), &domain.PaymentQR{Key: key, ContentType: contentType}); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"message": "payment QR updated"})
}
