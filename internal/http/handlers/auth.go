package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pawws/internal/auth"
	"pawws/internal/domain"
	"pawws/internal/middleware"
)

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string         `json:"token"`
	User  userProfileDTO `json:"user"`
}

type userProfileDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (a *App) AuthSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		a.error(w, http.StatusBadRequest, "bad_request", "valid email required")
		return
	}
	if len(req.Password) < 8 {
		a.error(w, http.StatusBadRequest, "bad_request", "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.domainError(w, err)
		return
	}
	user := &domain.User{Email: req.Email, PasswordHash: hash, Role: domain.UserRoleDonor}
	if err := a.Users.Create(r.Context(), user); err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, userProfileDTO{ID: user.ID, Email: user.Email, Role: string(user.Role)})
}

func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	user, err := a.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.domainError(w, domain.ErrInvalidCredentials)
			return
		}
		a.domainError(w, err)
		return
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		a.domainError(w, domain.ErrInvalidCredentials)
		return
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      strconv.FormatInt(user.ID, 10),
		Role:     string(user.Role),
		Exp:      time.Now().Add(24 * time.Hour).Unix(),
		Issuer:   "pawws",
		Audience: "pawws-clients",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign jwt failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, tokenResponse{
		Token: token,
		User:  userProfileDTO{ID: user.ID, Email: user.Email, Role: string(user.Role)},
	})
}

func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	identity := a.identity(r)
	if identity.Anonymous() {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	user, err := a.Users.GetByID(r.Context(), *identity.UserID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, userProfileDTO{ID: user.ID, Email: user.Email, Role: string(user.Role)})
}
