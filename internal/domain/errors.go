package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidAmount      = errors.New("amount must be a positive integer")
	ErrMilestoneClosed    = errors.New("milestone is not accepting donations")
	ErrAlreadyDecided     = errors.New("donation already decided")
	ErrProofRequired      = errors.New("proof of payment required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidStatus      = errors.New("invalid status value")
)
