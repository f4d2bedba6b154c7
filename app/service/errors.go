package service

import "errors"

var (
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrNothingToRevoke     = errors.New("nothing to revoke")
	ErrInvalidResetToken   = errors.New("invalid reset token")
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidAmount       = errors.New("order amount must be positive")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
