package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	resetTokenLength   = 10
	resetTokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// ResetService runs the one-time-token password-reset flow.
type ResetService struct {
	userRepo         *repository.UserRepository
	refreshTokenRepo *repository.RefreshTokenRepository
	resetStore       *repository.PasswordResetStore
	email            EmailSender
	resetTTL         time.Duration
	resetURLBase     string
}

func NewResetService(
	userRepo *repository.UserRepository,
	refreshTokenRepo *repository.RefreshTokenRepository,
	resetStore *repository.PasswordResetStore,
	email EmailSender,
	resetTTL time.Duration,
	resetURLBase string,
) *ResetService {
	return &ResetService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		resetStore:       resetStore,
		email:            email,
		resetTTL:         resetTTL,
		resetURLBase:     resetURLBase,
	}
}

// RequestReset issues a single-use token and mails a reset link. It behaves
// identically whether or not an account exists for the address, so the
// endpoint cannot be used to enumerate accounts.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	token, err := generateResetToken()
	if err != nil {
		return err
	}

	if err := s.resetStore.Save(ctx, token, email, s.resetTTL); err != nil {
		return err
	}

	url := s.resetURLBase + token
	body := fmt.Sprintf(`Click <a href="%s">here</a> to reset your password`, url)
	if err := s.email.Send(ctx, email, "Reset password!", body); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return nil
}

// PerformReset consumes the token and replaces the user's password. The
// token is removed atomically before the password write, so a replayed
// request fails with ErrInvalidResetToken. All live sessions are revoked.
func (s *ResetService) PerformReset(ctx context.Context, token, password, passwordConfirm string) error {
	if password != passwordConfirm {
		return ErrPasswordMismatch
	}

	email, err := s.resetStore.Find(ctx, token)
	if err != nil {
		return err
	}
	if email == "" {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	consumed, err := s.resetStore.Consume(ctx, token)
	if err != nil {
		return err
	}
	if consumed == "" {
		// Another request consumed the token between Find and Consume.
		return ErrInvalidResetToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return err
	}

	return s.refreshTokenRepo.DeleteByUserID(ctx, user.ID)
}

// generateResetToken draws from crypto/rand; collisions across active
// requests are negligible at 36^10 possibilities.
func generateResetToken() (string, error) {
	token := make([]byte, resetTokenLength)
	max := big.NewInt(int64(len(resetTokenAlphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		token[i] = resetTokenAlphabet[n.Int64()]
	}
	return string(token), nil
}
