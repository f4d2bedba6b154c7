package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/dto"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/repository"

	"golang.org/x/crypto/bcrypt"
)

// AuthService orchestrates the session lifecycle against the token service
// and the session store.
type AuthService struct {
	db               *sql.DB
	userRepo         *repository.UserRepository
	refreshTokenRepo *repository.RefreshTokenRepository
	tokens           *TokenService
	accessTTL        time.Duration
}

func NewAuthService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	refreshTokenRepo *repository.RefreshTokenRepository,
	tokens *TokenService,
	accessTTL time.Duration,
) *AuthService {
	return &AuthService{
		db:               db,
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		accessTTL:        accessTTL,
	}
}

func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password, passwordConfirm string) (*entity.User, error) {
	if password != passwordConfirm {
		return nil, ErrPasswordMismatch
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password both map to ErrInvalidCredentials so the response does not reveal
// which factor failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.refreshTokenRepo.Create(ctx, &entity.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}); err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a live refresh token for a new access/refresh pair. The
// stored session row is consumed under a row lock and replaced, so the old
// refresh token is dead the moment the new one exists.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResult, error) {
	userID, err := s.tokens.Verify(refreshToken, RefreshTokenKind)
	if err != nil {
		return nil, ErrInvalidToken
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRefreshRepo := s.refreshTokenRepo.WithTx(tx)

	record, err := txRefreshRepo.FindByTokenForUpdate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if record == nil || record.UserID != userID {
		return nil, ErrInvalidToken
	}
	if record.ExpiresAt.Before(time.Now()) {
		return nil, ErrInvalidToken
	}

	rowsDeleted, err := txRefreshRepo.DeleteByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if rowsDeleted == 0 {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}

	newRefreshToken, expiresAt, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	if err := txRefreshRepo.Create(ctx, &entity.RefreshToken{
		UserID:    userID,
		Token:     newRefreshToken,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes the presented refresh token. Revoking a token that is
// already gone is not an error; ErrNothingToRevoke tells the caller apart.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	rows, err := s.refreshTokenRepo.DeleteByToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNothingToRevoke
	}
	return nil
}

// CurrentUser resolves the user behind a verified access token.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// VerifyAccessToken is the middleware entry point.
func (s *AuthService) VerifyAccessToken(tokenString string) (uint64, error) {
	return s.tokens.Verify(tokenString, AccessTokenKind)
}
