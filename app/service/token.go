package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind selects which signing secret and lifetime apply.
type TokenKind int

const (
	AccessTokenKind TokenKind = iota
	RefreshTokenKind
)

type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HMAC-SHA256 session tokens. Access and
// refresh tokens are signed with independent secrets so a leak of one does
// not compromise the other. It keeps no server-side state.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *TokenService) IssueAccessToken(userID uint64) (string, error) {
	return s.issue(userID, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken also returns the expiry so the caller can persist the
// session record with the same deadline the token carries.
func (s *TokenService) IssueRefreshToken(userID uint64) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.refreshTTL)
	token, err := s.issue(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify validates signature and expiry and returns the subject user ID.
// Every failure collapses to ErrInvalidToken; parser detail never reaches
// the client. Only HS256 is accepted, so a token claiming another algorithm
// (including "none") is rejected outright.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (uint64, error) {
	secret := s.accessSecret
	if kind == RefreshTokenKind {
		secret = s.refreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

func (s *TokenService) issue(userID uint64, secret []byte, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			// iat/exp carry second precision, so the jti is what keeps two
			// tokens minted for the same user in the same second distinct;
			// the session store has a unique token column.
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
