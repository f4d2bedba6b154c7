package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/entity"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const refreshTokenCookie = "refresh_token"

type AuthController struct {
	authService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

func (c *AuthController) Register(ctx echo.Context) error {
	var req dto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
	}

	user, err := c.authService.Register(ctx.Request().Context(), req.FirstName, req.LastName, req.Email, req.Password, req.PasswordConfirm)
	if err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "passwords do not match"})
		}
		if errors.Is(err, service.ErrUserExists) {
			logrus.WithField("email", req.Email).Warn("Register failed: user already exists")
			return ctx.JSON(http.StatusConflict, dto.ErrorResponse{Error: "user already exists"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return ctx.JSON(http.StatusCreated, publicUser(user))
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req dto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email and password are required"})
	}

	result, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid credentials"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	ctx.SetCookie(newRefreshCookie(result.RefreshToken))

	logrus.WithField("email", req.Email).Info("Login successful")
	return ctx.JSON(http.StatusOK, dto.LoginResponse{
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
	})
}

func (c *AuthController) Refresh(ctx echo.Context) error {
	cookie, err := ctx.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
	}

	result, err := c.authService.Refresh(ctx.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			logrus.Warn("Refresh failed: invalid or expired refresh token")
			return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
		}
		logrus.WithError(err).Error("Refresh failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	// Rotation: the old refresh token was consumed, hand out its successor.
	ctx.SetCookie(newRefreshCookie(result.RefreshToken))

	return ctx.JSON(http.StatusOK, dto.RefreshResponse{
		Token:     result.AccessToken,
		ExpiresIn: result.ExpiresIn,
	})
}

func (c *AuthController) Logout(ctx echo.Context) error {
	cookie, err := ctx.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "no refresh_token found"})
	}

	err = c.authService.Logout(ctx.Request().Context(), cookie.Value)
	ctx.SetCookie(clearRefreshCookie())

	if errors.Is(err, service.ErrNothingToRevoke) {
		return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "nothing to revoke"})
	}
	if err != nil {
		logrus.WithError(err).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Logout successful")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "logged out successfully"})
}

// User returns the authenticated caller's public profile. RequireAuth has
// already resolved and loaded the user.
func (c *AuthController) User(ctx echo.Context) error {
	user, ok := ctx.Get("user").(*entity.User)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
	}
	return ctx.JSON(http.StatusOK, publicUser(user))
}

func publicUser(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		IsSuperuser: user.IsSuperuser,
	}
}

func newRefreshCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func clearRefreshCookie() *http.Cookie {
	return &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}
