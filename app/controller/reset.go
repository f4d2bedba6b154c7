package controller

import (
	"errors"
	"net/http"

	dto "github.com/vibast-solutions/ms-go-shop/app/dto/http"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ResetController struct {
	resetService *service.ResetService
}

func NewResetController(resetService *service.ResetService) *ResetController {
	return &ResetController{resetService: resetService}
}

func (c *ResetController) Forgot(ctx echo.Context) error {
	var req dto.ForgotRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "email is required"})
	}

	logrus.WithField("email", req.Email).Info("Password reset requested")
	if err := c.resetService.RequestReset(ctx.Request().Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrUpstreamUnavailable) {
			logrus.WithError(err).Warn("Reset mail delivery failed")
			return ctx.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: "mail delivery unavailable, retry later"})
		}
		logrus.WithError(err).Error("Password reset request failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	// The body never reveals whether the address has an account.
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "success"})
}

func (c *ResetController) Reset(ctx echo.Context) error {
	var req dto.ResetRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Token == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "token and password are required"})
	}

	err := c.resetService.PerformReset(ctx.Request().Context(), req.Token, req.Password, req.PasswordConfirm)
	if err != nil {
		if errors.Is(err, service.ErrPasswordMismatch) {
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "passwords do not match"})
		}
		if errors.Is(err, service.ErrInvalidResetToken) {
			logrus.Warn("Reset failed: invalid or used token")
			return ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid reset token"})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).Error("Password reset failed")
		return ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}

	logrus.Info("Password reset successful")
	return ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "success"})
}
