package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vibast-solutions/ms-go-shop/app/entity"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type identityResolver interface {
	VerifyAccessToken(tokenString string) (uint64, error)
	CurrentUser(ctx context.Context, userID uint64) (*entity.User, error)
}

type AuthMiddleware struct {
	authService identityResolver
}

func NewAuthMiddleware(authService identityResolver) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// RequireAuth resolves the caller's identity from the bearer access token
// and loads the user before the handler runs. Missing or malformed headers
// fail with 401 before any business logic.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			logrus.Debug("Missing authorization header")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthenticated",
			})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logrus.Debug("Invalid authorization header format")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthenticated",
			})
		}

		userID, err := m.authService.VerifyAccessToken(parts[1])
		if err != nil {
			logrus.Debug("Invalid or expired access token")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthenticated",
			})
		}

		user, err := m.authService.CurrentUser(c.Request().Context(), userID)
		if err != nil {
			logrus.WithField("user_id", userID).Debug("Access token for unknown user")
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unauthenticated",
			})
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)

		return next(c)
	}
}
