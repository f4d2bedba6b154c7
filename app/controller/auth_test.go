package controller_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-shop/app/controller"
	"github.com/vibast-solutions/ms-go-shop/app/repository"
	"github.com/vibast-solutions/ms-go-shop/app/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	findUserByEmailQuery    = `(?s)SELECT id, first_name, last_name, email, password_hash, is_superuser, created_at, updated_at\s+FROM users WHERE email = \?`
	insertUserQuery         = `(?s)INSERT INTO users \(first_name, last_name, email, password_hash, is_superuser, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?\)`
	insertRefreshTokenQuery = `(?s)INSERT INTO refresh_tokens \(user_id, token, expires_at, created_at\)\s+VALUES \(\?, \?, \?, \?\)`
	deleteRefreshTokenQuery = `(?s)DELETE FROM refresh_tokens WHERE token = \?`
)

var userColumns = []string{
	"id",
	"first_name",
	"last_name",
	"email",
	"password_hash",
	"is_superuser",
	"created_at",
	"updated_at",
}

func newAuthControllerWithMock(t *testing.T) (*controller.AuthController, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	tokens := service.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	userRepo := repository.NewUserRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	authService := service.NewAuthService(db, userRepo, refreshRepo, tokens, 15*time.Minute)

	return controller.NewAuthController(authService), mock, func() { _ = db.Close() }
}

func newJSONRequest(t *testing.T, method, path string, body any) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	return string(hash)
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "refresh_token" {
			return cookie
		}
	}
	t.Fatalf("no refresh_token cookie in response")
	return nil
}

func TestRegister_Success(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))
	mock.ExpectExec(insertUserQuery).
		WithArgs("Jane", "Doe", "user@example.com", sqlmock.AnyArg(), false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req, rec := newJSONRequest(t, http.MethodPost, "/register", map[string]string{
		"first_name":       "Jane",
		"last_name":        "Doe",
		"email":            "user@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	})
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Register(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if body["email"] != "user@example.com" {
		t.Fatalf("expected email user@example.com, got %v", body["email"])
	}
	if _, ok := body["password_hash"]; ok {
		t.Fatalf("password hash leaked in response: %s", rec.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegister_PasswordMismatch(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	req, rec := newJSONRequest(t, http.MethodPost, "/register", map[string]string{
		"email":            "user@example.com",
		"password":         "password123",
		"password_confirm": "different",
	})
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Register(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "Jane", "Doe", "user@example.com", "hash", false, now, now,
		))

	req, rec := newJSONRequest(t, http.MethodPost, "/register", map[string]string{
		"email":            "user@example.com",
		"password":         "password123",
		"password_confirm": "password123",
	})
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Register(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestLogin_SetsRefreshCookie(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "Jane", "Doe", "user@example.com", hashPassword(t, "password123"), false, now, now,
		))
	mock.ExpectExec(insertRefreshTokenQuery).
		WithArgs(uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req, rec := newJSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "user@example.com",
		"password": "password123",
	})
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Login(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if body["token"] == "" {
		t.Fatalf("expected access token in body")
	}

	cookie := refreshCookie(t, rec)
	if cookie.Value == "" {
		t.Fatalf("expected refresh_token cookie value")
	}
	if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Fatalf("unexpected cookie attributes: %+v", cookie)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	// Unknown email and wrong password produce the same response body.
	mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("unknown@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	now := time.Now()
	mock.ExpectQuery(findUserByEmailQuery).
		WithArgs("user@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			uint64(1), "Jane", "Doe", "user@example.com", hashPassword(t, "password123"), false, now, now,
		))

	e := echo.New()
	bodies := make([]string, 0, 2)
	for _, creds := range []map[string]string{
		{"email": "unknown@example.com", "password": "password123"},
		{"email": "user@example.com", "password": "wrong-password"},
	} {
		req, rec := newJSONRequest(t, http.MethodPost, "/login", creds)
		ctx := e.NewContext(req, rec)

		if err := authController.Login(ctx); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("responses reveal which factor failed: %q vs %q", bodies[0], bodies[1])
	}
}

func TestRefresh_MissingCookie(t *testing.T) {
	authController, _, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Refresh(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestRefresh_GarbageCookie(t *testing.T) {
	authController, _, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "garbage"})
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Refresh(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestLogout_MissingCookie(t *testing.T) {
	authController, _, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Logout(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	mock.ExpectExec(deleteRefreshTokenQuery).
		WithArgs("some-refresh-token").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "some-refresh-token"})
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Logout(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	cookie := refreshCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestLogout_NothingToRevoke(t *testing.T) {
	authController, mock, cleanup := newAuthControllerWithMock(t)
	defer cleanup()

	mock.ExpectExec(deleteRefreshTokenQuery).
		WithArgs("stale-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "stale-token"})
	rec := httptest.NewRecorder()
	e := echo.New()
	ctx := e.NewContext(req, rec)

	if err := authController.Logout(ctx); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if body["message"] != "nothing to revoke" {
		t.Fatalf("expected nothing to revoke, got %v", body["message"])
	}
}
