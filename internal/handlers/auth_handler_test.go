package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/juhum/We-Go-Jim/internal/middleware"
	"github.com/juhum/We-Go-Jim/internal/models"
	"github.com/juhum/We-Go-Jim/internal/services"
)

type stubAuthService struct {
	registerErr       error
	lastRegisterInput services.RegisterInput
	registerCalls     int
	loginSession      *models.Session
	loginErr          error
	lastExistingToken string
	logoutTokens      []string
}

func (s *stubAuthService) Register(_ context.Context, input services.RegisterInput) error {
	s.registerCalls++
	s.lastRegisterInput = input
	return s.registerErr
}

func (s *stubAuthService) Login(_ context.Context, existingToken, _, _ string) (*models.Session, error) {
	s.lastExistingToken = existingToken
	return s.loginSession, s.loginErr
}

func (s *stubAuthService) Logout(_ context.Context, token string) {
	s.logoutTokens = append(s.logoutTokens, token)
}

func newAuthTestApp(service *stubAuthService) *fiber.App {
	handler := NewAuthHandler(service, time.Hour)
	app := fiber.New()
	app.Post("/register", handler.Register)
	app.Post("/login", handler.Login)
	app.Post("/logout", handler.Logout)
	return app
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestRegisterPasswordMismatch(t *testing.T) {
	service := &stubAuthService{registerErr: services.ErrPasswordMismatch}
	app := newAuthTestApp(service)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
		"email":     "a@x.com",
		"password1": "P@ss1",
		"password2": "P@ss2",
		"isTrainer": false,
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "Passwords do not match" {
		t.Errorf("Expected mismatch message, got %v", body["message"])
	}
}

func TestRegisterSanitizesProviderError(t *testing.T) {
	service := &stubAuthService{
		registerErr: errors.New("create account: signup: User already registered"),
	}
	app := newAuthTestApp(service)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
		"email":     "a@x.com",
		"password1": "P@ss1",
		"password2": "P@ss1",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["message"] != "User already registered" {
		t.Errorf("Expected sanitized message, got %v", body["message"])
	}
}

func TestRegisterSuccess(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthTestApp(service)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
		"email":     "A@X.com",
		"password1": "P@ss1",
		"password2": "P@ss1",
		"isTrainer": true,
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if !service.lastRegisterInput.IsTrainer {
		t.Errorf("Expected isTrainer forwarded")
	}
	if service.lastRegisterInput.Email != "a@x.com" {
		t.Errorf("Expected normalized email, got %s", service.lastRegisterInput.Email)
	}
}

func TestRegisterInvalidEmail(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthTestApp(service)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/register", map[string]any{
		"email":     "not-an-email",
		"password1": "P@ss1",
		"password2": "P@ss1",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
	if service.registerCalls != 0 {
		t.Errorf("Expected no flow call for invalid email")
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	service := &stubAuthService{
		loginSession: &models.Session{Token: "tok-1", UserID: "sub-1", Role: models.RoleStudent},
	}
	app := newAuthTestApp(service)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]any{
		"email":    "a@x.com",
		"password": "P@ss1",
	}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("Expected session cookie to be set")
	}
	if sessionCookie.Value != "tok-1" {
		t.Errorf("Expected cookie value tok-1, got %s", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Errorf("Expected HttpOnly cookie")
	}
}

func TestLoginForwardsExistingToken(t *testing.T) {
	service := &stubAuthService{
		loginSession: &models.Session{Token: "tok-1", UserID: "sub-1", Role: models.RoleStudent},
	}
	app := newAuthTestApp(service)

	req := jsonRequest(t, http.MethodPost, "/login", map[string]any{
		"email":    "a@x.com",
		"password": "P@ss1",
	})
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok-1"})

	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if service.lastExistingToken != "tok-1" {
		t.Errorf("Expected existing token forwarded, got %q", service.lastExistingToken)
	}
}

func TestLoginFailuresAreByteIdentical(t *testing.T) {
	readFailure := func(loginErr error) (int, string) {
		service := &stubAuthService{loginErr: loginErr}
		app := newAuthTestApp(service)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/login", map[string]any{
			"email":    "a@x.com",
			"password": "wrong",
		}))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return resp.StatusCode, string(body)
	}

	wrongPasswordStatus, wrongPasswordBody := readFailure(services.ErrInvalidCredentials)
	outageStatus, outageBody := readFailure(errors.New("identity provider unreachable"))

	if wrongPasswordStatus != http.StatusBadRequest || outageStatus != http.StatusBadRequest {
		t.Errorf("Expected 400 for both failures, got %d and %d", wrongPasswordStatus, outageStatus)
	}
	if wrongPasswordBody != outageBody {
		t.Errorf("Expected byte-identical failure bodies:\n%s\n%s", wrongPasswordBody, outageBody)
	}
	if !strings.Contains(wrongPasswordBody, "Incorrect username or password") {
		t.Errorf("Expected uniform message, got %s", wrongPasswordBody)
	}
}

func TestLogoutClearsCookieAndRedirects(t *testing.T) {
	service := &stubAuthService{}
	app := newAuthTestApp(service)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "tok-1"})

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("Expected 302, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/login" {
		t.Errorf("Expected redirect to /login, got %s", location)
	}
	if len(service.logoutTokens) != 1 || service.logoutTokens[0] != "tok-1" {
		t.Errorf("Expected logout of tok-1, got %v", service.logoutTokens)
	}

	var cleared *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			cleared = cookie
		}
	}
	if cleared == nil {
		t.Fatal("Expected expiring session cookie on logout")
	}
	if cleared.Value != "" || cleared.Expires.After(time.Now()) {
		t.Errorf("Expected cleared cookie, got value %q expires %v", cleared.Value, cleared.Expires)
	}
}
