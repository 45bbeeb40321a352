package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrInvalidCredentials means the provider rejected the email/password pair.
// Callers must not distinguish an unknown user from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound means an attribute lookup resolved no account.
var ErrUserNotFound = errors.New("user not found")

type AuthResult struct {
	AccessToken string
}

// CredentialGateway is the narrow interface to the managed identity provider.
type CredentialGateway interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	CreateAccount(ctx context.Context, email, password, role string) (string, error)
	LookupAttribute(ctx context.Context, email, attribute string) (string, error)
}

// SupabaseIdentityService talks to a Supabase Auth (GoTrue) instance over its
// REST API. The service key is only needed for admin attribute lookups.
type SupabaseIdentityService struct {
	baseURL    string
	apiKey     string
	serviceKey string
	httpClient *http.Client
}

func NewSupabaseIdentityService(baseURL, apiKey, serviceKey string) *SupabaseIdentityService {
	return &SupabaseIdentityService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		serviceKey: serviceKey,
		httpClient: http.DefaultClient,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (s *SupabaseIdentityService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{"email": email, "password": password}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	tokenURL := fmt.Sprintf("%s/auth/v1/token?grant_type=password", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidCredentials
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		responseBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("authenticate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(responseBody)))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}

	return &AuthResult{AccessToken: token.AccessToken}, nil
}

type signupResponse struct {
	ID   string `json:"id"`
	User *struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (s *SupabaseIdentityService) CreateAccount(ctx context.Context, email, password, role string) (string, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"role": role},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal signup request: %w", err)
	}

	signupURL := fmt.Sprintf("%s/auth/v1/signup", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, signupURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build signup request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("create account: %s", providerErrorText(resp))
	}

	var signup signupResponse
	if err := json.NewDecoder(resp.Body).Decode(&signup); err != nil {
		return "", fmt.Errorf("decode signup response: %w", err)
	}
	switch {
	case signup.ID != "":
		return signup.ID, nil
	case signup.User != nil && signup.User.ID != "":
		return signup.User.ID, nil
	default:
		return "", fmt.Errorf("signup response has no account id")
	}
}

type adminUser struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	UserMetadata map[string]string `json:"user_metadata"`
}

func (s *SupabaseIdentityService) LookupAttribute(ctx context.Context, email, attribute string) (string, error) {
	lookupURL := fmt.Sprintf("%s/auth/v1/admin/users?email=%s", s.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return "", fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup attribute: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrUserNotFound
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("lookup attribute: %s", providerErrorText(resp))
	}

	var result struct {
		Users []adminUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}
	if len(result.Users) == 0 {
		return "", ErrUserNotFound
	}

	user := result.Users[0]
	switch attribute {
	case "sub":
		return user.ID, nil
	case "email":
		return user.Email, nil
	default:
		value, ok := user.UserMetadata[attribute]
		if !ok {
			return "", fmt.Errorf("account has no %q attribute", attribute)
		}
		return value, nil
	}
}

// providerErrorText pulls the human-readable message out of a GoTrue error
// body, falling back to the raw body and finally the HTTP status.
func providerErrorText(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))

	var providerErr struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &providerErr); err == nil {
		for _, msg := range []string{providerErr.Msg, providerErr.Message, providerErr.ErrorDescription} {
			if msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
