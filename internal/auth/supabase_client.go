package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"merry/internal/domain"
)

// SupabaseClient proxies the credential flows (signup, login, refresh,
// logout, password reset) to the Supabase GoTrue API. Token verification is
// not proxied; that happens locally against JWKS.
type SupabaseClient struct {
	supabaseURL string
	anonKey     string
	httpClient  *http.Client
}

// NewSupabaseClient creates a new Supabase auth API client using the public
// anon key.
func NewSupabaseClient(supabaseURL, anonKey string) *SupabaseClient {
	return &SupabaseClient{
		supabaseURL: supabaseURL,
		anonKey:     anonKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session is the token bundle returned by credential flows.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	TokenType    string      `json:"token_type"`
	User         SessionUser `json:"user"`
}

// SessionUser is the identity-provider view of the account.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp registers a new account.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.sessionRequest(ctx, "/auth/v1/signup", credentials{Email: email, Password: password})
}

// SignIn exchanges credentials for a session.
func (c *SupabaseClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.sessionRequest(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password})
}

// Refresh exchanges a refresh token for a new session.
func (c *SupabaseClient) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return c.sessionRequest(ctx, "/auth/v1/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
}

// SignOut revokes the session behind an access token. Revocation of an
// already-dead token is not an error.
func (c *SupabaseClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ServiceError{Message: "auth provider unreachable: " + err.Error()}
	}
	defer resp.Body.Close()
	return nil
}

// ResetPassword triggers the password recovery email. Always succeeds from
// the caller's perspective so account existence is not disclosed.
func (c *SupabaseClient) ResetPassword(ctx context.Context, email string) error {
	req, err := c.newRequest(ctx, "/auth/v1/recover", map[string]string{"email": email})
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ServiceError{Message: "auth provider unreachable: " + err.Error()}
	}
	defer resp.Body.Close()
	return nil
}

func (c *SupabaseClient) sessionRequest(ctx context.Context, path string, payload any) (*Session, error) {
	req, err := c.newRequest(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.ServiceError{Message: "auth provider unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, authError(resp.StatusCode, body)
	}

	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode auth response: %w", err)
	}
	if session.AccessToken == "" {
		return nil, &domain.UnauthorizedError{Message: "auth provider returned no session"}
	}
	return &session, nil
}

func (c *SupabaseClient) newRequest(ctx context.Context, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal auth request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.supabaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// authError maps GoTrue error responses onto the domain taxonomy. GoTrue
// reports the human-readable reason in msg or error_description.
func authError(status int, body []byte) error {
	var payload struct {
		Msg              string `json:"msg"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	message := payload.Msg
	if message == "" {
		message = payload.ErrorDescription
	}
	if message == "" {
		message = payload.Message
	}
	if message == "" {
		message = "authentication failed"
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: message}
	case status == http.StatusUnprocessableEntity:
		return &domain.ValidationError{Message: message}
	case status == http.StatusTooManyRequests:
		return &domain.ServiceError{Message: message}
	case status >= 500:
		return &domain.ServiceError{Message: "auth provider error: " + message}
	default:
		return &domain.UnauthorizedError{Message: message}
	}
}
