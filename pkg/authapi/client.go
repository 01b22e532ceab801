// Package authapi is a client for the hosted backend's password auth
// endpoints.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// RoleAdmin is the user_metadata role that grants access to /admin.
const RoleAdmin = "admin"

// HTTPError is a non-2xx response from the auth API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("auth HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

type User struct {
	ID           uuid.UUID      `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
}

// Role returns app_metadata.role, or "". user_metadata is writable by the
// user on sign-up and is never consulted.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	role, _ := u.AppMetadata["role"].(string)
	return role
}

func (u *User) IsAdmin() bool {
	return u.Role() == RoleAdmin
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// SignUp registers a user. metadata is stored as user_metadata.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	body := map[string]any{"email": email, "password": password}
	if metadata != nil {
		body["data"] = metadata
	}

	// Depending on the project settings the response is either the user or
	// a session carrying it.
	var resp struct {
		User
		Session *User `json:"user"`
	}
	if err := c.doRequest(ctx, "/auth/v1/signup", body, &resp); err != nil {
		return nil, fmt.Errorf("authapi.SignUp: %w", err)
	}
	if resp.Session != nil {
		return resp.Session, nil
	}
	return &resp.User, nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// SignIn exchanges an email and password for a session token.
func (c *Client) SignIn(ctx context.Context, email, password string) (*oauth2.Token, *User, error) {
	var resp tokenResponse
	body := map[string]any{"email": email, "password": password}
	if err := c.doRequest(ctx, "/auth/v1/token?grant_type=password", body, &resp); err != nil {
		return nil, nil, fmt.Errorf("authapi.SignIn: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, nil, fmt.Errorf("authapi.SignIn: response has no access token")
	}

	tok := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresIn > 0 {
		tok.Expiry = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return tok, &resp.User, nil
}

func (c *Client) doRequest(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		var apiErr struct {
			Message          string `json:"message"`
			Msg              string `json:"msg"`
			ErrorDescription string `json:"error_description"`
			Error            string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil {
			for _, m := range []string{apiErr.ErrorDescription, apiErr.Msg, apiErr.Message, apiErr.Error} {
				if m != "" {
					msg = m
					break
				}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
