// Package client is a Go client for the storefront API. It holds the
// authenticated session (token cookies plus the current user) and
// transparently recovers from expired access tokens: a request that
// comes back 401 triggers a single shared refresh call and is replayed
// once.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"golang.org/x/sync/singleflight"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Client struct {
	baseURL string
	http    *http.Client

	// refresh coalesces concurrent refresh attempts into a single
	// network call; every waiter observes that call's outcome.
	refresh singleflight.Group

	mu   sync.Mutex
	user *User
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is
// installed on it if it has none, since the session lives in cookies.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

func New(baseURL string, options ...Option) (*Client, error) {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range options {
		opt(c)
	}

	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http.Jar = jar
	}

	return c, nil
}

// CurrentUser returns the locally cached authenticated user, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

func (c *Client) setUser(user *User) {
	c.mu.Lock()
	c.user = user
	c.mu.Unlock()
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	User *User `json:"user"`
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/signup", signupRequest{Name: name, Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	return c.authenticate(ctx, "/api/auth/login", loginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*User, error) {
	resp, err := c.postJSON(ctx, path, body)
	if err != nil {
		c.setUser(nil)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.setUser(nil)
		return nil, newAPIError(resp)
	}

	var decoded userResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.setUser(nil)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.setUser(decoded.User)
	return decoded.User, nil
}

// Logout clears the server-side session and the local state. Local state
// is cleared even when the request fails, mirroring the server's
// always-succeed logout semantics.
func (c *Client) Logout(ctx context.Context) error {
	defer c.setUser(nil)

	resp, err := c.postJSON(ctx, "/api/auth/logout", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return newAPIError(resp)
	}
	return nil
}

// Profile fetches the authenticated identity, refreshing the access
// token if it has expired.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/profile", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newAPIError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.setUser(&user)
	return &user, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: %d", e.StatusCode)
}

func newAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}

	return apiErr
}
