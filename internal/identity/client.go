// Package identity talks to the external identity provider. Credential
// issuance and verification are entirely delegated; this client only
// exchanges passwords for bearer tokens and checks tokens on protected
// operations.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calderonm/spinqueue/internal/domain"
	"github.com/calderonm/spinqueue/internal/httpclient"
)

// User is the subset of provider account data the service cares about.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Token is a successful password grant.
type Token struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpclient.NewClient(nil, 100*time.Millisecond),
	}
}

// VerifyToken resolves a bearer token to the user it belongs to. A token
// the provider rejects yields *domain.AuthError; transport or provider
// failures yield a plain error.
func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, &domain.AuthError{Reason: "missing token"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.AuthError{Reason: "unauthorized"}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user.ID == "" {
		return nil, &domain.AuthError{Reason: "unauthorized"}
	}
	return &user, nil
}

// Login exchanges email+password for a bearer token via the provider's
// password grant.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := strings.TrimSpace(string(msg))
		if reason == "" {
			reason = "invalid credentials"
		}
		return nil, &domain.AuthError{Reason: reason}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var tok Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &tok, nil
}
