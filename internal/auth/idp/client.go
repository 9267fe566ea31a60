package idp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evoleadai/evolead/internal/auth/domain"
	"github.com/evoleadai/evolead/internal/config"
	"github.com/go-resty/resty/v2"
)

// Client verifies bearer tokens against the identity provider's
// introspection endpoint.
type Client struct {
	http    *resty.Client
	baseURL string
	apiKey  string
}

type introspectResponse struct {
	Active      bool   `json:"active"`
	Subject     string `json:"sub"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
}

func NewClient(cfg config.Config) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.IDPBaseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "evolead/1.0")
	return &Client{
		http:    client,
		baseURL: cfg.IDPBaseURL,
		apiKey:  cfg.IDPAPIKey,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.baseURL) != ""
}

func (c *Client) Introspect(ctx context.Context, token string) (*domain.Identity, error) {
	var result introspectResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(map[string]string{"token": token}).
		SetResult(&result).
		Post("/oauth2/introspect")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIDPUnavailable, err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return nil, domain.ErrTokenInvalid
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", domain.ErrIDPUnavailable, resp.StatusCode())
	}
	if !result.Active {
		return nil, domain.ErrTokenInvalid
	}

	identity, err := identityFromIntrospection(result)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func identityFromIntrospection(result introspectResponse) (*domain.Identity, error) {
	raw := strings.TrimSpace(result.UserID)
	if raw == "" {
		raw = strings.TrimSpace(result.Subject)
	}
	userID, err := parseUserID(raw)
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:      userID,
		Email:       result.Email,
		DisplayName: result.DisplayName,
		Subject:     result.Subject,
	}, nil
}
