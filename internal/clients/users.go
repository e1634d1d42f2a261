package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type UserClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zerolog.Logger
}

func NewUserClient(baseURL string, log *zerolog.Logger) *UserClient {
	return &UserClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log,
	}
}

func (c *UserClient) GetUser(ctx context.Context, id int64) (*User, error) {
	return c.getUser(ctx, fmt.Sprintf("%s/users/%d", c.baseURL, id))
}

func (c *UserClient) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return c.getUser(ctx, fmt.Sprintf("%s/users/email/%s", c.baseURL, email))
}

func (c *UserClient) getUser(ctx context.Context, url string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("user directory request failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUserNotFound
	case resp.StatusCode != http.StatusOK:
		c.log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("user directory returned non-OK status")
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user directory response: %w", err)
	}
	return &user, nil
}
