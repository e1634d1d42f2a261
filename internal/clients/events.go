// Package clients holds the outbound HTTP clients for the Event and User
// directory services. Lookups are read-only; failures propagate to the
// caller without retries.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

const defaultTimeout = 10 * time.Second

type Event struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

type TeamMember struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}

type EventDirectory interface {
	GetEvent(ctx context.Context, id int64) (*Event, error)
	GetTeam(ctx context.Context, eventID int64) ([]TeamMember, error)
}

type EventClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zerolog.Logger
}

func NewEventClient(baseURL string, log *zerolog.Logger) *EventClient {
	return &EventClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: log,
	}
}

func (c *EventClient) GetEvent(ctx context.Context, id int64) (*Event, error) {
	url := fmt.Sprintf("%s/events/%d", c.baseURL, id)

	var event Event
	if err := c.getJSON(ctx, url, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *EventClient) GetTeam(ctx context.Context, eventID int64) ([]TeamMember, error) {
	url := fmt.Sprintf("%s/events/teams/%d", c.baseURL, eventID)

	var team []TeamMember
	if err := c.getJSON(ctx, url, &team); err != nil {
		return nil, err
	}
	return team, nil
}

func (c *EventClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", url).Msg("event directory request failed")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrEventNotFound
	case resp.StatusCode != http.StatusOK:
		c.log.Error().Int("status", resp.StatusCode).Str("url", url).Msg("event directory returned non-OK status")
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode event directory response: %w", err)
	}
	return nil
}
