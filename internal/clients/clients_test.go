package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	log := zerolog.Nop()
	return &log
}

func TestEventClientGetEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/events/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":1,"name":"GoConf","owner_id":42}`))
		case "/events/2":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewEventClient(srv.URL, testLogger())

	event, err := c.GetEvent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &Event{ID: 1, Name: "GoConf", OwnerID: 42}, event)

	_, err = c.GetEvent(context.Background(), 2)
	require.ErrorIs(t, err, ErrEventNotFound)

	_, err = c.GetEvent(context.Background(), 3)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestEventClientGetTeam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/events/teams/1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"user_id":42,"role":"MANAGER"},{"user_id":7,"role":"MEMBER"}]`))
	}))
	defer srv.Close()

	c := NewEventClient(srv.URL, testLogger())

	team, err := c.GetTeam(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []TeamMember{
		{UserID: 42, Role: "MANAGER"},
		{UserID: 7, Role: "MEMBER"},
	}, team)
}

func TestEventClientConnectionRefused(t *testing.T) {
	c := NewEventClient("http://127.0.0.1:1", testLogger())

	_, err := c.GetEvent(context.Background(), 1)
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestUserClientGetUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/42":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":42,"username":"owner","email":"owner@mail.com"}`))
		case "/users/email/owner@mail.com":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":42,"username":"owner","email":"owner@mail.com"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewUserClient(srv.URL, testLogger())

	user, err := c.GetUser(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 42, Username: "owner", Email: "owner@mail.com"}, user)

	byEmail, err := c.GetUserByEmail(context.Background(), "owner@mail.com")
	require.NoError(t, err)
	assert.Equal(t, user, byEmail)

	_, err = c.GetUser(context.Background(), 7)
	require.ErrorIs(t, err, ErrUserNotFound)
}
