package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRequest struct {
	Username string `validate:"required"`
	Email    string `validate:"required,email,min=6,max=254"`
	Phone    string `validate:"required,phone"`
	EventID  int64  `validate:"positive"`
}

func validRequest() createRequest {
	return createRequest{
		Username: "user1",
		Email:    "email@mail.com",
		Phone:    "78005553535",
		EventID:  1,
	}
}

func TestValidateOK(t *testing.T) {
	require.NoError(t, Validate(context.Background(), validRequest()))
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"78005553535", true},
		{"71234567890", true},
		{"88005553535", false},
		{"7800555353", false},
		{"780055535350", false},
		{"7800555353a", false},
		{"+78005553535", false},
		{"", false},
	}

	for _, tc := range cases {
		req := validRequest()
		req.Phone = tc.phone
		err := Validate(context.Background(), req)
		if tc.ok {
			assert.NoError(t, err, "phone %q", tc.phone)
		} else {
			assert.Error(t, err, "phone %q", tc.phone)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	req := validRequest()
	req.Email = "not-an-email"
	assert.Error(t, Validate(context.Background(), req))

	req.Email = "a@b.c"
	assert.Error(t, Validate(context.Background(), req), "below minimum length")

	req.Email = ""
	assert.Error(t, Validate(context.Background(), req))
}

func TestValidatePositive(t *testing.T) {
	req := validRequest()
	req.EventID = 0
	assert.Error(t, Validate(context.Background(), req))

	req.EventID = -5
	assert.Error(t, Validate(context.Background(), req))
}

func TestValidateUsernameRequired(t *testing.T) {
	req := validRequest()
	req.Username = ""
	assert.Error(t, Validate(context.Background(), req))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var("78005553535", "required,phone"))
	assert.Error(t, Var("12345", "required,phone"))
	assert.NoError(t, Var("email@mail.com", "required,email,min=6,max=254"))
	assert.Error(t, Var("", "required"))
	assert.NoError(t, Var("1234", "required,len=4"))
	assert.Error(t, Var("123", "required,len=4"))
}
