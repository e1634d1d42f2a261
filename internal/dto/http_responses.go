package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"registrations/internal/model"
)

const (
	CategoryNotFound           = "NOT_FOUND"
	CategoryBadRequest         = "BAD_REQUEST"
	CategoryConflict           = "CONFLICT"
	CategoryServiceUnavailable = "SERVICE_UNAVAILABLE"

	InternalError = "Service is currently unavailable. Please try again later."
)

type CreateRegistrationRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email,min=6,max=254"`
	Phone    string `json:"phone" validate:"required,phone"`
	EventID  int64  `json:"event_id" validate:"positive"`
	AuthorID *int64 `json:"author_id,omitempty"`
}

// UpdateRegistrationRequest carries a partial update: nil pointers mean
// "leave unchanged"; present fields are revalidated before the service runs.
type UpdateRegistrationRequest struct {
	ID       int64   `json:"id" validate:"positive"`
	Password string  `json:"password" validate:"required,len=4"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type DeleteRegistrationRequest struct {
	ID       int64  `json:"id" validate:"positive"`
	Password string `json:"password" validate:"required,len=4"`
}

type UpdateStatusRequest struct {
	UserID         int64  `json:"user_id" validate:"positive"`
	RegistrationID int64  `json:"registration_id" validate:"positive"`
	Status         string `json:"status" validate:"required"`
	Password       string `json:"password" validate:"required,len=4"`
}

type DeclineRegistrationRequest struct {
	UserID         int64  `json:"user_id" validate:"positive"`
	RegistrationID int64  `json:"registration_id" validate:"positive"`
	Reason         string `json:"reason" validate:"required"`
	Password       string `json:"password" validate:"required,len=4"`
}

type CreateRegistrationResponse struct {
	ID       int64  `json:"id"`
	Password string `json:"password"`
}

type RegistrationResponse struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	AuthorID  *int64    `json:"author_id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func RegistrationView(reg *model.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:        reg.ID,
		EventID:   reg.EventID,
		Username:  reg.Username,
		Email:     reg.Email,
		Phone:     reg.Phone,
		Status:    reg.Status,
		CreatedAt: reg.CreatedAt,
		UpdatedAt: reg.UpdatedAt,
	}
	if reg.AuthorID.Valid {
		author := reg.AuthorID.Int64
		resp.AuthorID = &author
	}
	return resp
}

func RegistrationViews(regs []model.Registration) []RegistrationResponse {
	views := make([]RegistrationResponse, 0, len(regs))
	for i := range regs {
		views = append(views, RegistrationView(&regs[i]))
	}
	return views
}

type ErrorResponse struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func BadRequestError(c *ginext.Context, msg string) {
	c.JSON(400, ErrorResponse{Category: CategoryBadRequest, Message: msg})
}

func NotFoundError(c *ginext.Context, msg string) {
	c.JSON(404, ErrorResponse{Category: CategoryNotFound, Message: msg})
}

func ConflictError(c *ginext.Context, msg string) {
	c.JSON(409, ErrorResponse{Category: CategoryConflict, Message: msg})
}

func UpstreamUnavailableError(c *ginext.Context, msg string) {
	c.JSON(503, ErrorResponse{Category: CategoryServiceUnavailable, Message: msg})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, ErrorResponse{Category: CategoryServiceUnavailable, Message: InternalError})
}
