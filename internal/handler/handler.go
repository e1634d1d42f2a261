package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"registrations/internal/clients"
	"registrations/internal/dto"
	"registrations/internal/model"
	"registrations/internal/repo"
	"registrations/internal/service"
	"registrations/pkg/validator"
)

const (
	defaultPage = 0
	defaultSize = 10
)

type Handler interface {
	CreateRegistration(ctx *ginext.Context)
	UpdateRegistration(ctx *ginext.Context)
	GetRegistration(ctx *ginext.Context)
	ListRegistrations(ctx *ginext.Context)
	DeleteRegistration(ctx *ginext.Context)
	UpdateStatus(ctx *ginext.Context)
	DeclineRegistration(ctx *ginext.Context)
	SearchRegistrations(ctx *ginext.Context)
	CountRegistrations(ctx *ginext.Context)
}

type handler struct {
	svc service.Service
	log *zerolog.Logger
}

func NewHandler(svc service.Service, log *zerolog.Logger) Handler {
	return &handler{svc: svc, log: log}
}

func (h *handler) CreateRegistration(ctx *ginext.Context) {
	var req dto.CreateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadRequestError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	reg := &model.Registration{
		EventID:  req.EventID,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if req.AuthorID != nil {
		reg.AuthorID = sql.NullInt64{Int64: *req.AuthorID, Valid: true}
	}

	created, err := h.svc.Create(ctx.Request.Context(), reg)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(201, dto.CreateRegistrationResponse{
		ID:       created.ID,
		Password: created.Password,
	})
}

func (h *handler) UpdateRegistration(ctx *ginext.Context) {
	var req dto.UpdateRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadRequestError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	// Present fields get the same rules as creation; absent fields are
	// left untouched downstream.
	if req.Username != nil {
		if verr := validator.Var(*req.Username, "required"); verr != nil {
			dto.BadRequestError(ctx, fmt.Sprintf("username: %v", verr))
			return
		}
	}
	if req.Email != nil {
		if verr := validator.Var(*req.Email, "required,email,min=6,max=254"); verr != nil {
			dto.BadRequestError(ctx, fmt.Sprintf("email: %v", verr))
			return
		}
	}
	if req.Phone != nil {
		if verr := validator.Var(*req.Phone, "required,phone"); verr != nil {
			dto.BadRequestError(ctx, fmt.Sprintf("phone: %v", verr))
			return
		}
	}

	upd := &model.RegistrationUpdate{
		ID:       req.ID,
		Password: req.Password,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	reg, err := h.svc.Update(ctx.Request.Context(), upd)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.RegistrationView(reg))
}

func (h *handler) GetRegistration(ctx *ginext.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadRequestError(ctx, "Invalid registration ID")
		return
	}

	reg, err := h.svc.GetByID(ctx.Request.Context(), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.RegistrationView(reg))
}

func (h *handler) ListRegistrations(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	page, err := strconv.Atoi(ctx.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 0 {
		dto.BadRequestError(ctx, "Invalid page")
		return
	}

	size, err := strconv.Atoi(ctx.DefaultQuery("size", strconv.Itoa(defaultSize)))
	if err != nil || size < 1 {
		dto.BadRequestError(ctx, "Invalid size")
		return
	}

	regs, err := h.svc.ListByEvent(ctx.Request.Context(), eventID, page, size)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.RegistrationViews(regs))
}

func (h *handler) DeleteRegistration(ctx *ginext.Context) {
	var req dto.DeleteRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadRequestError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), req.ID, req.Password); err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.Status(204)
}

func (h *handler) UpdateStatus(ctx *ginext.Context) {
	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadRequestError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	status, err := h.svc.UpdateStatus(ctx.Request.Context(), req.UserID, req.RegistrationID, req.Status, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.StatusResponse{Status: status})
}

func (h *handler) DeclineRegistration(ctx *ginext.Context) {
	var req dto.DeclineRegistrationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadRequestError(ctx, "Invalid JSON format")
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadRequestError(ctx, fmt.Sprintf("%v", verr))
		return
	}

	status, err := h.svc.Decline(ctx.Request.Context(), req.UserID, req.RegistrationID, req.Reason, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.StatusResponse{Status: status})
}

func (h *handler) SearchRegistrations(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	var statuses []string
	if raw := ctx.Query("statuses"); raw != "" {
		statuses = strings.Split(raw, ",")
	}
	if len(statuses) == 0 {
		dto.BadRequestError(ctx, "At least one status is required")
		return
	}

	regs, err := h.svc.Search(ctx.Request.Context(), eventID, statuses)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, dto.RegistrationViews(regs))
}

func (h *handler) CountRegistrations(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Query("eventId"), 10, 64)
	if err != nil || eventID <= 0 {
		dto.BadRequestError(ctx, "Invalid event ID")
		return
	}

	counts, err := h.svc.Counts(ctx.Request.Context(), eventID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	ctx.JSON(200, counts)
}

func (h *handler) respondError(ctx *ginext.Context, err error) {
	switch {
	case errors.Is(err, repo.ErrRegistrationNotFound):
		dto.NotFoundError(ctx, "Registration not found")
	case errors.Is(err, clients.ErrEventNotFound):
		dto.NotFoundError(ctx, "Event not found")
	case errors.Is(err, clients.ErrUserNotFound):
		dto.NotFoundError(ctx, "User not found")
	case errors.Is(err, repo.ErrPasswordIncorrect):
		dto.BadRequestError(ctx, "Password is incorrect")
	case errors.Is(err, service.ErrInvalidStatus):
		dto.BadRequestError(ctx, err.Error())
	case errors.Is(err, repo.ErrConflict):
		dto.ConflictError(ctx, "Data integrity violation")
	case errors.Is(err, clients.ErrUpstreamUnavailable):
		dto.UpstreamUnavailableError(ctx, "Directory service unavailable")
	default:
		h.log.Error().Err(err).Msg("unhandled service error")
		dto.InternalServerError(ctx)
	}
}
