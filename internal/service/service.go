package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"registrations/internal/clients"
	"registrations/internal/model"
	"registrations/internal/password"
	"registrations/internal/repo"
)

var ErrInvalidStatus = errors.New("invalid status")

// Dispatcher emits notifications without ever failing the caller.
type Dispatcher interface {
	Dispatch(n model.Notification)
}

// Service is the registration lifecycle: every mutating operation is
// password-gated, and the gate plus the mutation run as one store
// transaction, so callers never observe an interleaving between them.
type Service interface {
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	Update(ctx context.Context, upd *model.RegistrationUpdate) (*model.Registration, error)
	GetByID(ctx context.Context, id int64) (*model.Registration, error)
	ListByEvent(ctx context.Context, eventID int64, page, size int) ([]model.Registration, error)
	Delete(ctx context.Context, id int64, pass string) error
	UpdateStatus(ctx context.Context, userID, registrationID int64, status, pass string) (string, error)
	Decline(ctx context.Context, userID, registrationID int64, reason, pass string) (string, error)
	Search(ctx context.Context, eventID int64, statuses []string) ([]model.Registration, error)
	Counts(ctx context.Context, eventID int64) (*model.StatusCounts, error)
}

type service struct {
	repo       repo.Repository
	events     clients.EventDirectory
	users      clients.UserDirectory
	dispatcher Dispatcher
	log        *zerolog.Logger
}

func NewService(repo repo.Repository, events clients.EventDirectory, users clients.UserDirectory, dispatcher Dispatcher, log *zerolog.Logger) Service {
	return &service{
		repo:       repo,
		events:     events,
		users:      users,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Create persists a new pending registration with a generated 4-digit
// credential. The event reference is not pre-checked against the Event
// directory; referential integrity is enforced at read time by callers.
func (s *service) Create(ctx context.Context, reg *model.Registration) (*model.Registration, error) {
	pass, err := password.Generate()
	if err != nil {
		return nil, err
	}

	reg.Password = pass
	reg.Status = model.StatusPending

	id, err := s.repo.CreateRegistration(ctx, reg)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("registration_id", id).Int64("event_id", reg.EventID).Msg("registration created")
	return reg, nil
}

func (s *service) Update(ctx context.Context, upd *model.RegistrationUpdate) (*model.Registration, error) {
	reg, err := s.repo.UpdateRegistrationTx(ctx, upd)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("registration_id", reg.ID).Msg("registration updated")
	return reg, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*model.Registration, error) {
	return s.repo.GetRegistrationByID(ctx, id)
}

func (s *service) ListByEvent(ctx context.Context, eventID int64, page, size int) ([]model.Registration, error) {
	return s.repo.GetRegistrationsByEvent(ctx, eventID, page, size)
}

func (s *service) Delete(ctx context.Context, id int64, pass string) error {
	if err := s.repo.DeleteRegistrationTx(ctx, id, pass); err != nil {
		return err
	}

	s.log.Info().Int64("registration_id", id).Msg("registration deleted")
	return nil
}

// UpdateStatus sets the status unconditionally after the password check;
// no transition guard exists between statuses beyond what callers invoke.
// The acting user must exist in the User directory.
func (s *service) UpdateStatus(ctx context.Context, userID, registrationID int64, status, pass string) (string, error) {
	if !model.ValidStatus(status) {
		return "", fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return "", err
	}

	if err := s.repo.UpdateStatusTx(ctx, registrationID, pass, status); err != nil {
		return "", err
	}

	s.log.Info().
		Int64("registration_id", registrationID).
		Int64("user_id", userID).
		Str("status", status).
		Msg("registration status updated")
	return status, nil
}

// Decline sets the status to declined, stores the reason, and notifies the
// event owner. The notification (including the directory lookup that
// enriches it) is best-effort: by the time it is attempted the decline has
// already committed, so its failure is logged and discarded.
func (s *service) Decline(ctx context.Context, userID, registrationID int64, reason, pass string) (string, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return "", err
	}

	reg, err := s.repo.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return "", err
	}

	if err := s.repo.DeclineRegistrationTx(ctx, registrationID, pass, reason); err != nil {
		return "", err
	}

	s.log.Info().
		Int64("registration_id", registrationID).
		Int64("user_id", userID).
		Msg("registration declined")

	event, err := s.events.GetEvent(ctx, reg.EventID)
	if err != nil {
		s.log.Warn().
			Err(err).
			Int64("event_id", reg.EventID).
			Msg("failed to resolve event for decline notification, skipping")
		return model.StatusDeclined, nil
	}

	s.dispatcher.Dispatch(model.Notification{
		EventOwnerID:     event.OwnerID,
		EventName:        event.Name,
		ParticipantEmail: reg.Email,
	})

	return model.StatusDeclined, nil
}

func (s *service) Search(ctx context.Context, eventID int64, statuses []string) ([]model.Registration, error) {
	for _, status := range statuses {
		if !model.ValidStatus(status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
		}
	}

	return s.repo.SearchByStatusesAndEvent(ctx, eventID, statuses)
}

// Counts aggregates registrations per status bucket; buckets absent from
// the grouped query are reported as zero.
func (s *service) Counts(ctx context.Context, eventID int64) (*model.StatusCounts, error) {
	byStatus, err := s.repo.CountByStatusForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &model.StatusCounts{
		Pending:  byStatus[model.StatusPending],
		Waiting:  byStatus[model.StatusWaiting],
		Approved: byStatus[model.StatusApproved],
		Declined: byStatus[model.StatusDeclined],
	}, nil
}
