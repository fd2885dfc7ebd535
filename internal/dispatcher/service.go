// Package dispatcher takes public dispatch requests in: it stores them as
// pending and then notifies operations and the submitter by email.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/models"
)

// ErrNilRequest is returned when Submit receives no payload.
var ErrNilRequest = errors.New("request cannot be nil")

// DispatchRepository persists dispatch requests.
type DispatchRepository interface {
	Create(ctx context.Context, d *models.DispatchRequest) error
}

// Notifier announces a stored dispatch request. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, d *models.DispatchRequest) NotificationOutcome
}

// EventPublisher announces stored dispatch requests on the bus.
type EventPublisher interface {
	PublishDispatchCreated(ctx context.Context, event models.DispatchCreatedEvent) error
}

// SubmitResult is what the submitter gets back.
type SubmitResult struct {
	ID           uuid.UUID
	Notification NotificationOutcome
}

// Service is the intake pipeline for dispatch requests.
type Service struct {
	repo      DispatchRepository
	notifier  Notifier
	publisher EventPublisher
	log       *logger.Logger
}

// NewService creates a Service. notifier and publisher may be nil.
func NewService(repo DispatchRepository, notifier Notifier, publisher EventPublisher, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

// Submit stores the request as pending, then notifies. Only a storage failure
// is returned as an error; notification and event problems are logged.
func (s *Service) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResult, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	d := req.ToDispatch()
	if err := s.repo.Create(ctx, d); err != nil {
		s.log.Error().Err(err).Str("cliente", value(d.Cliente)).Msg("dispatch request not stored")
		return nil, fmt.Errorf("persist dispatch: %w", err)
	}

	// the record exists now; a client disconnect must not cut notification short
	bg := context.WithoutCancel(ctx)

	outcome := s.notify(bg, d)
	s.logOutcome(d, outcome)
	s.publish(bg, d, outcome)

	return &SubmitResult{ID: d.ID, Notification: outcome}, nil
}

func (s *Service) notify(ctx context.Context, d *models.DispatchRequest) (outcome NotificationOutcome) {
	if s.notifier == nil {
		return skipped("no notifier")
	}
	defer func() {
		if r := recover(); r != nil {
			outcome = failed(fmt.Sprintf("panic: %v", r))
		}
	}()
	return s.notifier.Notify(ctx, d)
}

func (s *Service) logOutcome(d *models.DispatchRequest, o NotificationOutcome) {
	var ev = s.log.Info()
	switch o.Status {
	case NotificationFailed, NotificationPartiallySent:
		ev = s.log.Warn()
	case NotificationSkipped:
		ev = s.log.Debug()
	}
	ev.Str("dispatch_id", d.ID.String()).
		Str("notification", string(o.Status)).
		Int("delivered", o.Delivered).
		Str("reason", o.Reason).
		Int("items", d.TotalItems()).
		Msg("dispatch request stored")
}

func (s *Service) publish(ctx context.Context, d *models.DispatchRequest, o NotificationOutcome) {
	if s.publisher == nil {
		return
	}
	event := models.DispatchCreatedEvent{
		DispatchID:   d.ID,
		Cliente:      value(d.Cliente),
		TotalItems:   d.TotalItems(),
		Status:       d.Status,
		Notification: string(o.Status),
		CreatedAt:    d.CreatedAt,
	}
	if err := s.publisher.PublishDispatchCreated(ctx, event); err != nil {
		s.log.Warn().Err(err).Str("dispatch_id", d.ID.String()).Msg("dispatch event not published")
	}
}
