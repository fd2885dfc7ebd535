package publisher

import (
	"context"
	"fmt"

	"github.com/blockedby/dosimetria-portal/internal/models"
)

// NATSClient interface to allow mocking
type NATSClient interface {
	Publish(ctx context.Context, subject string, data any) error
}

// NATSPublisher announces dispatch events on the bus.
type NATSPublisher struct {
	js NATSClient
}

// NewNATSPublisher creates a new publisher
func NewNATSPublisher(client NATSClient) *NATSPublisher {
	return &NATSPublisher{js: client}
}

// PublishDispatchCreated publishes a dispatch created event
func (p *NATSPublisher) PublishDispatchCreated(ctx context.Context, event models.DispatchCreatedEvent) error {
	if err := p.js.Publish(ctx, models.SubjectDispatchCreated, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
