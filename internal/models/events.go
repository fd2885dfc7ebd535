package models

import (
	"time"

	"github.com/google/uuid"
)

// SubjectDispatchCreated is the bus subject for newly stored dispatch requests.
const SubjectDispatchCreated = "despachos.created"

// DispatchCreatedEvent announces a stored dispatch request. It carries no
// contact details.
type DispatchCreatedEvent struct {
	DispatchID   uuid.UUID      `json:"dispatch_id"`
	Cliente      string         `json:"cliente,omitempty"`
	TotalItems   int            `json:"total_items"`
	Status       DispatchStatus `json:"status"`
	Notification string         `json:"notification"`
	CreatedAt    time.Time      `json:"created_at"`
}
