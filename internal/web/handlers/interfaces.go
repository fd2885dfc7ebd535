package handlers

import (
	"context"

	"github.com/blockedby/dosimetria-portal/internal/dispatcher"
	"github.com/blockedby/dosimetria-portal/internal/models"
	"github.com/blockedby/dosimetria-portal/internal/repository"
)

// IntakeService takes public dispatch requests in.
type IntakeService interface {
	Submit(ctx context.Context, req *dispatcher.SubmitRequest) (*dispatcher.SubmitResult, error)
}

// DispatchesRepository defines interface for staff reads of dispatch requests
type DispatchesRepository interface {
	List(ctx context.Context, filter repository.DispatchFilter) ([]*models.DispatchRequest, error)
	CountByStatus(ctx context.Context, status models.DispatchStatus) (int, error)
}

// ModuleMatrix resolves the dashboard modules for a role.
type ModuleMatrix interface {
	Modules(role string) []string
}
