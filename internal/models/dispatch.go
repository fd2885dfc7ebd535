package models

import (
	"time"

	"github.com/google/uuid"
)

// DispatchStatus represents the lifecycle state of a dispatch request.
type DispatchStatus string

// DispatchStatus constants. Intake only ever writes DispatchStatusPending.
const (
	DispatchStatusPending   DispatchStatus = "pending"
	DispatchStatusScheduled DispatchStatus = "programado"
	DispatchStatusCollected DispatchStatus = "recogido"
	DispatchStatusCancelled DispatchStatus = "cancelado"
)

// DispatchItem is one piece of equipment to be collected for calibration.
type DispatchItem struct {
	Marca  *string `json:"marca"`
	Modelo *string `json:"modelo"`
	Serie  *string `json:"serie"`
}

// DispatchRequest is a customer's request to have equipment collected.
// Records are append-only: created once at submission, never updated by intake.
type DispatchRequest struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// customer
	Cliente             *string `json:"cliente" db:"cliente"`
	NIT                 *string `json:"nit" db:"nit"`
	Email               *string `json:"email" db:"email"`
	ResponsableMedicion *string `json:"responsable_medicion" db:"responsable_medicion"`
	Cargo               *string `json:"cargo" db:"cargo"`
	ResponsableGeneral  *string `json:"responsable_general,omitempty" db:"responsable_general"`

	// contamination reference instrument
	InstrumentoContaminacion *string `json:"instrumento_contaminacion" db:"instrumento_contaminacion"`
	RefMarca                 *string `json:"ref_marca" db:"ref_marca"`
	RefModelo                *string `json:"ref_modelo" db:"ref_modelo"`
	RefSerie                 *string `json:"ref_serie" db:"ref_serie"`

	Items []DispatchItem `json:"items" db:"items"`

	// stored verbatim, never parsed
	FechaSolicitada *string `json:"fecha_solicitada" db:"fecha_solicitada"`

	Status DispatchStatus `json:"status" db:"status"`
}

// TotalItems is the equipment count shown in every notification.
func (d *DispatchRequest) TotalItems() int {
	return len(d.Items)
}
