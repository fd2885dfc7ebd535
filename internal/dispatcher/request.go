package dispatcher

import (
	"strings"

	"github.com/blockedby/dosimetria-portal/internal/models"
)

// SubmitRequest is the public dispatch form payload.
//
// Every field is optional: absence decodes to nil and is stored as NULL.
// Nothing here is validated beyond JSON decoding.
type SubmitRequest struct {
	Cliente             *string `json:"cliente,omitempty"`
	NIT                 *string `json:"nit,omitempty"`
	Email               *string `json:"email,omitempty"`
	ResponsableMedicion *string `json:"responsable_medicion,omitempty"`
	Cargo               *string `json:"cargo,omitempty"`
	ResponsableGeneral  *string `json:"responsable_general,omitempty"`

	InstrumentoContaminacion *string `json:"instrumento_contaminacion,omitempty"`
	RefMarca                 *string `json:"ref_marca,omitempty"`
	RefModelo                *string `json:"ref_modelo,omitempty"`
	RefSerie                 *string `json:"ref_serie,omitempty"`

	Items []models.DispatchItem `json:"items,omitempty"`

	FechaSolicitada *string `json:"fecha_solicitada,omitempty"`
}

// ToDispatch builds the pending record to persist. Items keep their order.
func (r *SubmitRequest) ToDispatch() *models.DispatchRequest {
	items := make([]models.DispatchItem, len(r.Items))
	copy(items, r.Items)

	return &models.DispatchRequest{
		Cliente:                  r.Cliente,
		NIT:                      r.NIT,
		Email:                    r.Email,
		ResponsableMedicion:      r.ResponsableMedicion,
		Cargo:                    r.Cargo,
		ResponsableGeneral:       r.ResponsableGeneral,
		InstrumentoContaminacion: r.InstrumentoContaminacion,
		RefMarca:                 r.RefMarca,
		RefModelo:                r.RefModelo,
		RefSerie:                 r.RefSerie,
		Items:                    items,
		FechaSolicitada:          r.FechaSolicitada,
		Status:                   models.DispatchStatusPending,
	}
}

// present reports whether an optional field holds a non-blank value.
func present(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

// value dereferences an optional field, trimming spaces; absent is "".
func value(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
