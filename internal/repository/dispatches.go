package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/blockedby/dosimetria-portal/internal/database"
	"github.com/blockedby/dosimetria-portal/internal/logger"
	"github.com/blockedby/dosimetria-portal/internal/models"
)

// intakeReason is logged every time the public intake path takes the elevated handle.
const intakeReason = "public dispatch intake: anonymous caller has no insert grant on despachos"

// staffReason covers staff reads; role checks happen in the HTTP layer.
const staffReason = "staff dispatch listing: role already checked"

// DispatchFilter narrows the staff listing.
type DispatchFilter struct {
	Status models.DispatchStatus
	Limit  int
}

// DispatchesRepository persists dispatch requests in the despachos table.
type DispatchesRepository struct {
	handles *database.Handles
	log     *logger.Logger
}

// NewDispatchesRepository creates a new dispatches repository.
func NewDispatchesRepository(handles *database.Handles, log *logger.Logger) *DispatchesRepository {
	return &DispatchesRepository{
		handles: handles,
		log:     log,
	}
}

// Create inserts a dispatch request through the elevated handle.
// The store assigns id and created_at; both are written back into d.
func (r *DispatchesRepository) Create(ctx context.Context, d *models.DispatchRequest) error {
	db := r.handles.Elevated(intakeReason)
	if db == nil {
		return fmt.Errorf("create dispatch: %w", database.ErrNoElevatedHandle)
	}

	if d.Status == "" {
		d.Status = models.DispatchStatusPending
	}

	items, err := encodeItems(d.Items)
	if err != nil {
		return fmt.Errorf("create dispatch: %w", err)
	}

	err = db.Pool.QueryRow(ctx, `
		INSERT INTO despachos (
			cliente, nit, email, responsable_medicion, cargo, responsable_general,
			instrumento_contaminacion, ref_marca, ref_modelo, ref_serie,
			items, fecha_solicitada, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12, $13)
		RETURNING id, created_at
	`, d.Cliente, d.NIT, d.Email, d.ResponsableMedicion, d.Cargo, d.ResponsableGeneral,
		d.InstrumentoContaminacion, d.RefMarca, d.RefModelo, d.RefSerie,
		items, d.FechaSolicitada, d.Status,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create dispatch: %w", err)
	}

	r.log.Info().
		Str("id", d.ID.String()).
		Int("items", d.TotalItems()).
		Str("status", string(d.Status)).
		Msg("created dispatch request")

	return nil
}

// List returns dispatch requests newest first.
func (r *DispatchesRepository) List(ctx context.Context, filter DispatchFilter) ([]*models.DispatchRequest, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, created_at, cliente, nit, email, responsable_medicion, cargo, responsable_general,
		       instrumento_contaminacion, ref_marca, ref_modelo, ref_serie,
		       items, fecha_solicitada, status
		FROM despachos`
	args := []any{}
	if filter.Status != "" {
		query += ` WHERE status = $1`
		args = append(args, filter.Status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	db := r.handles.Elevated(staffReason)
	if db == nil {
		return nil, fmt.Errorf("list dispatches: %w", database.ErrNoElevatedHandle)
	}

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}
	defer rows.Close()

	var out []*models.DispatchRequest
	for rows.Next() {
		d, err := scanDispatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list dispatches: %w", err)
	}

	return out, nil
}

// CountByStatus returns how many dispatch requests are in the given status.
func (r *DispatchesRepository) CountByStatus(ctx context.Context, status models.DispatchStatus) (int, error) {
	db := r.handles.Elevated(staffReason)
	if db == nil {
		return 0, fmt.Errorf("count dispatches: %w", database.ErrNoElevatedHandle)
	}

	var n int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM despachos WHERE status = $1
	`, status).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count dispatches: %w", err)
	}
	return n, nil
}

func scanDispatch(row pgx.Row) (*models.DispatchRequest, error) {
	var d models.DispatchRequest
	var items []byte

	err := row.Scan(
		&d.ID, &d.CreatedAt, &d.Cliente, &d.NIT, &d.Email, &d.ResponsableMedicion, &d.Cargo, &d.ResponsableGeneral,
		&d.InstrumentoContaminacion, &d.RefMarca, &d.RefModelo, &d.RefSerie,
		&items, &d.FechaSolicitada, &d.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("scan dispatch: %w", err)
	}

	d.Items, err = decodeItems(items)
	if err != nil {
		return nil, fmt.Errorf("scan dispatch %s: %w", d.ID, err)
	}

	return &d, nil
}

// encodeItems marshals items for the jsonb column; nil becomes an empty array.
func encodeItems(items []models.DispatchItem) (string, error) {
	if items == nil {
		items = []models.DispatchItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(b), nil
}

func decodeItems(raw []byte) ([]models.DispatchItem, error) {
	items := []models.DispatchItem{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}
