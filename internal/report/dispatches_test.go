package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/blockedby/dosimetria-portal/internal/models"
)

func strPtr(s string) *string { return &s }

func TestWriteDispatches_OneRowPerItem(t *testing.T) {
	id1, id2 := uuid.New(), uuid.New()
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

	dispatches := []*models.DispatchRequest{
		{
			ID:        id1,
			CreatedAt: created,
			Cliente:   strPtr("Acme"),
			NIT:       strPtr("900123"),
			Items: []models.DispatchItem{
				{Marca: strPtr("Fluke"), Modelo: strPtr("451P"), Serie: strPtr("SN1")},
				{Marca: strPtr("Thermo"), Modelo: strPtr("RadEye"), Serie: strPtr("SN2")},
			},
			Status: models.DispatchStatusPending,
		},
		{
			ID:        id2,
			CreatedAt: created,
			Cliente:   strPtr("Beta"),
			Status:    models.DispatchStatusPending,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDispatches(&buf, dispatches))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetDispatches)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Cliente", rows[0][2])
	assert.Equal(t, []string{id1.String(), "2024-05-01 09:30", "Acme", "900123", "", "", "Fluke", "451P", "SN1", "pending"}, rows[1])
	assert.Equal(t, "Thermo", rows[2][6])
	assert.Equal(t, id2.String(), rows[3][0])
	assert.Equal(t, "Beta", rows[3][2])
}

func TestWriteDispatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDispatches(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetDispatches)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
